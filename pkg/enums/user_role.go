package enums

import "fmt"

// UserRole controls which routes and mutations an authenticated user may reach.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "staff"
	UserRoleAgent UserRole = "agent"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleStaff,
	UserRoleAgent,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanVerify reports whether the role may decide payment verifications and
// expense approvals.
func (r UserRole) CanVerify() bool {
	return r == UserRoleAdmin
}

// IsInternal reports whether the role belongs to company personnel. Agent
// accounts are external and never reach internal mutations directly.
func (r UserRole) IsInternal() bool {
	return r == UserRoleAdmin || r == UserRoleStaff
}

// ParseUserRole converts raw input into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
