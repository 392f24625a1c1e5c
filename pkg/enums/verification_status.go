package enums

import "fmt"

// VerificationStatus is the admin approval state of a payment entry.
// Verification is one-way: pending may move to verified or rejected, and both
// of those are terminal.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusPending,
	VerificationStatusVerified,
	VerificationStatusRejected,
}

// String implements fmt.Stringer.
func (v VerificationStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VerificationStatus.
func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsDecided reports whether the status is terminal.
func (v VerificationStatus) IsDecided() bool {
	return v == VerificationStatusVerified || v == VerificationStatusRejected
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
