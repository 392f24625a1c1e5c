package enums

import "fmt"

// ExpenseStatus is the approval state of an expense. Like payment
// verification, the decision is one-way.
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "pending"
	ExpenseStatusApproved ExpenseStatus = "approved"
	ExpenseStatusRejected ExpenseStatus = "rejected"
)

var validExpenseStatuses = []ExpenseStatus{
	ExpenseStatusPending,
	ExpenseStatusApproved,
	ExpenseStatusRejected,
}

// String implements fmt.Stringer.
func (e ExpenseStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExpenseStatus.
func (e ExpenseStatus) IsValid() bool {
	for _, candidate := range validExpenseStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsDecided reports whether the status is terminal.
func (e ExpenseStatus) IsDecided() bool {
	return e == ExpenseStatusApproved || e == ExpenseStatusRejected
}

// ParseExpenseStatus converts raw input into an ExpenseStatus.
func ParseExpenseStatus(value string) (ExpenseStatus, error) {
	for _, candidate := range validExpenseStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense status %q", value)
}
