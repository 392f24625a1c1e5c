package enums

import "fmt"

// InvoiceDirection records who the money moves between. Customer invoices are
// the default; agent invoices carry settlement direction for the agent network.
type InvoiceDirection string

const (
	InvoiceDirectionToCustomer InvoiceDirection = "to_customer"
	InvoiceDirectionToAgent    InvoiceDirection = "to_agent"
	InvoiceDirectionFromAgent  InvoiceDirection = "from_agent"
)

var validInvoiceDirections = []InvoiceDirection{
	InvoiceDirectionToCustomer,
	InvoiceDirectionToAgent,
	InvoiceDirectionFromAgent,
}

// String implements fmt.Stringer.
func (d InvoiceDirection) String() string {
	return string(d)
}

// IsValid reports whether the value is a known InvoiceDirection.
func (d InvoiceDirection) IsValid() bool {
	for _, candidate := range validInvoiceDirections {
		if candidate == d {
			return true
		}
	}
	return false
}

// IsAgent reports whether the direction involves an external agent.
func (d InvoiceDirection) IsAgent() bool {
	return d == InvoiceDirectionToAgent || d == InvoiceDirectionFromAgent
}

// ParseInvoiceDirection converts raw input into an InvoiceDirection.
// Empty input falls back to the customer default.
func ParseInvoiceDirection(value string) (InvoiceDirection, error) {
	if value == "" {
		return InvoiceDirectionToCustomer, nil
	}
	for _, candidate := range validInvoiceDirections {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid invoice direction %q", value)
}
