package enums

import "fmt"

// ChargeType decides how a rated configuration row applies to its base figure.
type ChargeType string

const (
	ChargeTypeFixed      ChargeType = "fixed"
	ChargeTypePercentage ChargeType = "percentage"
)

var validChargeTypes = []ChargeType{
	ChargeTypeFixed,
	ChargeTypePercentage,
}

// String implements fmt.Stringer.
func (c ChargeType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ChargeType.
func (c ChargeType) IsValid() bool {
	for _, candidate := range validChargeTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChargeType converts raw input into a ChargeType.
func ParseChargeType(value string) (ChargeType, error) {
	for _, candidate := range validChargeTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid charge type %q", value)
}
