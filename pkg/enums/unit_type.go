package enums

import "fmt"

// UnitType decides how a line item's amount is derived.
type UnitType string

const (
	// UnitTypeFixed means amount = quantity x unit price.
	UnitTypeFixed UnitType = "fixed"
	// UnitTypePercent means amount = unit price percent of the running total
	// accumulated by the items before it.
	UnitTypePercent UnitType = "percent"
	// UnitTypeKg means the amount was priced per kilogram elsewhere and is
	// supplied with the item.
	UnitTypeKg UnitType = "kg"
)

var validUnitTypes = []UnitType{
	UnitTypeFixed,
	UnitTypePercent,
	UnitTypeKg,
}

// String implements fmt.Stringer.
func (u UnitType) String() string {
	return string(u)
}

// IsValid reports whether the value is a known UnitType.
func (u UnitType) IsValid() bool {
	for _, candidate := range validUnitTypes {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseUnitType converts raw input into a UnitType. Empty input falls back to
// fixed pricing.
func ParseUnitType(value string) (UnitType, error) {
	if value == "" {
		return UnitTypeFixed, nil
	}
	for _, candidate := range validUnitTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid unit type %q", value)
}
