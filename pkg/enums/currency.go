package enums

import "strings"

// Currency is an ISO 4217 style code. Codes are data driven (the exchange
// rate table decides what is accepted), so only the base currency is fixed.
type Currency string

// CurrencyTZS is the base unit every exchange rate is expressed against.
const CurrencyTZS Currency = "TZS"

// BaseCurrency returns the platform base currency.
func BaseCurrency() Currency {
	return CurrencyTZS
}

// NormalizeCurrency trims and upper-cases a raw currency code.
func NormalizeCurrency(value string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(value)))
}

// String implements fmt.Stringer.
func (c Currency) String() string {
	return string(c)
}

// IsBase reports whether the code is the base currency.
func (c Currency) IsBase() bool {
	return NormalizeCurrency(string(c)) == CurrencyTZS
}

// IsZero reports whether the code is empty.
func (c Currency) IsZero() bool {
	return strings.TrimSpace(string(c)) == ""
}
