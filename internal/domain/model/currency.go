package model

import "strings"

type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultBase is used when a caller does not name a base currency.
const DefaultBase = USD

// ParseCurrency trims and upper-cases a caller-supplied code.
func ParseCurrency(s string) Currency {
	return Currency(strings.ToUpper(strings.TrimSpace(s)))
}

// IsWellFormed reports whether c has the shape of an ISO 4217 alphabetic
// code. Rate cache keys depend on every code being exactly three letters.
func (c Currency) IsWellFormed() bool {
	if len(c) != 3 {
		return false
	}
	for i := 0; i < len(c); i++ {
		if c[i] < 'A' || c[i] > 'Z' {
			return false
		}
	}
	return true
}

func (c Currency) String() string {
	return string(c)
}

// Symbols maps ISO 4217 codes to human readable currency names.
type Symbols map[string]string

func (s Symbols) Supports(c Currency) bool {
	_, ok := s[string(c)]
	return ok
}
