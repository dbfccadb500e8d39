/*
Package generic provides the domain-agnostic building blocks of the engine.

PURPOSE:
  Day-granular time, month windows, nullable decimal helpers and the
  error taxonomy shared by the contract package, the stores and the API.

KEY CONCEPTS IN THIS FILE (types.go):
  - decimal.Decimal for every money, rating and hours value
  - decimal.NullDecimal for values a record may leave unset
  - Helpers to move nullable decimals through text columns and JSON

DESIGN PRINCIPLES:
  1. Precision: no float64 anywhere near money
  2. Explicit nullability: "not supplied" is distinct from zero

SEE ALSO:
  - time.go: TimePoint and YearMonth
  - period.go: Month windows and overlap tests
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDecimal parses s, reporting the field name on failure.
func ParseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Value: s, Err: err}
	}
	return d, nil
}

// Some wraps a present value.
func Some(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// SomeInt wraps a present integer value.
func SomeInt(n int64) decimal.NullDecimal {
	return Some(decimal.NewFromInt(n))
}

// SomeString wraps a present value parsed from s, or null if s does not parse.
func SomeString(s string) decimal.NullDecimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return Some(d)
}

// NullFromString decodes an optional textual decimal. nil and "" are null.
func NullFromString(s *string) (decimal.NullDecimal, error) {
	if s == nil || *s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return Some(d), nil
}

// NullToString encodes a nullable decimal for a text column.
func NullToString(nd decimal.NullDecimal) *string {
	if !nd.Valid {
		return nil
	}
	s := nd.Decimal.String()
	return &s
}

// OrDefault returns the value when present, def otherwise.
func OrDefault(nd decimal.NullDecimal, def decimal.Decimal) decimal.Decimal {
	if nd.Valid {
		return nd.Decimal
	}
	return def
}

// Sum adds the values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
