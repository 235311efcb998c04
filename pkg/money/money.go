// Package money provides currency-safe arithmetic for Brazilian Real amounts
// using integer centavos and shopspring/decimal for precise ratio and
// percentage calculations. Payment statements print values in either
// Brazilian ("1.234,56") or plain ("1234.56") notation; Parse accepts both.
package money

import (
	"errors"
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// ErrUnparseable indicates a value that could not be read as a monetary amount.
var ErrUnparseable = errors.New("unparseable monetary value")

// Amount is a BRL monetary value stored as integer centavos.
// The zero value is R$ 0,00.
type Amount struct {
	cents int64
}

// FromCents creates an Amount from integer centavos.
func FromCents(cents int64) Amount {
	return Amount{cents: cents}
}

// FromDecimal creates an Amount from a decimal value in reais,
// rounding half-up to whole centavos.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{cents: d.Mul(decimal.New(1, 2)).Round(0).IntPart()}
}

// Parse reads a monetary string in Brazilian or plain notation.
// Currency symbols, grouping separators and surrounding text are tolerated:
// "R$ 1.234,56", "1.234,56", "1234.56" and "1234,56" all yield the same Amount.
func Parse(s string) (Amount, error) {
	cleaned := stripNonNumeric(s)
	if cleaned == "" || cleaned == "-" {
		return Amount{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}

	normalized := normalizeSeparators(cleaned)
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q", ErrUnparseable, s)
	}
	return FromDecimal(d), nil
}

// ParseOptional is the non-failing variant of Parse. An unreadable value
// yields None so the caller decides between dropping the row and defaulting
// to zero; the two cases stay distinguishable.
func ParseOptional(s string) Optional {
	a, err := Parse(s)
	if err != nil {
		return None()
	}
	return Some(a)
}

// stripNonNumeric keeps digits, separators and a leading minus sign.
func stripNonNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == ',', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSeparators rewrites the value with '.' as the decimal separator.
// When both separators are present, the one occurring last is the decimal
// separator. A lone separator followed by more than two digits is treated as
// a grouping separator ("5.000" is five thousand, not five).
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// Brazilian: 1.234,56
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// US: 1,234.56
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if len(s)-lastComma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastDot >= 0:
		if len(s)-lastDot-1 > 2 || strings.Count(s, ".") > 1 {
			s = strings.ReplaceAll(s, ".", "")
		}
	}
	return s
}

// Cents returns the amount in integer centavos.
func (a Amount) Cents() int64 { return a.cents }

// Decimal returns the amount in reais as a decimal value.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(a.cents, -2)
}

// Float64 returns the amount in reais. Display and JSON use only.
func (a Amount) Float64() float64 {
	return a.Decimal().InexactFloat64()
}

// IsZero reports whether the amount is exactly zero.
func (a Amount) IsZero() bool { return a.cents == 0 }

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool { return a.cents < 0 }

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{cents: a.cents + other.cents}
}

// Sub returns a - other.
func (a Amount) Sub(other Amount) Amount {
	return Amount{cents: a.cents - other.cents}
}

// Abs returns the absolute value.
func (a Amount) Abs() Amount {
	if a.cents < 0 {
		return Amount{cents: -a.cents}
	}
	return a
}

// ApplyRatio scales the amount by a decimal ratio (e.g. 0.3 for a first
// assistant), rounding half-up to whole centavos.
func (a Amount) ApplyRatio(ratio decimal.Decimal) Amount {
	return FromDecimal(a.Decimal().Mul(ratio))
}

// PercentOf returns |a| as a percentage of base. The second return value is
// false when base is zero, in which case no percentage is defined.
func (a Amount) PercentOf(base Amount) (decimal.Decimal, bool) {
	if base.cents == 0 {
		return decimal.Zero, false
	}
	pct := a.Abs().Decimal().
		Div(base.Abs().Decimal()).
		Mul(decimal.New(100, 0))
	return pct, true
}

// Display formats the amount for humans, e.g. "R$1.234,56".
func (a Amount) Display() string {
	return gomoney.New(a.cents, gomoney.BRL).Display()
}

// String returns the plain decimal form with two places, e.g. "1234.56".
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a plain JSON number in reais.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal().StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted monetary string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Optional is an Amount that may be absent. It keeps "unparseable" distinct
// from "zero paid" through normalization.
type Optional struct {
	amount Amount
	valid  bool
}

// Some wraps a present Amount.
func Some(a Amount) Optional {
	return Optional{amount: a, valid: true}
}

// None is the absent Amount.
func None() Optional {
	return Optional{}
}

// Get returns the amount and whether it is present.
func (o Optional) Get() (Amount, bool) {
	return o.amount, o.valid
}

// IsSome reports whether a value is present.
func (o Optional) IsSome() bool { return o.valid }

// OrZero returns the amount, or R$ 0,00 when absent.
func (o Optional) OrZero() Amount {
	return o.amount
}
