package toypayments

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MaxFractionDigits is the finest granularity an amount may carry.
const MaxFractionDigits = 4

// Amount is an exact base-10 monetary amount.
//
// All balance arithmetic goes through Amount so that available+held reproduces
// bit-exact values after arbitrarily many add/subtract cycles at 0.0001
// granularity. Binary floating point is never used for a stored or computed
// balance.
type Amount struct {
	value decimal.Decimal
}

// newDecimal is a convenient factory for decimal.Decimal.
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// A builds an Amount from any numeric type.
func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// ParseAmount parses an exact decimal amount with at most MaxFractionDigits
// fractional digits.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.Exponent() < -MaxFractionDigits {
		return Amount{}, fmt.Errorf("invalid amount %q: more than %d fractional digits", s, MaxFractionDigits)
	}
	return Amount{value: d}, nil
}

func (a Amount) Add(b Amount) Amount      { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Neg() Amount              { return Amount{value: a.value.Neg()} }
func (a Amount) Equal(b Amount) bool      { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool   { return a.value.LessThan(b.value) }
func (a Amount) IsZero() bool             { return a.value.IsZero() }
func (a Amount) IsNegative() bool         { return a.value.IsNegative() }
func (a Amount) IsPositive() bool         { return a.value.IsPositive() }

// String renders the amount with exactly MaxFractionDigits fractional digits,
// the precision used throughout the output format.
func (a Amount) String() string { return a.value.StringFixed(MaxFractionDigits) }

// Display renders the amount as a localized currency string (e.g. "$1,234.50").
// It is a presentation helper only; the engine has no notion of currency.
func (a Amount) Display(currency string) string {
	// the Money constructor is the only way to get a never-nil currency.
	cur := *money.New(0, currency).Currency()
	minor := a.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}
