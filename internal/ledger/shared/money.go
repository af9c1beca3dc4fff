package shared

import "github.com/shopspring/decimal"

// Tolerance is the rounding slack allowed when cross-checking derived
// statement totals.
var Tolerance = decimal.New(1, -2) // 0.01

// Cents rounds an amount to 2 decimal places, the precision every ledger
// comparison happens at.
func Cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// EqualCents reports whether two amounts agree at cent precision.
func EqualCents(a, b decimal.Decimal) bool {
	return Cents(a).Equal(Cents(b))
}

// WithinTolerance reports whether |a-b| <= 0.01.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}
