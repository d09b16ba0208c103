// Package amort holds the amortization math: the level-payment annuity
// formula and full schedule generation. Everything here is pure; all
// money is shopspring decimal so cent-level results are exact.
package amort

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

const monthsPerYear = 12

// MonthlyPayment computes the fixed monthly payment for a loan using
// the standard annuity formula, rounded to cents (half away from zero).
//
// Degenerate inputs are defined, not errors: non-positive term or
// principal yields 0, a non-positive rate yields a straight-line
// interest-free payment of principal/term.
func MonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	if termMonths <= 0 || principal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	term := decimal.NewFromInt(int64(termMonths))
	if annualRatePercent.LessThanOrEqual(decimal.Zero) {
		return principal.Div(term).Round(2)
	}

	monthlyRate := annualRatePercent.Div(hundred).Div(twelve)
	compound := one.Add(monthlyRate).Pow(term)
	payment := principal.Mul(monthlyRate).Mul(compound).Div(compound.Sub(one))
	return payment.Round(2)
}

// RemainingMonths returns the calendar-month distance from now to the
// maturity date, clamped to a minimum of 1 so a recalculated payment
// is always well-defined for a loan near maturity.
func RemainingMonths(maturity, now time.Time) int {
	remaining := (maturity.Year()-now.Year())*monthsPerYear + int(maturity.Month()) - int(now.Month())
	if remaining < 1 {
		return 1
	}
	return remaining
}
