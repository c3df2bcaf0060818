package shared

import "github.com/shopspring/decimal"

// Tolerance is the largest debit/credit difference still considered balanced.
var Tolerance = decimal.New(1, -2)

// Round2 rounds a monetary amount to cents.
func Round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// WithinTolerance reports whether a and b differ by no more than one cent.
func WithinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// Sum adds a list of amounts.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
