package domain

import "github.com/shopspring/decimal"

// percentPrecision is the number of decimals kept for published percentages.
const percentPrecision = 2

// PercentChange returns (current-reference)/reference*100 rounded to two
// decimals. Returns zero when reference is zero.
func PercentChange(current, reference decimal.Decimal) float64 {
	if reference.IsZero() {
		return 0
	}
	pct := current.Sub(reference).Div(reference).Mul(decimal.NewFromInt(100))
	return pct.Round(percentPrecision).InexactFloat64()
}
