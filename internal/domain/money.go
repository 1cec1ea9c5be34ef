package domain

import "github.com/shopspring/decimal"

// MoneyTolerance is the largest difference accepted between a supplied total
// and the total computed from its parts.
var MoneyTolerance = decimal.RequireFromString("0.01")

// Money converts a float amount from a payload into a two-decimal value.
func Money(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyTolerance)
}
