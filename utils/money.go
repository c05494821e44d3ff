package utils

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Percent turns 20 into 0.2.
func Percent(p decimal.Decimal) decimal.Decimal {
	return p.Div(hundred)
}

// FormatMoney renders an amount the way receipts and reports print it: 2 decimal places, half-up.
func FormatMoney(value decimal.Decimal) string {
	return value.StringFixed(2)
}

// SumMoney adds up a list of amounts.
func SumMoney(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
