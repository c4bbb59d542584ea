// Package money centralizes the amount arithmetic used across the
// ledger so every stored total is rounded the same way.
package money

import "github.com/shopspring/decimal"

// Round2 rounds an amount to two decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Total computes quantity x rate rounded to two decimal places.
func Total(qty, rate decimal.Decimal) decimal.Decimal {
	return Round2(qty.Mul(rate))
}
