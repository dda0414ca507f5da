package utils

import "github.com/shopspring/decimal"

// RoundProbability rounds p to 4 decimal places for presentation.
func RoundProbability(p float64) float64 {
	return decimal.NewFromFloat(p).Round(4).InexactFloat64()
}

// FormatPercent renders p in [0,1] as a percentage with two decimals, e.g. "12.34%".
func FormatPercent(p float64) string {
	return decimal.NewFromFloat(p).Shift(2).StringFixed(2) + "%"
}
