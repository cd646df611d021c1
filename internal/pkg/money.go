package pkg

import (
	"github.com/shopspring/decimal"
)

// FormatMinor renders an amount held in minor units (cents) as a major unit string, e.g. 1050 -> "10.50".
func FormatMinor(amount int64) string {
	return decimal.New(amount, -2).StringFixed(2)
}

// Ratio returns part/whole rounded to places, 0 when whole is 0.
func Ratio(part, whole int64, places int32) float64 {
	if whole == 0 {
		return 0
	}
	r, _ := decimal.NewFromInt(part).
		DivRound(decimal.NewFromInt(whole), places).
		Float64()
	return r
}
