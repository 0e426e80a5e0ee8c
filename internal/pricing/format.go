package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// Currency is the label printed in front of every amount.
const Currency = "LKR"

// FormatAmount renders v with exactly two decimals, rounding half away from
// zero on the shortest decimal form of v (1.005 -> "1.01").
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0.00"
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatMoney is FormatAmount prefixed with the currency label.
func FormatMoney(v float64) string {
	return Currency + " " + FormatAmount(v)
}
