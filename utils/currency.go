package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders amount the Italian way, with the symbol after the
// number: 1234.5 -> "1.234,50 €".
func FormatCurrency(amount decimal.Decimal, symbol string) string {
	formatted := amount.Abs().StringFixed(2)

	parts := strings.SplitN(formatted, ".", 2)
	integerPart := parts[0]
	decimalPart := parts[1]

	var groups []string
	for i := len(integerPart); i > 0; i -= 3 {
		start := i - 3
		if start < 0 {
			start = 0
		}
		groups = append([]string{integerPart[start:i]}, groups...)
	}

	out := strings.Join(groups, ".") + "," + decimalPart
	if amount.IsNegative() && !amount.Round(2).IsZero() {
		out = "-" + out
	}
	if symbol != "" {
		out += " " + symbol
	}
	return out
}
