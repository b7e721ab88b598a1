// Package report renders computed financials for people: formatting helpers
// plus markdown property and portfolio summaries. The fraction-to-percent
// conversion lives at this boundary and nowhere inside the calculators.
package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders a dollar amount with zero decimal places and comma
// separators: 781832.73 -> "$781,833".
func FormatCurrency(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	s := groupThousands(d.Abs().String())
	if d.IsNegative() {
		return "-$" + s
	}
	return "$" + s
}

// FormatPercent renders a stored decimal fraction as a percent with one or
// two decimal places: 0.0858 -> "8.58%", 0.086 -> "8.6%".
func FormatPercent(fraction float64) string {
	d := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).Round(2)
	s := d.StringFixed(2)
	if strings.HasSuffix(s, "0") {
		s = s[:len(s)-1]
	}
	return s + "%"
}

// FormatRatio renders a plain ratio (DSCR, equity multiple) with two decimal
// places.
func FormatRatio(v float64) string {
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
