package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as US dollars with two decimals and
// thousands separators, e.g. "$18,294.60".
func FormatCurrency(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	return sign + "$" + groupThousands(d.StringFixed(2))
}

// FormatPercent renders a rate such as 8 as "8.00%".
func FormatPercent(rate float64) string {
	return decimal.NewFromFloat(rate).StringFixed(2) + "%"
}

func groupThousands(fixed string) string {
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	lead := len(whole) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(whole[:lead])
	for i := lead; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
