package pricing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatAmount groups thousands with commas and keeps at most three
// fraction digits: 1200000 -> "1,200,000", 1234.5 -> "1,234.5".
func FormatAmount(v float64) string {
	s := decimal.NewFromFloat(v).Round(3).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatWon renders an integer amount with the won suffix used on the page.
func FormatWon(v int64) string {
	return FormatAmount(float64(v)) + "원"
}

// ParseAmount accepts "120,000", "120000원" or plain numbers.
func ParseAmount(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "원"))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.Round(0).IntPart(), true
}
