package billing

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// MonthLabel renders a short Indonesian month label such as "Agu 2025".
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return strconv.Itoa(year)
	}
	return monthNames[month-1] + " " + strconv.Itoa(year)
}

// FormatRupiah renders an amount the way id-ID currency formatting does with
// zero fraction digits: "Rp 1.500.000". Unlike Intl.NumberFormat, which puts a
// no-break space (U+00A0) after "Rp", the separator is a plain ASCII space so
// terminal reports stay greppable.
func FormatRupiah(d decimal.Decimal) string {
	s := d.Round(0).String()
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}

	if neg {
		return "-Rp " + b.String()
	}
	return "Rp " + b.String()
}
