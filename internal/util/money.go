package util

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatIDR renders an amount in Indonesian rupiah display format:
// "Rp" prefix, "." as thousands separator, "," before two decimal digits,
// e.g. Rp1.250.000,00. Negative amounts get a leading minus.
func FormatIDR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)

	intPart := fixed[:len(fixed)-3]
	fracPart := fixed[len(fixed)-2:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp")
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(digit)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
