package shared

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds to cents, half away from zero
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Format renders an amount the way the shop prints it:
// USD as $1,234.56 and VES as Bs. 1.234,56.
func Format(amount decimal.Decimal, currency Currency) string {
	rounded := Round2(amount)
	fixed := rounded.Abs().StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var prefix, thousands, decimalSep string
	switch currency {
	case CurrencyVES:
		prefix, thousands, decimalSep = "Bs. ", ".", ","
	default:
		prefix, thousands, decimalSep = "$", ",", "."
	}

	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + prefix + groupThousands(intPart, thousands) + decimalSep + fracPart
}

func groupThousands(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
