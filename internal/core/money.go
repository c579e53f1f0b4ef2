package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes amounts rendered by FormatMoney.
const CurrencySymbol = "S/"

// FormatMoney renders amount with two decimals and comma thousands separators,
// e.g. "S/ 12,500.00".
func FormatMoney(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	s := amount.Abs().StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(CurrencySymbol) + 2)
	if neg {
		b.WriteByte('-')
	}
	b.WriteString(CurrencySymbol)
	b.WriteByte(' ')

	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteByte(',')
		b.WriteString(intPart[i : i+3])
	}
	b.WriteString(frac)
	return b.String()
}
