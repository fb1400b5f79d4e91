// Package money holds the display-side helpers for rupee amounts.
// Amounts stay at full precision everywhere else.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DisplayPlaces = 2
	rupeeSymbol   = "₹"
)

// Round rounds to paise, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(DisplayPlaces)
}

// Fixed renders the amount with exactly two decimal places.
func Fixed(d decimal.Decimal) string {
	return d.StringFixed(DisplayPlaces)
}

// FormatINR renders d as an Indian rupee amount, e.g. ₹1,23,456.78.
// The last three integer digits form one group and every group before
// them holds two digits.
func FormatINR(d decimal.Decimal) string {
	fixed := Round(d).Abs().StringFixed(DisplayPlaces)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if Round(d).IsNegative() {
		b.WriteByte('-')
	}
	b.WriteString(rupeeSymbol)
	b.WriteString(groupIndian(intPart))
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	groups := make([]string, 0, len(head)/2+1)
	if len(head)%2 == 1 {
		groups = append(groups, head[:1])
		head = head[1:]
	}
	for len(head) > 0 {
		groups = append(groups, head[:2])
		head = head[2:]
	}
	groups = append(groups, tail)
	return strings.Join(groups, ",")
}
