package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"118", "₹118.00"},
		{"999.999", "₹1,000.00"},
		{"1234.5", "₹1,234.50"},
		{"123456.78", "₹1,23,456.78"},
		{"12345678.9", "₹1,23,45,678.90"},
		{"-2500", "-₹2,500.00"},
		{"-0.001", "₹0.00"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatINR(decimal.RequireFromString(tc.in)))
		})
	}
}

func TestRoundAndFixed(t *testing.T) {
	assert.Equal(t, "30.50", Fixed(decimal.RequireFromString("30.5")))
	assert.Equal(t, "1.67", Fixed(Round(decimal.RequireFromString("1.6665"))))
	assert.Equal(t, "-1.67", Fixed(Round(decimal.RequireFromString("-1.665"))))
}
