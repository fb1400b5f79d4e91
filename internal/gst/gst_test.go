package gst

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestComputeExclusive(t *testing.T) {
	tax := ComputeExclusive(decimal.NewFromInt(100), decimal.NewFromInt(18))
	assert.True(t, tax.Equal(decimal.NewFromInt(18)), tax.String())

	tax = ComputeExclusive(decimal.RequireFromString("33.33"), decimal.NewFromInt(5))
	assert.Equal(t, "1.6665", tax.String())
}

func TestSplitIntraStateIsSymmetric(t *testing.T) {
	cgst, sgst := SplitIntraState(decimal.RequireFromString("1.6665"))
	assert.True(t, cgst.Equal(sgst))
	assert.True(t, cgst.Add(sgst).Equal(decimal.RequireFromString("1.6665")))
}

func TestNearestSlab(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"3", 5},
		{"2.5", 0},
		{"15", 12},
		{"16", 18},
		{"23", 18},
		{"40", 28},
	}
	for _, tc := range cases {
		got := NearestSlab(decimal.RequireFromString(tc.in))
		assert.True(t, got.Equal(decimal.NewFromInt(tc.want)), "rate %s snapped to %s", tc.in, got)
	}
}

func TestIsStandardSlab(t *testing.T) {
	assert.True(t, IsStandardSlab(decimal.NewFromInt(28)))
	assert.True(t, IsStandardSlab(decimal.RequireFromString("18.00")))
	assert.False(t, IsStandardSlab(decimal.NewFromInt(7)))
}

func TestValidRate(t *testing.T) {
	assert.True(t, ValidRate(decimal.Zero))
	assert.True(t, ValidRate(decimal.NewFromInt(100)))
	assert.False(t, ValidRate(decimal.NewFromInt(-1)))
	assert.False(t, ValidRate(decimal.RequireFromString("100.01")))
}

func TestValidateGSTIN(t *testing.T) {
	assert.NoError(t, ValidateGSTIN("27AAPFU0939F1ZV"))
	assert.NoError(t, ValidateGSTIN(" 29abcde1234f1z5 "))
	assert.ErrorIs(t, ValidateGSTIN("27AAPFU0939F1AV"), ErrInvalidGSTIN)
	assert.ErrorIs(t, ValidateGSTIN("1234"), ErrInvalidGSTIN)
	assert.ErrorIs(t, ValidateGSTIN(""), ErrInvalidGSTIN)
}
