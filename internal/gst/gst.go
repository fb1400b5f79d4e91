package gst

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidGSTIN = errors.New("invalid_gstin")
)

// DefaultRatePercent applies when a line item does not carry a rate.
var DefaultRatePercent = decimal.Zero

// StandardSlabs are the statutory GST rates, in percent.
var StandardSlabs = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(5),
	decimal.NewFromInt(12),
	decimal.NewFromInt(18),
	decimal.NewFromInt(28),
}

var (
	maxRatePercent = decimal.NewFromInt(100)
	half           = decimal.RequireFromString("0.5")
	gstinRe        = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
)

// IsStandardSlab reports whether rate is one of StandardSlabs.
func IsStandardSlab(rate decimal.Decimal) bool {
	for _, slab := range StandardSlabs {
		if slab.Equal(rate) {
			return true
		}
	}
	return false
}

// ValidRate reports whether rate lies within 0..100 percent.
func ValidRate(rate decimal.Decimal) bool {
	return !rate.IsNegative() && rate.LessThanOrEqual(maxRatePercent)
}

// NearestSlab snaps a custom rate to the closest standard slab.
// Ties resolve to the lower slab.
func NearestSlab(rate decimal.Decimal) decimal.Decimal {
	best := StandardSlabs[0]
	bestDiff := rate.Sub(best).Abs()
	for _, slab := range StandardSlabs[1:] {
		diff := rate.Sub(slab).Abs()
		if diff.LessThan(bestDiff) {
			best = slab
			bestDiff = diff
		}
	}
	return best
}

// ComputeExclusive returns the tax added on top of amount at ratePercent.
// No rounding is applied; callers round at display boundaries.
func ComputeExclusive(amount, ratePercent decimal.Decimal) decimal.Decimal {
	return amount.Mul(ratePercent.Shift(-2))
}

// SplitIntraState splits an intra-state tax amount into its CGST and SGST
// halves. Both halves are exact.
func SplitIntraState(tax decimal.Decimal) (cgst, sgst decimal.Decimal) {
	h := tax.Mul(half)
	return h, h
}

// NormalizeGSTIN upper-cases and trims a GSTIN.
func NormalizeGSTIN(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidateGSTIN checks the 15 character GSTIN layout: state code, PAN,
// entity number, the fixed 'Z' and a check character.
func ValidateGSTIN(raw string) error {
	if !gstinRe.MatchString(NormalizeGSTIN(raw)) {
		return ErrInvalidGSTIN
	}
	return nil
}
