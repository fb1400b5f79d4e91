// Package validation rejects invoice input the calculator must never see.
package validation

import (
	"fmt"
	"strings"

	"github.com/mslabba/gst-invoice-generator/internal/gst"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
)

type Options struct {
	// StrictGSTIN rejects tax IDs that are present but malformed.
	StrictGSTIN bool
	// StandardSlabsOnly rejects rates outside gst.StandardSlabs.
	StandardSlabsOnly bool
}

// Validate reports every problem in input at once. The returned error is a
// *domain.ValidationErrors; errors.Is matches the individual sentinels.
func Validate(input domain.Input, opts Options) error {
	errs := &domain.ValidationErrors{}

	if strings.TrimSpace(input.Seller.Name) == "" {
		errs.Add("seller.name", domain.ErrMissingSellerName, "")
	}
	if strings.TrimSpace(input.Buyer.Name) == "" {
		errs.Add("buyer.name", domain.ErrMissingBuyerName, "")
	}
	if opts.StrictGSTIN {
		checkGSTIN(errs, "seller.tax_id", input.Seller.TaxID)
		checkGSTIN(errs, "buyer.tax_id", input.Buyer.TaxID)
	}

	if len(input.Items) == 0 {
		errs.Add("items", domain.ErrNoItems, "at least one line item is required")
		return errs.OrNil()
	}

	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.Description) == "" {
			errs.Add(field+".description", domain.ErrMissingDescription, "")
		}
		if !item.Quantity.IsPositive() {
			errs.Add(field+".quantity", domain.ErrInvalidQuantity, "must be greater than zero, got "+item.Quantity.String())
		}
		if item.UnitPrice.IsNegative() {
			errs.Add(field+".unit_price", domain.ErrInvalidUnitPrice, "must not be negative, got "+item.UnitPrice.String())
		}
		if item.GSTRatePercent != nil {
			rate := *item.GSTRatePercent
			switch {
			case !gst.ValidRate(rate):
				errs.Add(field+".gst_rate_percent", domain.ErrInvalidGSTRate, "must be between 0 and 100, got "+rate.String())
			case opts.StandardSlabsOnly && !gst.IsStandardSlab(rate):
				errs.Add(field+".gst_rate_percent", domain.ErrNonStandardGSTRate, "nearest slab is "+gst.NearestSlab(rate).String())
			}
		}
	}

	return errs.OrNil()
}

func checkGSTIN(errs *domain.ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if err := gst.ValidateGSTIN(value); err != nil {
		errs.Add(field, domain.ErrInvalidGSTIN, "")
	}
}
