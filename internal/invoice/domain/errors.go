package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidSeller          = errors.New("invalid_seller")
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrGenerationInProgress   = errors.New("generation_in_progress")
	ErrRateLimited            = errors.New("rate_limited")

	ErrMissingSellerName  = errors.New("missing_seller_name")
	ErrMissingBuyerName   = errors.New("missing_buyer_name")
	ErrNoItems            = errors.New("no_items")
	ErrMissingDescription = errors.New("missing_description")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidUnitPrice   = errors.New("invalid_unit_price")
	ErrInvalidGSTRate     = errors.New("invalid_gst_rate")
	ErrNonStandardGSTRate = errors.New("non_standard_gst_rate")
	ErrInvalidGSTIN       = errors.New("invalid_gstin")
)

// ValidationError ties a rejected field to its sentinel.
type ValidationError struct {
	Field   string
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Details
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every problem found in one input.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (v *ValidationErrors) Add(field string, err error, details string) {
	v.Errors = append(v.Errors, &ValidationError{Field: field, Err: err, Details: details})
}

func (v *ValidationErrors) Error() string {
	parts := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		parts = append(parts, e.Error())
	}
	return "invoice validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v.Errors))
	for _, e := range v.Errors {
		out = append(out, e)
	}
	return out
}

// OrNil returns v as an error, or nil when nothing was collected.
func (v *ValidationErrors) OrNil() error {
	if v == nil || len(v.Errors) == 0 {
		return nil
	}
	return v
}
