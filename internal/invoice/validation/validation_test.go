package validation

import (
	"errors"
	"testing"

	"github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func ptr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func validInput() domain.Input {
	return domain.Input{
		Seller: domain.Party{Name: "Sharma Traders", TaxID: "27AAPFU0939F1ZV"},
		Buyer:  domain.Party{Name: "Gupta Stores"},
		Items: []domain.LineItem{
			{Description: "Widget", Quantity: dec("1"), UnitPrice: dec("100"), GSTRatePercent: ptr("18")},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *domain.Input)
		opts    Options
		wantErr error
	}{
		{
			name:   "valid input",
			mutate: func(in *domain.Input) {},
		},
		{
			name:   "zero price is allowed",
			mutate: func(in *domain.Input) { in.Items[0].UnitPrice = decimal.Zero },
		},
		{
			name:   "missing rate is allowed",
			mutate: func(in *domain.Input) { in.Items[0].GSTRatePercent = nil },
		},
		{
			name:   "custom rate is allowed by default",
			mutate: func(in *domain.Input) { in.Items[0].GSTRatePercent = ptr("3") },
		},
		{
			name:    "missing seller name",
			mutate:  func(in *domain.Input) { in.Seller.Name = "  " },
			wantErr: domain.ErrMissingSellerName,
		},
		{
			name:    "missing buyer name",
			mutate:  func(in *domain.Input) { in.Buyer.Name = "" },
			wantErr: domain.ErrMissingBuyerName,
		},
		{
			name:    "no items",
			mutate:  func(in *domain.Input) { in.Items = nil },
			wantErr: domain.ErrNoItems,
		},
		{
			name:    "missing description",
			mutate:  func(in *domain.Input) { in.Items[0].Description = "" },
			wantErr: domain.ErrMissingDescription,
		},
		{
			name:    "zero quantity",
			mutate:  func(in *domain.Input) { in.Items[0].Quantity = decimal.Zero },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "negative quantity",
			mutate:  func(in *domain.Input) { in.Items[0].Quantity = dec("-2") },
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "negative price",
			mutate:  func(in *domain.Input) { in.Items[0].UnitPrice = dec("-0.01") },
			wantErr: domain.ErrInvalidUnitPrice,
		},
		{
			name:    "rate above 100",
			mutate:  func(in *domain.Input) { in.Items[0].GSTRatePercent = ptr("128") },
			wantErr: domain.ErrInvalidGSTRate,
		},
		{
			name:    "non standard slab in strict mode",
			mutate:  func(in *domain.Input) { in.Items[0].GSTRatePercent = ptr("3") },
			opts:    Options{StandardSlabsOnly: true},
			wantErr: domain.ErrNonStandardGSTRate,
		},
		{
			name:    "malformed GSTIN in strict mode",
			mutate:  func(in *domain.Input) { in.Buyer.TaxID = "NOT-A-GSTIN" },
			opts:    Options{StrictGSTIN: true},
			wantErr: domain.ErrInvalidGSTIN,
		},
		{
			name:   "malformed GSTIN is tolerated by default",
			mutate: func(in *domain.Input) { in.Buyer.TaxID = "NOT-A-GSTIN" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := Validate(in, tt.opts)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var vErrs *domain.ValidationErrors
			require.True(t, errors.As(err, &vErrs))
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	in := domain.Input{
		Items: []domain.LineItem{
			{Description: "ok", Quantity: dec("1"), UnitPrice: dec("1")},
			{Description: "", Quantity: dec("0"), UnitPrice: dec("-5")},
		},
	}

	err := Validate(in, Options{})

	var vErrs *domain.ValidationErrors
	require.True(t, errors.As(err, &vErrs))
	fields := make([]string, 0, len(vErrs.Errors))
	for _, e := range vErrs.Errors {
		fields = append(fields, e.Field)
	}
	assert.Equal(t, []string{
		"seller.name",
		"buyer.name",
		"items[1].description",
		"items[1].quantity",
		"items[1].unit_price",
	}, fields)
	assert.ErrorIs(t, err, domain.ErrMissingSellerName)
	assert.ErrorIs(t, err, domain.ErrInvalidUnitPrice)
}
