package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Party is either side of an invoice.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// LineItem is one billed line as supplied by the caller.
type LineItem struct {
	Description string          `json:"description"`
	HSNCode     string          `json:"hsn_code,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	// GSTRatePercent is nil when the caller did not supply a rate.
	GSTRatePercent *decimal.Decimal `json:"gst_rate_percent,omitempty"`
	// ProductID links the line to an inventory product. Empty for free-form lines.
	ProductID string `json:"product_id,omitempty"`
}

// Input is the raw invoice request. InvoiceNumber and Date are optional
// overrides; everything else is required.
type Input struct {
	InvoiceNumber string     `json:"invoice_number,omitempty"`
	Date          string     `json:"date,omitempty"`
	Seller        Party      `json:"seller"`
	Buyer         Party      `json:"buyer"`
	Items         []LineItem `json:"items"`
}

// InventoryLinked reports whether the line refers to an inventory product.
func (li LineItem) InventoryLinked() bool {
	return strings.TrimSpace(li.ProductID) != ""
}

type NumberSource string

const (
	NumberSourceSupplied  NumberSource = "supplied"
	NumberSourceGenerated NumberSource = "generated"
)

type DateSource string

const (
	DateSourceSupplied DateSource = "supplied"
	DateSourceToday    DateSource = "today"
)

type RateSource string

const (
	RateSourceSupplied RateSource = "supplied"
	RateSourceDefault  RateSource = "default"
)

// ComputedLineItem carries the caller's line plus its derived amounts.
// All amounts are unrounded.
type ComputedLineItem struct {
	Description    string          `json:"description"`
	HSNCode        string          `json:"hsn_code,omitempty"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	GSTRatePercent decimal.Decimal `json:"gst_rate_percent"`
	RateSource     RateSource      `json:"rate_source"`
	ProductID      string          `json:"product_id,omitempty"`

	LineSubtotal  decimal.Decimal `json:"line_subtotal"`
	LineGSTAmount decimal.Decimal `json:"line_gst_amount"`
	CGSTAmount    decimal.Decimal `json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `json:"sgst_amount"`
	LineTotal     decimal.Decimal `json:"line_total"`
}

// ComputedInvoice is the fully reconciled invoice.
type ComputedInvoice struct {
	InvoiceNumber       string             `json:"invoice_number"`
	InvoiceNumberSource NumberSource       `json:"invoice_number_source"`
	Date                time.Time          `json:"date"`
	DateSource          DateSource         `json:"date_source"`
	Seller              Party              `json:"seller"`
	Buyer               Party              `json:"buyer"`
	Items               []ComputedLineItem `json:"items"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	CGSTAmount     decimal.Decimal `json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `json:"sgst_amount"`
	TotalGSTAmount decimal.Decimal `json:"total_gst_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
