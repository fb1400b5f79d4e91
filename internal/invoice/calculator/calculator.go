// Package calculator turns a validated invoice input into a fully
// reconciled invoice. It performs no I/O and keeps no state between calls.
package calculator

import (
	"strings"
	"time"

	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/gst"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/format"
	"github.com/mslabba/gst-invoice-generator/internal/timeutil"
	"github.com/shopspring/decimal"
)

// Context carries the collaborators of a single Compute call.
type Context struct {
	Clock clock.Clock
	// Location decides which calendar day "today" is. Defaults to IST.
	Location *time.Location
	// NumberTemplate formats generated invoice numbers. An empty or broken
	// template falls back to format.DefaultInvoiceNumberTemplate.
	NumberTemplate string
}

func (c Context) now() time.Time {
	if c.Clock == nil {
		return time.Now().UTC()
	}
	return c.Clock.Now()
}

func (c Context) location() *time.Location {
	if c.Location == nil {
		return timeutil.IST
	}
	return c.Location
}

// Compute derives every line and invoice total from input.
//
// Amounts are kept at full precision; rounding belongs to display code.
// CGST and SGST totals are summed from the per-line halves, so the invoice
// totals always agree with the lines. Compute never fails: a missing or
// malformed date becomes today and a missing invoice number is generated.
func Compute(cctx Context, input domain.Input) domain.ComputedInvoice {
	now := cctx.now()

	out := domain.ComputedInvoice{
		Seller:         input.Seller,
		Buyer:          input.Buyer,
		Items:          make([]domain.ComputedLineItem, 0, len(input.Items)),
		Subtotal:       decimal.Zero,
		CGSTAmount:     decimal.Zero,
		SGSTAmount:     decimal.Zero,
		TotalGSTAmount: decimal.Zero,
		TotalAmount:    decimal.Zero,
	}
	out.InvoiceNumber, out.InvoiceNumberSource = resolveNumber(cctx, input.InvoiceNumber, now)
	out.Date, out.DateSource = resolveDate(input.Date, now, cctx.location())

	for _, item := range input.Items {
		line := computeLine(item)
		out.Items = append(out.Items, line)

		out.Subtotal = out.Subtotal.Add(line.LineSubtotal)
		out.CGSTAmount = out.CGSTAmount.Add(line.CGSTAmount)
		out.SGSTAmount = out.SGSTAmount.Add(line.SGSTAmount)
	}

	out.TotalGSTAmount = out.CGSTAmount.Add(out.SGSTAmount)
	out.TotalAmount = out.Subtotal.Add(out.TotalGSTAmount)
	return out
}

func computeLine(item domain.LineItem) domain.ComputedLineItem {
	rate, source := resolveRate(item.GSTRatePercent)

	subtotal := item.Quantity.Mul(item.UnitPrice)
	tax := gst.ComputeExclusive(subtotal, rate)
	cgst, sgst := gst.SplitIntraState(tax)

	return domain.ComputedLineItem{
		Description:    item.Description,
		HSNCode:        item.HSNCode,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		GSTRatePercent: rate,
		RateSource:     source,
		ProductID:      item.ProductID,
		LineSubtotal:   subtotal,
		LineGSTAmount:  tax,
		CGSTAmount:     cgst,
		SGSTAmount:     sgst,
		LineTotal:      subtotal.Add(tax),
	}
}

// resolveRate applies gst.DefaultRatePercent when the caller left the rate out.
func resolveRate(rate *decimal.Decimal) (decimal.Decimal, domain.RateSource) {
	if rate == nil {
		return gst.DefaultRatePercent, domain.RateSourceDefault
	}
	return *rate, domain.RateSourceSupplied
}

// resolveNumber prefers the caller's number. Generated numbers are only
// likely to be unique; storage rejects collisions.
func resolveNumber(cctx Context, override string, now time.Time) (string, domain.NumberSource) {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed, domain.NumberSourceSupplied
	}

	issuedAt := now.In(cctx.location())
	seq := format.TimeSequence(now)
	number, err := format.FormatInvoiceNumber(cctx.NumberTemplate, issuedAt, seq)
	if err != nil {
		number, _ = format.FormatInvoiceNumber(format.DefaultInvoiceNumberTemplate, issuedAt, seq)
	}
	return number, domain.NumberSourceGenerated
}

// resolveDate parses a YYYY-MM-DD override. Anything unparseable silently
// becomes today's date in loc.
func resolveDate(override string, now time.Time, loc *time.Location) (time.Time, domain.DateSource) {
	if strings.TrimSpace(override) != "" {
		if parsed, err := timeutil.ParseDate(override, loc); err == nil {
			return parsed, domain.DateSourceSupplied
		}
	}
	return timeutil.StartOfDay(now, loc), domain.DateSourceToday
}
