package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/money"
	obsmiddleware "github.com/mslabba/gst-invoice-generator/internal/observability/logger"
	"github.com/mslabba/gst-invoice-generator/internal/timeutil"
	"github.com/shopspring/decimal"
)

type displayAmount struct {
	Value     string `json:"value"`
	Formatted string `json:"formatted"`
}

func newDisplayAmount(d decimal.Decimal) displayAmount {
	return displayAmount{Value: money.Fixed(d), Formatted: money.FormatINR(d)}
}

type displayLine struct {
	Description    string        `json:"description"`
	GSTRatePercent string        `json:"gst_rate_percent"`
	UnitPrice      displayAmount `json:"unit_price"`
	LineSubtotal   displayAmount `json:"line_subtotal"`
	CGSTAmount     displayAmount `json:"cgst_amount"`
	SGSTAmount     displayAmount `json:"sgst_amount"`
	LineTotal      displayAmount `json:"line_total"`
}

// invoiceDisplay is the paise-rounded view of a computed invoice. Stored
// and computed amounts keep full precision.
type invoiceDisplay struct {
	Date           string        `json:"date"`
	Items          []displayLine `json:"items"`
	Subtotal       displayAmount `json:"subtotal"`
	CGSTAmount     displayAmount `json:"cgst_amount"`
	SGSTAmount     displayAmount `json:"sgst_amount"`
	TotalGSTAmount displayAmount `json:"total_gst_amount"`
	TotalAmount    displayAmount `json:"total_amount"`
}

type computedResponse struct {
	Invoice *invoicedomain.ComputedInvoice `json:"invoice"`
	Display invoiceDisplay                 `json:"display"`
}

type generateResponse struct {
	ID string `json:"id"`
	computedResponse
	StockDecrements int `json:"stock_decrements"`
}

func newInvoiceDisplay(inv *invoicedomain.ComputedInvoice) invoiceDisplay {
	lines := make([]displayLine, 0, len(inv.Items))
	for _, item := range inv.Items {
		lines = append(lines, displayLine{
			Description:    item.Description,
			GSTRatePercent: item.GSTRatePercent.String(),
			UnitPrice:      newDisplayAmount(item.UnitPrice),
			LineSubtotal:   newDisplayAmount(item.LineSubtotal),
			CGSTAmount:     newDisplayAmount(item.CGSTAmount),
			SGSTAmount:     newDisplayAmount(item.SGSTAmount),
			LineTotal:      newDisplayAmount(item.LineTotal),
		})
	}
	return invoiceDisplay{
		Date:           timeutil.FormatDisplayDate(inv.Date),
		Items:          lines,
		Subtotal:       newDisplayAmount(inv.Subtotal),
		CGSTAmount:     newDisplayAmount(inv.CGSTAmount),
		SGSTAmount:     newDisplayAmount(inv.SGSTAmount),
		TotalGSTAmount: newDisplayAmount(inv.TotalGSTAmount),
		TotalAmount:    newDisplayAmount(inv.TotalAmount),
	}
}

func (s *Server) PreviewInvoice(c *gin.Context) {
	var input invoicedomain.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	computed, err := s.invoiceSvc.Preview(c.Request.Context(), input)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": computedResponse{
		Invoice: computed,
		Display: newInvoiceDisplay(computed),
	}})
}

func (s *Server) GenerateInvoice(c *gin.Context) {
	var input invoicedomain.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.invoiceSvc.Generate(c.Request.Context(), invoicedomain.GenerateRequest{
		Input:          input,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey)),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set(obsmiddleware.InvoiceNumberKey, res.Invoice.InvoiceNumber)
	c.JSON(http.StatusCreated, gin.H{"data": generateResponse{
		ID: res.Invoice.ID.String(),
		computedResponse: computedResponse{
			Invoice: &res.Computed,
			Display: newInvoiceDisplay(&res.Computed),
		},
		StockDecrements: len(res.Plan.Decrements),
	}})
}

func (s *Server) ListInvoices(c *gin.Context) {
	limit, err := parseOptionalInt(c.Query("limit"))
	if err != nil || limit < 0 {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "limit must be a positive integer"))
		return
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListRequest{
		BuyerName: strings.TrimSpace(c.Query("buyer")),
		Limit:     limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	item, err := s.invoiceSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
