package domain

import (
	"context"
	"time"

	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/shopspring/decimal"
)

type Service interface {
	Preview(ctx context.Context, input Input) (*ComputedInvoice, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	List(ctx context.Context, req ListRequest) ([]Summary, error)
	Get(ctx context.Context, id string) (*Invoice, error)
	Delete(ctx context.Context, id string) error
}

type GenerateRequest struct {
	Input Input
	// IdempotencyKey guards against double submission of the same form.
	IdempotencyKey string
}

type GenerateResult struct {
	Invoice  *Invoice
	Computed ComputedInvoice
	Plan     stockdomain.DecrementPlan
}

type ListRequest struct {
	BuyerName string
	Limit     int
}

type Summary struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	BuyerName     string          `json:"buyer_name"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedAt     time.Time       `json:"created_at"`
}
