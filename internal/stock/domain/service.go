package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Response, error)
	List(ctx context.Context, req ListRequest) ([]Response, error)
	Get(ctx context.Context, id string) (*Response, error)
	Update(ctx context.Context, req UpdateRequest) (*Response, error)
	Delete(ctx context.Context, id string) error
	UpdateStock(ctx context.Context, req UpdateStockRequest) (*Response, error)
	CheckAvailability(ctx context.Context, id string, quantity decimal.Decimal) (*Availability, error)
	Movements(ctx context.Context, id string) ([]StockMovement, error)
}

type StockFilter string

const (
	StockFilterAll        StockFilter = ""
	StockFilterLow        StockFilter = "low"
	StockFilterOutOfStock StockFilter = "out"
)

type ListRequest struct {
	Name     string
	Category string
	Stock    StockFilter
	SortBy   string
	OrderBy  string
}

type CreateRequest struct {
	Code           string           `json:"code"`
	Name           string           `json:"name"`
	Description    *string          `json:"description"`
	HSNCode        string           `json:"hsn_code"`
	Category       string           `json:"category"`
	Unit           string           `json:"unit"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
	GSTRatePercent *decimal.Decimal `json:"gst_rate_percent"`
	Stock          decimal.Decimal  `json:"stock"`
	Metadata       map[string]any   `json:"metadata"`
}

type UpdateRequest struct {
	ID             string           `json:"-"`
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	HSNCode        *string          `json:"hsn_code"`
	Category       *string          `json:"category"`
	Unit           *string          `json:"unit"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
	GSTRatePercent *decimal.Decimal `json:"gst_rate_percent"`
	Metadata       map[string]any   `json:"metadata"`
}

type StockOperation string

const (
	StockSet      StockOperation = "set"
	StockAdd      StockOperation = "add"
	StockSubtract StockOperation = "subtract"
)

type UpdateStockRequest struct {
	ID        string          `json:"-"`
	Operation StockOperation  `json:"operation"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type Response struct {
	ID             string          `json:"id"`
	SellerID       string          `json:"seller_id"`
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	HSNCode        string          `json:"hsn_code,omitempty"`
	Category       string          `json:"category,omitempty"`
	Unit           string          `json:"unit"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	GSTRatePercent decimal.Decimal `json:"gst_rate_percent"`
	Stock          decimal.Decimal `json:"stock"`
	LowStock       bool            `json:"low_stock"`
	OutOfStock     bool            `json:"out_of_stock"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type Availability struct {
	ProductID string          `json:"product_id"`
	Available bool            `json:"available"`
	Stock     decimal.Decimal `json:"stock"`
	Requested decimal.Decimal `json:"requested"`
}

var (
	ErrInvalidSeller    = errors.New("invalid_seller")
	ErrInvalidID        = errors.New("invalid_id")
	ErrInvalidCode      = errors.New("invalid_code")
	ErrInvalidName      = errors.New("invalid_name")
	ErrInvalidUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidGSTRate   = errors.New("invalid_gst_rate")
	ErrInvalidStock     = errors.New("invalid_stock")
	ErrInvalidQuantity  = errors.New("invalid_quantity")
	ErrInvalidOperation = errors.New("invalid_operation")
	ErrDuplicateCode    = errors.New("duplicate_code")
	ErrNotFound         = errors.New("not_found")
)
