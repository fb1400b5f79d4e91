package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product is an inventory item owned by a seller.
type Product struct {
	ID             snowflake.ID      `json:"id" gorm:"primaryKey"`
	SellerID       snowflake.ID      `json:"seller_id" gorm:"not null;uniqueIndex:ux_products_seller_code,priority:1"`
	Code           string            `json:"code" gorm:"type:text;not null;uniqueIndex:ux_products_seller_code,priority:2"`
	Name           string            `json:"name" gorm:"type:text;not null"`
	Description    *string           `json:"description,omitempty" gorm:"type:text"`
	HSNCode        string            `json:"hsn_code,omitempty" gorm:"type:text"`
	Category       string            `json:"category,omitempty" gorm:"type:text"`
	Unit           string            `json:"unit" gorm:"type:text;not null"`
	UnitPrice      decimal.Decimal   `json:"unit_price" gorm:"type:numeric;not null"`
	GSTRatePercent decimal.Decimal   `json:"gst_rate_percent" gorm:"type:numeric;not null"`
	Stock          decimal.Decimal   `json:"stock" gorm:"type:numeric;not null"`
	Metadata       datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"not null"`
}

func (Product) TableName() string { return "products" }

// Snapshot captures the fields reconciliation reads.
func (p Product) Snapshot() ProductSnapshot {
	return ProductSnapshot{
		ID:             p.ID.String(),
		Name:           p.Name,
		Stock:          p.Stock,
		UnitPrice:      p.UnitPrice,
		GSTRatePercent: p.GSTRatePercent,
		HSNCode:        p.HSNCode,
		Unit:           p.Unit,
	}
}

type MovementReason string

const (
	MovementInvoice    MovementReason = "invoice"
	MovementAdjustment MovementReason = "adjustment"
)

// StockMovement records one change to a product's stock level.
type StockMovement struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	SellerID  snowflake.ID    `json:"seller_id" gorm:"not null;index"`
	ProductID snowflake.ID    `json:"product_id" gorm:"not null;index"`
	BatchID   string          `json:"batch_id" gorm:"type:text;not null;index"`
	Reason    MovementReason  `json:"reason" gorm:"type:text;not null"`
	Reference string          `json:"reference,omitempty" gorm:"type:text"`
	OldStock  decimal.Decimal `json:"old_stock" gorm:"type:numeric;not null"`
	NewStock  decimal.Decimal `json:"new_stock" gorm:"type:numeric;not null"`
	Delta     decimal.Decimal `json:"delta" gorm:"type:numeric;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"not null"`
}

func (StockMovement) TableName() string { return "stock_movements" }
