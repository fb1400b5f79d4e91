package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Invoice is the persisted header of a generated invoice. Party details are
// copied so later buyer edits never rewrite issued invoices.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	SellerID      snowflake.ID  `gorm:"not null;uniqueIndex:ux_invoices_seller_number,priority:1" json:"seller_id"`
	InvoiceNumber string        `gorm:"type:text;not null;uniqueIndex:ux_invoices_seller_number,priority:2" json:"invoice_number"`
	InvoiceDate   time.Time     `gorm:"not null" json:"invoice_date"`
	BuyerID       *snowflake.ID `gorm:"index" json:"buyer_id,omitempty"`

	SellerName    string `gorm:"type:text;not null" json:"seller_name"`
	SellerAddress string `gorm:"type:text" json:"seller_address,omitempty"`
	SellerTaxID   string `gorm:"type:text" json:"seller_tax_id,omitempty"`
	BuyerName     string `gorm:"type:text;not null" json:"buyer_name"`
	BuyerAddress  string `gorm:"type:text" json:"buyer_address,omitempty"`
	BuyerTaxID    string `gorm:"type:text" json:"buyer_tax_id,omitempty"`

	Subtotal       decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	CGSTAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"cgst_amount"`
	SGSTAmount     decimal.Decimal `gorm:"type:numeric;not null" json:"sgst_amount"`
	TotalGSTAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_gst_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`

	Items []InvoiceItem `gorm:"-" json:"items,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Position  int          `gorm:"not null" json:"position"`

	Description    string          `gorm:"type:text;not null" json:"description"`
	HSNCode        string          `gorm:"type:text" json:"hsn_code,omitempty"`
	ProductID      string          `gorm:"type:text" json:"product_id,omitempty"`
	Quantity       decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	GSTRatePercent decimal.Decimal `gorm:"type:numeric;not null" json:"gst_rate_percent"`

	LineSubtotal  decimal.Decimal `gorm:"type:numeric;not null" json:"line_subtotal"`
	LineGSTAmount decimal.Decimal `gorm:"type:numeric;not null" json:"line_gst_amount"`
	CGSTAmount    decimal.Decimal `gorm:"type:numeric;not null" json:"cgst_amount"`
	SGSTAmount    decimal.Decimal `gorm:"type:numeric;not null" json:"sgst_amount"`
	LineTotal     decimal.Decimal `gorm:"type:numeric;not null" json:"line_total"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }
