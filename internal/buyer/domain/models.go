package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Buyer is a party a seller has invoiced before. A GSTIN names at most one
// buyer per seller; buyers without one are told apart by name.
type Buyer struct {
	ID        snowflake.ID      `gorm:"primaryKey" json:"id"`
	SellerID  snowflake.ID      `gorm:"not null;uniqueIndex:ux_buyers_seller_gstin,priority:1,where:gstin <> ''" json:"seller_id"`
	Name      string            `gorm:"type:text;not null" json:"name"`
	Address   string            `gorm:"type:text" json:"address,omitempty"`
	GSTIN     string            `gorm:"column:gstin;type:text;uniqueIndex:ux_buyers_seller_gstin,priority:2,where:gstin <> ''" json:"gstin,omitempty"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null" json:"updated_at"`
}

func (Buyer) TableName() string { return "buyers" }

type Service interface {
	// Save upserts a buyer: by GSTIN when one is given, otherwise by name
	// among buyers without a GSTIN.
	Save(ctx context.Context, req SaveRequest) (*Buyer, error)
	// SaveWithin is Save running on the caller's transaction.
	SaveWithin(ctx context.Context, tx *gorm.DB, req SaveRequest) (*Buyer, error)
	List(ctx context.Context) ([]Buyer, error)
	GetByGSTIN(ctx context.Context, gstin string) (*Buyer, error)
}

type SaveRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

var (
	ErrInvalidSeller = errors.New("invalid_seller")
	ErrInvalidName   = errors.New("invalid_name")
	ErrNotFound      = errors.New("not_found")
)
