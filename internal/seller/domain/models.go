package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Profile holds the seller details an invoice falls back to when its own
// seller block leaves them out.
type Profile struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	SellerID  snowflake.ID `gorm:"not null;uniqueIndex:ux_seller_profiles_seller_id" json:"seller_id"`
	Name      string       `gorm:"type:text" json:"name"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	GSTIN     string       `gorm:"column:gstin;type:text" json:"gstin,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "seller_profiles" }

type Service interface {
	// GetProfile returns the profile of the seller in ctx, or ErrNotFound.
	GetProfile(ctx context.Context) (*Profile, error)
	// SaveProfile creates or replaces the profile of the seller in ctx.
	SaveProfile(ctx context.Context, req SaveProfileRequest) (*Profile, error)
}

type SaveProfileRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	GSTIN   string `json:"gstin"`
}

var (
	ErrInvalidSeller = errors.New("invalid_seller")
	ErrInvalidName   = errors.New("invalid_name")
	ErrInvalidGSTIN  = errors.New("invalid_gstin")
	ErrNotFound      = errors.New("not_found")
)
