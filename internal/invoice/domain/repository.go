package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *Invoice, items []InvoiceItem) error
	FindByID(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (*Invoice, error)
	FindByNumber(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, number string) (*Invoice, error)
	ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]InvoiceItem, error)
	List(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, filter ListFilter) ([]Invoice, error)
	Delete(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (bool, error)
}

type ListFilter struct {
	BuyerName string
	Limit     int
}
