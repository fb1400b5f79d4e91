package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (*Product, error)
	FindByIDs(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, ids []snowflake.ID) ([]Product, error)
	List(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, filter ListFilter) ([]Product, error)
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	Delete(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (bool, error)

	// LockForUpdate reads the products with row locks held until db's
	// transaction ends.
	LockForUpdate(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, ids []snowflake.ID) ([]Product, error)
	// DecrementIfAvailable deducts qty only while stock still covers it,
	// stamping updated_at with now. It reports whether the row was updated.
	DecrementIfAvailable(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID, qty decimal.Decimal, now time.Time) (bool, error)
	SetStock(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID, stock decimal.Decimal, now time.Time) error
	InsertMovements(ctx context.Context, db *gorm.DB, movements []StockMovement) error
	ListMovements(ctx context.Context, db *gorm.DB, sellerID, productID snowflake.ID) ([]StockMovement, error)
}

type ListFilter struct {
	Name        string
	Category    string
	StockAtMost *decimal.Decimal
	SortBy      string
	OrderBy     string
}
