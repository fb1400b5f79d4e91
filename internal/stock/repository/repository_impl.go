package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/mslabba/gst-invoice-generator/pkg/db/option"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	return db.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("seller_id = ? AND id = ?", sellerID, id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, ids []snowflake.ID) ([]domain.Product, error) {
	var items []domain.Product
	if len(ids) == 0 {
		return items, nil
	}
	err := db.WithContext(ctx).
		Where("seller_id = ? AND id IN ?", sellerID, ids).
		Find(&items).Error
	return items, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, filter domain.ListFilter) ([]domain.Product, error) {
	var items []domain.Product
	stmt := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("seller_id = ?", sellerID)

	if name := strings.TrimSpace(filter.Name); name != "" {
		stmt = stmt.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		stmt = stmt.Where("category = ?", category)
	}
	if filter.StockAtMost != nil {
		stmt = stmt.Where("stock <= ?", *filter.StockAtMost)
	}

	stmt = option.WithSortBy(option.WithQuerySortBy(filter.SortBy, filter.OrderBy, map[string]bool{
		"created_at": true,
		"updated_at": true,
		"name":       true,
		"stock":      true,
	})).Apply(stmt)

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *domain.Product) error {
	if product == nil {
		return gorm.ErrInvalidData
	}
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("seller_id = ? AND id = ?", product.SellerID, product.ID).
		Updates(map[string]any{
			"name":             product.Name,
			"description":      product.Description,
			"hsn_code":         product.HSNCode,
			"category":         product.Category,
			"unit":             product.Unit,
			"unit_price":       product.UnitPrice,
			"gst_rate_percent": product.GSTRatePercent,
			"metadata":         product.Metadata,
			"updated_at":       product.UpdatedAt,
		}).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).
		Where("seller_id = ? AND id = ?", sellerID, id).
		Delete(&domain.Product{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) LockForUpdate(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, ids []snowflake.ID) ([]domain.Product, error) {
	var items []domain.Product
	if len(ids) == 0 {
		return items, nil
	}
	stmt := db.WithContext(ctx)
	// sqlite serializes writers itself and has no FOR UPDATE.
	if db.Dialector.Name() != "sqlite" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := stmt.
		Where("seller_id = ? AND id IN ?", sellerID, ids).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) DecrementIfAvailable(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID, qty decimal.Decimal, now time.Time) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("seller_id = ? AND id = ? AND stock >= ?", sellerID, id, qty).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repo) SetStock(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID, stock decimal.Decimal, now time.Time) error {
	return db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("seller_id = ? AND id = ?", sellerID, id).
		Updates(map[string]any{
			"stock":      stock,
			"updated_at": now,
		}).Error
}

func (r *repo) InsertMovements(ctx context.Context, db *gorm.DB, movements []domain.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&movements).Error
}

func (r *repo) ListMovements(ctx context.Context, db *gorm.DB, sellerID, productID snowflake.ID) ([]domain.StockMovement, error) {
	var items []domain.StockMovement
	err := db.WithContext(ctx).
		Where("seller_id = ? AND product_id = ?", sellerID, productID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}
