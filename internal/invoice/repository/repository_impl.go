package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/pkg/db/option"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.InvoiceItem) error {
	if err := db.WithContext(ctx).Create(invoice).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (*domain.Invoice, error) {
	return r.findOne(ctx, db, "seller_id = ? AND id = ?", sellerID, id)
}

func (r *repo) FindByNumber(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, number string) (*domain.Invoice, error) {
	return r.findOne(ctx, db, "seller_id = ? AND invoice_number = ?", sellerID, number)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, args ...any) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := db.WithContext(ctx).Where(query, args...).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inv, nil
}

func (r *repo) ListItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.InvoiceItem, error) {
	var items []domain.InvoiceItem
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

func (r *repo) List(ctx context.Context, db *gorm.DB, sellerID snowflake.ID, filter domain.ListFilter) ([]domain.Invoice, error) {
	var items []domain.Invoice
	stmt := db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("seller_id = ?", sellerID)

	if name := strings.TrimSpace(filter.BuyerName); name != "" {
		stmt = stmt.Where("LOWER(buyer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}

	stmt = option.WithSortBy(option.SortBy{Column: "created_at", Desc: true}).Apply(stmt)
	stmt = option.WithLimit(filter.Limit).Apply(stmt)

	err := stmt.Find(&items).Error
	return items, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, sellerID, id snowflake.ID) (bool, error) {
	var deleted bool
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("seller_id = ? AND id = ?", sellerID, id).Delete(&domain.Invoice{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		return tx.Where("invoice_id = ?", id).Delete(&domain.InvoiceItem{}).Error
	})
	return deleted, err
}
