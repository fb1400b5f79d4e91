package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/pkg/db/option"
	"gorm.io/gorm"
)

// ErrNoRowsUpdated reports an Update whose id matched nothing.
var ErrNoRowsUpdated = errors.New("no_rows_updated")

// Repository is a thin gorm store for one snowflake-keyed model. Query
// structs match on their non-zero fields.
type Repository[T any] interface {
	// WithTrx returns a store bound to tx.
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	// FindOne returns nil, nil when nothing matches.
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	// Update writes columns on the row with id.
	Update(ctx context.Context, id snowflake.ID, columns map[string]any) error
}
