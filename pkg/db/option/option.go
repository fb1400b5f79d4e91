package option

import (
	"strings"

	"gorm.io/gorm"
)

// QueryOption mutates a query before it runs.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type queryFunc func(db *gorm.DB) *gorm.DB

func (f queryFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// SortBy is a validated ORDER BY clause.
type SortBy struct {
	Column string
	Desc   bool
}

// WithQuerySortBy builds a SortBy from request parameters. Columns outside
// allowed fall back to created_at; any order other than "asc" sorts descending.
func WithQuerySortBy(sortBy, orderBy string, allowed map[string]bool) SortBy {
	column := strings.ToLower(strings.TrimSpace(sortBy))
	if !allowed[column] {
		column = "created_at"
	}
	return SortBy{
		Column: column,
		Desc:   !strings.EqualFold(strings.TrimSpace(orderBy), "asc"),
	}
}

func WithSortBy(s SortBy) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if s.Column == "" {
			return db
		}
		direction := "ASC"
		if s.Desc {
			direction = "DESC"
		}
		return db.Order(s.Column + " " + direction).Order("id " + direction)
	})
}

// WithLimit caps the result size. Non-positive values leave the query unbounded.
func WithLimit(limit int) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithWhere adds a raw condition, for matches a query struct cannot express
// such as comparing against a zero value.
func WithWhere(query string, args ...any) QueryOption {
	return queryFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(query, args...)
	})
}
