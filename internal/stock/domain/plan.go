package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientStock = errors.New("insufficient_stock")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrStockConflict     = errors.New("stock_conflict")
)

// ProductSnapshot is the stock state of one product at lookup time.
type ProductSnapshot struct {
	ID             string
	Name           string
	Stock          decimal.Decimal
	UnitPrice      decimal.Decimal
	GSTRatePercent decimal.Decimal
	HSNCode        string
	Unit           string
}

// NormalizeProductID returns the canonical spelling of a product reference
// so that "123", " 123" and "0123" name the same product. References that
// are not snowflake IDs are only trimmed.
func NormalizeProductID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	id, err := snowflake.ParseString(trimmed)
	if err != nil || id <= 0 {
		return trimmed
	}
	return id.String()
}

// ProductLookup reads current stock for a set of product IDs in one round
// trip. The result is keyed by the IDs as given; IDs missing from it do not
// exist.
type ProductLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]ProductSnapshot, error)
}

// StockDecrement is one planned deduction. CurrentStock is the level seen
// during reconciliation, not a live value.
type StockDecrement struct {
	ProductID        string          `json:"product_id"`
	Description      string          `json:"description"`
	CurrentStock     decimal.Decimal `json:"current_stock"`
	QuantityToDeduct decimal.Decimal `json:"quantity_to_deduct"`
}

// DecrementPlan lists the deductions for one invoice, one per
// inventory-linked line item, in line order.
type DecrementPlan struct {
	Decrements []StockDecrement `json:"decrements"`
}

func (p DecrementPlan) Empty() bool {
	return len(p.Decrements) == 0
}

// Normalized returns a copy of the plan with every product ID in canonical
// form, so plans built by hand group the same way reconciled ones do.
func (p DecrementPlan) Normalized() DecrementPlan {
	out := DecrementPlan{Decrements: make([]StockDecrement, len(p.Decrements))}
	for i, d := range p.Decrements {
		d.ProductID = NormalizeProductID(d.ProductID)
		out.Decrements[i] = d
	}
	return out
}

// Totals sums the deductions per product.
func (p DecrementPlan) Totals() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.Decrements))
	for _, d := range p.Decrements {
		out[d.ProductID] = out[d.ProductID].Add(d.QuantityToDeduct)
	}
	return out
}

// ProductIDs returns each product once, in first-seen order.
func (p DecrementPlan) ProductIDs() []string {
	seen := make(map[string]struct{}, len(p.Decrements))
	out := make([]string, 0, len(p.Decrements))
	for _, d := range p.Decrements {
		if _, ok := seen[d.ProductID]; ok {
			continue
		}
		seen[d.ProductID] = struct{}{}
		out = append(out, d.ProductID)
	}
	return out
}

// Snapshot returns the stock level the plan was built against.
func (p DecrementPlan) Snapshot(productID string) (decimal.Decimal, bool) {
	for _, d := range p.Decrements {
		if d.ProductID == productID {
			return d.CurrentStock, true
		}
	}
	return decimal.Zero, false
}

type StockErrorReason string

const (
	ReasonInsufficient StockErrorReason = "insufficient"
	ReasonNotFound     StockErrorReason = "not_found"
	ReasonConflict     StockErrorReason = "conflict"
)

// StockError rejects a whole reconciliation or commit because of one item.
type StockError struct {
	Reason      StockErrorReason
	ProductID   string
	Description string
	Required    decimal.Decimal
	Available   decimal.Decimal
}

func (e *StockError) Error() string {
	switch e.Reason {
	case ReasonNotFound:
		return fmt.Sprintf("product %s for %q not found", e.ProductID, e.Description)
	case ReasonConflict:
		return fmt.Sprintf("stock for %q changed during commit: available %s, required %s",
			e.Description, e.Available.String(), e.Required.String())
	default:
		return fmt.Sprintf("insufficient stock for %q: available %s, required %s",
			e.Description, e.Available.String(), e.Required.String())
	}
}

func (e *StockError) Unwrap() error {
	switch e.Reason {
	case ReasonNotFound:
		return ErrProductNotFound
	case ReasonConflict:
		return ErrStockConflict
	default:
		return ErrInsufficientStock
	}
}

// CommitRef describes why a plan is being applied.
type CommitRef struct {
	Reason    MovementReason
	Reference string
}

// DecrementCommitter applies a plan atomically: every decrement lands or
// none does.
type DecrementCommitter interface {
	Commit(ctx context.Context, plan DecrementPlan, ref CommitRef) error
}
