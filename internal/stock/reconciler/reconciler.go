// Package reconciler checks inventory-linked invoice lines against current
// stock and plans the deductions. It never writes.
package reconciler

import (
	"context"
	"fmt"

	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/shopspring/decimal"
)

// Reconcile reads stock for every linked line with one lookup and returns a
// plan only when all of them can be fulfilled. Lines without a product are
// ignored. Product references are normalized first, so demand for a product
// listed on several lines (under any spelling of its ID) is summed before it
// is compared with stock. The plan carries normalized IDs.
//
// The first line (in input order) whose product cannot cover the demand
// fails the whole call with a *domain.StockError. Lookup failures are
// returned wrapped and are not StockErrors.
func Reconcile(ctx context.Context, items []invoicedomain.LineItem, lookup domain.ProductLookup) (domain.DecrementPlan, error) {
	ids := linkedProductIDs(items)
	if len(ids) == 0 {
		return domain.DecrementPlan{}, nil
	}

	snapshots, err := lookup.Lookup(ctx, ids)
	if err != nil {
		return domain.DecrementPlan{}, fmt.Errorf("lookup stock: %w", err)
	}

	demand := make(map[string]decimal.Decimal, len(ids))
	for _, item := range items {
		if !item.InventoryLinked() {
			continue
		}
		key := domain.NormalizeProductID(item.ProductID)
		demand[key] = demand[key].Add(item.Quantity)
	}

	for _, item := range items {
		if !item.InventoryLinked() {
			continue
		}
		key := domain.NormalizeProductID(item.ProductID)
		snap, ok := snapshots[key]
		if !ok {
			return domain.DecrementPlan{}, &domain.StockError{
				Reason:      domain.ReasonNotFound,
				ProductID:   key,
				Description: item.Description,
				Required:    demand[key],
				Available:   decimal.Zero,
			}
		}
		if snap.Stock.LessThan(demand[key]) {
			return domain.DecrementPlan{}, &domain.StockError{
				Reason:      domain.ReasonInsufficient,
				ProductID:   key,
				Description: item.Description,
				Required:    demand[key],
				Available:   snap.Stock,
			}
		}
	}

	plan := domain.DecrementPlan{Decrements: make([]domain.StockDecrement, 0, len(items))}
	for _, item := range items {
		if !item.InventoryLinked() {
			continue
		}
		key := domain.NormalizeProductID(item.ProductID)
		plan.Decrements = append(plan.Decrements, domain.StockDecrement{
			ProductID:        key,
			Description:      item.Description,
			CurrentStock:     snapshots[key].Stock,
			QuantityToDeduct: item.Quantity,
		})
	}
	return plan, nil
}

func linkedProductIDs(items []invoicedomain.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if !item.InventoryLinked() {
			continue
		}
		key := domain.NormalizeProductID(item.ProductID)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ids = append(ids, key)
	}
	return ids
}
