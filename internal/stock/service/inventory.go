package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	"github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InventoryParams struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	InvoiceConfig *config.InvoiceConfigHolder
}

// Inventory reads and deducts stock for invoices. It implements
// domain.ProductLookup and domain.DecrementCommitter for the seller found
// in the request context.
type Inventory struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	config *config.InvoiceConfigHolder
}

func NewInventory(p InventoryParams) *Inventory {
	return &Inventory{
		db:     p.DB,
		log:    p.Log.Named("stock.inventory"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		config: p.InvoiceConfig,
	}
}

// Lookup reads fresh stock levels in one query. Every spelling of a known
// product ID gets its own entry; unknown or malformed IDs are left out.
func (i *Inventory) Lookup(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	return i.lookup(ctx, i.db, ids)
}

func (i *Inventory) lookup(ctx context.Context, db *gorm.DB, ids []string) (map[string]domain.ProductSnapshot, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	keys := make(map[snowflake.ID][]string, len(ids))
	parsed := make([]snowflake.ID, 0, len(ids))
	for _, raw := range ids {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id <= 0 {
			continue
		}
		if _, ok := keys[id]; !ok {
			parsed = append(parsed, id)
		}
		keys[id] = append(keys[id], raw)
	}

	out := make(map[string]domain.ProductSnapshot, len(parsed))
	if len(parsed) == 0 {
		return out, nil
	}

	products, err := i.repo.FindByIDs(ctx, db, sellerID, parsed)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		snap := p.Snapshot()
		for _, raw := range keys[p.ID] {
			out[raw] = snap
		}
	}
	return out, nil
}

// Commit applies plan in its own transaction.
func (i *Inventory) Commit(ctx context.Context, plan domain.DecrementPlan, ref domain.CommitRef) error {
	if plan.Empty() {
		return nil
	}
	return i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return i.Apply(ctx, tx, plan, ref)
	})
}

// Apply deducts plan inside the caller's transaction. Rows are locked
// first; a product whose stock no longer covers its total deduction (or,
// with rejectStaleStock, differs from the planned snapshot) fails the
// whole call with a conflict StockError so the caller rolls back.
func (i *Inventory) Apply(ctx context.Context, tx *gorm.DB, plan domain.DecrementPlan, ref domain.CommitRef) error {
	if plan.Empty() {
		return nil
	}
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidSeller
	}

	plan = plan.Normalized()
	productIDs := plan.ProductIDs()
	descriptions := make(map[string]string, len(productIDs))
	for _, d := range plan.Decrements {
		if _, ok := descriptions[d.ProductID]; !ok {
			descriptions[d.ProductID] = d.Description
		}
	}
	totals := plan.Totals()

	ids := make([]snowflake.ID, 0, len(productIDs))
	byKey := make(map[string]snowflake.ID, len(productIDs))
	for _, raw := range productIDs {
		id, err := snowflake.ParseString(strings.TrimSpace(raw))
		if err != nil || id == 0 {
			return &domain.StockError{
				Reason:      domain.ReasonNotFound,
				ProductID:   raw,
				Description: descriptions[raw],
				Required:    totals[raw],
			}
		}
		ids = append(ids, id)
		byKey[raw] = id
	}

	locked, err := i.repo.LockForUpdate(ctx, tx, sellerID, ids)
	if err != nil {
		return err
	}
	current := make(map[snowflake.ID]domain.Product, len(locked))
	for _, p := range locked {
		current[p.ID] = p
	}

	rejectStale := i.config.Get().RejectStaleStock
	batchID := ulid.Make().String()
	now := i.clock.Now().UTC()
	movements := make([]domain.StockMovement, 0, len(productIDs))

	for _, raw := range productIDs {
		id := byKey[raw]
		need := totals[raw]
		p, ok := current[id]
		if !ok {
			return &domain.StockError{
				Reason:      domain.ReasonNotFound,
				ProductID:   raw,
				Description: descriptions[raw],
				Required:    need,
			}
		}

		conflict := &domain.StockError{
			Reason:      domain.ReasonConflict,
			ProductID:   raw,
			Description: descriptions[raw],
			Required:    need,
			Available:   p.Stock,
		}
		if snap, ok := plan.Snapshot(raw); rejectStale && ok && !snap.Equal(p.Stock) {
			return conflict
		}
		updated, err := i.repo.DecrementIfAvailable(ctx, tx, sellerID, id, need, now)
		if err != nil {
			return err
		}
		if !updated {
			return conflict
		}

		movements = append(movements, domain.StockMovement{
			ID:        i.genID.Generate(),
			SellerID:  sellerID,
			ProductID: id,
			BatchID:   batchID,
			Reason:    ref.Reason,
			Reference: ref.Reference,
			OldStock:  p.Stock,
			NewStock:  p.Stock.Sub(need),
			Delta:     need.Neg(),
			CreatedAt: now,
		})
	}

	if err := i.repo.InsertMovements(ctx, tx, movements); err != nil {
		return err
	}

	i.log.Debug("stock plan applied",
		zap.String("seller_id", sellerID.String()),
		zap.String("batch_id", batchID),
		zap.String("reference", ref.Reference),
		zap.Int("products", len(movements)),
	)
	return nil
}
