package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/gst"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	"github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/mslabba/gst-invoice-generator/pkg/db"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const defaultUnit = "pcs"

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	Inventory     *Inventory
	InvoiceConfig *config.InvoiceConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	genID     *snowflake.Node
	clock     clock.Clock
	inventory *Inventory
	config    *config.InvoiceConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("stock.service"),
		repo:      p.Repo,
		genID:     p.GenID,
		clock:     p.Clock,
		inventory: p.Inventory,
		config:    p.InvoiceConfig,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Response, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		code = slug.Make(name)
	}
	if code == "" {
		return nil, domain.ErrInvalidCode
	}

	if req.UnitPrice.IsNegative() {
		return nil, domain.ErrInvalidUnitPrice
	}
	if req.Stock.IsNegative() {
		return nil, domain.ErrInvalidStock
	}

	rate := gst.DefaultRatePercent
	if req.GSTRatePercent != nil {
		rate = *req.GSTRatePercent
	}
	if !gst.ValidRate(rate) {
		return nil, domain.ErrInvalidGSTRate
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = defaultUnit
	}

	now := s.clock.Now()
	p := &domain.Product{
		ID:             s.genID.Generate(),
		SellerID:       sellerID,
		Code:           code,
		Name:           name,
		Description:    trimmedPtr(req.Description),
		HSNCode:        strings.TrimSpace(req.HSNCode),
		Category:       strings.TrimSpace(req.Category),
		Unit:           unit,
		UnitPrice:      req.UnitPrice,
		GSTRatePercent: rate,
		Stock:          req.Stock,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if req.Metadata != nil {
		p.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Create(ctx, s.db, p); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateCode
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.String("seller_id", sellerID.String()),
		zap.String("product_id", p.ID.String()),
		zap.String("code", p.Code),
	)

	resp := s.toResponse(p)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Response, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	filter := domain.ListFilter{
		Name:     strings.TrimSpace(req.Name),
		Category: strings.TrimSpace(req.Category),
		SortBy:   strings.TrimSpace(req.SortBy),
		OrderBy:  strings.TrimSpace(req.OrderBy),
	}
	switch req.Stock {
	case domain.StockFilterAll:
	case domain.StockFilterLow:
		threshold := decimal.NewFromInt(s.config.Get().LowStockThreshold)
		filter.StockAtMost = &threshold
	case domain.StockFilterOutOfStock:
		zero := decimal.Zero
		filter.StockAtMost = &zero
	default:
		return nil, domain.ErrInvalidOperation
	}

	items, err := s.repo.List(ctx, s.db, sellerID, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]domain.Response, 0, len(items))
	for i := range items {
		resp = append(resp, s.toResponse(&items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Response, error) {
	item, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (*domain.Response, error) {
	item, err := s.find(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrInvalidName
		}
		item.Name = name
	}
	if req.Description != nil {
		item.Description = trimmedPtr(req.Description)
	}
	if req.HSNCode != nil {
		item.HSNCode = strings.TrimSpace(*req.HSNCode)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Unit != nil {
		if unit := strings.TrimSpace(*req.Unit); unit != "" {
			item.Unit = unit
		}
	}
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidUnitPrice
		}
		item.UnitPrice = *req.UnitPrice
	}
	if req.GSTRatePercent != nil {
		if !gst.ValidRate(*req.GSTRatePercent) {
			return nil, domain.ErrInvalidGSTRate
		}
		item.GSTRatePercent = *req.GSTRatePercent
	}
	if req.Metadata != nil {
		item.Metadata = datatypes.JSONMap(req.Metadata)
	}

	item.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, item); err != nil {
		return nil, err
	}

	resp := s.toResponse(item)
	return &resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return domain.ErrInvalidSeller
	}
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, sellerID, productID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock adjusts stock outside of invoicing. Adding a negative
// quantity clamps at zero; subtracting more than is on hand is refused.
func (s *Service) UpdateStock(ctx context.Context, req domain.UpdateStockRequest) (*domain.Response, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}
	productID, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}

	var out *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		locked, err := s.repo.LockForUpdate(ctx, tx, sellerID, []snowflake.ID{productID})
		if err != nil {
			return err
		}
		if len(locked) == 0 {
			return domain.ErrNotFound
		}
		p := locked[0]

		next, err := nextStock(p.Stock, req.Operation, req.Quantity)
		if err != nil {
			return err
		}
		now := s.clock.Now().UTC()
		if err := s.repo.SetStock(ctx, tx, sellerID, productID, next, now); err != nil {
			return err
		}

		if err := s.repo.InsertMovements(ctx, tx, []domain.StockMovement{{
			ID:        s.genID.Generate(),
			SellerID:  sellerID,
			ProductID: productID,
			BatchID:   ulid.Make().String(),
			Reason:    domain.MovementAdjustment,
			Reference: string(req.Operation),
			OldStock:  p.Stock,
			NewStock:  next,
			Delta:     next.Sub(p.Stock),
			CreatedAt: now,
		}}); err != nil {
			return err
		}

		p.Stock = next
		p.UpdatedAt = now
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(out)
	return &resp, nil
}

func nextStock(current decimal.Decimal, op domain.StockOperation, qty decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case domain.StockSet:
		if qty.IsNegative() {
			return decimal.Zero, domain.ErrInvalidQuantity
		}
		return qty, nil
	case domain.StockAdd:
		next := current.Add(qty)
		if next.IsNegative() {
			return decimal.Zero, nil
		}
		return next, nil
	case domain.StockSubtract:
		if qty.IsNegative() {
			return decimal.Zero, domain.ErrInvalidQuantity
		}
		if current.LessThan(qty) {
			return decimal.Zero, &domain.StockError{
				Reason:    domain.ReasonInsufficient,
				Required:  qty,
				Available: current,
			}
		}
		return current.Sub(qty), nil
	default:
		return decimal.Zero, domain.ErrInvalidOperation
	}
}

// CheckAvailability answers whether quantity could be invoiced right now.
func (s *Service) CheckAvailability(ctx context.Context, id string, quantity decimal.Decimal) (*domain.Availability, error) {
	if !quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	snapshots, err := s.inventory.Lookup(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	snap, ok := snapshots[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &domain.Availability{
		ProductID: snap.ID,
		Available: snap.Stock.GreaterThanOrEqual(quantity),
		Stock:     snap.Stock,
		Requested: quantity,
	}, nil
}

func (s *Service) Movements(ctx context.Context, id string) ([]domain.StockMovement, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMovements(ctx, s.db, sellerID, productID)
}

func (s *Service) find(ctx context.Context, id string) (*domain.Product, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.FindByID(ctx, s.db, sellerID, productID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return item, nil
}

func (s *Service) toResponse(p *domain.Product) domain.Response {
	threshold := decimal.NewFromInt(s.config.Get().LowStockThreshold)
	resp := domain.Response{
		ID:             p.ID.String(),
		SellerID:       p.SellerID.String(),
		Code:           p.Code,
		Name:           p.Name,
		Description:    p.Description,
		HSNCode:        p.HSNCode,
		Category:       p.Category,
		Unit:           p.Unit,
		UnitPrice:      p.UnitPrice,
		GSTRatePercent: p.GSTRatePercent,
		Stock:          p.Stock,
		LowStock:       p.Stock.LessThanOrEqual(threshold),
		OutOfStock:     !p.Stock.IsPositive(),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}

	if len(p.Metadata) > 0 {
		resp.Metadata = map[string]any(p.Metadata)
	}

	return resp
}

func parseID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
