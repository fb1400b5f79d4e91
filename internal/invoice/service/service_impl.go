package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	buyerdomain "github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/calculator"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/validation"
	"github.com/mslabba/gst-invoice-generator/internal/observability/metrics"
	"github.com/mslabba/gst-invoice-generator/internal/observability/tracing"
	"github.com/mslabba/gst-invoice-generator/internal/ratelimit"
	sellerdomain "github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/mslabba/gst-invoice-generator/internal/stock/reconciler"
	"github.com/mslabba/gst-invoice-generator/internal/timeutil"
	"github.com/mslabba/gst-invoice-generator/pkg/db"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Inventory is the part of the stock service an invoice needs: a fresh
// read for reconciliation and a transactional deduction.
type Inventory interface {
	stockdomain.ProductLookup
	Apply(ctx context.Context, tx *gorm.DB, plan stockdomain.DecrementPlan, ref stockdomain.CommitRef) error
}

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          domain.Repository
	Inventory     Inventory
	Buyers        buyerdomain.Service
	Sellers       sellerdomain.Service `optional:"true"`
	InvoiceConfig *config.InvoiceConfigHolder
	Metrics       *metrics.Metrics           `optional:"true"`
	Guard         *ratelimit.GenerationGuard `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	inventory Inventory
	buyers    buyerdomain.Service
	sellers   sellerdomain.Service
	config    *config.InvoiceConfigHolder
	metrics   *metrics.Metrics
	guard     *ratelimit.GenerationGuard
	tracer    trace.Tracer
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("invoice.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		inventory: p.Inventory,
		buyers:    p.Buyers,
		sellers:   p.Sellers,
		config:    p.InvoiceConfig,
		metrics:   p.Metrics,
		guard:     p.Guard,
		tracer:    otel.Tracer("gstinvoice/invoice"),
	}
}

func (s *Service) Preview(ctx context.Context, input domain.Input) (*domain.ComputedInvoice, error) {
	input, err := s.withSellerProfile(ctx, input)
	if err != nil {
		return nil, err
	}

	cfg := s.config.Get()
	if err := s.validate(ctx, input, cfg, "preview"); err != nil {
		return nil, err
	}
	computed := calculator.Compute(s.calculatorContext(cfg), input)
	return &computed, nil
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	ctx, span := s.tracer.Start(ctx, "invoice.generate")
	defer span.End()

	input, err := s.withSellerProfile(ctx, req.Input)
	if err != nil {
		return nil, err
	}

	cfg := s.config.Get()
	if err := s.validate(ctx, input, cfg, "generate"); err != nil {
		return nil, err
	}

	if res, err := s.guard.Allow(ctx, sellerID.String()); err != nil {
		s.log.Warn("rate limiter unavailable", zap.Error(err))
	} else if !res.Allowed {
		s.metrics.RecordRateLimitDenied(ctx, "generate", "bucket")
		return nil, domain.ErrRateLimited
	}

	release, err := s.guard.Acquire(ctx, sellerID.String(), req.IdempotencyKey)
	if err != nil {
		if errors.Is(err, ratelimit.ErrLocked) {
			s.metrics.RecordRateLimitDenied(ctx, "generate", "locked")
			return nil, domain.ErrGenerationInProgress
		}
		s.log.Warn("generation lock unavailable", zap.Error(err))
	}
	defer release()

	computed := calculator.Compute(s.calculatorContext(cfg), input)
	span.SetAttributes(
		attribute.String("invoice.number_source", string(computed.InvoiceNumberSource)),
		attribute.Int("invoice.items", len(computed.Items)),
	)

	plan, err := s.reconcile(ctx, input)
	if err != nil {
		s.recordStockError(ctx, err)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "reconcile failed")
		return nil, err
	}

	invoice, items := s.buildInvoice(sellerID, computed)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		commitCtx, commitSpan := s.tracer.Start(ctx, "invoice.commit")
		defer commitSpan.End()

		if err := s.inventory.Apply(commitCtx, tx, plan, stockdomain.CommitRef{
			Reason:    stockdomain.MovementInvoice,
			Reference: invoice.InvoiceNumber,
		}); err != nil {
			return err
		}

		buyer, err := s.buyers.SaveWithin(commitCtx, tx, buyerdomain.SaveRequest{
			Name:    computed.Buyer.Name,
			Address: computed.Buyer.Address,
			GSTIN:   computed.Buyer.TaxID,
		})
		if err != nil {
			return err
		}
		invoice.BuyerID = &buyer.ID

		if err := s.repo.Insert(commitCtx, tx, invoice, items); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return domain.ErrDuplicateInvoiceNumber
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.recordStockError(ctx, err)
		span.RecordError(tracing.SafeError(err))
		span.SetStatus(codes.Error, "commit failed")
		return nil, err
	}

	invoice.Items = items
	s.metrics.RecordInvoiceGenerated(ctx, string(computed.InvoiceNumberSource))
	s.log.Info("invoice generated",
		zap.String("seller_id", sellerID.String()),
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.Int("stock_decrements", len(plan.Decrements)),
	)

	return &domain.GenerateResult{
		Invoice:  invoice,
		Computed: computed,
		Plan:     plan,
	}, nil
}

// withSellerProfile fills blank seller fields from the seller's saved
// profile. Fields the request sets always win.
func (s *Service) withSellerProfile(ctx context.Context, input domain.Input) (domain.Input, error) {
	if s.sellers == nil {
		return input, nil
	}
	if _, ok := sellercontext.SellerIDFromContext(ctx); !ok {
		return input, nil
	}
	seller := input.Seller
	if !blank(seller.Name) && !blank(seller.Address) && !blank(seller.TaxID) {
		return input, nil
	}

	profile, err := s.sellers.GetProfile(ctx)
	if errors.Is(err, sellerdomain.ErrNotFound) {
		return input, nil
	}
	if err != nil {
		return input, err
	}

	if blank(seller.Name) {
		seller.Name = profile.Name
	}
	if blank(seller.Address) {
		seller.Address = profile.Address
	}
	if blank(seller.TaxID) {
		seller.TaxID = profile.GSTIN
	}
	input.Seller = seller
	return input, nil
}

func blank(v string) bool { return strings.TrimSpace(v) == "" }

func (s *Service) reconcile(ctx context.Context, input domain.Input) (stockdomain.DecrementPlan, error) {
	ctx, span := s.tracer.Start(ctx, "invoice.reconcile")
	defer span.End()

	plan, err := reconciler.Reconcile(ctx, input.Items, s.inventory)
	span.SetAttributes(attribute.Int("stock.decrements", len(plan.Decrements)))
	return plan, err
}

func (s *Service) validate(ctx context.Context, input domain.Input, cfg config.InvoiceConfig, endpoint string) error {
	err := validation.Validate(input, validation.Options{
		StrictGSTIN:       cfg.StrictGSTIN,
		StandardSlabsOnly: cfg.StandardSlabsOnly,
	})
	if err != nil {
		s.metrics.RecordValidationFailure(ctx, endpoint)
	}
	return err
}

func (s *Service) recordStockError(ctx context.Context, err error) {
	var stockErr *stockdomain.StockError
	if errors.As(err, &stockErr) {
		s.metrics.RecordStockRejection(ctx, string(stockErr.Reason))
		s.log.Info("invoice rejected by stock check",
			zap.String("reason", string(stockErr.Reason)),
			zap.String("product_id", stockErr.ProductID),
			zap.String("required", stockErr.Required.String()),
			zap.String("available", stockErr.Available.String()),
		)
	}
}

func (s *Service) calculatorContext(cfg config.InvoiceConfig) calculator.Context {
	return calculator.Context{
		Clock:          s.clock,
		Location:       timeutil.LoadLocation(cfg.Timezone),
		NumberTemplate: cfg.NumberTemplate,
	}
}

func (s *Service) buildInvoice(sellerID snowflake.ID, computed domain.ComputedInvoice) (*domain.Invoice, []domain.InvoiceItem) {
	now := s.clock.Now().UTC()
	invoice := &domain.Invoice{
		ID:             s.genID.Generate(),
		SellerID:       sellerID,
		InvoiceNumber:  computed.InvoiceNumber,
		InvoiceDate:    computed.Date,
		SellerName:     strings.TrimSpace(computed.Seller.Name),
		SellerAddress:  strings.TrimSpace(computed.Seller.Address),
		SellerTaxID:    strings.TrimSpace(computed.Seller.TaxID),
		BuyerName:      strings.TrimSpace(computed.Buyer.Name),
		BuyerAddress:   strings.TrimSpace(computed.Buyer.Address),
		BuyerTaxID:     strings.TrimSpace(computed.Buyer.TaxID),
		Subtotal:       computed.Subtotal,
		CGSTAmount:     computed.CGSTAmount,
		SGSTAmount:     computed.SGSTAmount,
		TotalGSTAmount: computed.TotalGSTAmount,
		TotalAmount:    computed.TotalAmount,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]domain.InvoiceItem, 0, len(computed.Items))
	for i, line := range computed.Items {
		items = append(items, domain.InvoiceItem{
			ID:             s.genID.Generate(),
			InvoiceID:      invoice.ID,
			Position:       i + 1,
			Description:    line.Description,
			HSNCode:        line.HSNCode,
			ProductID:      line.ProductID,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			GSTRatePercent: line.GSTRatePercent,
			LineSubtotal:   line.LineSubtotal,
			LineGSTAmount:  line.LineGSTAmount,
			CGSTAmount:     line.CGSTAmount,
			SGSTAmount:     line.SGSTAmount,
			LineTotal:      line.LineTotal,
		})
	}
	return invoice, items
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Summary, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	items, err := s.repo.List(ctx, s.db, sellerID, domain.ListFilter{
		BuyerName: strings.TrimSpace(req.BuyerName),
		Limit:     req.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Summary, 0, len(items))
	for _, inv := range items {
		out = append(out, domain.Summary{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   inv.InvoiceDate,
			BuyerName:     inv.BuyerName,
			TotalAmount:   inv.TotalAmount,
			CreatedAt:     inv.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	sellerID, invoiceID, err := scope(ctx, id)
	if err != nil {
		return nil, err
	}

	inv, err := s.repo.FindByID(ctx, s.db, sellerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// Delete removes the invoice record only. Stock already deducted for it
// stays deducted; corrections go through a stock adjustment.
func (s *Service) Delete(ctx context.Context, id string) error {
	sellerID, invoiceID, err := scope(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, s.db, sellerID, invoiceID)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.log.Info("invoice deleted",
		zap.String("seller_id", sellerID.String()),
		zap.String("invoice_id", invoiceID.String()),
	)
	return nil
}

func scope(ctx context.Context, id string) (snowflake.ID, snowflake.ID, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return 0, 0, domain.ErrInvalidSeller
	}
	invoiceID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || invoiceID == 0 {
		return 0, 0, domain.ErrInvalidID
	}
	return sellerID, invoiceID, nil
}
