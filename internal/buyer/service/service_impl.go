package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/gst"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	"github.com/mslabba/gst-invoice-generator/pkg/db"
	"github.com/mslabba/gst-invoice-generator/pkg/db/option"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  repository.Repository[domain.Buyer]
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  repository.Repository[domain.Buyer]
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("buyer.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Buyer, error) {
	var saved *domain.Buyer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		buyer, err := s.SaveWithin(ctx, tx, req)
		if err != nil {
			return err
		}
		saved = buyer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *Service) SaveWithin(ctx context.Context, tx *gorm.DB, req domain.SaveRequest) (*domain.Buyer, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrInvalidName
	}
	address := strings.TrimSpace(req.Address)
	gstin := gst.NormalizeGSTIN(req.GSTIN)

	repo := s.repo.WithTrx(tx)
	existing, err := s.find(ctx, repo, sellerID, name, gstin)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if existing == nil {
		buyer := &domain.Buyer{
			ID:        s.genID.Generate(),
			SellerID:  sellerID,
			Name:      name,
			Address:   address,
			GSTIN:     gstin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		// The savepoint keeps the caller's transaction usable when a
		// concurrent save wins the GSTIN.
		err := tx.Transaction(func(sp *gorm.DB) error {
			return s.repo.WithTrx(sp).Create(ctx, buyer)
		})
		if err == nil {
			return buyer, nil
		}
		if gstin == "" || !db.IsDuplicateKeyErr(err) {
			return nil, err
		}

		s.log.Debug("buyer created concurrently, updating instead",
			zap.String("seller_id", sellerID.String()),
			zap.String("gstin", gstin),
		)
		existing, err = s.find(ctx, repo, sellerID, name, gstin)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrNotFound
		}
	}

	updates := map[string]any{"name": name, "updated_at": now}
	if address != "" {
		updates["address"] = address
	}
	if err := repo.Update(ctx, existing.ID, updates); err != nil {
		return nil, err
	}
	existing.Name = name
	if address != "" {
		existing.Address = address
	}
	existing.UpdatedAt = now
	return existing, nil
}

// find matches by GSTIN when there is one, otherwise by name among buyers
// without a GSTIN.
func (s *Service) find(ctx context.Context, repo repository.Repository[domain.Buyer], sellerID snowflake.ID, name, gstin string) (*domain.Buyer, error) {
	if gstin != "" {
		return repo.FindOne(ctx, &domain.Buyer{SellerID: sellerID, GSTIN: gstin})
	}
	return repo.FindOne(ctx,
		&domain.Buyer{SellerID: sellerID, Name: name},
		option.WithWhere("(gstin = '' OR gstin IS NULL)"),
	)
}

func (s *Service) List(ctx context.Context) ([]domain.Buyer, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	items, err := s.repo.Find(ctx, &domain.Buyer{SellerID: sellerID},
		option.WithSortBy(option.SortBy{Column: "name"}),
	)
	if err != nil {
		return nil, err
	}

	buyers := make([]domain.Buyer, 0, len(items))
	for _, item := range items {
		buyers = append(buyers, *item)
	}
	return buyers, nil
}

func (s *Service) GetByGSTIN(ctx context.Context, gstin string) (*domain.Buyer, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}
	gstin = gst.NormalizeGSTIN(gstin)
	if gstin == "" {
		return nil, domain.ErrNotFound
	}

	buyer, err := s.repo.FindOne(ctx, &domain.Buyer{SellerID: sellerID, GSTIN: gstin})
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, domain.ErrNotFound
	}
	return buyer, nil
}

