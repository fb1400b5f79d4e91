package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/gst"
	"github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	"github.com/mslabba/gst-invoice-generator/pkg/db"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Repo          repository.Repository[domain.Profile]
	InvoiceConfig *config.InvoiceConfigHolder
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   repository.Repository[domain.Profile]
	config *config.InvoiceConfigHolder
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("seller.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		config: p.InvoiceConfig,
	}
}

func (s *Service) GetProfile(ctx context.Context) (*domain.Profile, error) {
	sellerID, ok := sellercontext.SellerIDFromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidSeller
	}

	profile, err := s.repo.FindOne(ctx, &domain.Profile{SellerID: sellerID})
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return profile, nil
}

// SaveProfile replaces every field, so a blank address or GSTIN clears the
// stored one. A malformed GSTIN is refused only under strict GSTIN checks,
// the same rule invoices follow.
func (s *Service) SaveProfile(ctx context.Context, req domain.SaveProfileRequest) (*domain.Profile, error) {
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
	if gstin != "" && s.config.Get().StrictGSTIN && gst.ValidateGSTIN(gstin) != nil {
		return nil, domain.ErrInvalidGSTIN
	}

	var saved *domain.Profile
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		profile, err := s.upsert(ctx, tx, sellerID, name, address, gstin)
		if err != nil {
			return err
		}
		saved = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("seller profile saved",
		zap.String("seller_id", sellerID.String()),
		zap.Bool("has_gstin", gstin != ""),
	)
	return saved, nil
}

func (s *Service) upsert(ctx context.Context, tx *gorm.DB, sellerID snowflake.ID, name, address, gstin string) (*domain.Profile, error) {
	repo := s.repo.WithTrx(tx)
	existing, err := repo.FindOne(ctx, &domain.Profile{SellerID: sellerID})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	if existing == nil {
		profile := &domain.Profile{
			ID:        s.genID.Generate(),
			SellerID:  sellerID,
			Name:      name,
			Address:   address,
			GSTIN:     gstin,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := tx.Transaction(func(sp *gorm.DB) error {
			return s.repo.WithTrx(sp).Create(ctx, profile)
		})
		if err == nil {
			return profile, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return nil, err
		}
		existing, err = repo.FindOne(ctx, &domain.Profile{SellerID: sellerID})
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, domain.ErrNotFound
		}
	}

	err = repo.Update(ctx, existing.ID, map[string]any{
		"name":       name,
		"address":    address,
		"gstin":      gstin,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	existing.Name = name
	existing.Address = address
	existing.GSTIN = gstin
	existing.UpdatedAt = now
	return existing, nil
}
