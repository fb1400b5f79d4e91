package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	"github.com/mslabba/gst-invoice-generator/internal/sellercontext"
	"github.com/mslabba/gst-invoice-generator/pkg/db/dbtest"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	svc   domain.Service
	clock *clock.FakeClock
	node  *snowflake.Node
	ctx   context.Context
}

func newFixture(t *testing.T, cfg config.InvoiceConfig) fixture {
	t.Helper()

	conn := dbtest.New(t, &domain.Profile{})
	node, err := snowflake.NewNode(5)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:            conn,
		Log:           zap.NewNop(),
		GenID:         node,
		Clock:         fake,
		Repo:          repository.ProvideStore[domain.Profile](conn),
		InvoiceConfig: config.NewStaticInvoiceConfig(cfg),
	})
	return fixture{
		svc:   svc,
		clock: fake,
		node:  node,
		ctx:   sellercontext.WithSellerID(context.Background(), node.Generate()),
	}
}

func TestGetProfileBeforeSave(t *testing.T) {
	f := newFixture(t, config.DefaultInvoiceConfig())

	_, err := f.svc.GetProfile(f.ctx)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveProfileCreatesThenReplaces(t *testing.T) {
	f := newFixture(t, config.DefaultInvoiceConfig())

	first, err := f.svc.SaveProfile(f.ctx, domain.SaveProfileRequest{
		Name:    "  Labba Stores ",
		Address: "Kozhikode",
		GSTIN:   "32aaaaa0000a1z5",
	})
	require.NoError(t, err)
	assert.Equal(t, "Labba Stores", first.Name)
	assert.Equal(t, "32AAAAA0000A1Z5", first.GSTIN)

	f.clock.Advance(time.Hour)
	second, err := f.svc.SaveProfile(f.ctx, domain.SaveProfileRequest{Name: "Labba Stores LLP", Address: "Calicut"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.GSTIN)

	got, err := f.svc.GetProfile(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, "Labba Stores LLP", got.Name)
	assert.Equal(t, "Calicut", got.Address)
	assert.Empty(t, got.GSTIN)
	assert.True(t, got.UpdatedAt.Equal(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)))
}

func TestProfilesAreScopedBySeller(t *testing.T) {
	f := newFixture(t, config.DefaultInvoiceConfig())

	_, err := f.svc.SaveProfile(f.ctx, domain.SaveProfileRequest{Name: "Labba Stores"})
	require.NoError(t, err)

	other := sellercontext.WithSellerID(context.Background(), f.node.Generate())
	_, err = f.svc.GetProfile(other)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.GetProfile(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidSeller)
	_, err = f.svc.SaveProfile(context.Background(), domain.SaveProfileRequest{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidSeller)
}

func TestSaveProfileValidation(t *testing.T) {
	f := newFixture(t, config.DefaultInvoiceConfig())

	_, err := f.svc.SaveProfile(f.ctx, domain.SaveProfileRequest{Name: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	saved, err := f.svc.SaveProfile(f.ctx, domain.SaveProfileRequest{Name: "Labba Stores", GSTIN: "not-a-gstin"})
	require.NoError(t, err)
	assert.Equal(t, "NOT-A-GSTIN", saved.GSTIN)

	cfg := config.DefaultInvoiceConfig()
	cfg.StrictGSTIN = true
	strict := newFixture(t, cfg)
	_, err = strict.svc.SaveProfile(strict.ctx, domain.SaveProfileRequest{Name: "Labba Stores", GSTIN: "not-a-gstin"})
	assert.ErrorIs(t, err, domain.ErrInvalidGSTIN)
}
