package repository

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/mslabba/gst-invoice-generator/pkg/db/dbtest"
	"github.com/mslabba/gst-invoice-generator/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type party struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	SellerID snowflake.ID `gorm:"not null"`
	Name     string       `gorm:"type:text;not null"`
	GSTIN    string       `gorm:"column:gstin;type:text"`
}

func TestStoreRoundTrip(t *testing.T) {
	conn := dbtest.New(t, &party{})
	store := ProvideStore[party](conn)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &party{ID: 1, SellerID: 10, Name: "Meera Traders", GSTIN: "32ABCDE1234F1Z5"}))
	require.NoError(t, store.Create(ctx, &party{ID: 2, SellerID: 10, Name: "Anand Stores"}))
	require.NoError(t, store.Create(ctx, &party{ID: 3, SellerID: 11, Name: "Other Seller"}))

	got, err := store.FindOne(ctx, &party{SellerID: 10, GSTIN: "32ABCDE1234F1Z5"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Meera Traders", got.Name)

	missing, err := store.FindOne(ctx, &party{SellerID: 11, GSTIN: "32ABCDE1234F1Z5"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := store.Find(ctx, &party{SellerID: 10},
		option.WithWhere("(gstin = '' OR gstin IS NULL)"),
		option.WithSortBy(option.SortBy{Column: "name"}),
	)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Anand Stores", list[0].Name)

	require.NoError(t, store.Update(ctx, 2, map[string]any{"name": "Anand Stores Pvt"}))
	got, err = store.FindOne(ctx, &party{ID: 2})
	require.NoError(t, err)
	assert.Equal(t, "Anand Stores Pvt", got.Name)

	assert.ErrorIs(t, store.Update(ctx, 99, map[string]any{"name": "x"}), ErrNoRowsUpdated)
}

func TestStoreWithTrxRollsBack(t *testing.T) {
	conn := dbtest.New(t, &party{})
	store := ProvideStore[party](conn)
	ctx := context.Background()

	err := conn.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, store.WithTrx(tx).Create(ctx, &party{ID: 7, SellerID: 1, Name: "Rolled Back"}))
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	got, err := store.FindOne(ctx, &party{ID: 7})
	require.NoError(t, err)
	assert.Nil(t, got)
}
