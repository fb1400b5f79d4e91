package reconciler

import (
	"context"
	"errors"
	"testing"

	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLookup struct {
	mock.Mock
}

func (m *mockLookup) Lookup(ctx context.Context, ids []string) (map[string]domain.ProductSnapshot, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ProductSnapshot), args.Error(1)
}

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func snapshot(id, stock string) domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: id, Name: id, Stock: dec(stock)}
}

func line(desc, productID, qty string) invoicedomain.LineItem {
	return invoicedomain.LineItem{Description: desc, ProductID: productID, Quantity: dec(qty), UnitPrice: dec("10")}
}

func TestReconcileInsufficientStock(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1"}).
		Return(map[string]domain.ProductSnapshot{"p1": snapshot("p1", "5")}, nil)

	plan, err := Reconcile(context.Background(), []invoicedomain.LineItem{line("Widget", "p1", "6")}, lookup)

	require.Error(t, err)
	assert.True(t, plan.Empty())
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "p1", stockErr.ProductID)
	assert.Equal(t, "Widget", stockErr.Description)
	assert.True(t, stockErr.Available.Equal(dec("5")))
	assert.True(t, stockErr.Required.Equal(dec("6")))
	assert.Equal(t, `insufficient stock for "Widget": available 5, required 6`, err.Error())
	lookup.AssertExpectations(t)
}

func TestReconcileBuildsPlanWithSnapshots(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1", "p2"}).
		Return(map[string]domain.ProductSnapshot{
			"p1": snapshot("p1", "10"),
			"p2": snapshot("p2", "3"),
		}, nil)

	items := []invoicedomain.LineItem{
		line("Widget", "p1", "4"),
		line("Consulting", "", "2"),
		line("Gadget", "p2", "3"),
	}
	plan, err := Reconcile(context.Background(), items, lookup)

	require.NoError(t, err)
	require.Len(t, plan.Decrements, 2)
	assert.Equal(t, "p1", plan.Decrements[0].ProductID)
	assert.True(t, plan.Decrements[0].CurrentStock.Equal(dec("10")))
	assert.True(t, plan.Decrements[0].QuantityToDeduct.Equal(dec("4")))
	assert.Equal(t, "p2", plan.Decrements[1].ProductID)
	assert.True(t, plan.Decrements[1].CurrentStock.Equal(dec("3")))
	assert.True(t, plan.Decrements[1].QuantityToDeduct.Equal(dec("3")))
}

func TestReconcileOneShortItemFailsEverything(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1", "p2"}).
		Return(map[string]domain.ProductSnapshot{
			"p1": snapshot("p1", "100"),
			"p2": snapshot("p2", "1"),
		}, nil)

	items := []invoicedomain.LineItem{line("Widget", "p1", "1"), line("Gadget", "p2", "2")}
	plan, err := Reconcile(context.Background(), items, lookup)

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, plan.Empty())

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "p2", stockErr.ProductID)
}

func TestReconcileSumsDemandAcrossLines(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1"}).
		Return(map[string]domain.ProductSnapshot{"p1": snapshot("p1", "5")}, nil)

	items := []invoicedomain.LineItem{line("Widget small", "p1", "3"), line("Widget again", "p1", "3")}
	_, err := Reconcile(context.Background(), items, lookup)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Widget small", stockErr.Description)
	assert.True(t, stockErr.Required.Equal(dec("6")))
	assert.True(t, stockErr.Available.Equal(dec("5")))
}

func TestReconcileExactStockIsEnough(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1"}).
		Return(map[string]domain.ProductSnapshot{"p1": snapshot("p1", "2.5")}, nil)

	items := []invoicedomain.LineItem{line("Rope (m)", "p1", "1.5"), line("Rope (m)", "p1", "1")}
	plan, err := Reconcile(context.Background(), items, lookup)

	require.NoError(t, err)
	require.Len(t, plan.Decrements, 2)
	assert.True(t, plan.Totals()["p1"].Equal(dec("2.5")))
	assert.Equal(t, []string{"p1"}, plan.ProductIDs())
}

func TestReconcileUnknownProduct(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"ghost"}).
		Return(map[string]domain.ProductSnapshot{}, nil)

	_, err := Reconcile(context.Background(), []invoicedomain.LineItem{line("Ghost", "ghost", "1")}, lookup)

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.NotErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestReconcileWithoutLinkedItemsSkipsLookup(t *testing.T) {
	lookup := new(mockLookup)

	plan, err := Reconcile(context.Background(), []invoicedomain.LineItem{line("Labour", "", "8")}, lookup)

	require.NoError(t, err)
	assert.True(t, plan.Empty())
	lookup.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestReconcileLookupFailure(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"p1"}).Return(nil, boom)

	_, err := Reconcile(context.Background(), []invoicedomain.LineItem{line("Widget", "p1", "1")}, lookup)

	assert.ErrorIs(t, err, boom)
	var stockErr *domain.StockError
	assert.False(t, errors.As(err, &stockErr))
}

func TestReconcileTreatsIDSpellingsAsOneProduct(t *testing.T) {
	lookup := new(mockLookup)
	lookup.On("Lookup", mock.Anything, []string{"123"}).
		Return(map[string]domain.ProductSnapshot{"123": snapshot("123", "5")}, nil)

	items := []invoicedomain.LineItem{
		line("Widget", "123", "2"),
		line("Widget (gift)", " 123", "2"),
		line("Widget (spare)", "0123", "1"),
	}
	plan, err := Reconcile(context.Background(), items, lookup)

	require.NoError(t, err)
	require.Len(t, plan.Decrements, 3)
	for _, d := range plan.Decrements {
		assert.Equal(t, "123", d.ProductID)
		assert.True(t, d.CurrentStock.Equal(dec("5")))
	}
	assert.Equal(t, []string{"123"}, plan.ProductIDs())
	assert.True(t, plan.Totals()["123"].Equal(dec("5")))

	items = append(items, line("Widget (extra)", "123 ", "1"))
	_, err = Reconcile(context.Background(), items, lookup)
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, domain.ReasonInsufficient, stockErr.Reason)
	assert.True(t, stockErr.Required.Equal(dec("6")))
}

func TestNormalizeProductID(t *testing.T) {
	assert.Equal(t, "123", domain.NormalizeProductID(" 123\t"))
	assert.Equal(t, "123", domain.NormalizeProductID("0123"))
	assert.Equal(t, "p1", domain.NormalizeProductID(" p1 "))
	assert.Equal(t, "", domain.NormalizeProductID("  "))
}
