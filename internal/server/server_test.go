package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	buyerdomain "github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	buyerservice "github.com/mslabba/gst-invoice-generator/internal/buyer/service"
	"github.com/mslabba/gst-invoice-generator/internal/clock"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/calculator"
	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/observability"
	obsmetrics "github.com/mslabba/gst-invoice-generator/internal/observability/metrics"
	sellerdomain "github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	sellerservice "github.com/mslabba/gst-invoice-generator/internal/seller/service"
	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	stockrepository "github.com/mslabba/gst-invoice-generator/internal/stock/repository"
	stockservice "github.com/mslabba/gst-invoice-generator/internal/stock/service"
	"github.com/mslabba/gst-invoice-generator/pkg/db/dbtest"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeInvoiceService struct {
	generateErr error
	lastKey     string
}

func (f *fakeInvoiceService) Preview(ctx context.Context, input invoicedomain.Input) (*invoicedomain.ComputedInvoice, error) {
	computed := calculator.Compute(calculator.Context{
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)),
	}, input)
	return &computed, nil
}

func (f *fakeInvoiceService) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.GenerateResult, error) {
	f.lastKey = req.IdempotencyKey
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	computed, _ := f.Preview(ctx, req.Input)
	return &invoicedomain.GenerateResult{
		Invoice:  &invoicedomain.Invoice{ID: snowflake.ID(99), InvoiceNumber: computed.InvoiceNumber},
		Computed: *computed,
	}, nil
}

func (f *fakeInvoiceService) List(ctx context.Context, req invoicedomain.ListRequest) ([]invoicedomain.Summary, error) {
	return []invoicedomain.Summary{}, nil
}

func (f *fakeInvoiceService) Get(ctx context.Context, id string) (*invoicedomain.Invoice, error) {
	return nil, invoicedomain.ErrNotFound
}

func (f *fakeInvoiceService) Delete(ctx context.Context, id string) error {
	return invoicedomain.ErrInvalidID
}

type testServer struct {
	engine   *gin.Engine
	invoices *fakeInvoiceService
	sellerID string
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn := dbtest.New(t, &stockdomain.Product{}, &stockdomain.StockMovement{}, &buyerdomain.Buyer{}, &sellerdomain.Profile{})
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	holder := config.NewStaticInvoiceConfig(config.DefaultInvoiceConfig())
	stockRepo := stockrepository.Provide()

	inventory := stockservice.NewInventory(stockservice.InventoryParams{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: stockRepo, InvoiceConfig: holder,
	})
	stock := stockservice.New(stockservice.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: stockRepo, Inventory: inventory, InvoiceConfig: holder,
	})
	buyers := buyerservice.New(buyerservice.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: repository.ProvideStore[buyerdomain.Buyer](conn),
	})
	sellers := sellerservice.New(sellerservice.Params{
		DB: conn, Log: zap.NewNop(), GenID: node, Clock: fake, Repo: repository.ProvideStore[sellerdomain.Profile](conn), InvoiceConfig: holder,
	})

	httpMetrics, err := obsmetrics.NewHTTPMetricsWith(prometheus.NewRegistry())
	require.NoError(t, err)

	invoices := &fakeInvoiceService{}
	srv := NewServer(ServerParams{
		Gin:        NewEngine(observability.Config{Environment: "test"}, httpMetrics),
		Cfg:        config.Config{},
		Log:        zap.NewNop(),
		InvoiceSvc: invoices,
		StockSvc:   stock,
		BuyerSvc:   buyers,
		SellerSvc:  sellers,
	})

	return testServer{
		engine:   srv.Engine(),
		invoices: invoices,
		sellerID: node.Generate().String(),
	}
}

func (ts testServer) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderSeller, ts.sellerID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func invoiceBody() map[string]any {
	return map[string]any{
		"seller": map[string]any{"name": "Labba Stores"},
		"buyer":  map[string]any{"name": "Meera Traders"},
		"items": []map[string]any{
			{"description": "Chair", "quantity": 1, "unit_price": "100", "gst_rate_percent": 18},
		},
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSellerHeaderRequired(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodGet, "/api/products", nil, map[string]string{HeaderSeller: "abc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_seller", decodeError(t, w).Errors[0].Code)
}

func TestPreviewInvoiceReturnsDisplayBlock(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices/preview", invoiceBody(), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Invoice struct {
				TotalAmount string `json:"total_amount"`
			} `json:"invoice"`
			Display struct {
				Date        string        `json:"date"`
				TotalAmount displayAmount `json:"total_amount"`
				CGSTAmount  displayAmount `json:"cgst_amount"`
			} `json:"display"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "118", resp.Data.Invoice.TotalAmount)
	assert.Equal(t, "118.00", resp.Data.Display.TotalAmount.Value)
	assert.Equal(t, "₹118.00", resp.Data.Display.TotalAmount.Formatted)
	assert.Equal(t, "9.00", resp.Data.Display.CGSTAmount.Value)
	assert.Equal(t, "01/06/2024", resp.Data.Display.Date)
}

func TestGenerateInvoicePassesIdempotencyKey(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody(), map[string]string{HeaderIdempotencyKey: " form-1 "})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "form-1", ts.invoices.lastKey)

	var resp struct {
		Data struct {
			ID      string `json:"id"`
			Invoice struct {
				InvoiceNumber string `json:"invoice_number"`
			} `json:"invoice"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "99", resp.Data.ID)
	assert.NotEmpty(t, resp.Data.Invoice.InvoiceNumber)
}

func TestGenerateInvoiceErrorMapping(t *testing.T) {
	verrs := &invoicedomain.ValidationErrors{}
	verrs.Add("items[0].quantity", invoicedomain.ErrInvalidQuantity, "")

	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", verrs, http.StatusBadRequest, "validation_error"},
		{"stock", &stockdomain.StockError{
			Reason:    stockdomain.ReasonInsufficient,
			ProductID: "7",
			Required:  decimal.NewFromInt(6),
			Available: decimal.NewFromInt(5),
		}, http.StatusConflict, "stock_error"},
		{"duplicate", invoicedomain.ErrDuplicateInvoiceNumber, http.StatusConflict, "conflict"},
		{"in progress", invoicedomain.ErrGenerationInProgress, http.StatusConflict, "conflict"},
		{"rate limited", invoicedomain.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"wrapped infra", fmt.Errorf("lookup stock: %w", context.DeadlineExceeded), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.invoices.generateErr = tc.err

			w := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody(), nil)
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.typ, decodeError(t, w).Type)
		})
	}
}

func TestStockErrorPayload(t *testing.T) {
	ts := newTestServer(t)
	ts.invoices.generateErr = &stockdomain.StockError{
		Reason:      stockdomain.ReasonInsufficient,
		ProductID:   "7",
		Description: "Chair",
		Required:    decimal.NewFromInt(6),
		Available:   decimal.NewFromInt(5),
	}

	w := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody(), nil)
	payload := decodeError(t, w)
	require.NotNil(t, payload.Stock)
	assert.Equal(t, "insufficient", payload.Stock.Reason)
	assert.True(t, payload.Stock.Required.Equal(decimal.NewFromInt(6)))
	assert.True(t, payload.Stock.Available.Equal(decimal.NewFromInt(5)))
}

func TestValidationFieldList(t *testing.T) {
	ts := newTestServer(t)
	verrs := &invoicedomain.ValidationErrors{}
	verrs.Add("buyer.name", invoicedomain.ErrMissingBuyerName, "")
	verrs.Add("items", invoicedomain.ErrNoItems, "at least one line item is required")
	ts.invoices.generateErr = verrs

	w := ts.do(t, http.MethodPost, "/api/invoices", invoiceBody(), nil)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 2)
	assert.Equal(t, "buyer.name", payload.Errors[0].Field)
	assert.Equal(t, "missing_buyer_name", payload.Errors[0].Code)
	assert.Equal(t, "at least one line item is required", payload.Errors[1].Message)
}

func TestInvoiceNotFoundAndBadID(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/invoices/123", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/invoices/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductLifecycle(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/products", map[string]any{
		"name": "Steel Chair", "unit_price": "1250.50", "gst_rate_percent": 18, "stock": 12,
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data stockdomain.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "steel-chair", created.Data.Code)
	id := created.Data.ID

	w = ts.do(t, http.MethodPost, "/api/products/"+id+"/stock", map[string]any{"operation": "subtract", "quantity": 5}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/products/"+id+"/availability?quantity=8", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var availability struct {
		Data stockdomain.Availability `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &availability))
	assert.False(t, availability.Data.Available)
	assert.True(t, availability.Data.Stock.Equal(decimal.NewFromInt(7)))

	w = ts.do(t, http.MethodPost, "/api/products/"+id+"/stock", map[string]any{"operation": "subtract", "quantity": 50}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "stock_error", decodeError(t, w).Type)

	w = ts.do(t, http.MethodGet, "/api/products?stock=low", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var low struct {
		Data []stockdomain.Response `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &low))
	require.Len(t, low.Data, 1)

	w = ts.do(t, http.MethodGet, "/api/products?stock=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/products/"+id+"/availability?quantity=x", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/products/"+id, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = ts.do(t, http.MethodGet, "/api/products/"+id, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/products", map[string]any{"name": "", "unit_price": 1}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_name", decodeError(t, w).Errors[0].Code)
}

func TestBuyersEndpoint(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/buyers", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/buyers/gstin/32ABCDE1234F1Z5", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Type)
}

func TestProfileEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/profile", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodPut, "/api/profile", map[string]any{"name": " "}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	assert.Equal(t, "invalid_name", payload.Errors[0].Code)
	assert.Equal(t, "name", payload.Errors[0].Field)

	w = ts.do(t, http.MethodPut, "/api/profile", map[string]any{
		"name":    "Labba Stores",
		"address": "Kozhikode",
		"gstin":   "32aaaaa0000a1z5",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodGet, "/api/profile", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data sellerdomain.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Labba Stores", resp.Data.Name)
	assert.Equal(t, "32AAAAA0000A1Z5", resp.Data.GSTIN)
	assert.Equal(t, ts.sellerID, resp.Data.SellerID.String())

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	w = httptest.NewRecorder()
	ts.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIssuedInvoicesCannotBeEdited(t *testing.T) {
	ts := newTestServer(t)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		w := ts.do(t, method, "/api/invoices/123", invoiceBody(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "not_found", decodeError(t, w).Type, method)
	}
}
