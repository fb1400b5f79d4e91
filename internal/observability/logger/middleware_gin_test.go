package logger

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mslabba/gst-invoice-generator/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGinMiddlewareAssignsIDsAndLogs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	var seenRequestID, seenCorrelationID string
	r := gin.New()
	r.Use(GinMiddleware(MiddlewareConfig{
		ErrorClassifier: func(error) (string, string) { return "stock_error", "insufficient" },
	}))
	r.POST("/api/invoices", func(c *gin.Context) {
		seenRequestID = correlation.RequestIDFromContext(c.Request.Context())
		seenCorrelationID = correlation.ExtractCorrelationID(c.Request.Context())
		_ = c.Error(errors.New("short"))
		c.Status(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", nil)
	req.Header.Set("X-Correlation-Id", "corr-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, seenRequestID)
	assert.Equal(t, seenRequestID, w.Header().Get("X-Request-Id"))
	assert.Equal(t, "corr-1", seenCorrelationID)
	assert.Equal(t, "corr-1", w.Header().Get("X-Correlation-Id"))

	entries := logs.FilterMessage("http_request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/invoices", fields["route"])
	assert.Equal(t, "insufficient", fields["error_code"])
	assert.Equal(t, seenRequestID, fields["request_id"])
}

func TestAccessLevel(t *testing.T) {
	assert.Equal(t, zapcore.ErrorLevel, accessLevel("/api/invoices", 500, "internal_error"))
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/health", 200, ""))
	assert.Equal(t, zapcore.DebugLevel, accessLevel("/api/invoices/preview", 400, "validation_error"))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/api/invoices", 400, "validation_error"))
	assert.Equal(t, zapcore.WarnLevel, accessLevel("/api/invoices", 429, "rate_limited"))
	assert.Equal(t, zapcore.InfoLevel, accessLevel("/api/products", 200, ""))
}
