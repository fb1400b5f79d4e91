package server

import (
	"net/http"

	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/rs/cors"
)

// NewCORS lets the browser invoice form call the API from another origin.
func NewCORS(cfg config.Config) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", HeaderSeller, HeaderIdempotencyKey, "X-Request-Id", "X-Correlation-Id"},
		ExposedHeaders: []string{"X-Request-Id", "X-Correlation-Id"},
		MaxAge:         300,
	})

	return c.Handler
}
