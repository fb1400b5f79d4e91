package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mslabba/gst-invoice-generator/internal/buyer"
	buyerdomain "github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	"github.com/mslabba/gst-invoice-generator/internal/config"
	"github.com/mslabba/gst-invoice-generator/internal/invoice"
	invoicedomain "github.com/mslabba/gst-invoice-generator/internal/invoice/domain"
	"github.com/mslabba/gst-invoice-generator/internal/observability"
	obsmiddleware "github.com/mslabba/gst-invoice-generator/internal/observability/logger"
	obsmetrics "github.com/mslabba/gst-invoice-generator/internal/observability/metrics"
	obstracing "github.com/mslabba/gst-invoice-generator/internal/observability/tracing"
	"github.com/mslabba/gst-invoice-generator/internal/ratelimit"
	"github.com/mslabba/gst-invoice-generator/internal/seller"
	sellerdomain "github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	"github.com/mslabba/gst-invoice-generator/internal/stock"
	stockdomain "github.com/mslabba/gst-invoice-generator/internal/stock/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	buyer.Module,
	seller.Module,
	stock.Module,
	invoice.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(nil))
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.DevEnvironment() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewCORS(cfg)(s.Engine()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	invoiceSvc invoicedomain.Service
	stockSvc   stockdomain.Service
	buyerSvc   buyerdomain.Service
	sellerSvc  sellerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	InvoiceSvc invoicedomain.Service
	StockSvc   stockdomain.Service
	BuyerSvc   buyerdomain.Service
	SellerSvc  sellerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		invoiceSvc: p.InvoiceSvc,
		stockSvc:   p.StockSvc,
		buyerSvc:   p.BuyerSvc,
		sellerSvc:  p.SellerSvc,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", SellerRequired())

	// -------- Invoices --------
	api.POST("/invoices/preview", s.PreviewInvoice)
	api.POST("/invoices", s.GenerateInvoice)
	api.GET("/invoices", s.ListInvoices)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.DELETE("/invoices/:id", s.DeleteInvoice)

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.POST("/products", s.CreateProduct)
	api.GET("/products/:id", s.GetProductByID)
	api.PATCH("/products/:id", s.UpdateProduct)
	api.DELETE("/products/:id", s.DeleteProduct)
	api.POST("/products/:id/stock", s.UpdateProductStock)
	api.GET("/products/:id/availability", s.CheckProductAvailability)
	api.GET("/products/:id/movements", s.ListProductMovements)

	// -------- Buyers --------
	api.GET("/buyers", s.ListBuyers)
	api.GET("/buyers/gstin/:gstin", s.GetBuyerByGSTIN)

	// -------- Seller profile --------
	api.GET("/profile", s.GetProfile)
	api.PUT("/profile", s.SaveProfile)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
