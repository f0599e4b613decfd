package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/salesdash/internal/config"
	dashboarddomain "github.com/smallbiznis/salesdash/internal/dashboard/domain"
	"github.com/smallbiznis/salesdash/internal/importer"
	"github.com/smallbiznis/salesdash/internal/observability"
	obsmiddleware "github.com/smallbiznis/salesdash/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/salesdash/internal/observability/metrics"
	obstracing "github.com/smallbiznis/salesdash/internal/observability/tracing"
	productdomain "github.com/smallbiznis/salesdash/internal/product/domain"
	"github.com/smallbiznis/salesdash/internal/report"
	transactiondomain "github.com/smallbiznis/salesdash/internal/transaction/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Live dashboard aggregates scan the whole fact table; requests slower than
// this are logged at warn.
const slowRequestThreshold = 2 * time.Second

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		SlowThreshold:   slowRequestThreshold,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, s *Server, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
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
	engine         *gin.Engine
	log            *zap.Logger
	productSvc     productdomain.Service
	transactionSvc transactiondomain.Service
	dashboardSvc   dashboarddomain.Service
	reports        *report.Renderer
	runs           *importer.RunStore
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Log            *zap.Logger
	ProductSvc     productdomain.Service
	TransactionSvc transactiondomain.Service
	DashboardSvc   dashboarddomain.Service
	Reports        *report.Renderer
	Runs           *importer.RunStore
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:         p.Gin,
		log:            p.Log.Named("http.server"),
		productSvc:     p.ProductSvc,
		transactionSvc: p.TransactionSvc,
		dashboardSvc:   p.DashboardSvc,
		reports:        p.Reports,
		runs:           p.Runs,
	}

	s.registerAPIRoutes()
	s.registerFallback()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Products --------
	api.GET("/products", s.ListProducts)
	api.GET("/products/categories", s.ListProductCategories)
	api.GET("/products/:id", s.GetProductByID)

	// -------- Transactions --------
	api.GET("/transactions", s.ListTransactions)
	api.POST("/transactions", s.CreateTransaction)

	// -------- Dashboard --------
	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("/summary", s.DashboardSummary)
		dashboard.GET("/sales-by-category", s.DashboardSalesByCategory)
		dashboard.GET("/sales-by-region", s.DashboardSalesByRegion)
		dashboard.GET("/sales-by-state", s.DashboardSalesByState)
		dashboard.GET("/sales-by-city", s.DashboardSalesByCity)
		dashboard.GET("/sales-by-segment", s.DashboardSalesBySegment)
		dashboard.GET("/top-products", s.DashboardTopProducts)
		dashboard.GET("/monthly-trend", s.DashboardMonthlyTrend)
		dashboard.GET("/daily-trend", s.DashboardDailyTrend)
		dashboard.GET("/complete", s.DashboardComplete)
		dashboard.GET("/snapshots", s.ListSnapshots)
		dashboard.GET("/snapshots/:key", s.GetSnapshot)
		dashboard.GET("/report.pdf", s.DashboardReport)
	}

	// -------- Imports --------
	api.GET("/imports", s.ListImportRuns)
	api.GET("/imports/:id", s.GetImportRun)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
