package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"github.com/vestfab-as/quoting-api/internal/auth"
	"github.com/vestfab-as/quoting-api/internal/config"
	"github.com/vestfab-as/quoting-api/internal/database"
	"github.com/vestfab-as/quoting-api/internal/erp"
	"github.com/vestfab-as/quoting-api/internal/http/handler"
	"github.com/vestfab-as/quoting-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg               *config.Config
	logger            *zap.Logger
	db                *gorm.DB
	erpClient         *erp.Client
	authMiddleware    *auth.Middleware
	rateLimiter       *middleware.RateLimiter
	quoteHandler      *handler.QuoteHandler
	itemHandler       *handler.QuoteItemHandler
	clusterHandler    *handler.ClusterHandler
	lineHandler       *handler.LineHandler
	catalogHandler    *handler.CatalogHandler
	attachmentHandler *handler.AttachmentHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quoteHandler *handler.QuoteHandler,
	itemHandler *handler.QuoteItemHandler,
	clusterHandler *handler.ClusterHandler,
	lineHandler *handler.LineHandler,
	catalogHandler *handler.CatalogHandler,
	attachmentHandler *handler.AttachmentHandler,
) *Router {
	return &Router{
		cfg:               cfg,
		logger:            logger,
		db:                db,
		erpClient:         erpClient,
		authMiddleware:    authMiddleware,
		rateLimiter:       rateLimiter,
		quoteHandler:      quoteHandler,
		itemHandler:       itemHandler,
		clusterHandler:    clusterHandler,
		lineHandler:       lineHandler,
		catalogHandler:    catalogHandler,
		attachmentHandler: attachmentHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// Check ERP connection when configured. A degraded ERP does not fail
		// readiness; the API serves quotes from the local catalog regardless.
		if rt.erpClient.IsEnabled() {
			checks["erp"] = rt.erpClient.HealthCheck(r.Context())
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}", rt.quoteHandler.Update)
				r.Delete("/{id}", rt.quoteHandler.Delete)

				// Items on a quote
				r.Get("/{id}/items", rt.itemHandler.ListByQuote)
				r.Post("/{id}/items", rt.itemHandler.Create)
				r.Put("/{id}/items/reorder", rt.itemHandler.Reorder)
			})

			// Quote items
			r.Route("/items", func(r chi.Router) {
				r.Get("/{id}", rt.itemHandler.GetByID)
				r.Put("/{id}", rt.itemHandler.Update)
				r.Delete("/{id}", rt.itemHandler.Delete)
				r.Post("/{id}/duplicate", rt.itemHandler.Duplicate)
				r.Post("/{id}/ensure-cluster", rt.itemHandler.EnsureCluster)
				r.Post("/{id}/apply-price", rt.itemHandler.ApplyPrice)

				// Attachments on an item
				r.Get("/{id}/attachments", rt.attachmentHandler.ListByItem)
				r.Post("/{id}/attachments", rt.attachmentHandler.Upload)
				r.Post("/{id}/attachments/from-url", rt.attachmentHandler.CreateFromURL)
			})

			// Cost clusters
			r.Route("/clusters", func(r chi.Router) {
				r.Get("/{id}", rt.clusterHandler.GetByID)
				r.Put("/{id}", rt.clusterHandler.Update)
				r.Get("/{id}/totals", rt.clusterHandler.GetTotals)
				r.Post("/{id}/explode", rt.clusterHandler.Explode)
				r.Post("/{id}/expand-bundle", rt.clusterHandler.ExpandBundle)
				r.Post("/{id}/lines", rt.clusterHandler.CreateLine)
			})

			// Cost lines
			r.Route("/lines", func(r chi.Router) {
				r.Put("/{id}", rt.lineHandler.Update)
				r.Delete("/{id}", rt.lineHandler.Delete)
				r.Post("/{id}/apply-offer", rt.lineHandler.ApplyOffer)
			})

			// Catalog
			r.Route("/components", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.SearchComponents)
				r.Get("/{id}", rt.catalogHandler.GetComponent)
				r.Get("/{id}/offers", rt.catalogHandler.ListOffers)
			})
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.SearchProducts)
				r.Get("/{id}", rt.catalogHandler.GetProduct)
				r.Get("/{id}/bom", rt.catalogHandler.GetProductBOM)
				r.Get("/{id}/labor", rt.catalogHandler.GetProductLabor)
			})
			r.Route("/bundles", func(r chi.Router) {
				r.Get("/", rt.catalogHandler.ListBundles)
				r.Get("/{id}", rt.catalogHandler.GetBundle)
			})

			// Attachments
			r.Route("/attachments", func(r chi.Router) {
				r.Get("/{id}/download", rt.attachmentHandler.Download)
				r.Delete("/{id}", rt.attachmentHandler.Delete)
			})
		})
	})

	return r
}
