package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vestfab-as/quoting-api/internal/auth"
	"github.com/vestfab-as/quoting-api/internal/config"
	"github.com/vestfab-as/quoting-api/internal/database"
	"github.com/vestfab-as/quoting-api/internal/erp"
	"github.com/vestfab-as/quoting-api/internal/http/handler"
	"github.com/vestfab-as/quoting-api/internal/http/middleware"
	"github.com/vestfab-as/quoting-api/internal/http/router"
	"github.com/vestfab-as/quoting-api/internal/jobs"
	"github.com/vestfab-as/quoting-api/internal/logger"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/internal/service"
	"github.com/vestfab-as/quoting-api/internal/storage"
	"go.uber.org/zap"
)

// catalogSyncTimeout caps a single catalog sync run
const catalogSyncTimeout = 10 * time.Minute

// @title Vestfab Quoting API
// @version 1.0
// @description Quoting backend for product costing, supplier pricing and quote management

// @contact.name API Support
// @contact.email support@vestfab.no

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize storage
	fileStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize ERP connection (optional, read-only). The API serves quotes
	// from the local catalog; a missing ERP only disables the sync job.
	var erpClient *erp.Client
	if cfg.Erp.Enabled {
		erpClient, err = erp.NewClient(&cfg.Erp, log)
		if err != nil {
			log.Warn("ERP connection failed, continuing without it", zap.Error(err))
		}
	} else {
		log.Info("ERP not configured, skipping")
	}

	// Initialize repositories
	quoteRepo := repository.NewQuoteRepository(db)
	itemRepo := repository.NewQuoteItemRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	lineRepo := repository.NewLineRepository(db)
	componentRepo := repository.NewComponentRepository(db)
	offerRepo := repository.NewSupplierOfferRepository(db)
	productRepo := repository.NewProductRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	// Initialize services
	quoteService := service.NewQuoteService(quoteRepo, log)
	catalogService := service.NewCatalogService(productRepo, componentRepo, bundleRepo, log)
	supplierService := service.NewSupplierService(offerRepo, componentRepo, lineRepo, log)
	costingService := service.NewCostingService(catalogService, offerRepo, bundleRepo, clusterRepo, lineRepo, log)
	clusterService := service.NewClusterService(clusterRepo, lineRepo, itemRepo, log)
	attachmentService := service.NewAttachmentService(attachmentRepo, itemRepo, fileStorage, log)
	itemService := service.NewItemService(itemRepo, quoteRepo, clusterRepo, lineRepo, productRepo, clusterService, costingService, attachmentService, log)
	catalogSyncService := service.NewCatalogSyncService(erpClient, componentRepo, offerRepo, productRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	itemHandler := handler.NewQuoteItemHandler(itemService, clusterService, log)
	clusterHandler := handler.NewClusterHandler(clusterService, costingService, log)
	lineHandler := handler.NewLineHandler(clusterService, supplierService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, supplierService, log)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		erpClient,
		authMiddleware,
		rateLimiter,
		quoteHandler,
		itemHandler,
		clusterHandler,
		lineHandler,
		catalogHandler,
		attachmentHandler,
	)

	// Initialize and start scheduler for the nightly catalog sync
	var scheduler *jobs.Scheduler
	if cfg.Erp.SyncEnabled && erpClient.IsEnabled() {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterCatalogSyncJob(
			scheduler,
			catalogSyncService,
			log,
			cfg.Erp.SyncSchedule,
			catalogSyncTimeout,
			true, // sync once on startup so a fresh deployment has a catalog
		); err != nil {
			log.Error("Failed to register catalog sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with catalog sync job",
				zap.String("cron_expr", cfg.Erp.SyncSchedule),
				zap.Duration("timeout", catalogSyncTimeout),
			)
		}
	} else {
		log.Info("Catalog sync disabled",
			zap.Bool("erp_enabled", cfg.Erp.Enabled),
			zap.Bool("sync_enabled", cfg.Erp.SyncEnabled),
			zap.Bool("erp_client_available", erpClient.IsEnabled()),
		)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		// Close ERP connection if initialized
		if err := erpClient.Close(); err != nil {
			log.Warn("Error closing ERP connection", zap.Error(err))
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
