package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// CatalogSyncJobName is the name of the catalog sync job
const CatalogSyncJobName = "catalog_sync"

// CatalogSyncService defines the interface for syncing catalog data from the
// ERP warehouse. This interface allows the job to call the service without
// importing the service package directly.
type CatalogSyncService interface {
	// SyncComponentsFromErp upserts the component catalog and supplier prices.
	// Returns counts for successfully synced and failed rows.
	SyncComponentsFromErp(ctx context.Context) (synced int, failed int, err error)

	// SyncEffectiveBOMFromErp replaces the flattened bill-of-materials rows for
	// products known to the ERP. Returns counts for synced and failed products.
	SyncEffectiveBOMFromErp(ctx context.Context) (synced int, failed int, err error)
}

// CatalogSyncJob pulls component, supplier price and flattened BOM data from
// the ERP warehouse into the local catalog tables.
type CatalogSyncJob struct {
	syncService CatalogSyncService
	logger      *zap.Logger
	timeout     time.Duration
}

// NewCatalogSyncJob creates a new catalog sync job.
// The timeout controls how long the sync operation is allowed to run.
func NewCatalogSyncJob(syncService CatalogSyncService, logger *zap.Logger, timeout time.Duration) *CatalogSyncJob {
	return &CatalogSyncJob{
		syncService: syncService,
		logger:      logger,
		timeout:     timeout,
	}
}

// Run executes the catalog sync job.
// This is called by the scheduler according to the cron expression.
// Supplier prices are synced first so new BOM rows can reference them.
func (j *CatalogSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	j.logger.Info("starting catalog sync job")

	componentsSynced, componentsFailed, err := j.syncService.SyncComponentsFromErp(ctx)
	if err != nil {
		j.logger.Error("catalog component sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		// Continue with BOM sync even if component sync fails
	}

	bomSynced, bomFailed, err := j.syncService.SyncEffectiveBOMFromErp(ctx)
	if err != nil {
		j.logger.Error("catalog BOM sync failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
	}

	duration := time.Since(start)

	j.logger.Info("catalog sync job completed",
		zap.Int("components_synced", componentsSynced),
		zap.Int("components_failed", componentsFailed),
		zap.Int("products_synced", bomSynced),
		zap.Int("products_failed", bomFailed),
		zap.Duration("duration", duration))
}

// RegisterCatalogSyncJob registers the catalog sync job with the scheduler.
// The cronExpr should be a valid cron expression with seconds
// (e.g., "0 0 2 * * *" for 02:00 every night).
// If runOnStartup is true, a sync also runs immediately in a background
// goroutine so it doesn't block API startup.
func RegisterCatalogSyncJob(scheduler *Scheduler, syncService CatalogSyncService, logger *zap.Logger, cronExpr string, timeout time.Duration, runOnStartup bool) error {
	job := NewCatalogSyncJob(syncService, logger, timeout)

	if runOnStartup {
		go job.Run()
	}

	return scheduler.AddJob(CatalogSyncJobName, cronExpr, job.Run)
}
