// Package erp provides read-only connectivity to the MS SQL Server ERP
// warehouse. The catalog sync job reads component, supplier price and
// flattened bill-of-materials data from here; the API never writes back.
package erp

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb" // MS SQL Server driver
	"github.com/vestfab-as/quoting-api/internal/config"
	"go.uber.org/zap"
)

const (
	// Default retry configuration for connection attempts
	defaultMaxRetries     = 3
	defaultInitialBackoff = 1 * time.Second
	defaultMaxBackoff     = 10 * time.Second
	defaultBackoffFactor  = 2.0

	// Default health check timeout
	defaultHealthCheckTimeout = 5 * time.Second
)

// Client provides read-only access to the ERP warehouse.
// It manages connection pooling and provides typed fetch methods for the
// catalog sync job.
type Client struct {
	db           *sql.DB
	config       *config.ErpConfig
	logger       *zap.Logger
	queryTimeout time.Duration
}

// HealthStatus represents the health check result for the ERP connection
type HealthStatus struct {
	Status     string        `json:"status"`
	Latency    time.Duration `json:"latency_ms"`
	Error      string        `json:"error,omitempty"`
	MaxOpen    int           `json:"max_open_connections"`
	Open       int           `json:"open_connections"`
	InUse      int           `json:"in_use"`
	Idle       int           `json:"idle"`
	WaitCount  int64         `json:"wait_count"`
	WaitTimeMs int64         `json:"wait_time_ms"`
}

// ComponentRow is a catalog component as stored in the ERP warehouse
type ComponentRow struct {
	InternalCode string
	Description  string
	Unit         string
}

// SupplierOfferRow is a supplier price row from the ERP warehouse.
// Price is nil when the supplier is registered but has not quoted.
type SupplierOfferRow struct {
	ComponentCode string
	SupplierName  string
	Price         *float64
	Currency      string
	LeadTimeDays  *int
	MinOrderQty   *float64
}

// EffectiveBOMRow is a flattened bill-of-materials row from the ERP warehouse
type EffectiveBOMRow struct {
	ProductCode   string
	ComponentCode string
	Quantity      float64
	UnitCost      *float64
	OptionGroup   string
	OptionValue   string
	Position      int
}

// NewClient creates a new ERP client with the given configuration.
// Returns nil if the ERP connection is not enabled or not configured.
// The client establishes a connection pool with retry logic for transient failures.
func NewClient(cfg *config.ErpConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		logger.Info("ERP connection disabled")
		return nil, nil
	}

	// Validate required configuration
	if cfg.URL == "" || cfg.User == "" || cfg.Password == "" {
		logger.Warn("ERP enabled but missing credentials, skipping connection",
			zap.Bool("url_present", cfg.URL != ""),
			zap.Bool("user_present", cfg.User != ""),
			zap.Bool("password_present", cfg.Password != ""),
		)
		return nil, nil
	}

	logger.Info("Initializing ERP connection",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.ConnMaxLifetime),
		zap.Int("query_timeout_seconds", cfg.QueryTimeout),
	)

	// Build connection string
	connStr, err := buildConnectionString(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build connection string: %w", err)
	}

	// Attempt connection with retry logic
	var db *sql.DB
	backoff := defaultInitialBackoff

	for attempt := 1; attempt <= defaultMaxRetries; attempt++ {
		logger.Info("Attempting ERP connection",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", defaultMaxRetries),
		)

		db, err = sql.Open("sqlserver", connStr)
		if err != nil {
			logger.Warn("Failed to open ERP connection",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Configure connection pool
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

		// Test connection with ping
		ctx, cancel := context.WithTimeout(context.Background(), defaultHealthCheckTimeout)
		err = db.PingContext(ctx)
		cancel()

		if err != nil {
			logger.Warn("ERP ping failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			_ = db.Close()
			if attempt < defaultMaxRetries {
				time.Sleep(backoff)
				backoff = min(time.Duration(float64(backoff)*defaultBackoffFactor), defaultMaxBackoff)
			}
			continue
		}

		// Connection successful
		logger.Info("ERP connection established successfully",
			zap.Int("attempts_taken", attempt),
		)

		return &Client{
			db:           db,
			config:       cfg,
			logger:       logger,
			queryTimeout: cfg.QueryTimeoutDuration(),
		}, nil
	}

	return nil, fmt.Errorf("failed to connect to ERP after %d attempts: %w", defaultMaxRetries, err)
}

// buildConnectionString constructs a SQL Server connection string from the config.
// URL format expected: host:port/database or host:port (uses default database)
func buildConnectionString(cfg *config.ErpConfig) (string, error) {
	// Parse URL format: host:port/database or host:port
	urlParts := strings.SplitN(cfg.URL, "/", 2)
	hostPort := urlParts[0]
	database := ""
	if len(urlParts) > 1 {
		database = urlParts[1]
	}

	// Parse host and port
	hostParts := strings.SplitN(hostPort, ":", 2)
	host := hostParts[0]
	port := "1433" // Default SQL Server port
	if len(hostParts) > 1 {
		port = hostParts[1]
	}

	// Build connection string using URL format
	query := url.Values{}
	query.Add("encrypt", "true")
	query.Add("TrustServerCertificate", "false")
	query.Add("connection timeout", "30")
	if database != "" {
		query.Add("database", database)
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%s", host, port),
		RawQuery: query.Encode(),
	}

	return u.String(), nil
}

// Close gracefully closes the ERP connection.
// Should be called during application shutdown.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}

	c.logger.Info("Closing ERP connection")

	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close ERP connection", zap.Error(err))
		return fmt.Errorf("failed to close ERP connection: %w", err)
	}

	c.logger.Info("ERP connection closed successfully")
	return nil
}

// HealthCheck performs a health check on the ERP connection.
// Returns detailed status including connection pool statistics.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if c == nil || c.db == nil {
		return &HealthStatus{
			Status: "disabled",
		}
	}

	start := time.Now()

	// Use provided context or create one with default timeout
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	err := c.db.PingContext(ctx)
	latency := time.Since(start)

	stats := c.db.Stats()
	status := &HealthStatus{
		Latency:    latency,
		MaxOpen:    stats.MaxOpenConnections,
		Open:       stats.OpenConnections,
		InUse:      stats.InUse,
		Idle:       stats.Idle,
		WaitCount:  stats.WaitCount,
		WaitTimeMs: stats.WaitDuration.Milliseconds(),
	}

	if err != nil {
		c.logger.Warn("ERP health check failed",
			zap.Error(err),
			zap.Duration("latency", latency),
		)
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
	}

	return status
}

// IsEnabled returns true if the client is initialized and ready for queries.
func (c *Client) IsEnabled() bool {
	return c != nil && c.db != nil
}

// FetchComponents reads the full component catalog from the ERP warehouse
func (c *Client) FetchComponents(ctx context.Context) ([]ComponentRow, error) {
	const query = `
		SELECT item_code, description, unit
		FROM dbo.nxt_catalog_item
		WHERE is_purchasable = 1`

	rows, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch components: %w", err)
	}
	defer rows.Close()

	var results []ComponentRow
	for rows.Next() {
		var r ComponentRow
		var description, unit sql.NullString
		if err := rows.Scan(&r.InternalCode, &description, &unit); err != nil {
			return nil, fmt.Errorf("failed to scan component row: %w", err)
		}
		r.Description = description.String
		r.Unit = unit.String
		if r.Unit == "" {
			r.Unit = "pcs"
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating component rows: %w", err)
	}

	return results, nil
}

// FetchSupplierOffers reads current supplier prices from the ERP warehouse
func (c *Client) FetchSupplierOffers(ctx context.Context) ([]SupplierOfferRow, error) {
	const query = `
		SELECT item_code, supplier_name, unit_price, currency, lead_time_days, min_order_qty
		FROM dbo.nxt_supplier_price
		WHERE is_active = 1`

	rows, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch supplier offers: %w", err)
	}
	defer rows.Close()

	var results []SupplierOfferRow
	for rows.Next() {
		var r SupplierOfferRow
		var price sql.NullFloat64
		var currency sql.NullString
		var leadTime sql.NullInt64
		var minQty sql.NullFloat64
		if err := rows.Scan(&r.ComponentCode, &r.SupplierName, &price, &currency, &leadTime, &minQty); err != nil {
			return nil, fmt.Errorf("failed to scan supplier offer row: %w", err)
		}
		if price.Valid {
			v := price.Float64
			r.Price = &v
		}
		r.Currency = currency.String
		if r.Currency == "" {
			r.Currency = "NOK"
		}
		if leadTime.Valid {
			v := int(leadTime.Int64)
			r.LeadTimeDays = &v
		}
		if minQty.Valid {
			v := minQty.Float64
			r.MinOrderQty = &v
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating supplier offer rows: %w", err)
	}

	return results, nil
}

// FetchEffectiveBOM reads the flattened bill-of-materials rows for all
// products from the ERP warehouse. Sub-assemblies are already expanded by the
// warehouse view.
func (c *Client) FetchEffectiveBOM(ctx context.Context) ([]EffectiveBOMRow, error) {
	const query = `
		SELECT product_code, item_code, quantity, unit_cost, option_group, option_value, position
		FROM dbo.nxt_effective_bom
		ORDER BY product_code, position`

	rows, err := c.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch effective BOM: %w", err)
	}
	defer rows.Close()

	var results []EffectiveBOMRow
	for rows.Next() {
		var r EffectiveBOMRow
		var unitCost sql.NullFloat64
		var optGroup, optValue sql.NullString
		if err := rows.Scan(&r.ProductCode, &r.ComponentCode, &r.Quantity, &unitCost, &optGroup, &optValue, &r.Position); err != nil {
			return nil, fmt.Errorf("failed to scan effective BOM row: %w", err)
		}
		if unitCost.Valid {
			v := unitCost.Float64
			r.UnitCost = &v
		}
		r.OptionGroup = optGroup.String
		r.OptionValue = optValue.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating effective BOM rows: %w", err)
	}

	return results, nil
}

// query runs a read-only query with the default timeout applied when the
// caller's context has no deadline.
func (c *Client) query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if c == nil || c.db == nil {
		return nil, fmt.Errorf("erp client not initialized")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}

	c.logger.Debug("Executing ERP query",
		zap.String("query", truncateQuery(query, 200)),
		zap.Int("args_count", len(args)),
	)

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		c.logger.Error("ERP query failed",
			zap.Error(err),
			zap.String("query", truncateQuery(query, 200)),
			zap.Duration("duration", time.Since(start)),
		)
		return nil, err
	}

	return rows, nil
}

// truncateQuery truncates a query string for logging purposes
func truncateQuery(query string, maxLen int) string {
	if len(query) <= maxLen {
		return query
	}
	return query[:maxLen] + "..."
}
