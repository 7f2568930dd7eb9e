package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database
// It uses environment variables or falls back to docker-compose defaults
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "quoting_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "quoting_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "quoting")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	return db
}

// CleanupTestData cleans up test data from all tables
// This should be called after tests to ensure a clean state
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"attachments",
		"cost_lines",
		"cost_clusters",
		"quote_items",
		"quotes",
		"cost_bundle_items",
		"cost_bundles",
		"product_images",
		"labor_operations",
		"effective_components",
		"product_components",
		"supplier_offers",
		"products",
		"components",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestQuote creates a quote with a unique number
func CreateTestQuote(t *testing.T, db *gorm.DB, title string) *domain.Quote {
	quote := &domain.Quote{
		Number:       fmt.Sprintf("Q-TEST-%d", uniqueInt()),
		Title:        title,
		CustomerName: "Testkunde AS",
		Status:       domain.QuoteStatusDraft,
	}
	err := db.Omit(clause.Associations).Create(quote).Error
	require.NoError(t, err)
	return quote
}

// CreateTestItem creates a priced quote item at the given position
func CreateTestItem(t *testing.T, db *gorm.DB, quote *domain.Quote, description string, position int) *domain.QuoteItem {
	item := &domain.QuoteItem{
		QuoteID:         quote.ID,
		Description:     description,
		Qty:             1,
		ItemType:        domain.ItemTypePriced,
		TextAlign:       domain.TextAlignLeft,
		SelectedOptions: "{}",
		Position:        position,
	}
	err := db.Omit(clause.Associations).Create(item).Error
	require.NoError(t, err)
	return item
}

// CreateTestComponent creates a catalog component with a unique internal code
func CreateTestComponent(t *testing.T, db *gorm.DB, description string) *domain.Component {
	component := &domain.Component{
		InternalCode: fmt.Sprintf("CMP-%d", uniqueInt()),
		Description:  description,
		Unit:         "pcs",
	}
	err := db.Omit(clause.Associations).Create(component).Error
	require.NoError(t, err)
	return component
}

// CreateTestOffer creates a supplier offer for a component
func CreateTestOffer(t *testing.T, db *gorm.DB, component *domain.Component, supplier string, price *float64) *domain.SupplierOffer {
	offer := &domain.SupplierOffer{
		ComponentID:  component.ID,
		SupplierName: supplier,
		Price:        price,
		Currency:     "NOK",
	}
	err := db.Omit(clause.Associations).Create(offer).Error
	require.NoError(t, err)
	return offer
}

// CreateTestProduct creates a product with a unique internal code
func CreateTestProduct(t *testing.T, db *gorm.DB, name string) *domain.Product {
	product := &domain.Product{
		InternalCode: fmt.Sprintf("PRD-%d", uniqueInt()),
		Name:         name,
	}
	err := db.Omit(clause.Associations).Create(product).Error
	require.NoError(t, err)
	return product
}

// Float64 returns a pointer to the given value
func Float64(v float64) *float64 {
	return &v
}

// uniqueInt returns a unique integer for test data
func uniqueInt() int64 {
	return time.Now().UnixNano()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
