package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/internal/service"
	"github.com/vestfab-as/quoting-api/tests/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func setupCostingServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createCostingService(db *gorm.DB) *service.CostingService {
	logger := zap.NewNop()
	productRepo := repository.NewProductRepository(db)
	componentRepo := repository.NewComponentRepository(db)
	bundleRepo := repository.NewBundleRepository(db)
	offerRepo := repository.NewSupplierOfferRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	lineRepo := repository.NewLineRepository(db)

	catalogService := service.NewCatalogService(productRepo, componentRepo, bundleRepo, logger)
	return service.NewCostingService(catalogService, offerRepo, bundleRepo, clusterRepo, lineRepo, logger)
}

func createTestCluster(t *testing.T, db *gorm.DB) *domain.CostCluster {
	quote := testutil.CreateTestQuote(t, db, "Costing quote")
	item := testutil.CreateTestItem(t, db, quote, "Exploded item", 0)
	cluster := &domain.CostCluster{
		QuoteItemID: item.ID,
		Name:        service.DefaultClusterName,
		MarkupType:  domain.MarkupTypePercentage,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(cluster).Error)
	return cluster
}

func TestCostingService_ExplodeProduct(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)
	product := testutil.CreateTestProduct(t, db, "Stålramme")

	// One component with a BOM cost, one falling back to supplier pricing
	costed := testutil.CreateTestComponent(t, db, "Beam")
	uncosted := testutil.CreateTestComponent(t, db, "Bolt")
	testutil.CreateTestOffer(t, db, uncosted, "Expensive AS", testutil.Float64(3))
	cheapOffer := testutil.CreateTestOffer(t, db, uncosted, "Cheap AS", testutil.Float64(2))

	rows := []domain.ProductComponent{
		{ProductID: product.ID, ComponentID: costed.ID, Quantity: 4, UnitCost: testutil.Float64(125), Position: 0},
		{ProductID: product.ID, ComponentID: uncosted.ID, Quantity: 16, Position: 1},
	}
	for i := range rows {
		require.NoError(t, db.Omit(clause.Associations).Create(&rows[i]).Error)
	}

	labor := &domain.LaborOperation{
		ProductID:    product.ID,
		JobName:      "Sveising",
		PayType:      domain.PayTypeHourly,
		HourlyRate:   testutil.Float64(650),
		TimeRequired: 30,
		TimeUnit:     domain.TimeUnitMinutes,
		Quantity:     1,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(labor).Error)

	lines, err := svc.ExplodeProduct(ctx, cluster.ID, product.ID, 2, nil, true)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	// BOM cost carried as-is, quantity scaled by item qty
	assert.InDelta(t, 8.0, lines[0].Qty, 1e-9)
	require.NotNil(t, lines[0].UnitCost)
	assert.InDelta(t, 125.0, *lines[0].UnitCost, 1e-9)
	assert.Nil(t, lines[0].SupplierOfferID)

	// Missing BOM cost resolved from the cheapest supplier offer
	assert.InDelta(t, 32.0, lines[1].Qty, 1e-9)
	require.NotNil(t, lines[1].UnitCost)
	assert.InDelta(t, 2.0, *lines[1].UnitCost, 1e-9)
	require.NotNil(t, lines[1].SupplierOfferID)
	assert.Equal(t, cheapOffer.ID, *lines[1].SupplierOfferID)

	// Labor: 0.5 hours per unit, 2 units
	assert.Equal(t, domain.LineTypeLabor, lines[2].LineType)
	assert.InDelta(t, 1.0, lines[2].Qty, 1e-9)
	require.NotNil(t, lines[2].UnitCost)
	assert.InDelta(t, 650.0, *lines[2].UnitCost, 1e-9)
}

func TestCostingService_ExplodeProduct_WithoutLabor(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)
	product := testutil.CreateTestProduct(t, db, "Ramme uten arbeid")
	component := testutil.CreateTestComponent(t, db, "Beam")

	row := &domain.ProductComponent{ProductID: product.ID, ComponentID: component.ID, Quantity: 1, UnitCost: testutil.Float64(10)}
	require.NoError(t, db.Omit(clause.Associations).Create(row).Error)

	labor := &domain.LaborOperation{ProductID: product.ID, JobName: "Montering", PayType: domain.PayTypePiece, PieceRate: testutil.Float64(50), Quantity: 1}
	require.NoError(t, db.Omit(clause.Associations).Create(labor).Error)

	lines, err := svc.ExplodeProduct(ctx, cluster.ID, product.ID, 1, nil, false)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, domain.LineTypeComponent, lines[0].LineType)
}

func TestCostingService_ExplodeProduct_NoCostingRows(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)
	product := testutil.CreateTestProduct(t, db, "Tomt produkt")

	_, err := svc.ExplodeProduct(ctx, cluster.ID, product.ID, 1, nil, true)
	assert.ErrorIs(t, err, service.ErrNoCostingRows)
}

func TestCostingService_ExplodeProduct_EffectiveRowsTakePrecedence(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)
	product := testutil.CreateTestProduct(t, db, "Flatet produkt")
	direct := testutil.CreateTestComponent(t, db, "Direct row")
	flattened := testutil.CreateTestComponent(t, db, "Flattened row")

	directRow := &domain.ProductComponent{ProductID: product.ID, ComponentID: direct.ID, Quantity: 1, UnitCost: testutil.Float64(10)}
	require.NoError(t, db.Omit(clause.Associations).Create(directRow).Error)
	effectiveRow := &domain.EffectiveComponent{ProductID: product.ID, ComponentID: flattened.ID, Quantity: 2, UnitCost: testutil.Float64(20)}
	require.NoError(t, db.Omit(clause.Associations).Create(effectiveRow).Error)

	lines, err := svc.ExplodeProduct(ctx, cluster.ID, product.ID, 1, nil, false)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, flattened.ID, *lines[0].ComponentID)
}

func TestCostingService_ExplodeProduct_FilteredEffectiveRowsDoNotFallBack(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)
	product := testutil.CreateTestProduct(t, db, "Variantprodukt")
	direct := testutil.CreateTestComponent(t, db, "Direct row")
	variant := testutil.CreateTestComponent(t, db, "Red-only row")

	directRow := &domain.ProductComponent{ProductID: product.ID, ComponentID: direct.ID, Quantity: 1, UnitCost: testutil.Float64(10)}
	require.NoError(t, db.Omit(clause.Associations).Create(directRow).Error)
	effectiveRow := &domain.EffectiveComponent{ProductID: product.ID, ComponentID: variant.ID, Quantity: 2, UnitCost: testutil.Float64(20), OptionGroup: "color", OptionValue: "red"}
	require.NoError(t, db.Omit(clause.Associations).Create(effectiveRow).Error)

	// A selection excluding every flattened row empties the BOM; the direct
	// rows are not resurrected
	_, err := svc.ExplodeProduct(ctx, cluster.ID, product.ID, 1, map[string]string{"color": "blue"}, false)
	assert.ErrorIs(t, err, service.ErrNoCostingRows)
}

func TestCostingService_ExpandBundle(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)

	priced := testutil.CreateTestComponent(t, db, "Fixed price part")
	offered := testutil.CreateTestComponent(t, db, "Offer-priced part")
	offer := testutil.CreateTestOffer(t, db, offered, "Norsk Stål", testutil.Float64(7))

	bundle := &domain.CostBundle{Name: "Montasjesett"}
	require.NoError(t, db.Omit(clause.Associations).Create(bundle).Error)
	items := []domain.CostBundleItem{
		{BundleID: bundle.ID, ComponentID: priced.ID, Quantity: 2, Price: testutil.Float64(50), Position: 0},
		{BundleID: bundle.ID, ComponentID: offered.ID, Quantity: 4, Position: 1},
	}
	for i := range items {
		require.NoError(t, db.Omit(clause.Associations).Create(&items[i]).Error)
	}

	lines, err := svc.ExpandBundle(ctx, cluster.ID, bundle.ID, 3)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	// Bundle price wins over supplier pricing; multiplier scales quantities
	assert.InDelta(t, 6.0, lines[0].Qty, 1e-9)
	require.NotNil(t, lines[0].UnitCost)
	assert.InDelta(t, 50.0, *lines[0].UnitCost, 1e-9)
	assert.Nil(t, lines[0].SupplierOfferID)

	assert.InDelta(t, 12.0, lines[1].Qty, 1e-9)
	require.NotNil(t, lines[1].UnitCost)
	assert.InDelta(t, 7.0, *lines[1].UnitCost, 1e-9)
	require.NotNil(t, lines[1].SupplierOfferID)
	assert.Equal(t, offer.ID, *lines[1].SupplierOfferID)
}

func TestCostingService_ExpandBundle_NotFound(t *testing.T) {
	db := setupCostingServiceTestDB(t)
	svc := createCostingService(db)
	ctx := context.Background()

	cluster := createTestCluster(t, db)

	_, err := svc.ExpandBundle(ctx, cluster.ID, uuid.New(), 1)
	assert.ErrorIs(t, err, service.ErrBundleNotFound)
}
