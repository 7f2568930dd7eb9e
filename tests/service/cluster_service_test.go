package service_test

import (
	"context"
	"testing"

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

func setupClusterServiceTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func createClusterService(db *gorm.DB) *service.ClusterService {
	clusterRepo := repository.NewClusterRepository(db)
	lineRepo := repository.NewLineRepository(db)
	itemRepo := repository.NewQuoteItemRepository(db)

	return service.NewClusterService(clusterRepo, lineRepo, itemRepo, zap.NewNop())
}

func TestClusterService_EnsureCluster_CreatesOnce(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Ensure cluster quote")
	item := testutil.CreateTestItem(t, db, quote, "Steel frame", 0)

	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, cluster.QuoteItemID)
	assert.Equal(t, service.DefaultClusterName, cluster.Name)
	assert.Equal(t, domain.MarkupTypePercentage, cluster.MarkupType)
	assert.InDelta(t, 0.0, cluster.MarkupValue, 1e-9)

	// A second call returns the same cluster instead of creating another
	again, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, cluster.ID, again.ID)

	var count int64
	require.NoError(t, db.Model(&domain.CostCluster{}).Where("quote_item_id = ?", item.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestClusterService_EnsureCluster_RejectsTextItems(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Heading quote")
	heading := &domain.QuoteItem{
		QuoteID:         quote.ID,
		Description:     "Section heading",
		ItemType:        domain.ItemTypeHeading,
		TextAlign:       domain.TextAlignCenter,
		SelectedOptions: "{}",
	}
	require.NoError(t, db.Omit(clause.Associations).Create(heading).Error)

	_, err := svc.EnsureCluster(ctx, heading.ID)
	assert.ErrorIs(t, err, service.ErrItemNotPriced)
}

func TestClusterService_UpdateCluster_MarkupTypeSwitchResetsValue(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Markup quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)

	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)

	// Set a percentage markup
	pct := 20.0
	updated, err := svc.UpdateCluster(ctx, cluster.ID, &domain.UpdateClusterRequest{
		Name:        cluster.Name,
		MarkupValue: &pct,
	})
	require.NoError(t, err)
	assert.InDelta(t, 20.0, updated.MarkupValue, 1e-9)

	// Switching the markup type resets the value to zero
	fixed := domain.MarkupTypeFixed
	updated, err = svc.UpdateCluster(ctx, cluster.ID, &domain.UpdateClusterRequest{
		Name:       cluster.Name,
		MarkupType: &fixed,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MarkupTypeFixed, updated.MarkupType)
	assert.InDelta(t, 0.0, updated.MarkupValue, 1e-9)

	// Switch and value in the same request: the new value wins
	pct50 := 50.0
	percentage := domain.MarkupTypePercentage
	updated, err = svc.UpdateCluster(ctx, cluster.ID, &domain.UpdateClusterRequest{
		Name:        cluster.Name,
		MarkupType:  &percentage,
		MarkupValue: &pct50,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MarkupTypePercentage, updated.MarkupType)
	assert.InDelta(t, 50.0, updated.MarkupValue, 1e-9)
}

func TestClusterService_CreateLine_AppendsSortOrder(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Lines quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)
	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)

	first, err := svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Freight",
		Qty:         1,
		UnitCost:    testutil.Float64(450),
	})
	require.NoError(t, err)
	assert.True(t, first.IncludeInMarkup, "markup participation defaults to true")

	second, err := svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Crane rental",
		Qty:         2,
		UnitCost:    testutil.Float64(1200),
	})
	require.NoError(t, err)
	assert.Greater(t, second.SortOrder, first.SortOrder)
}

func TestClusterService_UpdateLine_CostLock(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Lock quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)
	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)

	component := testutil.CreateTestComponent(t, db, "Steel beam")
	offer := testutil.CreateTestOffer(t, db, component, "Norsk Stål", testutil.Float64(95))

	line := &domain.CostLine{
		ClusterID:       cluster.ID,
		LineType:        domain.LineTypeComponent,
		Description:     component.Description,
		Qty:             4,
		UnitCost:        testutil.Float64(95),
		ComponentID:     &component.ID,
		SupplierOfferID: &offer.ID,
		IncludeInMarkup: true,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(line).Error)

	// Editing the cost of an offer-backed line without the override flag fails
	_, err = svc.UpdateLine(ctx, line.ID, &domain.UpdateLineRequest{
		UnitCost: testutil.Float64(80),
	})
	assert.ErrorIs(t, err, service.ErrCostLocked)

	// Setting the override flag in the same request unlocks the edit
	override := true
	updated, err := svc.UpdateLine(ctx, line.ID, &domain.UpdateLineRequest{
		UnitCost:     testutil.Float64(80),
		CostOverride: &override,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.UnitCost)
	assert.InDelta(t, 80.0, *updated.UnitCost, 1e-9)
	assert.True(t, updated.CostOverride)
}

func TestClusterService_ApplyTotalToItem(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Apply price quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)
	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)

	pct := 20.0
	_, err = svc.UpdateCluster(ctx, cluster.ID, &domain.UpdateClusterRequest{
		Name:        cluster.Name,
		MarkupValue: &pct,
	})
	require.NoError(t, err)

	_, err = svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Parts",
		Qty:         6,
		UnitCost:    testutil.Float64(5),
	})
	require.NoError(t, err)
	_, err = svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Labour",
		Qty:         1.5,
		UnitCost:    testutil.Float64(120),
	})
	require.NoError(t, err)

	updated, err := svc.ApplyTotalToItem(ctx, item.ID, cluster.ID)
	require.NoError(t, err)
	// 6*5 + 1.5*120 = 210, plus 20% markup
	assert.InDelta(t, 252.0, updated.UnitPrice, 1e-9)

	// The item price never updates implicitly afterwards
	_, err = svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Extra",
		Qty:         1,
		UnitCost:    testutil.Float64(1000),
	})
	require.NoError(t, err)

	var fresh domain.QuoteItem
	require.NoError(t, db.First(&fresh, "id = ?", item.ID).Error)
	assert.InDelta(t, 252.0, fresh.UnitPrice, 1e-9)
}

func TestClusterService_ApplyTotalToItem_WrongCluster(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Wrong cluster quote")
	itemA := testutil.CreateTestItem(t, db, quote, "Item A", 0)
	itemB := testutil.CreateTestItem(t, db, quote, "Item B", 1)

	clusterB, err := svc.EnsureCluster(ctx, itemB.ID)
	require.NoError(t, err)

	_, err = svc.ApplyTotalToItem(ctx, itemA.ID, clusterB.ID)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestClusterService_GetTotals_CountsUnknownCosts(t *testing.T) {
	db := setupClusterServiceTestDB(t)
	svc := createClusterService(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Unknown cost quote")
	item := testutil.CreateTestItem(t, db, quote, "Frame", 0)
	cluster, err := svc.EnsureCluster(ctx, item.ID)
	require.NoError(t, err)

	_, err = svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Priced",
		Qty:         2,
		UnitCost:    testutil.Float64(100),
	})
	require.NoError(t, err)
	_, err = svc.CreateLine(ctx, cluster.ID, &domain.CreateLineRequest{
		LineType:    domain.LineTypeManual,
		Description: "Unknown cost",
		Qty:         1,
	})
	require.NoError(t, err)

	_, totals, err := svc.GetTotals(ctx, cluster.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200.0, totals.Subtotal, 1e-9)
	assert.Equal(t, 1, totals.UnknownCosts)
}
