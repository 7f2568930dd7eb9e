package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/domain"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/tests/testutil"
	"gorm.io/gorm"
)

func setupComponentRepoTestDB(t *testing.T) *gorm.DB {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})
	return db
}

func TestComponentRepository_Upsert(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewComponentRepository(db)
	ctx := context.Background()

	component := &domain.Component{
		InternalCode: "STL-UPSERT-1",
		Description:  "Steel beam",
		Unit:         "pcs",
	}
	require.NoError(t, repo.Upsert(ctx, component))

	// Same internal code updates in place instead of duplicating
	updated := &domain.Component{
		InternalCode: "STL-UPSERT-1",
		Description:  "Steel beam HEB 200",
		Unit:         "m",
	}
	require.NoError(t, repo.Upsert(ctx, updated))

	var count int64
	require.NoError(t, db.Model(&domain.Component{}).Where("internal_code = ?", "STL-UPSERT-1").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	fresh, err := repo.GetByCode(ctx, "STL-UPSERT-1")
	require.NoError(t, err)
	assert.Equal(t, "Steel beam HEB 200", fresh.Description)
	assert.Equal(t, "m", fresh.Unit)
}

func TestComponentRepository_Search(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewComponentRepository(db)
	ctx := context.Background()

	testutil.CreateTestComponent(t, db, "Galvanized bolt M12")
	testutil.CreateTestComponent(t, db, "Steel beam HEB 200")

	results, err := repo.Search(ctx, "bolt", 50, 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Galvanized bolt M12", results[0].Description)

	all, err := repo.Search(ctx, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSupplierOfferRepository_ListByComponent_CreationOrder(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewSupplierOfferRepository(db)
	ctx := context.Background()

	component := testutil.CreateTestComponent(t, db, "Ordered offers")
	testutil.CreateTestOffer(t, db, component, "First AS", testutil.Float64(10))
	testutil.CreateTestOffer(t, db, component, "Second AS", testutil.Float64(8))
	testutil.CreateTestOffer(t, db, component, "Third AS", nil)

	offers, err := repo.ListByComponent(ctx, component.ID)
	require.NoError(t, err)
	require.Len(t, offers, 3)
	assert.Equal(t, "First AS", offers[0].SupplierName)
	assert.Equal(t, "Second AS", offers[1].SupplierName)
	assert.Equal(t, "Third AS", offers[2].SupplierName)
}

func TestSupplierOfferRepository_UpsertBySupplier(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewSupplierOfferRepository(db)
	ctx := context.Background()

	component := testutil.CreateTestComponent(t, db, "Upsert offers")

	offer := &domain.SupplierOffer{
		ComponentID:  component.ID,
		SupplierName: "Norsk Stål",
		Price:        testutil.Float64(95),
		Currency:     "NOK",
	}
	require.NoError(t, repo.UpsertBySupplier(ctx, offer))

	// Same supplier for the same component updates the price
	repriced := &domain.SupplierOffer{
		ComponentID:  component.ID,
		SupplierName: "Norsk Stål",
		Price:        testutil.Float64(89),
		Currency:     "NOK",
	}
	require.NoError(t, repo.UpsertBySupplier(ctx, repriced))

	offers, err := repo.ListByComponent(ctx, component.ID)
	require.NoError(t, err)
	require.Len(t, offers, 1)
	require.NotNil(t, offers[0].Price)
	assert.InDelta(t, 89.0, *offers[0].Price, 1e-9)
}
