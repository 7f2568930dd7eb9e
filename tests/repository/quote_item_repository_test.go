package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestfab-as/quoting-api/internal/repository"
	"github.com/vestfab-as/quoting-api/tests/testutil"
)

func TestQuoteItemRepository_GetMaxPosition(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewQuoteItemRepository(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Position quote")

	// No items yet
	max, err := repo.GetMaxPosition(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	testutil.CreateTestItem(t, db, quote, "A", 0)
	testutil.CreateTestItem(t, db, quote, "B", 3)

	max, err = repo.GetMaxPosition(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, max)
}

func TestQuoteItemRepository_UpdatePositions(t *testing.T) {
	db := setupComponentRepoTestDB(t)
	repo := repository.NewQuoteItemRepository(db)
	ctx := context.Background()

	quote := testutil.CreateTestQuote(t, db, "Reorder quote")
	a := testutil.CreateTestItem(t, db, quote, "A", 0)
	b := testutil.CreateTestItem(t, db, quote, "B", 1)
	c := testutil.CreateTestItem(t, db, quote, "C", 2)

	require.NoError(t, repo.UpdatePositions(ctx, []uuid.UUID{c.ID, a.ID, b.ID}))

	items, err := repo.ListByQuote(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, c.ID, items[0].ID)
	assert.Equal(t, a.ID, items[1].ID)
	assert.Equal(t, b.ID, items[2].ID)
}
