package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meal-planner/internal/core/product"
	"meal-planner/internal/pkg/common"
)

func TestCatalogStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "catalog.db")

	store, err := NewCatalogStore(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	defer store.Close()

	seed, err := product.LoadEmbedded()
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, seed))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, seed.Products, got.Products)
	assert.Equal(t, seed.Ingredients, got.Ingredients)
}

func TestCatalogStoreSaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := NewCatalogStore(ctx, DriverSQLite, filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	defer store.Close()

	catalog := &product.Catalog{
		Products: []common.Product{{ID: "p1", Name: "두부 300g", Price: 1500, Weight: "300g"}},
		Ingredients: map[string]common.Product{
			"두부": {ID: "p1", Name: "두부 300g", Price: 1500, Weight: "300g"},
		},
	}
	require.NoError(t, store.Save(ctx, catalog))

	catalog.Products[0].Price = 1800
	catalog.Ingredients["두부"] = catalog.Products[0]
	require.NoError(t, store.Save(ctx, catalog))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Products, 1)
	assert.Equal(t, 1800, got.Products[0].Price)
	assert.Equal(t, 1800, got.Ingredients["두부"].Price)
}

func TestLoadCatalogSeedsEmptyDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "catalog.db")

	first, err := LoadCatalog(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	assert.Len(t, first.Products, 24)

	second, err := LoadCatalog(ctx, DriverSQLite, dsn)
	require.NoError(t, err)
	assert.Len(t, second.Products, 24)
	assert.Len(t, second.Ingredients, 58)

	m := product.NewMatcher(second)
	assert.Equal(t, "prod-egg-fresh-30", m.Match("계란").ID)
}

func TestLoadCatalogEmbedded(t *testing.T) {
	catalog, err := LoadCatalog(context.Background(), DriverEmbedded, "")
	require.NoError(t, err)
	assert.NotEmpty(t, catalog.Products)
}

func TestLoadCatalogUnsupportedDriver(t *testing.T) {
	_, err := LoadCatalog(context.Background(), "mysql", "dsn")
	assert.ErrorIs(t, err, common.ErrCatalogLoad)
}
