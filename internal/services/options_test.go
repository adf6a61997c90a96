package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/count_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/filter_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/get_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/list_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/activate_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/archive_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/backfill_counters"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/create_product"
	"github.com/light-bringer/catalog-engine/internal/config"
	"github.com/light-bringer/catalog-engine/internal/services"
	"github.com/light-bringer/catalog-engine/internal/testutil"
)

func testConfig() *config.Config {
	return &config.Config{
		StoreDriver:       config.DriverMemory,
		JWTSecret:         "secret",
		CandidateCeiling:  1000,
		SearchLimit:       50,
		EnrichConcurrency: 4,
		DefaultPageSize:   12,
		MaxPageSize:       100,
		SuggestionLimit:   5,
	}
}

// setupTest wires the whole application on an in-memory store.
func setupTest(t *testing.T) (*services.ServiceOptions, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	testutil.SeedCategoryTree(store)
	log, _ := testutil.NullLogger()
	return services.New(testConfig(), log, testutil.NewMockClock(), services.MemoryBackend(store)), store
}

func count(t *testing.T, app *services.ServiceOptions, status string) int64 {
	t.Helper()
	res, err := app.Queries.CountProducts.Execute(context.Background(), &count_products.Request{Status: status})
	require.NoError(t, err)
	return res.Count
}

func TestNewServiceOptions(t *testing.T) {
	log, _ := testutil.NullLogger()

	t.Run("memory driver", func(t *testing.T) {
		app, err := services.NewServiceOptions(context.Background(), testConfig(), log)
		require.NoError(t, err)
		defer app.Close()

		assert.Nil(t, app.Backend.SpannerClient)
		assert.NotNil(t, app.Commands.CreateProduct)
		assert.NotNil(t, app.Queries.ListSyncFailures)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := testConfig()
		cfg.StoreDriver = "postgres"

		_, err := services.NewServiceOptions(context.Background(), cfg, log)
		assert.Error(t, err)
	})
}

func TestProductLifecycle(t *testing.T) {
	ctx := context.Background()
	app, _ := setupTest(t)
	admin := testutil.Admin()

	// Create a draft in a sub-category
	productID, err := app.Commands.CreateProduct.Execute(ctx, &create_product.Request{
		Actor:      admin,
		Name:       "Corner Sofa",
		BasePrice:  120000,
		CategoryID: testutil.Ptr(testutil.CategorySofas),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count(t, app, "draft"))

	// Storefront sees nothing until activation
	page, err := app.Queries.FilterProducts.Execute(ctx, &filter_products.Request{CategorySlug: "home"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)

	require.NoError(t, app.Commands.ActivateProduct.Execute(ctx, &activate_product.Request{Actor: admin, ProductID: productID}))
	assert.Equal(t, int64(0), count(t, app, "draft"))
	assert.Equal(t, int64(1), count(t, app, "active"))

	page, err = app.Queries.FilterProducts.Execute(ctx, &filter_products.Request{CategorySlug: "home"})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalItems)
	assert.Equal(t, "Sofas", page.Products[0].CategoryName)

	got, err := app.Queries.GetProduct.Execute(ctx, &get_product.Request{Slug: "corner-sofa", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, productID, got.ID)
	assert.NotNil(t, got.PublishedAt)

	// Archive is idempotent
	for range 2 {
		require.NoError(t, app.Commands.ArchiveProduct.Execute(ctx, &archive_product.Request{Actor: admin, ProductID: productID}))
	}
	assert.Equal(t, int64(1), count(t, app, "archived"))
	assert.Equal(t, int64(1), count(t, app, ""))

	_, err = app.Queries.GetProduct.Execute(ctx, &get_product.Request{Slug: "corner-sofa", ActiveOnly: true})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestConcurrentCreates_KeepCountsExact(t *testing.T) {
	ctx := context.Background()
	app, _ := setupTest(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := domain.StatusDraft
			if i%2 == 0 {
				status = domain.StatusActive
			}
			_, errs[i] = app.Commands.CreateProduct.Execute(ctx, &create_product.Request{
				Actor:     testutil.Admin(),
				Name:      "Same Name",
				BasePrice: int64(1000 + i),
				Status:    status,
			})
		}()
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, fmt.Sprintf("create %d", i))
	}
	assert.Equal(t, int64(n/2), count(t, app, "active"))
	assert.Equal(t, int64(n/2), count(t, app, "draft"))

	// Every product got a distinct slug
	list, err := app.Queries.ListProducts.Execute(ctx, &list_products.Request{PageSize: 100})
	require.NoError(t, err)
	slugs := make(map[string]bool)
	for _, p := range list.Page {
		slugs[p.Slug] = true
	}
	assert.Len(t, slugs, n)

	// Nothing drifted, so a backfill changes nothing
	res, err := app.Commands.BackfillCounters.Execute(ctx, &backfill_counters.Request{Actor: testutil.Admin()})
	require.NoError(t, err)
	assert.Zero(t, res.Missing)
	assert.Zero(t, res.Extra)
}
