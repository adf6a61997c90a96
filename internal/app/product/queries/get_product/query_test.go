package get_product

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/testutil"
)

func TestGetProduct(t *testing.T) {
	store := memstore.New()
	testutil.SeedCategoryTree(store)
	testutil.NewProductBuilder("sofa").WithCategory(testutil.CategorySofas).Put(store)
	testutil.NewProductBuilder("draft").WithStatus(domain.StatusDraft).Put(store)
	store.PutReview(&domain.Review{ID: "r1", ProductID: "sofa", Rating: 4, Status: domain.ReviewApproved})

	log, _ := testutil.NullLogger()
	q := NewQuery(store, catalog.NewEnricher(store, 1, log))
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		got, err := q.Execute(ctx, &Request{ProductID: "sofa"})
		require.NoError(t, err)
		assert.Equal(t, "Sofas", got.CategoryName)
		assert.Equal(t, 1, got.ReviewCount)
		assert.InDelta(t, 4.0, got.AverageRating, 0.001)
	})

	t.Run("by slug", func(t *testing.T) {
		got, err := q.Execute(ctx, &Request{Slug: "sofa"})
		require.NoError(t, err)
		assert.Equal(t, "sofa", got.ID)
	})

	t.Run("storefront hides drafts", func(t *testing.T) {
		_, err := q.Execute(ctx, &Request{Slug: "draft", ActiveOnly: true})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		got, err := q.Execute(ctx, &Request{ProductID: "draft"})
		require.NoError(t, err)
		assert.Equal(t, "draft", got.Status)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := q.Execute(ctx, &Request{ProductID: "nope"})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		_, err = q.Execute(ctx, &Request{})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
