package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func nullLogger() *logrus.Logger {
	log, _ := logtest.NewNullLogger()
	return log
}

type seed func(*domain.ProductState)

func inCategory(id string) seed { return func(s *domain.ProductState) { s.CategoryID = ptr(id) } }
func withStatus(st domain.ProductStatus) seed {
	return func(s *domain.ProductState) { s.Status = st }
}
func named(name string) seed { return func(s *domain.ProductState) { s.Name = name } }

func putProduct(store *memstore.Store, id string, age int, opts ...seed) {
	s := domain.ProductState{
		ID:          id,
		Name:        id,
		Slug:        id,
		Status:      domain.StatusActive,
		ProductType: domain.TypePhysical,
		CreatedAt:   baseTime.Add(time.Duration(age) * time.Minute),
	}
	for _, o := range opts {
		o(&s)
	}
	store.PutProductRaw(s)
}

// home > living-room > sofas, plus an unrelated garden root.
func seedTree(store *memstore.Store) {
	store.PutCategory(&domain.Category{ID: "home", Name: "Home", Slug: "home"})
	store.PutCategory(&domain.Category{ID: "living", Name: "Living Room", Slug: "living-room", ParentID: ptr("home")})
	store.PutCategory(&domain.Category{ID: "sofas", Name: "Sofas", Slug: "sofas", ParentID: ptr("living")})
	store.PutCategory(&domain.Category{ID: "garden", Name: "Garden", Slug: "garden"})
}

func ids(products []*domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID())
	}
	return out
}

func TestCandidateSpec_Strategy(t *testing.T) {
	tests := []struct {
		name string
		spec CandidateSpec
		want Strategy
	}{
		{"nothing", CandidateSpec{}, StrategyStatus},
		{"status only", CandidateSpec{Status: ActiveOnly()}, StrategyStatus},
		{"category slug", CandidateSpec{CategorySlug: "home"}, StrategyCategory},
		{"category id", CandidateSpec{CategoryID: "home"}, StrategyCategory},
		{"search wins over category", CandidateSpec{Search: "sofa", CategorySlug: "home"}, StrategySearch},
		{"blank search ignored", CandidateSpec{Search: "   ", CategorySlug: "home"}, StrategyCategory},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Strategy())
		})
	}
}

func TestSelector_CategoryDescendants(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	seedTree(store)
	putProduct(store, "couch", 1, inCategory("sofas"))
	putProduct(store, "rug", 2, inCategory("living"))
	putProduct(store, "hose", 3, inCategory("garden"))
	putProduct(store, "draft-sofa", 4, inCategory("sofas"), withStatus(domain.StatusDraft))

	sel := NewSelector(store, 100, nullLogger())

	for _, slug := range []string{"home", "living-room", "sofas"} {
		t.Run(slug, func(t *testing.T) {
			got, err := sel.Select(ctx, CandidateSpec{CategorySlug: slug, Status: ActiveOnly()})
			require.NoError(t, err)
			assert.Contains(t, ids(got), "couch")
			assert.NotContains(t, ids(got), "hose")
			assert.NotContains(t, ids(got), "draft-sofa")
		})
	}

	got, err := sel.Select(ctx, CandidateSpec{CategorySlug: "home", Status: ActiveOnly()})
	require.NoError(t, err)
	assert.Equal(t, []string{"rug", "couch"}, ids(got), "merged newest first")

	t.Run("reassigned product disappears", func(t *testing.T) {
		putProduct(store, "couch", 1, inCategory("garden"))
		for _, slug := range []string{"home", "living-room", "sofas"} {
			got, err := sel.Select(ctx, CandidateSpec{CategorySlug: slug, Status: ActiveOnly()})
			require.NoError(t, err)
			assert.NotContains(t, ids(got), "couch", slug)
		}
	})
}

func TestSelector_UnknownCategoryIsEmpty(t *testing.T) {
	store := memstore.New()
	seedTree(store)
	putProduct(store, "couch", 1, inCategory("sofas"))
	sel := NewSelector(store, 100, nullLogger())

	got, err := sel.Select(context.Background(), CandidateSpec{CategorySlug: "nope"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = sel.Select(context.Background(), CandidateSpec{Search: "couch", CategorySlug: "nope"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelector_CategoryMergeTruncatesToCeiling(t *testing.T) {
	store := memstore.New()
	seedTree(store)
	for i := range 5 {
		putProduct(store, fmt.Sprintf("sofa-%d", i), i, inCategory("sofas"))
		putProduct(store, fmt.Sprintf("lamp-%d", i), 10+i, inCategory("living"))
	}
	sel := NewSelector(store, 4, nullLogger())

	got, err := sel.Select(context.Background(), CandidateSpec{CategorySlug: "home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lamp-4", "lamp-3", "lamp-2", "lamp-1"}, ids(got))
}

func TestSelector_SearchPostFilters(t *testing.T) {
	store := memstore.New()
	seedTree(store)
	putProduct(store, "velvet-sofa", 1, named("Velvet Sofa"), inCategory("sofas"))
	putProduct(store, "garden-sofa", 2, named("Garden Sofa"), inCategory("garden"))
	putProduct(store, "old-sofa", 3, named("Old Sofa"), inCategory("sofas"), withStatus(domain.StatusArchived))
	putProduct(store, "lamp", 4, named("Lamp"), inCategory("living"))
	sel := NewSelector(store, 100, nullLogger())

	tests := []struct {
		name string
		spec CandidateSpec
		want []string
	}{
		{"all statuses", CandidateSpec{Search: "sofa"}, []string{"old-sofa", "garden-sofa", "velvet-sofa"}},
		{"active only", CandidateSpec{Search: "sofa", Status: ActiveOnly()}, []string{"garden-sofa", "velvet-sofa"}},
		{"descendant set", CandidateSpec{Search: "sofa", CategorySlug: "home", Status: ActiveOnly()}, []string{"velvet-sofa"}},
		{"exact category id", CandidateSpec{Search: "sofa", CategoryID: "garden"}, []string{"garden-sofa"}},
		{"prefix of last term", CandidateSpec{Search: "velv"}, []string{"velvet-sofa"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sel.Select(context.Background(), tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestSelector_StatusScanRespectsCeiling(t *testing.T) {
	store := memstore.New()
	for i := range 30 {
		putProduct(store, fmt.Sprintf("p-%02d", i), i)
	}
	sel := NewSelector(store, 10, nullLogger())

	got, err := sel.Select(context.Background(), CandidateSpec{Status: ActiveOnly()})
	require.NoError(t, err)
	require.Len(t, got, 10)
	assert.Equal(t, "p-29", got[0].ID())
}

func TestSelector_CyclicCategoriesTerminate(t *testing.T) {
	store := memstore.New()
	store.PutCategory(&domain.Category{ID: "a", Slug: "a", ParentID: ptr("b")})
	store.PutCategory(&domain.Category{ID: "b", Slug: "b", ParentID: ptr("a")})
	putProduct(store, "in-b", 1, inCategory("b"))
	sel := NewSelector(store, 100, nullLogger())

	got, err := sel.Select(context.Background(), CandidateSpec{CategorySlug: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"in-b"}, ids(got))
}

type flakyReader struct {
	contracts.CatalogReader
	failVariants map[string]bool
}

func (f flakyReader) ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	if f.failVariants[productID] {
		return nil, errors.New("variant backend unavailable")
	}
	return f.CatalogReader.ListVariants(ctx, productID)
}

func TestEnricher_DerivedFields(t *testing.T) {
	store := memstore.New()
	seedTree(store)
	putProduct(store, "couch", 1, inCategory("sofas"))
	putProduct(store, "ebook", 2, func(s *domain.ProductState) {
		s.ProductType = domain.TypeDigital
		s.DigitalStockMode = ptr(domain.StockModeLimited)
		s.DigitalStockCount = ptr(int64(3))
	})
	putProduct(store, "bare", 3)

	store.PutVariant(&domain.Variant{ID: "v1", ProductID: "couch", SKU: "C-1", StockCount: 4, CreatedAt: baseTime})
	store.PutVariant(&domain.Variant{ID: "v2", ProductID: "couch", SKU: "C-2", StockCount: 8, IsDefault: true, CreatedAt: baseTime.Add(time.Second)})
	store.PutReview(&domain.Review{ID: "r1", ProductID: "couch", Rating: 5, Status: domain.ReviewApproved})
	store.PutReview(&domain.Review{ID: "r2", ProductID: "couch", Rating: 4, Status: domain.ReviewApproved})
	store.PutReview(&domain.Review{ID: "r3", ProductID: "couch", Rating: 1, Status: domain.ReviewPending})

	products := make([]*domain.Product, 0, 3)
	for _, id := range []string{"couch", "ebook", "bare"} {
		p, err := store.GetProduct(context.Background(), id)
		require.NoError(t, err)
		products = append(products, p)
	}

	out, err := NewEnricher(store, 2, nullLogger()).EnrichAll(context.Background(), products)
	require.NoError(t, err)
	require.Len(t, out, 3)

	couch := out[0]
	assert.Equal(t, "couch", couch.ID)
	assert.Equal(t, "Sofas", couch.CategoryName)
	assert.Equal(t, 2, couch.VariantCount)
	assert.Equal(t, int64(12), couch.EffectiveStock)
	assert.Equal(t, string(domain.StockInStock), couch.StockStatus)
	assert.Equal(t, 2, couch.ReviewCount)
	assert.InDelta(t, 4.5, couch.AverageRating, 0.001)
	assert.Equal(t, "C-2", couch.DefaultSKU)
	require.NotNil(t, couch.DefaultVariantID)
	assert.Equal(t, "v2", *couch.DefaultVariantID)

	ebook := out[1]
	assert.Equal(t, int64(3), ebook.EffectiveStock)
	assert.Equal(t, string(domain.StockLowStock), ebook.StockStatus)
	assert.Equal(t, NoSKU, ebook.DefaultSKU)
	assert.Nil(t, ebook.DefaultVariantID)

	bare := out[2]
	assert.Equal(t, string(domain.StockOutOfStock), bare.StockStatus)
	assert.Zero(t, bare.ReviewCount)
	assert.Zero(t, bare.AverageRating)
	assert.Empty(t, bare.CategoryName)
}

func TestEnricher_FirstVariantIsDefaultFallback(t *testing.T) {
	store := memstore.New()
	putProduct(store, "tee", 1)
	store.PutVariant(&domain.Variant{ID: "b", ProductID: "tee", SKU: "T-B", CreatedAt: baseTime.Add(time.Second)})
	store.PutVariant(&domain.Variant{ID: "a", ProductID: "tee", SKU: "T-A", CreatedAt: baseTime})

	p, err := store.GetProduct(context.Background(), "tee")
	require.NoError(t, err)
	rec, err := NewEnricher(store, 0, nullLogger()).Enrich(context.Background(), p)
	require.NoError(t, err)

	require.NotNil(t, rec.DefaultVariantID)
	assert.Equal(t, "a", *rec.DefaultVariantID)
	assert.Equal(t, "T-A", rec.DefaultSKU)
}

func TestEnricher_PartialFailureIsIsolated(t *testing.T) {
	store := memstore.New()
	for i := range 6 {
		putProduct(store, fmt.Sprintf("p-%d", i), i)
	}
	reader := flakyReader{CatalogReader: store, failVariants: map[string]bool{"p-2": true}}
	log, hook := logtest.NewNullLogger()

	products, err := store.ListByStatus(context.Background(), nil, 0)
	require.NoError(t, err)

	out, err := NewEnricher(reader, 3, log).EnrichAll(context.Background(), products)
	require.NoError(t, err)
	require.Len(t, out, len(products))

	for i, rec := range out {
		require.NotNil(t, rec)
		assert.Equal(t, products[i].ID(), rec.ID, "order preserved")
		if rec.ID == "p-2" {
			assert.Contains(t, rec.EnrichmentError, "variant backend unavailable")
			continue
		}
		assert.Empty(t, rec.EnrichmentError)
	}

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "p-2", hook.LastEntry().Data["product_id"])
}
