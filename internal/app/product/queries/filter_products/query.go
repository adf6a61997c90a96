package filter_products

import (
	"context"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
)

// Default page sizes for storefront browsing.
const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Request is a storefront browse request. Only active products are returned.
type Request struct {
	CategorySlug string
	Search       string
	MinPrice     *int64
	MaxPrice     *int64
	Colors       []string
	Sizes        []string
	SortBy       string
	Page         int
	Limit        int
}

// Result is one page of enriched products with totals over the whole filtered set.
type Result struct {
	Products    []*contracts.EnrichedProduct `json:"products"`
	TotalItems  int                          `json:"totalItems"`
	TotalPages  int                          `json:"totalPages"`
	CurrentPage int                          `json:"currentPage"`
	HasMore     bool                         `json:"hasMore"`
}

// Query handles storefront filtered browsing.
type Query struct {
	selector        *catalog.Selector
	enricher        *catalog.Enricher
	defaultPageSize int
	maxPageSize     int
}

// NewQuery creates a new filter products query. Non-positive sizes use the defaults.
func NewQuery(selector *catalog.Selector, enricher *catalog.Enricher, defaultPageSize, maxPageSize int) *Query {
	if defaultPageSize < 1 {
		defaultPageSize = DefaultPageSize
	}
	if maxPageSize < 1 {
		maxPageSize = MaxPageSize
	}
	return &Query{
		selector:        selector,
		enricher:        enricher,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// Spec converts the request into a filter specification.
func (q *Query) Spec(req *Request) catalog.FilterSpec {
	size := req.Limit
	if size < 1 {
		size = q.defaultPageSize
	}
	size = min(size, q.maxPageSize)

	return catalog.FilterSpec{
		Candidates: catalog.CandidateSpec{
			Search:       req.Search,
			CategorySlug: req.CategorySlug,
			Status:       catalog.ActiveOnly(),
		},
		Facets: services.Facets{
			MinPrice: req.MinPrice,
			MaxPrice: req.MaxPrice,
			Colors:   req.Colors,
			Sizes:    req.Sizes,
			Sort:     services.ParseSortKey(req.SortBy),
		},
		Page:     max(req.Page, 1),
		PageSize: size,
	}
}

// Execute selects candidates, applies facets and sort, paginates and
// enriches only the returned page.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	spec := q.Spec(req)

	candidates, err := q.selector.Select(ctx, spec.Candidates)
	if err != nil {
		return nil, err
	}

	filtered := services.ApplyFacets(candidates, spec.Facets)
	page := services.Paginate(filtered, spec.Page, spec.PageSize)

	products, err := q.enricher.EnrichAll(ctx, page.Items)
	if err != nil {
		return nil, err
	}

	return &Result{
		Products:    products,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		CurrentPage: page.CurrentPage,
		HasMore:     page.HasMore,
	}, nil
}
