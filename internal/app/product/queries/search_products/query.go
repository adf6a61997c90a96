package search_products

import (
	"context"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// DefaultLimit is the maximum number of search results.
const DefaultLimit = 50

// Request contains the search text and optional filters.
type Request struct {
	Query      string
	Status     string
	CategoryID string
}

// Query handles full-text product search.
type Query struct {
	selector *catalog.Selector
	enricher *catalog.Enricher
	limit    int
}

// NewQuery creates a new search products query. A limit below 1 uses DefaultLimit.
func NewQuery(selector *catalog.Selector, enricher *catalog.Enricher, limit int) *Query {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Query{
		selector: selector,
		enricher: enricher,
		limit:    limit,
	}
}

// Execute returns up to the limit best matches, enriched. Blank text returns nothing.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.EnrichedProduct, error) {
	if strings.TrimSpace(req.Query) == "" {
		return []*contracts.EnrichedProduct{}, nil
	}

	spec := catalog.CandidateSpec{Search: req.Query, CategoryID: req.CategoryID}
	if req.Status != "" {
		s := domain.ProductStatus(req.Status)
		if !s.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		spec.Status = &s
	}

	hits, err := q.selector.Select(ctx, spec)
	if err != nil {
		return nil, err
	}
	if len(hits) > q.limit {
		hits = hits[:q.limit]
	}
	return q.enricher.EnrichAll(ctx, hits)
}
