package get_product

import (
	"context"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Request identifies the product by ID or, when ID is empty, by slug.
type Request struct {
	ProductID string
	Slug      string

	// ActiveOnly hides non-active products, as the storefront does.
	ActiveOnly bool
}

// Query handles the get product query use case.
type Query struct {
	readModel contracts.CatalogReader
	enricher  *catalog.Enricher
}

// NewQuery creates a new get product query.
func NewQuery(readModel contracts.CatalogReader, enricher *catalog.Enricher) *Query {
	return &Query{
		readModel: readModel,
		enricher:  enricher,
	}
}

// Execute retrieves and enriches a product.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.EnrichedProduct, error) {
	var (
		p   *domain.Product
		err error
	)
	switch {
	case req.ProductID != "":
		p, err = q.readModel.GetProduct(ctx, req.ProductID)
	case req.Slug != "":
		p, err = q.readModel.GetProductBySlug(ctx, req.Slug)
	default:
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	if req.ActiveOnly && !p.IsActive() {
		return nil, domain.ErrProductNotFound
	}

	return q.enricher.Enrich(ctx, p)
}
