package catalog

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
)

// NoSKU is shown for products without variants.
const NoSKU = "—"

// DefaultEnrichConcurrency bounds per-request enrichment goroutines.
const DefaultEnrichConcurrency = 8

// Enricher turns products into display records.
type Enricher struct {
	reader      contracts.CatalogReader
	concurrency int
	log         logrus.FieldLogger
}

// NewEnricher creates an Enricher. concurrency below 1 uses DefaultEnrichConcurrency.
func NewEnricher(reader contracts.CatalogReader, concurrency int, log logrus.FieldLogger) *Enricher {
	if concurrency < 1 {
		concurrency = DefaultEnrichConcurrency
	}
	return &Enricher{reader: reader, concurrency: concurrency, log: log}
}

// EnrichAll enriches products concurrently, preserving order. A failure on
// one item sets its EnrichmentError and leaves the rest of the batch intact;
// only a failure to load the category tree fails the call.
func (e *Enricher) EnrichAll(ctx context.Context, products []*domain.Product) ([]*contracts.EnrichedProduct, error) {
	out := make([]*contracts.EnrichedProduct, len(products))
	if len(products) == 0 {
		return out, nil
	}

	categories, err := e.reader.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	tree := services.NewCategoryTree(categories)

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, p := range products {
		g.Go(func() error {
			out[i] = e.enrich(ctx, p, tree)
			return nil
		})
	}
	_ = g.Wait()
	return out, nil
}

// Enrich enriches a single product.
func (e *Enricher) Enrich(ctx context.Context, p *domain.Product) (*contracts.EnrichedProduct, error) {
	out, err := e.EnrichAll(ctx, []*domain.Product{p})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *Enricher) enrich(ctx context.Context, p *domain.Product, tree *services.CategoryTree) *contracts.EnrichedProduct {
	rec := baseRecord(p)
	if id := p.CategoryID(); id != nil {
		rec.CategoryName = tree.Name(*id)
	}

	variants, err := e.reader.ListVariants(ctx, p.ID())
	if err != nil {
		return e.failed(rec, "variants", err)
	}
	reviews, err := e.reader.ListApprovedReviews(ctx, p.ID())
	if err != nil {
		return e.failed(rec, "reviews", err)
	}

	stock := domain.ComputeStock(p, variants)
	rating := domain.ComputeRating(reviews)

	rec.VariantCount = len(variants)
	rec.EffectiveStock = stock.Effective
	rec.StockStatus = string(stock.Status)
	rec.ReviewCount = rating.Count
	rec.AverageRating = rating.Average
	rec.DefaultSKU = NoSKU

	if v := defaultVariant(variants); v != nil {
		id := v.ID
		rec.DefaultVariantID = &id
		if v.SKU != "" {
			rec.DefaultSKU = v.SKU
		}
	}
	return rec
}

func (e *Enricher) failed(rec *contracts.EnrichedProduct, stage string, err error) *contracts.EnrichedProduct {
	e.log.WithFields(logrus.Fields{
		"product_id": rec.ID,
		"stage":      stage,
	}).WithError(err).Warn("product enrichment failed")
	rec.EnrichmentError = fmt.Sprintf("%s: %v", stage, err)
	return rec
}

// defaultVariant is the variant flagged isDefault, else the first one.
func defaultVariant(variants []*domain.Variant) *domain.Variant {
	for _, v := range variants {
		if v.IsDefault {
			return v
		}
	}
	if len(variants) > 0 {
		return variants[0]
	}
	return nil
}

func baseRecord(p *domain.Product) *contracts.EnrichedProduct {
	rec := &contracts.EnrichedProduct{
		ID:                p.ID(),
		Name:              p.Name(),
		Slug:              p.Slug(),
		Description:       p.Description(),
		Story:             p.Story(),
		BasePrice:         p.BasePrice(),
		CompareAtPrice:    p.CompareAtPrice(),
		Status:            string(p.Status()),
		ProductType:       string(p.ProductType()),
		CategoryID:        p.CategoryID(),
		ColorOptions:      p.ColorOptions(),
		SizeOptions:       p.SizeOptions(),
		DigitalStockCount: p.DigitalStockCount(),
		Tags:              p.Tags(),
		Featured:          p.Featured(),
		FeaturedImage:     p.FeaturedImage(),
		RequiresShipping:  p.RequiresShipping(),
		CreatedAt:         p.CreatedAt(),
		UpdatedAt:         p.UpdatedAt(),
		PublishedAt:       p.PublishedAt(),
		DefaultSKU:        NoSKU,
	}
	if m := p.DigitalStockMode(); m != nil {
		mode := string(*m)
		rec.DigitalStockMode = &mode
	}
	return rec
}
