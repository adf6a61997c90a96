package search_suggestions

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
)

const (
	DefaultLimit = 5
	MaxLimit     = 20
)

// Request contains the partial text typed by the shopper.
type Request struct {
	Query string
	Limit int
}

// Query handles search-as-you-type suggestions over active products.
type Query struct {
	readModel    contracts.CatalogReader
	defaultLimit int
}

// NewQuery creates a new suggestions query.
func NewQuery(readModel contracts.CatalogReader, defaultLimit int) *Query {
	if defaultLimit < 1 || defaultLimit > MaxLimit {
		defaultLimit = DefaultLimit
	}
	return &Query{
		readModel:    readModel,
		defaultLimit: defaultLimit,
	}
}

// Execute returns at most MaxLimit suggestions.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*contracts.Suggestion, error) {
	text := strings.TrimSpace(req.Query)
	if text == "" {
		return []*contracts.Suggestion{}, nil
	}

	limit := req.Limit
	if limit < 1 {
		limit = q.defaultLimit
	}
	limit = min(limit, MaxLimit)

	products, err := q.readModel.SearchProducts(ctx, text, catalog.ActiveOnly(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search suggestions: %w", err)
	}

	out := make([]*contracts.Suggestion, 0, len(products))
	for _, p := range products {
		out = append(out, &contracts.Suggestion{
			ID:    p.ID(),
			Name:  p.Name(),
			Slug:  p.Slug(),
			Image: p.FeaturedImage(),
		})
	}
	return out, nil
}
