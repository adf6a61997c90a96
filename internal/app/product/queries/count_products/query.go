package count_products

import (
	"context"

	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Request contains the optional count filters.
type Request struct {
	Status     string
	CategoryID string
	Search     string
}

// Result is the count. Approximate marks a search count that reached the
// candidate ceiling; the true number of matches may be higher.
type Result struct {
	Count       int64 `json:"count"`
	Approximate bool  `json:"approximate,omitempty"`
}

// Query handles the product count query.
type Query struct {
	counter *countagg.Counter
}

// NewQuery creates a new count products query.
func NewQuery(counter *countagg.Counter) *Query {
	return &Query{
		counter: counter,
	}
}

// Execute counts products matching req.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	filter := countagg.CountFilter{
		CategoryID: req.CategoryID,
		Search:     req.Search,
	}
	if req.Status != "" {
		s := domain.ProductStatus(req.Status)
		if !s.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = &s
	}

	res, err := q.counter.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &Result{Count: res.Count, Approximate: res.Approximate}, nil
}
