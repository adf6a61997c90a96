package countagg

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// CountFilter selects what to count. Empty fields match everything.
type CountFilter struct {
	Status     *domain.ProductStatus
	CategoryID string
	Search     string
}

// Path names how a count was answered.
type Path string

const (
	PathCounter  Path = "counter"
	PathCategory Path = "category"
	PathSearch   Path = "search"
)

// Result is a count and how it was obtained. Approximate is true when the
// count came from the ceiling-bounded search path and reached the ceiling.
type Result struct {
	Count       int64
	Path        Path
	Approximate bool
}

// Counter answers product counts.
type Counter struct {
	counts   contracts.CountReader
	reader   contracts.CatalogReader
	selector *catalog.Selector
}

// NewCounter creates a Counter.
func NewCounter(counts contracts.CountReader, reader contracts.CatalogReader, selector *catalog.Selector) *Counter {
	return &Counter{counts: counts, reader: reader, selector: selector}
}

// Count picks the cheapest correct path for f:
//   - search text: run the search strategy and count matches, capped at the ceiling
//   - category: count the category index exactly, without a ceiling
//   - otherwise: read the namespace totals, never scanning products
func (c *Counter) Count(ctx context.Context, f CountFilter) (Result, error) {
	switch {
	case strings.TrimSpace(f.Search) != "":
		matches, err := c.selector.Select(ctx, catalog.CandidateSpec{
			Search:     f.Search,
			CategoryID: f.CategoryID,
			Status:     f.Status,
		})
		if err != nil {
			return Result{}, err
		}
		return Result{
			Count:       int64(len(matches)),
			Path:        PathSearch,
			Approximate: len(matches) >= c.selector.Ceiling(),
		}, nil

	case f.CategoryID != "":
		n, err := c.reader.CountByCategory(ctx, f.CategoryID, f.Status)
		if err != nil {
			return Result{}, fmt.Errorf("failed to count category: %w", err)
		}
		return Result{Count: n, Path: PathCategory}, nil
	}

	n, err := c.countStatuses(ctx, f.Status)
	if err != nil {
		return Result{}, err
	}
	return Result{Count: n, Path: PathCounter}, nil
}

func (c *Counter) countStatuses(ctx context.Context, status *domain.ProductStatus) (int64, error) {
	statuses := domain.AllStatuses
	if status != nil {
		statuses = []domain.ProductStatus{*status}
	}

	var total int64
	for _, s := range statuses {
		n, err := c.counts.CountNamespace(ctx, domain.CountNamespace(s))
		if err != nil {
			return 0, fmt.Errorf("failed to read %s count: %w", s, err)
		}
		total += n
	}
	return total, nil
}
