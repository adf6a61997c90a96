package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
)

// fanOutLimit caps concurrent category index reads for one request.
const fanOutLimit = 8

// Selector produces candidate sets, at most ceiling products each.
type Selector struct {
	reader  contracts.CatalogReader
	ceiling int
	log     logrus.FieldLogger
}

// NewSelector creates a Selector. A ceiling below 1 uses DefaultCeiling.
func NewSelector(reader contracts.CatalogReader, ceiling int, log logrus.FieldLogger) *Selector {
	if ceiling < 1 {
		ceiling = DefaultCeiling
	}
	return &Selector{reader: reader, ceiling: ceiling, log: log}
}

// Ceiling returns the candidate bound.
func (s *Selector) Ceiling() int {
	return s.ceiling
}

// Select runs the strategy chosen by spec. The result is unsorted with
// respect to facets; an unknown category slug yields an empty set.
func (s *Selector) Select(ctx context.Context, spec CandidateSpec) ([]*domain.Product, error) {
	strategy := spec.Strategy()
	s.log.WithFields(logrus.Fields{
		"strategy": strategy.String(),
		"category": spec.CategorySlug + spec.CategoryID,
	}).Debug("selecting candidates")

	switch strategy {
	case StrategySearch:
		return s.bySearch(ctx, spec)
	case StrategyCategory:
		return s.byCategory(ctx, spec)
	default:
		products, err := s.reader.ListByStatus(ctx, spec.Status, s.ceiling)
		if err != nil {
			return nil, fmt.Errorf("failed to list by status: %w", err)
		}
		return products, nil
	}
}

// bySearch fetches up to the ceiling by relevance and post-filters status
// and category membership.
func (s *Selector) bySearch(ctx context.Context, spec CandidateSpec) ([]*domain.Product, error) {
	hits, err := s.reader.SearchProducts(ctx, strings.TrimSpace(spec.Search), nil, s.ceiling)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	var members map[string]struct{}
	if spec.CategorySlug != "" {
		tree, err := s.tree(ctx)
		if err != nil {
			return nil, err
		}
		members = tree.DescendantSet(spec.CategorySlug)
		if len(members) == 0 {
			return nil, nil
		}
	}

	out := make([]*domain.Product, 0, len(hits))
	for _, p := range hits {
		if spec.Status != nil && p.Status() != *spec.Status {
			continue
		}
		if spec.CategoryID != "" && !p.InCategory(spec.CategoryID) {
			continue
		}
		if members != nil {
			id := p.CategoryID()
			if id == nil {
				continue
			}
			if _, ok := members[*id]; !ok {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

// byCategory reads each descendant category up to the ceiling, merges,
// sorts newest first and truncates to the ceiling. With many descendants
// this over-fetches up to ceiling × categories rows.
func (s *Selector) byCategory(ctx context.Context, spec CandidateSpec) ([]*domain.Product, error) {
	var categoryIDs []string
	if spec.CategoryID != "" {
		categoryIDs = []string{spec.CategoryID}
	} else {
		tree, err := s.tree(ctx)
		if err != nil {
			return nil, err
		}
		categoryIDs = tree.DescendantsOfSlug(spec.CategorySlug)
	}
	if len(categoryIDs) == 0 {
		return nil, nil
	}

	batches := make([][]*domain.Product, len(categoryIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanOutLimit)
	for i, id := range categoryIDs {
		g.Go(func() error {
			products, err := s.reader.ListByCategory(gctx, id, spec.Status, s.ceiling)
			if err != nil {
				return fmt.Errorf("failed to list category %s: %w", id, err)
			}
			batches[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	merged := make([]*domain.Product, 0)
	for _, batch := range batches {
		for _, p := range batch {
			if seen[p.ID()] {
				continue
			}
			seen[p.ID()] = true
			merged = append(merged, p)
		}
	}

	services.SortProducts(merged, services.SortNewest)
	if len(merged) > s.ceiling {
		merged = merged[:s.ceiling]
	}
	return merged, nil
}

func (s *Selector) tree(ctx context.Context) (*services.CategoryTree, error) {
	categories, err := s.reader.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return services.NewCategoryTree(categories), nil
}
