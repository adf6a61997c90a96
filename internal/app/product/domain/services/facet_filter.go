package services

import (
	"sort"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// SortKey selects the ordering of filtered results.
type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
)

// ParseSortKey maps a caller-provided sort key. Unknown keys fall back to newest.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")) {
	case string(SortPriceAsc):
		return SortPriceAsc
	case string(SortPriceDesc):
		return SortPriceDesc
	default:
		return SortNewest
	}
}

// Facets are the in-memory predicates applied to a candidate set.
// Empty color/size lists and nil price bounds match everything.
type Facets struct {
	MinPrice *int64
	MaxPrice *int64
	Colors   []string
	Sizes    []string
	Sort     SortKey
}

// Match reports whether p passes every facet.
func (f Facets) Match(p *domain.Product) bool {
	price := p.BasePrice()
	if f.MinPrice != nil && price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && price > *f.MaxPrice {
		return false
	}

	if len(f.Colors) > 0 {
		names := make([]string, 0, len(p.ColorOptions()))
		for _, c := range p.ColorOptions() {
			names = append(names, c.Name)
		}
		if !intersectsFold(names, f.Colors) {
			return false
		}
	}

	if len(f.Sizes) > 0 && !intersectsFold(p.SizeOptions(), f.Sizes) {
		return false
	}
	return true
}

// ApplyFacets filters products and sorts the survivors. The input is not modified.
func ApplyFacets(products []*domain.Product, f Facets) []*domain.Product {
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	SortProducts(out, f.Sort)
	return out
}

// SortProducts orders products in place. Ties fall back to newest first, then id.
func SortProducts(products []*domain.Product, key SortKey) {
	newest := func(a, b *domain.Product) bool {
		if !a.CreatedAt().Equal(b.CreatedAt()) {
			return a.CreatedAt().After(b.CreatedAt())
		}
		return a.ID() > b.ID()
	}

	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		switch key {
		case SortPriceAsc:
			if a.BasePrice() != b.BasePrice() {
				return a.BasePrice() < b.BasePrice()
			}
		case SortPriceDesc:
			if a.BasePrice() != b.BasePrice() {
				return a.BasePrice() > b.BasePrice()
			}
		}
		return newest(a, b)
	})
}

func intersectsFold(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(w)) {
				return true
			}
		}
	}
	return false
}
