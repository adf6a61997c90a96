// Package catalog holds the read-path engine: strategy selection over the
// store's indexes, and enrichment of products into display records.
package catalog

import (
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
)

// DefaultCeiling bounds every candidate fetch.
const DefaultCeiling = 1000

// Strategy is the access path chosen for a candidate fetch.
type Strategy int

const (
	// StrategySearch reads the full-text index, then post-filters status and category.
	StrategySearch Strategy = iota
	// StrategyCategory reads the category index once per descendant category.
	StrategyCategory
	// StrategyStatus reads the status index.
	StrategyStatus
)

func (s Strategy) String() string {
	switch s {
	case StrategySearch:
		return "search"
	case StrategyCategory:
		return "category"
	default:
		return "status"
	}
}

// CandidateSpec selects a bounded candidate set.
//
// CategorySlug matches the category and all its descendants. CategoryID
// matches one category exactly. A nil Status matches every status.
type CandidateSpec struct {
	Search       string
	CategorySlug string
	CategoryID   string
	Status       *domain.ProductStatus
}

// Strategy returns the access path for the spec: free text wins over
// category, and category wins over status.
func (s CandidateSpec) Strategy() Strategy {
	switch {
	case strings.TrimSpace(s.Search) != "":
		return StrategySearch
	case s.CategorySlug != "" || s.CategoryID != "":
		return StrategyCategory
	default:
		return StrategyStatus
	}
}

// FilterSpec is a full storefront browse request. Evaluation order is fixed:
// candidate selection, facet filters, sort, then pagination.
type FilterSpec struct {
	Candidates CandidateSpec
	Facets     services.Facets
	Page       int
	PageSize   int
}

// ActiveOnly returns a pointer to the active status, the storefront default.
func ActiveOnly() *domain.ProductStatus {
	s := domain.StatusActive
	return &s
}
