package memstore

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

func (s *Store) GetProduct(_ context.Context, productID string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.products[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return domain.ReconstructProduct(state), nil
}

func (s *Store) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, state := range s.products {
		if state.Slug == slug {
			return domain.ReconstructProduct(state), nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Category, 0, len(s.categories))
	for _, c := range s.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) SearchProducts(_ context.Context, text string, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	terms := tokenize(text)
	if len(terms) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	type hit struct {
		state domain.ProductState
		score int
	}
	hits := make([]hit, 0)
	for _, state := range s.products {
		if status != nil && state.Status != *status {
			continue
		}
		if score, ok := matchScore(state, terms); ok {
			hits = append(hits, hit{state: state, score: score})
		}
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return newestFirst(hits[i].state, hits[j].state)
	})

	out := make([]*domain.Product, 0, min(len(hits), limit))
	for _, h := range hits {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, domain.ReconstructProduct(h.state))
	}
	return out, nil
}

func (s *Store) ListByCategory(_ context.Context, categoryID string, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	return s.list(func(st domain.ProductState) bool {
		return st.CategoryID != nil && *st.CategoryID == categoryID && (status == nil || st.Status == *status)
	}, limit), nil
}

func (s *Store) ListByStatus(_ context.Context, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	return s.list(func(st domain.ProductState) bool {
		return status == nil || st.Status == *status
	}, limit), nil
}

func (s *Store) PageProducts(_ context.Context, req contracts.PageRequest) (*contracts.PageResult, error) {
	match := func(st domain.ProductState) bool {
		switch req.Index {
		case contracts.IndexStatus:
			return string(st.Status) == req.Value
		case contracts.IndexCategory:
			return st.CategoryID != nil && *st.CategoryID == req.Value
		default:
			return true
		}
	}

	all := s.list(func(st domain.ProductState) bool {
		return match(st) && req.After.Admits(st.CreatedAt, st.ID)
	}, 0)

	size := max(req.PageSize, 1)
	if len(all) <= size {
		return &contracts.PageResult{Products: all, IsDone: true}, nil
	}

	page := all[:size]
	last := page[len(page)-1]
	return &contracts.PageResult{
		Products: page,
		Next:     contracts.IndexCursor(last.CreatedAt(), last.ID()),
	}, nil
}

func (s *Store) CountByCategory(_ context.Context, categoryID string, status *domain.ProductStatus) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, st := range s.products {
		if st.CategoryID != nil && *st.CategoryID == categoryID && (status == nil || st.Status == *status) {
			n++
		}
	}
	return n, nil
}

func (s *Store) ListVariants(_ context.Context, productID string) ([]*domain.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Variant, 0, len(s.variants[productID]))
	for _, v := range s.variants[productID] {
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) ListApprovedReviews(_ context.Context, productID string) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Review, 0)
	for _, r := range s.reviews[productID] {
		if r.Status == domain.ReviewApproved {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ScanProducts(ctx context.Context, fn func(*domain.Product) error) error {
	for _, p := range s.list(func(domain.ProductState) bool { return true }, 0) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}

// list returns matching products newest first, truncated to limit when limit > 0.
func (s *Store) list(match func(domain.ProductState) bool, limit int) []*domain.Product {
	s.mu.RLock()
	states := make([]domain.ProductState, 0)
	for _, st := range s.products {
		if match(st) {
			states = append(states, st)
		}
	}
	s.mu.RUnlock()

	sort.Slice(states, func(i, j int) bool { return newestFirst(states[i], states[j]) })
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}

	out := make([]*domain.Product, 0, len(states))
	for _, st := range states {
		out = append(out, domain.ReconstructProduct(st))
	}
	return out
}

func newestFirst(a, b domain.ProductState) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchScore requires every query term to match a token; the last term may
// match as a prefix. Name matches weigh double.
func matchScore(st domain.ProductState, terms []string) (int, bool) {
	name := tokenize(st.Name)
	body := tokenize(st.Description + " " + strings.Join(st.Tags, " "))

	score := 0
	for i, term := range terms {
		prefix := i == len(terms)-1
		switch {
		case containsToken(name, term, prefix):
			score += 2
		case containsToken(body, term, prefix):
			score++
		default:
			return 0, false
		}
	}
	return score, true
}

func containsToken(tokens []string, term string, prefix bool) bool {
	for _, tok := range tokens {
		if tok == term || (prefix && strings.HasPrefix(tok, term)) {
			return true
		}
	}
	return false
}
