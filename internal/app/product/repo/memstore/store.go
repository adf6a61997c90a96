// Package memstore is an in-memory implementation of the catalog contracts.
// It backs STORE_DRIVER=memory and the package tests of the query and usecase layers.
package memstore

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/btree"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// CounterFault lets tests fail count aggregate writes. Returning nil lets the write proceed.
type CounterFault func(op string, key domain.CountKey) error

// Store holds every table in memory. Writers are serialized by a single lock.
type Store struct {
	mu sync.RWMutex

	products   map[string]domain.ProductState
	categories map[string]*domain.Category
	variants   map[string][]*domain.Variant
	reviews    map[string][]*domain.Review
	entries    *btree.BTreeG[domain.CountKey]
	totals     map[string]int64
	outbox     map[string]*contracts.OutboxEvent

	fault CounterFault
	now   func() time.Time
}

var (
	_ contracts.CatalogReader = (*Store)(nil)
	_ contracts.UnitOfWork    = (*Store)(nil)
	_ contracts.CountReader   = (*Store)(nil)
	_ contracts.OutboxReader  = (*Store)(nil)
)

// New creates an empty store.
func New() *Store {
	return &Store{
		products:   make(map[string]domain.ProductState),
		categories: make(map[string]*domain.Category),
		variants:   make(map[string][]*domain.Variant),
		reviews:    make(map[string][]*domain.Review),
		entries:    btree.NewG(32, func(a, b domain.CountKey) bool { return a.Less(b) }),
		totals:     make(map[string]int64),
		outbox:     make(map[string]*contracts.OutboxEvent),
		now:        time.Now,
	}
}

// InjectCounterFault installs fn for subsequent transactions. Pass nil to clear.
func (s *Store) InjectCounterFault(fn CounterFault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// PutCategory upserts a category.
func (s *Store) PutCategory(c *domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.categories[c.ID] = &cp
}

// PutVariant upserts a variant under its product.
func (s *Store) PutVariant(v *domain.Variant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	list := slices.DeleteFunc(s.variants[v.ProductID], func(x *domain.Variant) bool { return x.ID == v.ID })
	list = append(list, &cp)
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	s.variants[v.ProductID] = list
}

// PutReview upserts a review.
func (s *Store) PutReview(r *domain.Review) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	list := slices.DeleteFunc(s.reviews[r.ProductID], func(x *domain.Review) bool { return x.ID == r.ID })
	s.reviews[r.ProductID] = append(list, &cp)
}

// PutProductRaw writes a product row without touching the count aggregate.
// It models data written before the aggregate existed.
func (s *Store) PutProductRaw(state domain.ProductState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[state.ID] = state.Clone()
}

// PutCountTotal overwrites a namespace total without touching its entries.
// It models a total that drifted from the entry set.
func (s *Store) PutCountTotal(namespace string, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totals[namespace] = total
}

// Do runs fn under the write lock and applies its writes only if it returns nil.
// fn must read through tx only; the Store's own read methods would deadlock.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx contracts.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// CountNamespace returns the stored total for namespace.
func (s *Store) CountNamespace(_ context.Context, namespace string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totals[namespace], nil
}

// ScanEntries visits every counter entry in key order.
func (s *Store) ScanEntries(ctx context.Context, fn func(domain.CountKey) error) error {
	s.mu.RLock()
	keys := make([]domain.CountKey, 0, s.entries.Len())
	s.entries.Ascend(func(k domain.CountKey) bool {
		keys = append(keys, k)
		return true
	})
	s.mu.RUnlock()

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(k); err != nil {
			return err
		}
	}
	return nil
}

// ListEvents lists outbox events newest first.
func (s *Store) ListEvents(_ context.Context, filter contracts.EventFilter) ([]*contracts.OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*contracts.OutboxEvent, 0)
	for _, e := range s.outbox {
		if filter.EventType != "" && e.EventType != filter.EventType {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].EventID > out[j].EventID
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// countRange counts entries in one namespace. Caller holds the lock.
func (s *Store) countRange(namespace string) int64 {
	var n int64
	s.entries.AscendGreaterOrEqual(domain.CountKey{Namespace: namespace}, func(k domain.CountKey) bool {
		if k.Namespace != namespace {
			return false
		}
		n++
		return true
	})
	return n
}
