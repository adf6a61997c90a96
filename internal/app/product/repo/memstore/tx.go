package memstore

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// tx buffers writes; reads see the buffer first, then the committed store.
type tx struct {
	s *Store

	products map[string]*domain.ProductState // nil value = deleted
	entries  map[domain.CountKey]bool        // false = deleted
	totals   map[string]int64                // absolute values after Recount
	deltas   map[string]int64
	outbox   []*contracts.OutboxEvent
	resolved []string
}

func newTx(s *Store) *tx {
	return &tx{
		s:        s,
		products: make(map[string]*domain.ProductState),
		entries:  make(map[domain.CountKey]bool),
		totals:   make(map[string]int64),
		deltas:   make(map[string]int64),
	}
}

func (t *tx) Products() contracts.ProductStore { return productStore{t} }
func (t *tx) Counters() contracts.CounterStore { return counterStore{t} }
func (t *tx) Outbox() contracts.OutboxStore    { return outboxStore{t} }

func (t *tx) commit() {
	s := t.s
	for id, state := range t.products {
		if state == nil {
			delete(s.products, id)
			delete(s.variants, id)
			continue
		}
		s.products[id] = *state
	}
	for key, present := range t.entries {
		if present {
			s.entries.ReplaceOrInsert(key)
		} else {
			s.entries.Delete(key)
		}
	}
	for ns, total := range t.totals {
		s.totals[ns] = total
	}
	for ns, d := range t.deltas {
		s.totals[ns] += d
	}
	now := s.now()
	for _, e := range t.outbox {
		cp := *e
		cp.CreatedAt = now
		s.outbox[cp.EventID] = &cp
	}
	for _, id := range t.resolved {
		if e, ok := s.outbox[id]; ok {
			e.Status = contracts.OutboxCompleted
			processed := now
			e.ProcessedAt = &processed
		}
	}
}

type productStore struct{ t *tx }

func (p productStore) lookup(id string) (domain.ProductState, bool) {
	if state, ok := p.t.products[id]; ok {
		if state == nil {
			return domain.ProductState{}, false
		}
		return *state, true
	}
	state, ok := p.t.s.products[id]
	return state, ok
}

func (p productStore) Get(_ context.Context, productID string) (*domain.Product, error) {
	state, ok := p.lookup(productID)
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return domain.ReconstructProduct(state), nil
}

func (p productStore) SlugExists(_ context.Context, slug string) (bool, error) {
	for _, state := range p.t.products {
		if state != nil && state.Slug == slug {
			return true, nil
		}
	}
	for id, state := range p.t.s.products {
		if _, staged := p.t.products[id]; staged {
			continue
		}
		if state.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (p productStore) Insert(_ context.Context, product *domain.Product) error {
	if _, ok := p.lookup(product.ID()); ok {
		return fmt.Errorf("product %s already exists", product.ID())
	}
	state := product.State()
	p.t.products[product.ID()] = &state
	return nil
}

func (p productStore) Update(_ context.Context, product *domain.Product) error {
	if _, ok := p.lookup(product.ID()); !ok {
		return domain.ErrProductNotFound
	}
	state := product.State()
	p.t.products[product.ID()] = &state
	return nil
}

func (p productStore) Delete(_ context.Context, product *domain.Product) error {
	if _, ok := p.lookup(product.ID()); !ok {
		return domain.ErrProductNotFound
	}
	p.t.products[product.ID()] = nil
	return nil
}

type counterStore struct{ t *tx }

func (c counterStore) Has(_ context.Context, key domain.CountKey) (bool, error) {
	if present, ok := c.t.entries[key]; ok {
		return present, nil
	}
	return c.t.s.entries.Has(key), nil
}

func (c counterStore) Insert(ctx context.Context, key domain.CountKey) error {
	if err := c.fault("insert", key); err != nil {
		return err
	}
	has, _ := c.Has(ctx, key)
	if has {
		return domain.ErrCountEntryExists
	}
	c.t.entries[key] = true
	c.t.deltas[key.Namespace]++
	return nil
}

func (c counterStore) Delete(ctx context.Context, key domain.CountKey) error {
	if err := c.fault("delete", key); err != nil {
		return err
	}
	has, _ := c.Has(ctx, key)
	if !has {
		return domain.ErrCountEntryNotFound
	}
	c.t.entries[key] = false
	c.t.deltas[key.Namespace]--
	return nil
}

func (c counterStore) Recount(_ context.Context, namespace string) (int64, error) {
	n := c.t.s.countRange(namespace)
	for key, present := range c.t.entries {
		if key.Namespace != namespace {
			continue
		}
		stored := c.t.s.entries.Has(key)
		switch {
		case present && !stored:
			n++
		case !present && stored:
			n--
		}
	}
	c.t.totals[namespace] = n
	delete(c.t.deltas, namespace)
	return n, nil
}

func (c counterStore) fault(op string, key domain.CountKey) error {
	if c.t.s.fault == nil {
		return nil
	}
	return c.t.s.fault(op, key)
}

type outboxStore struct{ t *tx }

func (o outboxStore) Insert(_ context.Context, event *contracts.OutboxEvent) error {
	cp := *event
	o.t.outbox = append(o.t.outbox, &cp)
	return nil
}

func (o outboxStore) MarkCompleted(_ context.Context, eventIDs []string) error {
	o.t.resolved = append(o.t.resolved, eventIDs...)
	return nil
}
