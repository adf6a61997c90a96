package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/models/m_count"
	"github.com/light-bringer/catalog-engine/internal/models/m_outbox"
	"github.com/light-bringer/catalog-engine/internal/models/m_product"
	"github.com/light-bringer/catalog-engine/internal/pkg/committer"
)

// UnitOfWork runs catalog writes in Spanner read-write transactions.
type UnitOfWork struct {
	committer *committer.Committer
}

var _ contracts.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork creates a UnitOfWork.
func NewUnitOfWork(c *committer.Committer) *UnitOfWork {
	return &UnitOfWork{committer: c}
}

// Do runs fn in one read-write transaction. Mutations collected by the Tx
// stores are buffered only when fn succeeds.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx contracts.Tx) error) error {
	return u.committer.ReadWrite(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		t := newSpannerTx(txn)
		if err := fn(ctx, t); err != nil {
			return err
		}
		return t.flush(ctx)
	})
}

// spannerTx is one attempt of a read-write transaction. Spanner reads do not
// see buffered mutations, so writes are also staged locally for reads that
// follow them in the same attempt.
type spannerTx struct {
	txn  *spanner.ReadWriteTransaction
	plan *committer.CommitPlan

	products     *m_product.Model
	counts       *m_count.Model
	outboxEvents *m_outbox.Model

	stagedProducts map[string]*domain.ProductState // nil value = deleted
	stagedEntries  map[domain.CountKey]bool        // false = deleted
	entryDeltas    map[string]int64
	totals         map[string]recount
}

// recount is an absolute total set by Recount. Entry writes staged after it
// still apply on top.
type recount struct {
	total   int64
	deltaAt int64
}

func newSpannerTx(txn *spanner.ReadWriteTransaction) *spannerTx {
	return &spannerTx{
		txn:            txn,
		plan:           committer.NewPlan(),
		products:       m_product.NewModel(),
		counts:         m_count.NewModel(),
		outboxEvents:   m_outbox.NewModel(),
		stagedProducts: make(map[string]*domain.ProductState),
		stagedEntries:  make(map[domain.CountKey]bool),
		entryDeltas:    make(map[string]int64),
		totals:         make(map[string]recount),
	}
}

func (t *spannerTx) Products() contracts.ProductStore { return productStore{t} }
func (t *spannerTx) Counters() contracts.CounterStore { return counterStore{t} }
func (t *spannerTx) Outbox() contracts.OutboxStore    { return outboxStore{t} }

// flush folds counter deltas into the totals rows and buffers the plan.
// Reading a total row locks it, so concurrent writers to one namespace
// serialize instead of losing increments.
func (t *spannerTx) flush(ctx context.Context) error {
	for ns, r := range t.totals {
		t.plan.Add(t.counts.SetTotalMut(ns, r.total+t.entryDeltas[ns]-r.deltaAt))
	}
	for ns, delta := range t.entryDeltas {
		if _, recounted := t.totals[ns]; recounted || delta == 0 {
			continue
		}
		current, err := readTotal(ctx, t.txn, ns)
		if err != nil {
			return err
		}
		t.plan.Add(t.counts.SetTotalMut(ns, current+delta))
	}
	return t.plan.Buffer(t.txn)
}

func readTotal(ctx context.Context, r reader, namespace string) (int64, error) {
	row, err := r.ReadRow(ctx, m_count.TotalsTable, spanner.Key{namespace}, []string{m_count.Total})
	if err != nil {
		if isNotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read %s total: %w", namespace, err)
	}
	var total int64
	if err := row.Column(0, &total); err != nil {
		return 0, fmt.Errorf("failed to parse %s total: %w", namespace, err)
	}
	return total, nil
}
