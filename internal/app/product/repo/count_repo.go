package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/models/m_count"
	"github.com/light-bringer/catalog-engine/internal/pkg/query"
)

func entryOf(key domain.CountKey) *m_count.Entry {
	return &m_count.Entry{Namespace: key.Namespace, SortKey: key.SortKey, ProductID: key.ProductID}
}

// counterStore maintains the count aggregate inside a spannerTx.
type counterStore struct{ t *spannerTx }

func (c counterStore) Has(ctx context.Context, key domain.CountKey) (bool, error) {
	if present, ok := c.t.stagedEntries[key]; ok {
		return present, nil
	}
	_, err := c.t.txn.ReadRow(ctx, m_count.EntriesTable, c.t.counts.EntryKey(entryOf(key)), []string{m_count.ProductID})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read count entry: %w", err)
	}
	return true, nil
}

func (c counterStore) Insert(ctx context.Context, key domain.CountKey) error {
	has, err := c.Has(ctx, key)
	if err != nil {
		return err
	}
	if has {
		return domain.ErrCountEntryExists
	}
	c.t.plan.Add(c.t.counts.InsertEntryMut(entryOf(key)))
	c.t.stagedEntries[key] = true
	c.t.entryDeltas[key.Namespace]++
	return nil
}

func (c counterStore) Delete(ctx context.Context, key domain.CountKey) error {
	has, err := c.Has(ctx, key)
	if err != nil {
		return err
	}
	if !has {
		return domain.ErrCountEntryNotFound
	}
	c.t.plan.Add(c.t.counts.DeleteEntryMut(entryOf(key)))
	c.t.stagedEntries[key] = false
	c.t.entryDeltas[key.Namespace]--
	return nil
}

// Recount counts the stored entries of namespace, adjusted for this
// transaction's staged writes, and records it as the new total.
func (c counterStore) Recount(ctx context.Context, namespace string) (int64, error) {
	stmt := query.From(m_count.EntriesTable).
		Where(query.Eq(m_count.Namespace, namespace)).
		Count().
		Build()
	n, err := queryCount(ctx, c.t.txn, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s entries: %w", namespace, err)
	}
	n += c.t.entryDeltas[namespace]
	c.t.totals[namespace] = recount{total: n, deltaAt: c.t.entryDeltas[namespace]}
	return n, nil
}

// CountReadModel serves count aggregate reads outside of transactions.
type CountReadModel struct {
	client *spanner.Client
}

var _ contracts.CountReader = (*CountReadModel)(nil)

// NewCountReadModel creates a CountReadModel.
func NewCountReadModel(client *spanner.Client) *CountReadModel {
	return &CountReadModel{client: client}
}

// CountNamespace reads the total row. A namespace never written counts zero.
func (m *CountReadModel) CountNamespace(ctx context.Context, namespace string) (int64, error) {
	return readTotal(ctx, m.client.Single(), namespace)
}

func (m *CountReadModel) ScanEntries(ctx context.Context, fn func(domain.CountKey) error) error {
	stmt := query.From(m_count.EntriesTable).
		Select(m_count.EntryColumns...).
		OrderBy(m_count.Namespace, query.Asc).
		OrderBy(m_count.SortKey, query.Asc).
		OrderBy(m_count.ProductID, query.Asc).
		Build()

	iter := m.client.Single().Query(ctx, stmt)
	defer iter.Stop()
	return iter.Do(func(row *spanner.Row) error {
		var e m_count.Entry
		if err := row.ToStruct(&e); err != nil {
			return fmt.Errorf("failed to parse count entry: %w", err)
		}
		// Namespaces are passed through as stored so stale layouts show up as extra entries.
		return fn(domain.CountKey{Namespace: e.Namespace, SortKey: e.SortKey.UTC().Round(0), ProductID: e.ProductID})
	})
}
