package m_count

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the count aggregate tables.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// EntryKey is the primary key of an entry row.
func (m *Model) EntryKey(e *Entry) spanner.Key {
	return spanner.Key{e.Namespace, e.SortKey, e.ProductID}
}

// InsertEntryMut adds an entry. Insert fails at commit if it already exists.
func (m *Model) InsertEntryMut(e *Entry) *spanner.Mutation {
	return spanner.Insert(EntriesTable, EntryColumns, []any{e.Namespace, e.SortKey, e.ProductID})
}

// DeleteEntryMut removes an entry.
func (m *Model) DeleteEntryMut(e *Entry) *spanner.Mutation {
	return spanner.Delete(EntriesTable, m.EntryKey(e))
}

// SetTotalMut overwrites a namespace total.
func (m *Model) SetTotalMut(namespace string, total int64) *spanner.Mutation {
	return spanner.InsertOrUpdate(TotalsTable, []string{Namespace, Total}, []any{namespace, total})
}
