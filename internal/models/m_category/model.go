package m_category

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the categories table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut writes a category.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, Columns, []any{
		data.CategoryID,
		data.Name,
		data.Slug,
		data.ParentID,
		data.CreatedAt,
	})
}
