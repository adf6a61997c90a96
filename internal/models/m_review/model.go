package m_review

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the reviews table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut writes a review.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, Columns, []any{
		data.ReviewID,
		data.ProductID,
		data.Rating,
		data.Status,
		data.CreatedAt,
	})
}
