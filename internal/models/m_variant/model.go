package m_variant

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the product_variants table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// UpsertMut writes a variant under its product.
func (m *Model) UpsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(TableName, Columns, []any{
		data.ProductID,
		data.VariantID,
		data.Color,
		data.Size,
		data.SKU,
		data.StockCount,
		data.PriceAdjustment,
		data.IsDefault,
		data.CreatedAt,
	})
}
