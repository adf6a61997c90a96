package m_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation inserting a product. It fails at commit if
// the product id or slug is already taken.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(TableName, Columns, []any{
		data.ProductID,
		data.Name,
		data.Slug,
		data.Description,
		data.Story,
		data.BasePrice,
		data.CompareAtPrice,
		data.Status,
		data.ProductType,
		data.CategoryID,
		data.ColorOptions,
		data.SizeOptions,
		data.DigitalStockMode,
		data.DigitalStockCount,
		data.Tags,
		data.Featured,
		data.FeaturedImage,
		data.RequiresShipping,
		data.CreatedAt,
		data.UpdatedAt,
		data.PublishedAt,
	})
}

// UpdateMut creates a mutation updating the given columns of one product.
func (m *Model) UpdateMut(productID string, updates map[string]any) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	columns := make([]string, 0, len(updates)+1)
	values := make([]any, 0, len(updates)+1)

	columns = append(columns, ProductID)
	values = append(values, productID)

	for col, val := range updates {
		columns = append(columns, col)
		values = append(values, val)
	}

	return spanner.Update(TableName, columns, values)
}

// DeleteMut deletes a product. Interleaved variants go with it.
func (m *Model) DeleteMut(productID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{productID})
}
