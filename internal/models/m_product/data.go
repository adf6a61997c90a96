package m_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the products table.
type Data struct {
	ProductID         string             `spanner:"product_id"`
	Name              string             `spanner:"name"`
	Slug              string             `spanner:"slug"`
	Description       string             `spanner:"description"`
	Story             string             `spanner:"story"`
	BasePrice         int64              `spanner:"base_price"`
	CompareAtPrice    spanner.NullInt64  `spanner:"compare_at_price"`
	Status            string             `spanner:"status"`
	ProductType       string             `spanner:"product_type"`
	CategoryID        spanner.NullString `spanner:"category_id"`
	ColorOptions      spanner.NullJSON   `spanner:"color_options"`
	SizeOptions       []string           `spanner:"size_options"`
	DigitalStockMode  spanner.NullString `spanner:"digital_stock_mode"`
	DigitalStockCount spanner.NullInt64  `spanner:"digital_stock_count"`
	Tags              []string           `spanner:"tags"`
	Featured          bool               `spanner:"featured"`
	FeaturedImage     string             `spanner:"featured_image"`
	RequiresShipping  bool               `spanner:"requires_shipping"`
	CreatedAt         time.Time          `spanner:"created_at"`
	UpdatedAt         time.Time          `spanner:"updated_at"`
	PublishedAt       spanner.NullTime   `spanner:"published_at"`
}
