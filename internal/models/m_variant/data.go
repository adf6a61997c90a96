package m_variant

import "time"

// Data represents the database model for the product_variants table.
type Data struct {
	ProductID       string    `spanner:"product_id"`
	VariantID       string    `spanner:"variant_id"`
	Color           string    `spanner:"color"`
	Size            string    `spanner:"size"`
	SKU             string    `spanner:"sku"`
	StockCount      int64     `spanner:"stock_count"`
	PriceAdjustment int64     `spanner:"price_adjustment"`
	IsDefault       bool      `spanner:"is_default"`
	CreatedAt       time.Time `spanner:"created_at"`
}
