package m_variant

// Field name constants for the product_variants table, interleaved in products.
const (
	TableName = "product_variants"

	ProductID       = "product_id"
	VariantID       = "variant_id"
	Color           = "color"
	Size            = "size"
	SKU             = "sku"
	StockCount      = "stock_count"
	PriceAdjustment = "price_adjustment"
	IsDefault       = "is_default"
	CreatedAt       = "created_at"
)

var Columns = []string{ProductID, VariantID, Color, Size, SKU, StockCount, PriceAdjustment, IsDefault, CreatedAt}
