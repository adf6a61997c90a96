package m_product

// Field name constants for the products table.
const (
	TableName = "products"

	ProductID         = "product_id"
	Name              = "name"
	Slug              = "slug"
	Description       = "description"
	Story             = "story"
	BasePrice         = "base_price"
	CompareAtPrice    = "compare_at_price"
	Status            = "status"
	ProductType       = "product_type"
	CategoryID        = "category_id"
	ColorOptions      = "color_options"
	SizeOptions       = "size_options"
	DigitalStockMode  = "digital_stock_mode"
	DigitalStockCount = "digital_stock_count"
	Tags              = "tags"
	Featured          = "featured"
	FeaturedImage     = "featured_image"
	RequiresShipping  = "requires_shipping"
	CreatedAt         = "created_at"
	UpdatedAt         = "updated_at"
	PublishedAt       = "published_at"

	// Hidden TOKENLIST columns behind idx_products_search.
	NameTokens       = "name_tokens"
	BodyTokens       = "body_tokens"
	NameSubstrTokens = "name_substr_tokens"
)

// Secondary indexes.
const (
	IndexSlug            = "idx_products_slug"
	IndexStatusCreated   = "idx_products_status_created"
	IndexCategoryCreated = "idx_products_category_created"
)

// Columns lists every stored column, in Data field order.
var Columns = []string{
	ProductID,
	Name,
	Slug,
	Description,
	Story,
	BasePrice,
	CompareAtPrice,
	Status,
	ProductType,
	CategoryID,
	ColorOptions,
	SizeOptions,
	DigitalStockMode,
	DigitalStockCount,
	Tags,
	Featured,
	FeaturedImage,
	RequiresShipping,
	CreatedAt,
	UpdatedAt,
	PublishedAt,
}
