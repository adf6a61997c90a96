package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Index names a secondary access path used by cursor pagination.
type Index int

const (
	// IndexCreated pages over all products, newest first.
	IndexCreated Index = iota
	// IndexStatus pages over one status, newest first.
	IndexStatus
	// IndexCategory pages over one category id, newest first.
	IndexCategory
)

// PageRequest is a forward-only page over a single index.
type PageRequest struct {
	Index    Index
	Value    string
	After    *Cursor
	PageSize int
}

// PageResult is one index page. Next is nil when IsDone.
type PageResult struct {
	Products []*domain.Product
	Next     *Cursor
	IsDone   bool
}

// CatalogReader is the read side of the catalog store.
// All list methods return products newest first unless noted.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)

	ListCategories(ctx context.Context) ([]*domain.Category, error)

	// SearchProducts queries the full-text index, best match first.
	// A nil status searches every status.
	SearchProducts(ctx context.Context, text string, status *domain.ProductStatus, limit int) ([]*domain.Product, error)

	// ListByCategory reads the category index. A nil status matches every status.
	ListByCategory(ctx context.Context, categoryID string, status *domain.ProductStatus, limit int) ([]*domain.Product, error)

	// ListByStatus reads the status index; a nil status reads the creation index.
	ListByStatus(ctx context.Context, status *domain.ProductStatus, limit int) ([]*domain.Product, error)

	PageProducts(ctx context.Context, req PageRequest) (*PageResult, error)

	// CountByCategory counts every product in a category without truncation.
	CountByCategory(ctx context.Context, categoryID string, status *domain.ProductStatus) (int64, error)

	// ListVariants returns a product's variants in creation order.
	ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error)
	ListApprovedReviews(ctx context.Context, productID string) ([]*domain.Review, error)

	// ScanProducts visits every product in the store.
	ScanProducts(ctx context.Context, fn func(*domain.Product) error) error
}

// EnrichedProduct is the display-ready read model. It is computed on read and never stored.
type EnrichedProduct struct {
	ID                string               `json:"id"`
	Name              string               `json:"name"`
	Slug              string               `json:"slug"`
	Description       string               `json:"description,omitempty"`
	Story             string               `json:"story,omitempty"`
	BasePrice         int64                `json:"basePrice"`
	CompareAtPrice    *int64               `json:"compareAtPrice,omitempty"`
	Status            string               `json:"status"`
	ProductType       string               `json:"productType"`
	CategoryID        *string              `json:"categoryId,omitempty"`
	CategoryName      string               `json:"categoryName,omitempty"`
	ColorOptions      []domain.ColorOption `json:"colorOptions,omitempty"`
	SizeOptions       []string             `json:"sizeOptions,omitempty"`
	DigitalStockMode  *string              `json:"digitalStockMode,omitempty"`
	DigitalStockCount *int64               `json:"digitalStockCount,omitempty"`
	Tags              []string             `json:"tags,omitempty"`
	Featured          bool                 `json:"featured"`
	FeaturedImage     string               `json:"featuredImage,omitempty"`
	RequiresShipping  bool                 `json:"requiresShipping"`
	CreatedAt         time.Time            `json:"createdAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
	PublishedAt       *time.Time           `json:"publishedAt,omitempty"`

	VariantCount     int     `json:"variantCount"`
	EffectiveStock   int64   `json:"effectiveStock"`
	StockStatus      string  `json:"stockStatus"`
	ReviewCount      int     `json:"reviewCount"`
	AverageRating    float64 `json:"averageRating"`
	DefaultSKU       string  `json:"defaultSku"`
	DefaultVariantID *string `json:"defaultVariantId,omitempty"`

	// EnrichmentError is set when derived fields could not be computed.
	EnrichmentError string `json:"enrichmentError,omitempty"`
}

// Suggestion is the minimal product shape for search-as-you-type.
type Suggestion struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Image string `json:"image,omitempty"`
}
