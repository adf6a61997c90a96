package http

import (
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/filter_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/create_product"
)

// filterQuery is the storefront browse query string.
type filterQuery struct {
	Category string   `form:"category"`
	Search   string   `form:"search"`
	MinPrice *int64   `form:"minPrice" binding:"omitempty,min=0"`
	MaxPrice *int64   `form:"maxPrice" binding:"omitempty,min=0"`
	Colors   []string `form:"colors"`
	Sizes    []string `form:"sizes"`
	Sort     string   `form:"sort" binding:"omitempty,sortkey"`
	Page     int      `form:"page" binding:"omitempty,min=1"`
	Limit    int      `form:"limit" binding:"omitempty,min=1"`
}

func (q filterQuery) toRequest() *filter_products.Request {
	return &filter_products.Request{
		CategorySlug: q.Category,
		Search:       q.Search,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		Colors:       splitList(q.Colors),
		Sizes:        splitList(q.Sizes),
		SortBy:       q.Sort,
		Page:         q.Page,
		Limit:        q.Limit,
	}
}

type listQuery struct {
	Cursor     string `form:"cursor"`
	PageSize   int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Status     string `form:"status" binding:"omitempty,oneof=draft active archived"`
	CategoryID string `form:"categoryId"`
	Search     string `form:"search"`
}

// Storefront queries only ever see active products; status=active is
// tolerated, anything else is rejected.
type countQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=active"`
	CategoryID string `form:"categoryId"`
	Search     string `form:"search"`
}

type adminCountQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=draft active archived"`
	CategoryID string `form:"categoryId"`
	Search     string `form:"search"`
}

type searchQuery struct {
	Query      string `form:"q"`
	Status     string `form:"status" binding:"omitempty,oneof=active"`
	CategoryID string `form:"categoryId"`
}

type adminSearchQuery struct {
	Query      string `form:"q"`
	Status     string `form:"status" binding:"omitempty,oneof=draft active archived"`
	CategoryID string `form:"categoryId"`
}

type suggestionQuery struct {
	Query string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
}

type syncFailuresQuery struct {
	IncludeResolved bool `form:"includeResolved"`
	Limit           int  `form:"limit" binding:"omitempty,min=1,max=1000"`
}

type backfillBody struct {
	DryRun    bool `json:"dryRun"`
	BatchSize int  `json:"batchSize" binding:"omitempty,min=1,max=5000"`
}

type createProductBody struct {
	Name              string               `json:"name" binding:"required"`
	Slug              string               `json:"slug" binding:"omitempty,slug"`
	Description       string               `json:"description"`
	Story             string               `json:"story"`
	BasePrice         *int64               `json:"basePrice" binding:"required,min=0"`
	CompareAtPrice    *int64               `json:"compareAtPrice" binding:"omitempty,min=0"`
	Status            string               `json:"status" binding:"omitempty,oneof=draft active"`
	ProductType       string               `json:"productType" binding:"omitempty,oneof=physical digital gift_card"`
	CategoryID        *string              `json:"categoryId"`
	ColorOptions      []domain.ColorOption `json:"colorOptions"`
	SizeOptions       []string             `json:"sizeOptions"`
	DigitalStockMode  *string              `json:"digitalStockMode" binding:"omitempty,oneof=unlimited limited"`
	DigitalStockCount *int64               `json:"digitalStockCount" binding:"omitempty,min=0"`
	Tags              []string             `json:"tags"`
	Featured          bool                 `json:"featured"`
	FeaturedImage     string               `json:"featuredImage"`
	RequiresShipping  bool                 `json:"requiresShipping"`
}

func (b createProductBody) toRequest() *create_product.Request {
	req := &create_product.Request{
		Name:              b.Name,
		Slug:              b.Slug,
		Description:       b.Description,
		Story:             b.Story,
		BasePrice:         *b.BasePrice,
		CompareAtPrice:    b.CompareAtPrice,
		Status:            domain.ProductStatus(b.Status),
		ProductType:       domain.ProductType(b.ProductType),
		CategoryID:        b.CategoryID,
		ColorOptions:      b.ColorOptions,
		SizeOptions:       b.SizeOptions,
		DigitalStockCount: b.DigitalStockCount,
		Tags:              b.Tags,
		Featured:          b.Featured,
		FeaturedImage:     b.FeaturedImage,
		RequiresShipping:  b.RequiresShipping,
	}
	if b.DigitalStockMode != nil {
		mode := domain.DigitalStockMode(*b.DigitalStockMode)
		req.DigitalStockMode = &mode
	}
	return req
}

// updateProductBody is a partial update; absent fields are left unchanged.
type updateProductBody struct {
	Name              *string               `json:"name" binding:"omitempty,min=1"`
	Slug              *string               `json:"slug" binding:"omitempty,slug"`
	Description       *string               `json:"description"`
	Story             *string               `json:"story"`
	BasePrice         *int64                `json:"basePrice" binding:"omitempty,min=0"`
	CompareAtPrice    *int64                `json:"compareAtPrice" binding:"omitempty,min=0"`
	Status            *string               `json:"status" binding:"omitempty,oneof=draft active archived"`
	ProductType       *string               `json:"productType" binding:"omitempty,oneof=physical digital gift_card"`
	CategoryID        *string               `json:"categoryId"`
	ColorOptions      *[]domain.ColorOption `json:"colorOptions"`
	SizeOptions       *[]string             `json:"sizeOptions"`
	DigitalStockMode  *string               `json:"digitalStockMode" binding:"omitempty,oneof=unlimited limited"`
	DigitalStockCount *int64                `json:"digitalStockCount" binding:"omitempty,min=0"`
	Tags              *[]string             `json:"tags"`
	Featured          *bool                 `json:"featured"`
	FeaturedImage     *string               `json:"featuredImage"`
	RequiresShipping  *bool                 `json:"requiresShipping"`
}

func (b updateProductBody) toPatch() domain.ProductPatch {
	patch := domain.ProductPatch{
		Name:              b.Name,
		Slug:              b.Slug,
		Description:       b.Description,
		Story:             b.Story,
		BasePrice:         b.BasePrice,
		CompareAtPrice:    b.CompareAtPrice,
		CategoryID:        b.CategoryID,
		ColorOptions:      b.ColorOptions,
		SizeOptions:       b.SizeOptions,
		DigitalStockCount: b.DigitalStockCount,
		Tags:              b.Tags,
		Featured:          b.Featured,
		FeaturedImage:     b.FeaturedImage,
		RequiresShipping:  b.RequiresShipping,
	}
	if b.Status != nil {
		s := domain.ProductStatus(*b.Status)
		patch.Status = &s
	}
	if b.ProductType != nil {
		t := domain.ProductType(*b.ProductType)
		patch.ProductType = &t
	}
	if b.DigitalStockMode != nil {
		m := domain.DigitalStockMode(*b.DigitalStockMode)
		patch.DigitalStockMode = &m
	}
	return patch
}
