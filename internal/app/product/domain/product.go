package domain

import (
	"slices"
	"strings"
	"time"
)

// Field names for change tracking
const (
	FieldName              = "name"
	FieldSlug              = "slug"
	FieldDescription       = "description"
	FieldStory             = "story"
	FieldBasePrice         = "base_price"
	FieldCompareAtPrice    = "compare_at_price"
	FieldStatus            = "status"
	FieldProductType       = "product_type"
	FieldCategoryID        = "category_id"
	FieldColorOptions      = "color_options"
	FieldSizeOptions       = "size_options"
	FieldDigitalStockMode  = "digital_stock_mode"
	FieldDigitalStockCount = "digital_stock_count"
	FieldTags              = "tags"
	FieldFeatured          = "featured"
	FieldFeaturedImage     = "featured_image"
	FieldRequiresShipping  = "requires_shipping"
	FieldPublishedAt       = "published_at"
)

// ProductStatus represents the lifecycle status of a product
type ProductStatus string

const (
	StatusDraft    ProductStatus = "draft"
	StatusActive   ProductStatus = "active"
	StatusArchived ProductStatus = "archived"
)

// AllStatuses lists every status, in lifecycle order.
var AllStatuses = []ProductStatus{StatusDraft, StatusActive, StatusArchived}

// Valid reports whether s is a known status.
func (s ProductStatus) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

// ProductType distinguishes shippable goods from digital goods.
type ProductType string

const (
	TypePhysical ProductType = "physical"
	TypeDigital  ProductType = "digital"
	TypeGiftCard ProductType = "gift_card"
)

// Valid reports whether t is a known product type.
func (t ProductType) Valid() bool {
	return t == TypePhysical || t == TypeDigital || t == TypeGiftCard
}

// IsDigital is true for product types that are never shipped.
func (t ProductType) IsDigital() bool {
	return t == TypeDigital || t == TypeGiftCard
}

// DigitalStockMode controls stock tracking for digital and gift card products.
type DigitalStockMode string

const (
	StockModeUnlimited DigitalStockMode = "unlimited"
	StockModeLimited   DigitalStockMode = "limited"
)

// Valid reports whether m is a known stock mode.
func (m DigitalStockMode) Valid() bool {
	return m == StockModeUnlimited || m == StockModeLimited
}

// ColorOption is a named color a product is offered in.
type ColorOption struct {
	Name string `json:"name"`
	Hex  string `json:"hex,omitempty"`
}

// ProductState is the full persisted state of a product.
// Repositories use it to reconstruct aggregates and to build rows.
type ProductState struct {
	ID                string
	Name              string
	Slug              string
	Description       string
	Story             string
	BasePrice         int64
	CompareAtPrice    *int64
	Status            ProductStatus
	ProductType       ProductType
	CategoryID        *string
	ColorOptions      []ColorOption
	SizeOptions       []string
	DigitalStockMode  *DigitalStockMode
	DigitalStockCount *int64
	Tags              []string
	Featured          bool
	FeaturedImage     string
	RequiresShipping  bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
	PublishedAt       *time.Time
}

// Clone returns a deep copy of the state.
func (s ProductState) Clone() ProductState {
	out := s
	out.CompareAtPrice = clonePtr(s.CompareAtPrice)
	out.CategoryID = clonePtr(s.CategoryID)
	out.DigitalStockMode = clonePtr(s.DigitalStockMode)
	out.DigitalStockCount = clonePtr(s.DigitalStockCount)
	out.PublishedAt = clonePtr(s.PublishedAt)
	out.ColorOptions = slices.Clone(s.ColorOptions)
	out.SizeOptions = slices.Clone(s.SizeOptions)
	out.Tags = slices.Clone(s.Tags)
	return out
}

// NewProductParams carries the caller-supplied fields for a new product.
type NewProductParams struct {
	Name              string
	Description       string
	Story             string
	BasePrice         int64
	CompareAtPrice    *int64
	Status            ProductStatus
	ProductType       ProductType
	CategoryID        *string
	ColorOptions      []ColorOption
	SizeOptions       []string
	DigitalStockMode  *DigitalStockMode
	DigitalStockCount *int64
	Tags              []string
	Featured          bool
	FeaturedImage     string
	RequiresShipping  bool
}

// ProductPatch is a partial update. Nil fields are left unchanged.
// CategoryID pointing at "" clears the category; CompareAtPrice pointing at 0 clears it.
type ProductPatch struct {
	Name              *string
	Slug              *string
	Description       *string
	Story             *string
	BasePrice         *int64
	CompareAtPrice    *int64
	Status            *ProductStatus
	ProductType       *ProductType
	CategoryID        *string
	ColorOptions      *[]ColorOption
	SizeOptions       *[]string
	DigitalStockMode  *DigitalStockMode
	DigitalStockCount *int64
	Tags              *[]string
	Featured          *bool
	FeaturedImage     *string
	RequiresShipping  *bool
}

// Product is the aggregate root of the catalog.
type Product struct {
	state ProductState

	// Change tracking for optimized repository updates
	changes *ChangeTracker

	// Domain events to be published
	events []DomainEvent
}

// NewProduct creates a new Product aggregate in draft or active status.
// The slug must already be unique; see services.SlugGenerator.
func NewProduct(id, slug string, params NewProductParams, now time.Time) (*Product, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrEmptyName
	}
	if slug == "" {
		return nil, ErrEmptySlug
	}
	if params.Status == "" {
		params.Status = StatusDraft
	}
	if params.Status != StatusDraft && params.Status != StatusActive {
		return nil, ErrInvalidStatus
	}
	if params.ProductType == "" {
		params.ProductType = TypePhysical
	}
	if err := validatePrices(params.BasePrice, params.CompareAtPrice); err != nil {
		return nil, err
	}
	if !params.ProductType.Valid() {
		return nil, ErrInvalidProductType
	}
	if err := validateDigitalStock(params.DigitalStockMode, params.DigitalStockCount); err != nil {
		return nil, err
	}

	p := &Product{
		state: ProductState{
			ID:                id,
			Name:              strings.TrimSpace(params.Name),
			Slug:              slug,
			Description:       params.Description,
			Story:             params.Story,
			BasePrice:         params.BasePrice,
			CompareAtPrice:    normalizeCompareAt(params.CompareAtPrice),
			Status:            params.Status,
			ProductType:       params.ProductType,
			CategoryID:        normalizeCategory(params.CategoryID),
			ColorOptions:      slices.Clone(params.ColorOptions),
			SizeOptions:       slices.Clone(params.SizeOptions),
			DigitalStockMode:  clonePtr(params.DigitalStockMode),
			DigitalStockCount: clonePtr(params.DigitalStockCount),
			Tags:              slices.Clone(params.Tags),
			Featured:          params.Featured,
			FeaturedImage:     params.FeaturedImage,
			RequiresShipping:  params.RequiresShipping,
			CreatedAt:         now,
			UpdatedAt:         now,
		},
		changes: NewChangeTracker(),
		events:  make([]DomainEvent, 0),
	}
	p.enforceShippingRule()
	if p.state.Status == StatusActive {
		p.state.PublishedAt = &now
	}

	p.recordEvent(&ProductCreatedEvent{
		ProductID:   p.state.ID,
		Name:        p.state.Name,
		Slug:        p.state.Slug,
		Status:      string(p.state.Status),
		ProductType: string(p.state.ProductType),
		CategoryID:  p.state.CategoryID,
		BasePrice:   p.state.BasePrice,
		CreatedAt:   now,
	})

	return p, nil
}

// ReconstructProduct reconstitutes a Product from storage.
func ReconstructProduct(state ProductState) *Product {
	return &Product{
		state:   state.Clone(),
		changes: NewChangeTracker(), // Start with clean slate
		events:  make([]DomainEvent, 0),
	}
}

// Getters
func (p *Product) ID() string                          { return p.state.ID }
func (p *Product) Name() string                        { return p.state.Name }
func (p *Product) Slug() string                        { return p.state.Slug }
func (p *Product) Description() string                 { return p.state.Description }
func (p *Product) Story() string                       { return p.state.Story }
func (p *Product) BasePrice() int64                    { return p.state.BasePrice }
func (p *Product) CompareAtPrice() *int64              { return clonePtr(p.state.CompareAtPrice) }
func (p *Product) Status() ProductStatus               { return p.state.Status }
func (p *Product) ProductType() ProductType            { return p.state.ProductType }
func (p *Product) CategoryID() *string                 { return clonePtr(p.state.CategoryID) }
func (p *Product) ColorOptions() []ColorOption         { return slices.Clone(p.state.ColorOptions) }
func (p *Product) SizeOptions() []string               { return slices.Clone(p.state.SizeOptions) }
func (p *Product) DigitalStockMode() *DigitalStockMode { return clonePtr(p.state.DigitalStockMode) }
func (p *Product) DigitalStockCount() *int64           { return clonePtr(p.state.DigitalStockCount) }
func (p *Product) Tags() []string                      { return slices.Clone(p.state.Tags) }
func (p *Product) Featured() bool                      { return p.state.Featured }
func (p *Product) FeaturedImage() string               { return p.state.FeaturedImage }
func (p *Product) RequiresShipping() bool              { return p.state.RequiresShipping }
func (p *Product) CreatedAt() time.Time                { return p.state.CreatedAt }
func (p *Product) UpdatedAt() time.Time                { return p.state.UpdatedAt }
func (p *Product) PublishedAt() *time.Time             { return clonePtr(p.state.PublishedAt) }
func (p *Product) Changes() *ChangeTracker             { return p.changes }
func (p *Product) DomainEvents() []DomainEvent         { return p.events }
func (p *Product) State() ProductState                 { return p.state.Clone() }
func (p *Product) InCategory(categoryID string) bool   { return p.state.CategoryID != nil && *p.state.CategoryID == categoryID }
func (p *Product) IsActive() bool                      { return p.state.Status == StatusActive }

// CountKey is the product's current position in the count aggregate.
func (p *Product) CountKey() CountKey {
	return CountKeyFor(p.state.Status, p.state.CreatedAt, p.state.ID)
}

// Apply applies a partial update. Nothing is modified when validation fails.
// A status change is delegated to SetStatus, so publishedAt follows the same rule.
func (p *Product) Apply(patch ProductPatch, now time.Time) error {
	if err := validatePatch(patch); err != nil {
		return err
	}

	before := p.changes.Len()
	s := &p.state

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != s.Name {
		s.Name = strings.TrimSpace(*patch.Name)
		p.changes.MarkDirty(FieldName)
	}
	if patch.Slug != nil && *patch.Slug != s.Slug {
		s.Slug = *patch.Slug
		p.changes.MarkDirty(FieldSlug)
	}
	if patch.Description != nil && *patch.Description != s.Description {
		s.Description = *patch.Description
		p.changes.MarkDirty(FieldDescription)
	}
	if patch.Story != nil && *patch.Story != s.Story {
		s.Story = *patch.Story
		p.changes.MarkDirty(FieldStory)
	}
	if patch.BasePrice != nil && *patch.BasePrice != s.BasePrice {
		s.BasePrice = *patch.BasePrice
		p.changes.MarkDirty(FieldBasePrice)
	}
	if patch.CompareAtPrice != nil {
		s.CompareAtPrice = normalizeCompareAt(patch.CompareAtPrice)
		p.changes.MarkDirty(FieldCompareAtPrice)
	}
	if patch.ProductType != nil && *patch.ProductType != s.ProductType {
		s.ProductType = *patch.ProductType
		p.changes.MarkDirty(FieldProductType)
	}
	if patch.CategoryID != nil {
		s.CategoryID = normalizeCategory(patch.CategoryID)
		p.changes.MarkDirty(FieldCategoryID)
	}
	if patch.ColorOptions != nil {
		s.ColorOptions = slices.Clone(*patch.ColorOptions)
		p.changes.MarkDirty(FieldColorOptions)
	}
	if patch.SizeOptions != nil {
		s.SizeOptions = slices.Clone(*patch.SizeOptions)
		p.changes.MarkDirty(FieldSizeOptions)
	}
	if patch.DigitalStockMode != nil {
		s.DigitalStockMode = clonePtr(patch.DigitalStockMode)
		p.changes.MarkDirty(FieldDigitalStockMode)
	}
	if patch.DigitalStockCount != nil {
		s.DigitalStockCount = clonePtr(patch.DigitalStockCount)
		p.changes.MarkDirty(FieldDigitalStockCount)
	}
	if patch.Tags != nil {
		s.Tags = slices.Clone(*patch.Tags)
		p.changes.MarkDirty(FieldTags)
	}
	if patch.Featured != nil && *patch.Featured != s.Featured {
		s.Featured = *patch.Featured
		p.changes.MarkDirty(FieldFeatured)
	}
	if patch.FeaturedImage != nil && *patch.FeaturedImage != s.FeaturedImage {
		s.FeaturedImage = *patch.FeaturedImage
		p.changes.MarkDirty(FieldFeaturedImage)
	}
	if patch.RequiresShipping != nil && *patch.RequiresShipping != s.RequiresShipping {
		s.RequiresShipping = *patch.RequiresShipping
		p.changes.MarkDirty(FieldRequiresShipping)
	}
	p.enforceShippingRule()

	if p.changes.Len() > before {
		s.UpdatedAt = now
		p.recordEvent(&ProductUpdatedEvent{
			ProductID: s.ID,
			Fields:    p.changes.DirtyFields(),
			UpdatedAt: now,
		})
	}

	if patch.Status != nil {
		p.SetStatus(*patch.Status, now)
	}

	return nil
}

// SetStatus moves the product to status. publishedAt is set on the first
// transition into active and never cleared. Returns false when nothing changed.
func (p *Product) SetStatus(status ProductStatus, now time.Time) bool {
	if status == p.state.Status {
		return false
	}

	from := p.state.Status
	p.state.Status = status
	p.state.UpdatedAt = now
	p.changes.MarkDirty(FieldStatus)

	if status == StatusActive && p.state.PublishedAt == nil {
		p.state.PublishedAt = &now
		p.changes.MarkDirty(FieldPublishedAt)
	}

	p.recordEvent(&ProductStatusChangedEvent{
		ProductID: p.state.ID,
		From:      string(from),
		To:        string(status),
		Timestamp: now,
	})
	return true
}

// Activate publishes the product.
func (p *Product) Activate(now time.Time) bool {
	return p.SetStatus(StatusActive, now)
}

// Archive retires the product. Archiving an archived product is a no-op.
func (p *Product) Archive(now time.Time) bool {
	return p.SetStatus(StatusArchived, now)
}

// MarkDeleted records the deletion event ahead of a hard delete.
func (p *Product) MarkDeleted(now time.Time) {
	p.recordEvent(&ProductDeletedEvent{
		ProductID: p.state.ID,
		Status:    string(p.state.Status),
		Timestamp: now,
	})
}

// enforceShippingRule keeps requiresShipping false for digital goods.
func (p *Product) enforceShippingRule() {
	if p.state.ProductType.IsDigital() && p.state.RequiresShipping {
		p.state.RequiresShipping = false
		p.changes.MarkDirty(FieldRequiresShipping)
	}
}

// recordEvent adds a domain event to the list of events.
func (p *Product) recordEvent(event DomainEvent) {
	p.events = append(p.events, event)
}

// ClearEvents clears all recorded domain events (called after publishing).
func (p *Product) ClearEvents() {
	p.events = make([]DomainEvent, 0)
}

func validatePatch(patch ProductPatch) error {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return ErrEmptyName
	}
	if patch.Slug != nil && *patch.Slug == "" {
		return ErrEmptySlug
	}
	if patch.BasePrice != nil && *patch.BasePrice < 0 {
		return ErrInvalidPrice
	}
	if patch.CompareAtPrice != nil && *patch.CompareAtPrice < 0 {
		return ErrInvalidPrice
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return ErrInvalidStatus
	}
	if patch.ProductType != nil && !patch.ProductType.Valid() {
		return ErrInvalidProductType
	}
	return validateDigitalStock(patch.DigitalStockMode, patch.DigitalStockCount)
}

func validatePrices(base int64, compareAt *int64) error {
	if base < 0 {
		return ErrInvalidPrice
	}
	if compareAt != nil && *compareAt < 0 {
		return ErrInvalidPrice
	}
	return nil
}

func validateDigitalStock(mode *DigitalStockMode, count *int64) error {
	if mode != nil && !mode.Valid() {
		return ErrInvalidStockMode
	}
	if count != nil && *count < 0 {
		return ErrInvalidStockCount
	}
	return nil
}

func normalizeCompareAt(v *int64) *int64 {
	if v == nil || *v == 0 {
		return nil
	}
	return clonePtr(v)
}

func normalizeCategory(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return clonePtr(v)
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
