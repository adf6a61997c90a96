// Package testutil holds shared fixtures for package tests: product
// builders, a seeded category tree and Spanner emulator helpers.
package testutil

import (
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/repo/memstore"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// NullLogger returns a logger that records entries in the returned hook.
func NullLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

// Admin is an authenticated admin principal.
func Admin() *auth.Principal {
	return &auth.Principal{Subject: "admin-1", Role: auth.RoleAdmin}
}

// Shopper is an authenticated principal without the admin role.
func Shopper() *auth.Principal {
	return &auth.Principal{Subject: "shopper-1", Role: "customer"}
}

// Category ids seeded by SeedCategoryTree: home > living-room > sofas, and garden.
const (
	CategoryHome   = "cat-home"
	CategoryLiving = "cat-living"
	CategorySofas  = "cat-sofas"
	CategoryGarden = "cat-garden"
)

// SeedCategoryTree writes the standard test category tree.
func SeedCategoryTree(store *memstore.Store) {
	store.PutCategory(&domain.Category{ID: CategoryHome, Name: "Home", Slug: "home", CreatedAt: BaseTime})
	store.PutCategory(&domain.Category{ID: CategoryLiving, Name: "Living Room", Slug: "living-room", ParentID: Ptr(CategoryHome), CreatedAt: BaseTime})
	store.PutCategory(&domain.Category{ID: CategorySofas, Name: "Sofas", Slug: "sofas", ParentID: Ptr(CategoryLiving), CreatedAt: BaseTime})
	store.PutCategory(&domain.Category{ID: CategoryGarden, Name: "Garden", Slug: "garden", CreatedAt: BaseTime})
}

// ProductBuilder builds product rows for seeding a store directly.
type ProductBuilder struct {
	state domain.ProductState
}

// NewProductBuilder creates a builder for an active physical product.
func NewProductBuilder(id string) *ProductBuilder {
	return &ProductBuilder{state: domain.ProductState{
		ID:               id,
		Name:             "Product " + id,
		Slug:             id,
		Description:      "Default description",
		BasePrice:        10000,
		Status:           domain.StatusActive,
		ProductType:      domain.TypePhysical,
		RequiresShipping: true,
		CreatedAt:        BaseTime,
		UpdatedAt:        BaseTime,
	}}
}

func (b *ProductBuilder) WithName(name string) *ProductBuilder {
	b.state.Name = name
	return b
}

func (b *ProductBuilder) WithPrice(minor int64) *ProductBuilder {
	b.state.BasePrice = minor
	return b
}

func (b *ProductBuilder) WithStatus(status domain.ProductStatus) *ProductBuilder {
	b.state.Status = status
	return b
}

func (b *ProductBuilder) WithCategory(categoryID string) *ProductBuilder {
	b.state.CategoryID = Ptr(categoryID)
	return b
}

func (b *ProductBuilder) WithColors(names ...string) *ProductBuilder {
	for _, n := range names {
		b.state.ColorOptions = append(b.state.ColorOptions, domain.ColorOption{Name: n})
	}
	return b
}

func (b *ProductBuilder) WithSizes(sizes ...string) *ProductBuilder {
	b.state.SizeOptions = sizes
	return b
}

func (b *ProductBuilder) WithImage(url string) *ProductBuilder {
	b.state.FeaturedImage = url
	return b
}

// CreatedMinutesAfterBase sets the creation time relative to BaseTime.
func (b *ProductBuilder) CreatedMinutesAfterBase(m int) *ProductBuilder {
	b.state.CreatedAt = BaseTime.Add(time.Duration(m) * time.Minute)
	b.state.UpdatedAt = b.state.CreatedAt
	return b
}

// State returns the built row.
func (b *ProductBuilder) State() domain.ProductState {
	return b.state.Clone()
}

// Put writes the product into store without touching the count aggregate.
func (b *ProductBuilder) Put(store *memstore.Store) domain.ProductState {
	state := b.State()
	store.PutProductRaw(state)
	return state
}
