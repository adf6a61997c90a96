package create_product

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain/services"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Request contains the data needed to create a product.
type Request struct {
	Actor *auth.Principal

	Name              string
	Slug              string // optional; generated from Name when empty
	Description       string
	Story             string
	BasePrice         int64
	CompareAtPrice    *int64
	Status            domain.ProductStatus
	ProductType       domain.ProductType
	CategoryID        *string
	ColorOptions      []domain.ColorOption
	SizeOptions       []string
	DigitalStockMode  *domain.DigitalStockMode
	DigitalStockCount *int64
	Tags              []string
	Featured          bool
	FeaturedImage     string
	RequiresShipping  bool
}

// Interactor handles the create product use case.
type Interactor struct {
	uow    contracts.UnitOfWork
	writer *countagg.Writer
	slugs  *services.SlugGenerator
	clock  clock.Clock
}

// NewInteractor creates a new create product interactor.
func NewInteractor(
	uow contracts.UnitOfWork,
	writer *countagg.Writer,
	slugs *services.SlugGenerator,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		uow:    uow,
		writer: writer,
		slugs:  slugs,
		clock:  clock,
	}
}

// Execute creates a product and counts it in the same transaction.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	// 1. Authorize before touching the store
	if err := auth.RequireAdmin(req.Actor); err != nil {
		return "", err
	}

	productID := uuid.New().String()
	params := domain.NewProductParams{
		Name:              req.Name,
		Description:       req.Description,
		Story:             req.Story,
		BasePrice:         req.BasePrice,
		CompareAtPrice:    req.CompareAtPrice,
		Status:            req.Status,
		ProductType:       req.ProductType,
		CategoryID:        req.CategoryID,
		ColorOptions:      req.ColorOptions,
		SizeOptions:       req.SizeOptions,
		DigitalStockMode:  req.DigitalStockMode,
		DigitalStockCount: req.DigitalStockCount,
		Tags:              req.Tags,
		Featured:          req.Featured,
		FeaturedImage:     req.FeaturedImage,
		RequiresShipping:  req.RequiresShipping,
	}

	// 2. Validate everything that does not need the store
	if _, err := domain.NewProduct(productID, domain.DefaultSlug, params, i.clock.Now()); err != nil {
		return "", err
	}

	var product *domain.Product
	err := i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		// 3. Resolve a unique slug inside the transaction
		slug, err := i.resolveSlug(ctx, tx, req)
		if err != nil {
			return err
		}

		// 4. Create the aggregate
		product, err = domain.NewProduct(productID, slug, params, i.clock.Now())
		if err != nil {
			return err
		}

		// 5. Primary write + count aggregate
		if err := i.writer.Insert(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to insert product: %w", err)
		}

		// 6. Outbox events
		return contracts.AppendEvents(ctx, tx.Outbox(), product.DomainEvents())
	})
	if err != nil {
		return "", err
	}

	product.ClearEvents()
	return product.ID(), nil
}

func (i *Interactor) resolveSlug(ctx context.Context, tx contracts.Tx, req *Request) (string, error) {
	if req.Slug == "" {
		return i.slugs.Generate(ctx, req.Name, tx.Products().SlugExists)
	}

	slug := domain.Slugify(req.Slug)
	taken, err := tx.Products().SlugExists(ctx, slug)
	if err != nil {
		return "", err
	}
	if taken {
		return "", domain.ErrSlugTaken
	}
	return slug, nil
}
