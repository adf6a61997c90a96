package update_product

import (
	"context"
	"fmt"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Request contains the partial update. Nil patch fields are left unchanged.
type Request struct {
	Actor     *auth.Principal
	ProductID string
	Patch     domain.ProductPatch
}

// Interactor handles the update product use case.
type Interactor struct {
	uow    contracts.UnitOfWork
	writer *countagg.Writer
	clock  clock.Clock
}

// NewInteractor creates a new update product interactor.
func NewInteractor(
	uow contracts.UnitOfWork,
	writer *countagg.Writer,
	clock clock.Clock,
) *Interactor {
	return &Interactor{
		uow:    uow,
		writer: writer,
		clock:  clock,
	}
}

// Execute applies the patch. A status change moves the product between
// count namespaces in the same transaction.
func (i *Interactor) Execute(ctx context.Context, req *Request) (string, error) {
	if err := auth.RequireAdmin(req.Actor); err != nil {
		return "", err
	}

	patch := req.Patch
	if patch.Slug != nil {
		if strings.TrimSpace(*patch.Slug) == "" {
			return "", domain.ErrEmptySlug
		}
		slug := domain.Slugify(*patch.Slug)
		patch.Slug = &slug
	}

	var product *domain.Product
	err := i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		// 1. Load aggregate
		var err error
		product, err = tx.Products().Get(ctx, req.ProductID)
		if err != nil {
			return err
		}
		before := product.CountKey()

		// 2. An explicit slug must stay unique
		if patch.Slug != nil && *patch.Slug != product.Slug() {
			taken, err := tx.Products().SlugExists(ctx, *patch.Slug)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrSlugTaken
			}
		}

		// 3. Call domain method
		if err := product.Apply(patch, i.clock.Now()); err != nil {
			return err
		}
		if !product.Changes().HasChanges() {
			return nil
		}

		// 4. Primary write + count aggregate
		if err := i.writer.Update(ctx, tx, before, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		// 5. Outbox events
		return contracts.AppendEvents(ctx, tx.Outbox(), product.DomainEvents())
	})
	if err != nil {
		return "", err
	}

	product.ClearEvents()
	return product.ID(), nil
}
