package archive_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Request contains the product ID to archive.
type Request struct {
	Actor     *auth.Principal
	ProductID string
}

// Interactor handles the archive product use case.
type Interactor struct {
	uow    contracts.UnitOfWork
	writer *countagg.Writer
	clock  clock.Clock
}

// NewInteractor creates a new archive product interactor.
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

// Execute archives a product. Archiving is a status patch, so the row and its
// variants stay; an archived product is left untouched.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if err := auth.RequireAdmin(req.Actor); err != nil {
		return err
	}

	return i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		product, err := tx.Products().Get(ctx, req.ProductID)
		if err != nil {
			return err
		}
		before := product.CountKey()

		if !product.Archive(i.clock.Now()) {
			return nil
		}

		if err := i.writer.Update(ctx, tx, before, product); err != nil {
			return fmt.Errorf("failed to archive product: %w", err)
		}
		return contracts.AppendEvents(ctx, tx.Outbox(), product.DomainEvents())
	})
}
