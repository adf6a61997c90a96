package delete_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Request contains the product ID to hard delete.
type Request struct {
	Actor     *auth.Principal
	ProductID string
}

// Interactor handles the hard delete use case.
type Interactor struct {
	uow    contracts.UnitOfWork
	writer *countagg.Writer
	clock  clock.Clock
}

// NewInteractor creates a new delete product interactor.
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

// Execute removes the product row and its variants and uncounts it.
func (i *Interactor) Execute(ctx context.Context, req *Request) error {
	if err := auth.RequireAdmin(req.Actor); err != nil {
		return err
	}

	return i.uow.Do(ctx, func(ctx context.Context, tx contracts.Tx) error {
		product, err := tx.Products().Get(ctx, req.ProductID)
		if err != nil {
			return err
		}
		product.MarkDeleted(i.clock.Now())

		if err := i.writer.Delete(ctx, tx, product); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return contracts.AppendEvents(ctx, tx.Outbox(), product.DomainEvents())
	})
}
