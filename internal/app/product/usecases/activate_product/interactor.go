package activate_product

import (
	"context"
	"fmt"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/countagg"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/pkg/clock"
)

// Request contains the product ID to activate.
type Request struct {
	Actor     *auth.Principal
	ProductID string
}

// Interactor handles the activate product use case.
type Interactor struct {
	uow    contracts.UnitOfWork
	writer *countagg.Writer
	clock  clock.Clock
}

// NewInteractor creates a new activate product interactor.
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

// Execute publishes a product. publishedAt is set on the first activation
// only; activating an active product changes nothing.
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

		if !product.Activate(i.clock.Now()) {
			return nil
		}

		if err := i.writer.Update(ctx, tx, before, product); err != nil {
			return fmt.Errorf("failed to activate product: %w", err)
		}
		return contracts.AppendEvents(ctx, tx.Outbox(), product.DomainEvents())
	})
}
