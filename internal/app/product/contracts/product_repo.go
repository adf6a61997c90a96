package contracts

import (
	"context"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// UnitOfWork runs fn as one atomic unit against the store. fn may be retried
// by the store when the transaction aborts, so it must not keep state across calls.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the transactional view handed to a UnitOfWork callback.
// Writes become visible only after the callback returns nil.
type Tx interface {
	Products() ProductStore
	Counters() CounterStore
	Outbox() OutboxStore
}

// ProductStore is the product table inside a transaction.
type ProductStore interface {
	// Get loads the aggregate, or returns domain.ErrProductNotFound.
	Get(ctx context.Context, productID string) (*domain.Product, error)

	// SlugExists reports whether any product, in any status, uses slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	Insert(ctx context.Context, product *domain.Product) error

	// Update persists the product's dirty fields.
	Update(ctx context.Context, product *domain.Product) error

	// Delete removes the product row and its variants.
	Delete(ctx context.Context, product *domain.Product) error
}

// CounterStore is the count aggregate inside a transaction. Insert and
// Delete keep the per-namespace totals in step with the entries.
type CounterStore interface {
	Has(ctx context.Context, key domain.CountKey) (bool, error)

	// Insert returns domain.ErrCountEntryExists if the key is already counted.
	Insert(ctx context.Context, key domain.CountKey) error

	// Delete returns domain.ErrCountEntryNotFound if the key is not counted.
	Delete(ctx context.Context, key domain.CountKey) error

	// Recount sets the namespace total to the number of stored entries.
	Recount(ctx context.Context, namespace string) (int64, error)
}

// CountReader serves count aggregate reads outside of a transaction.
type CountReader interface {
	// CountNamespace returns the stored total for a namespace without scanning entries.
	CountNamespace(ctx context.Context, namespace string) (int64, error)

	// ScanEntries visits every stored entry.
	ScanEntries(ctx context.Context, fn func(domain.CountKey) error) error
}
