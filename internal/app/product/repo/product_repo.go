package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/models/m_product"
	"github.com/light-bringer/catalog-engine/internal/pkg/query"
)

// productStore writes products inside a spannerTx.
type productStore struct{ t *spannerTx }

func (p productStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	if state, ok := p.t.stagedProducts[productID]; ok {
		if state == nil {
			return nil, domain.ErrProductNotFound
		}
		return domain.ReconstructProduct(*state), nil
	}
	return readProduct(ctx, p.t.txn, productID)
}

func (p productStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	for _, state := range p.t.stagedProducts {
		if state != nil && state.Slug == slug {
			return true, nil
		}
	}

	stmt := query.From(m_product.TableName).
		ForceIndex(m_product.IndexSlug).
		Select(m_product.ProductID).
		Where(query.Eq(m_product.Slug, slug)).
		Limit(1).
		Build()
	ids, err := queryRows(ctx, p.t.txn, stmt, func(row *spanner.Row) (string, error) {
		var id string
		err := row.Column(0, &id)
		return id, err
	})
	if err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	for _, id := range ids {
		// A product renamed or deleted earlier in this transaction no longer holds the slug.
		if _, staged := p.t.stagedProducts[id]; !staged {
			return true, nil
		}
	}
	return false, nil
}

func (p productStore) Insert(_ context.Context, product *domain.Product) error {
	p.t.plan.Add(p.t.products.InsertMut(productToData(product)))
	p.stage(product)
	return nil
}

// Update writes only the columns the aggregate marked dirty, plus updated_at.
func (p productStore) Update(ctx context.Context, product *domain.Product) error {
	if _, err := p.Get(ctx, product.ID()); err != nil {
		return err
	}

	changes := product.Changes()
	if !changes.HasChanges() {
		return nil
	}

	values := columnValues(productToData(product))
	updates := make(map[string]any, changes.Len()+1)
	for _, field := range changes.DirtyFields() {
		col, ok := dirtyColumns[field]
		if !ok {
			return fmt.Errorf("no column for product field %q", field)
		}
		updates[col] = values[col]
	}
	updates[m_product.UpdatedAt] = product.UpdatedAt()

	p.t.plan.Add(p.t.products.UpdateMut(product.ID(), updates))
	p.stage(product)
	return nil
}

func (p productStore) Delete(ctx context.Context, product *domain.Product) error {
	if _, err := p.Get(ctx, product.ID()); err != nil {
		return err
	}
	p.t.plan.Add(p.t.products.DeleteMut(product.ID()))
	p.t.stagedProducts[product.ID()] = nil
	return nil
}

func (p productStore) stage(product *domain.Product) {
	state := product.State()
	p.t.stagedProducts[product.ID()] = &state
}
