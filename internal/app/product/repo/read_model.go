package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/models/m_category"
	"github.com/light-bringer/catalog-engine/internal/models/m_product"
	"github.com/light-bringer/catalog-engine/internal/models/m_review"
	"github.com/light-bringer/catalog-engine/internal/models/m_variant"
	"github.com/light-bringer/catalog-engine/internal/pkg/query"
)

// ReadModel implements CatalogReader over Spanner.
type ReadModel struct {
	client *spanner.Client
}

var _ contracts.CatalogReader = (*ReadModel)(nil)

// NewReadModel creates a new ReadModel.
func NewReadModel(client *spanner.Client) *ReadModel {
	return &ReadModel{
		client: client,
	}
}

func products() *query.Builder {
	return query.From(m_product.TableName).Select(m_product.Columns...)
}

func newestFirst(b *query.Builder) *query.Builder {
	return b.OrderBy(m_product.CreatedAt, query.Desc).OrderBy(m_product.ProductID, query.Desc)
}

func withStatus(b *query.Builder, status *domain.ProductStatus) *query.Builder {
	if status == nil {
		return b
	}
	return b.Where(query.Eq(m_product.Status, string(*status)))
}

func (rm *ReadModel) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return readProduct(ctx, rm.client.Single(), productID)
}

func (rm *ReadModel) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	stmt := products().Where(query.Eq(m_product.Slug, slug)).Limit(1).Build()
	found, err := queryProducts(ctx, rm.client.Single(), stmt)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return found[0], nil
}

func (rm *ReadModel) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	stmt := query.From(m_category.TableName).
		Select(m_category.Columns...).
		OrderBy(m_category.CategoryID, query.Asc).
		Build()
	categories, err := queryRows(ctx, rm.client.Single(), stmt, decodeCategory)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// SearchProducts matches whole words in name or description/tags, or
// substrings of the name, and ranks name hits above body hits.
func (rm *ReadModel) SearchProducts(ctx context.Context, text string, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	b := products().
		Where(query.Raw(fmt.Sprintf("SEARCH(%s, @q) OR SEARCH(%s, @q) OR SEARCH_SUBSTRING(%s, @q)",
			m_product.NameTokens, m_product.BodyTokens, m_product.NameSubstrTokens))).
		Param("q", text)
	b = withStatus(b, status).
		OrderBy(fmt.Sprintf("SCORE(%s, @q) * 2 + SCORE(%s, @q)", m_product.NameTokens, m_product.BodyTokens), query.Desc)
	b = newestFirst(b)
	if limit > 0 {
		b = b.Limit(int64(limit))
	}
	return queryProducts(ctx, rm.client.Single(), b.Build())
}

func (rm *ReadModel) ListByCategory(ctx context.Context, categoryID string, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	b := products().Where(query.Eq(m_product.CategoryID, categoryID))
	b = newestFirst(withStatus(b, status))
	if limit > 0 {
		b = b.Limit(int64(limit))
	}
	return queryProducts(ctx, rm.client.Single(), b.Build())
}

func (rm *ReadModel) ListByStatus(ctx context.Context, status *domain.ProductStatus, limit int) ([]*domain.Product, error) {
	b := newestFirst(withStatus(products(), status))
	if limit > 0 {
		b = b.Limit(int64(limit))
	}
	return queryProducts(ctx, rm.client.Single(), b.Build())
}

// PageProducts reads one keyset page. One extra row is fetched to tell
// whether the index has more.
func (rm *ReadModel) PageProducts(ctx context.Context, req contracts.PageRequest) (*contracts.PageResult, error) {
	b := products()
	switch req.Index {
	case contracts.IndexStatus:
		b = b.Where(query.Eq(m_product.Status, req.Value))
	case contracts.IndexCategory:
		b = b.Where(query.Eq(m_product.CategoryID, req.Value))
	}
	if c := req.After; c != nil {
		b = b.Where(query.Raw(
			fmt.Sprintf("%[1]s < ? OR (%[1]s = ? AND %[2]s < ?)", m_product.CreatedAt, m_product.ProductID),
			c.CreatedAt, c.CreatedAt, c.ProductID,
		))
	}

	size := max(req.PageSize, 1)
	rows, err := queryProducts(ctx, rm.client.Single(), newestFirst(b).Limit(int64(size+1)).Build())
	if err != nil {
		return nil, err
	}
	if len(rows) <= size {
		return &contracts.PageResult{Products: rows, IsDone: true}, nil
	}

	page := rows[:size]
	last := page[len(page)-1]
	return &contracts.PageResult{
		Products: page,
		Next:     contracts.IndexCursor(last.CreatedAt(), last.ID()),
	}, nil
}

func (rm *ReadModel) CountByCategory(ctx context.Context, categoryID string, status *domain.ProductStatus) (int64, error) {
	b := query.From(m_product.TableName).Where(query.Eq(m_product.CategoryID, categoryID))
	return queryCount(ctx, rm.client.Single(), withStatus(b, status).Count().Build())
}

func (rm *ReadModel) ListVariants(ctx context.Context, productID string) ([]*domain.Variant, error) {
	stmt := query.From(m_variant.TableName).
		Select(m_variant.Columns...).
		Where(query.Eq(m_variant.ProductID, productID)).
		OrderBy(m_variant.CreatedAt, query.Asc).
		OrderBy(m_variant.VariantID, query.Asc).
		Build()
	variants, err := queryRows(ctx, rm.client.Single(), stmt, decodeVariant)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	return variants, nil
}

func (rm *ReadModel) ListApprovedReviews(ctx context.Context, productID string) ([]*domain.Review, error) {
	stmt := query.From(m_review.TableName).
		ForceIndex(m_review.IndexProductStatus).
		Select(m_review.Columns...).
		Where(query.Eq(m_review.ProductID, productID)).
		Where(query.Eq(m_review.Status, string(domain.ReviewApproved))).
		Build()
	reviews, err := queryRows(ctx, rm.client.Single(), stmt, decodeReview)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// ScanProducts streams every product; rows are decoded one at a time.
func (rm *ReadModel) ScanProducts(ctx context.Context, fn func(*domain.Product) error) error {
	iter := rm.client.Single().Query(ctx, newestFirst(products()).Build())
	defer iter.Stop()

	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to scan products: %w", err)
		}
		p, err := decodeProduct(row)
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}
