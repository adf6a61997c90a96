package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/models/m_category"
	"github.com/light-bringer/catalog-engine/internal/models/m_outbox"
	"github.com/light-bringer/catalog-engine/internal/models/m_product"
	"github.com/light-bringer/catalog-engine/internal/models/m_review"
	"github.com/light-bringer/catalog-engine/internal/models/m_variant"
)

// reader is the read surface shared by single-use reads and read-write transactions.
type reader interface {
	ReadRow(ctx context.Context, table string, key spanner.Key, columns []string) (*spanner.Row, error)
	Query(ctx context.Context, statement spanner.Statement) *spanner.RowIterator
}

func isNotFound(err error) bool {
	return spanner.ErrCode(err) == codes.NotFound
}

// queryRows decodes every row of stmt with decode.
func queryRows[T any](ctx context.Context, r reader, stmt spanner.Statement, decode func(*spanner.Row) (T, error)) ([]T, error) {
	iter := r.Query(ctx, stmt)
	defer iter.Stop()

	out := make([]T, 0)
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(row)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
}

func queryProducts(ctx context.Context, r reader, stmt spanner.Statement) ([]*domain.Product, error) {
	products, err := queryRows(ctx, r, stmt, decodeProduct)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	return products, nil
}

func queryCount(ctx context.Context, r reader, stmt spanner.Statement) (int64, error) {
	counts, err := queryRows(ctx, r, stmt, func(row *spanner.Row) (int64, error) {
		var n int64
		err := row.Column(0, &n)
		return n, err
	})
	if err != nil {
		return 0, err
	}
	if len(counts) == 0 {
		return 0, nil
	}
	return counts[0], nil
}

func readProduct(ctx context.Context, r reader, productID string) (*domain.Product, error) {
	row, err := r.ReadRow(ctx, m_product.TableName, spanner.Key{productID}, m_product.Columns)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}
	return decodeProduct(row)
}

func decodeProduct(row *spanner.Row) (*domain.Product, error) {
	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}
	return dataToProduct(&data)
}

// productToData converts a domain Product to database Data.
func productToData(p *domain.Product) *m_product.Data {
	s := p.State()
	data := &m_product.Data{
		ProductID:        s.ID,
		Name:             s.Name,
		Slug:             s.Slug,
		Description:      s.Description,
		Story:            s.Story,
		BasePrice:        s.BasePrice,
		Status:           string(s.Status),
		ProductType:      string(s.ProductType),
		SizeOptions:      s.SizeOptions,
		Tags:             s.Tags,
		Featured:         s.Featured,
		FeaturedImage:    s.FeaturedImage,
		RequiresShipping: s.RequiresShipping,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
	if s.CompareAtPrice != nil {
		data.CompareAtPrice = spanner.NullInt64{Int64: *s.CompareAtPrice, Valid: true}
	}
	if s.CategoryID != nil {
		data.CategoryID = spanner.NullString{StringVal: *s.CategoryID, Valid: true}
	}
	if len(s.ColorOptions) > 0 {
		data.ColorOptions = spanner.NullJSON{Value: s.ColorOptions, Valid: true}
	}
	if s.DigitalStockMode != nil {
		data.DigitalStockMode = spanner.NullString{StringVal: string(*s.DigitalStockMode), Valid: true}
	}
	if s.DigitalStockCount != nil {
		data.DigitalStockCount = spanner.NullInt64{Int64: *s.DigitalStockCount, Valid: true}
	}
	if s.PublishedAt != nil {
		data.PublishedAt = spanner.NullTime{Time: *s.PublishedAt, Valid: true}
	}
	return data
}

// dataToProduct converts database Data to a domain Product.
func dataToProduct(data *m_product.Data) (*domain.Product, error) {
	s := domain.ProductState{
		ID:               data.ProductID,
		Name:             data.Name,
		Slug:             data.Slug,
		Description:      data.Description,
		Story:            data.Story,
		BasePrice:        data.BasePrice,
		Status:           domain.ProductStatus(data.Status),
		ProductType:      domain.ProductType(data.ProductType),
		SizeOptions:      data.SizeOptions,
		Tags:             data.Tags,
		Featured:         data.Featured,
		FeaturedImage:    data.FeaturedImage,
		RequiresShipping: data.RequiresShipping,
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
	if data.CompareAtPrice.Valid {
		v := data.CompareAtPrice.Int64
		s.CompareAtPrice = &v
	}
	if data.CategoryID.Valid {
		v := data.CategoryID.StringVal
		s.CategoryID = &v
	}
	if data.ColorOptions.Valid {
		raw, err := json.Marshal(data.ColorOptions.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid color options: %w", err)
		}
		if err := json.Unmarshal(raw, &s.ColorOptions); err != nil {
			return nil, fmt.Errorf("invalid color options: %w", err)
		}
	}
	if data.DigitalStockMode.Valid {
		v := domain.DigitalStockMode(data.DigitalStockMode.StringVal)
		s.DigitalStockMode = &v
	}
	if data.DigitalStockCount.Valid {
		v := data.DigitalStockCount.Int64
		s.DigitalStockCount = &v
	}
	if data.PublishedAt.Valid {
		v := data.PublishedAt.Time
		s.PublishedAt = &v
	}
	return domain.ReconstructProduct(s), nil
}

// columnValues maps every column to its value in data.
func columnValues(data *m_product.Data) map[string]any {
	return map[string]any{
		m_product.Name:              data.Name,
		m_product.Slug:              data.Slug,
		m_product.Description:       data.Description,
		m_product.Story:             data.Story,
		m_product.BasePrice:         data.BasePrice,
		m_product.CompareAtPrice:    data.CompareAtPrice,
		m_product.Status:            data.Status,
		m_product.ProductType:       data.ProductType,
		m_product.CategoryID:        data.CategoryID,
		m_product.ColorOptions:      data.ColorOptions,
		m_product.SizeOptions:       data.SizeOptions,
		m_product.DigitalStockMode:  data.DigitalStockMode,
		m_product.DigitalStockCount: data.DigitalStockCount,
		m_product.Tags:              data.Tags,
		m_product.Featured:          data.Featured,
		m_product.FeaturedImage:     data.FeaturedImage,
		m_product.RequiresShipping:  data.RequiresShipping,
		m_product.PublishedAt:       data.PublishedAt,
	}
}

// dirtyColumns maps tracked domain fields to their columns.
var dirtyColumns = map[string]string{
	domain.FieldName:              m_product.Name,
	domain.FieldSlug:              m_product.Slug,
	domain.FieldDescription:       m_product.Description,
	domain.FieldStory:             m_product.Story,
	domain.FieldBasePrice:         m_product.BasePrice,
	domain.FieldCompareAtPrice:    m_product.CompareAtPrice,
	domain.FieldStatus:            m_product.Status,
	domain.FieldProductType:       m_product.ProductType,
	domain.FieldCategoryID:        m_product.CategoryID,
	domain.FieldColorOptions:      m_product.ColorOptions,
	domain.FieldSizeOptions:       m_product.SizeOptions,
	domain.FieldDigitalStockMode:  m_product.DigitalStockMode,
	domain.FieldDigitalStockCount: m_product.DigitalStockCount,
	domain.FieldTags:              m_product.Tags,
	domain.FieldFeatured:          m_product.Featured,
	domain.FieldFeaturedImage:     m_product.FeaturedImage,
	domain.FieldRequiresShipping:  m_product.RequiresShipping,
	domain.FieldPublishedAt:       m_product.PublishedAt,
}

func decodeCategory(row *spanner.Row) (*domain.Category, error) {
	var data m_category.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse category: %w", err)
	}
	c := &domain.Category{
		ID:        data.CategoryID,
		Name:      data.Name,
		Slug:      data.Slug,
		CreatedAt: data.CreatedAt,
	}
	if data.ParentID.Valid {
		parent := data.ParentID.StringVal
		c.ParentID = &parent
	}
	return c, nil
}

func decodeVariant(row *spanner.Row) (*domain.Variant, error) {
	var data m_variant.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse variant: %w", err)
	}
	return &domain.Variant{
		ID:              data.VariantID,
		ProductID:       data.ProductID,
		Color:           data.Color,
		Size:            data.Size,
		SKU:             data.SKU,
		StockCount:      data.StockCount,
		PriceAdjustment: data.PriceAdjustment,
		IsDefault:       data.IsDefault,
		CreatedAt:       data.CreatedAt,
	}, nil
}

func decodeReview(row *spanner.Row) (*domain.Review, error) {
	var data m_review.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse review: %w", err)
	}
	return &domain.Review{
		ID:        data.ReviewID,
		ProductID: data.ProductID,
		Rating:    int(data.Rating),
		Status:    domain.ReviewStatus(data.Status),
		CreatedAt: data.CreatedAt,
	}, nil
}

func decodeOutboxEvent(row *spanner.Row) (*contracts.OutboxEvent, error) {
	var data m_outbox.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse outbox event: %w", err)
	}
	e := &contracts.OutboxEvent{
		EventID:     data.EventID,
		EventType:   data.EventType,
		AggregateID: data.AggregateID,
		Status:      data.Status,
		CreatedAt:   data.CreatedAt,
	}
	if data.Payload.Valid {
		raw, err := json.Marshal(data.Payload.Value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode outbox payload: %w", err)
		}
		e.Payload = string(raw)
	}
	if data.ProcessedAt.Valid {
		t := data.ProcessedAt.Time
		e.ProcessedAt = &t
	}
	return e, nil
}
