package list_products

import (
	"context"
	"strings"

	"github.com/light-bringer/catalog-engine/internal/app/product/catalog"
	"github.com/light-bringer/catalog-engine/internal/app/product/contracts"
	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
)

// Page size bounds for admin browsing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Request contains filtering and cursor pagination parameters.
type Request struct {
	Cursor     string
	PageSize   int
	Status     string
	CategoryID string
	Search     string
}

// Result is one cursor page. ContinuationCursor is empty when IsDone.
type Result struct {
	Page               []*contracts.EnrichedProduct `json:"page"`
	ContinuationCursor string                       `json:"continuationCursor,omitempty"`
	IsDone             bool                         `json:"isDone"`
}

// Query handles the admin cursor-paginated product list.
//
// Only one index backs a page. With both a category and a status the
// category index is read and status is filtered in memory afterwards, so
// such pages can hold fewer than PageSize items while more remain.
type Query struct {
	readModel contracts.CatalogReader
	selector  *catalog.Selector
	enricher  *catalog.Enricher
}

// NewQuery creates a new list products query.
func NewQuery(readModel contracts.CatalogReader, selector *catalog.Selector, enricher *catalog.Enricher) *Query {
	return &Query{
		readModel: readModel,
		selector:  selector,
		enricher:  enricher,
	}
}

// Execute returns the page after req.Cursor.
func (q *Query) Execute(ctx context.Context, req *Request) (*Result, error) {
	cursor, err := contracts.DecodeCursor(req.Cursor)
	if err != nil {
		return nil, err
	}

	var status *domain.ProductStatus
	if req.Status != "" {
		s := domain.ProductStatus(req.Status)
		if !s.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		status = &s
	}

	size := req.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	size = min(size, MaxPageSize)

	var (
		products []*domain.Product
		next     *contracts.Cursor
	)
	if strings.TrimSpace(req.Search) != "" {
		if err := cursor.Expect(contracts.CursorSearch); err != nil {
			return nil, err
		}
		products, next, err = q.searchPage(ctx, req, status, cursor, size)
	} else {
		if err := cursor.Expect(contracts.CursorIndex); err != nil {
			return nil, err
		}
		products, next, err = q.indexPage(ctx, req, status, cursor, size)
	}
	if err != nil {
		return nil, err
	}

	page, err := q.enricher.EnrichAll(ctx, products)
	if err != nil {
		return nil, err
	}
	return &Result{
		Page:               page,
		ContinuationCursor: next.Encode(),
		IsDone:             next == nil,
	}, nil
}

func (q *Query) indexPage(ctx context.Context, req *Request, status *domain.ProductStatus, cursor *contracts.Cursor, size int) ([]*domain.Product, *contracts.Cursor, error) {
	pageReq := contracts.PageRequest{Index: contracts.IndexCreated, After: cursor, PageSize: size}
	postFilter := false
	switch {
	case req.CategoryID != "":
		pageReq.Index = contracts.IndexCategory
		pageReq.Value = req.CategoryID
		postFilter = status != nil
	case status != nil:
		pageReq.Index = contracts.IndexStatus
		pageReq.Value = string(*status)
	}

	res, err := q.readModel.PageProducts(ctx, pageReq)
	if err != nil {
		return nil, nil, err
	}

	products := res.Products
	if postFilter {
		kept := make([]*domain.Product, 0, len(products))
		for _, p := range products {
			if p.Status() == *status {
				kept = append(kept, p)
			}
		}
		products = kept
	}
	if res.IsDone {
		return products, nil, nil
	}
	return products, res.Next, nil
}

// searchPage pages by offset through the ceiling-bounded ranked search result.
func (q *Query) searchPage(ctx context.Context, req *Request, status *domain.ProductStatus, cursor *contracts.Cursor, size int) ([]*domain.Product, *contracts.Cursor, error) {
	hits, err := q.selector.Select(ctx, catalog.CandidateSpec{
		Search:     req.Search,
		CategoryID: req.CategoryID,
		Status:     status,
	})
	if err != nil {
		return nil, nil, err
	}

	offset := 0
	if cursor != nil {
		offset = cursor.Offset
	}
	if offset >= len(hits) {
		return nil, nil, nil
	}
	end := min(offset+size, len(hits))
	if end == len(hits) {
		return hits[offset:end], nil, nil
	}
	return hits[offset:end], contracts.SearchCursor(end), nil
}
