package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/app/product/domain"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/count_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/get_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/list_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/search_products"
	"github.com/light-bringer/catalog-engine/internal/app/product/queries/search_suggestions"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/activate_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/archive_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/backfill_counters"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/delete_product"
	"github.com/light-bringer/catalog-engine/internal/app/product/usecases/update_product"
	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
	"github.com/light-bringer/catalog-engine/internal/services"
)

// Handler serves the catalog API. It's a thin coordinator that binds
// requests and delegates to use cases and queries.
type Handler struct {
	commands services.Commands
	queries  services.Queries
	log      logrus.FieldLogger
}

// NewHandler creates a new HTTP catalog handler.
func NewHandler(commands services.Commands, queries services.Queries, log logrus.FieldLogger) *Handler {
	return &Handler{
		commands: commands,
		queries:  queries,
		log:      log,
	}
}

func actor(c *gin.Context) *auth.Principal {
	return auth.FromContext(c.Request.Context())
}

// FilterProducts handles GET /products, the storefront browse.
func (h *Handler) FilterProducts(c *gin.Context) {
	var q filterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.queries.FilterProducts.Execute(c.Request.Context(), q.toRequest())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SearchProducts handles GET /products/search. The storefront only sees active products.
func (h *Handler) SearchProducts(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	h.search(c, &search_products.Request{
		Query:      q.Query,
		Status:     string(domain.StatusActive),
		CategoryID: q.CategoryID,
	})
}

// AdminSearchProducts handles GET /admin/products/search across every status.
func (h *Handler) AdminSearchProducts(c *gin.Context) {
	var q adminSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	h.search(c, &search_products.Request{
		Query:      q.Query,
		Status:     q.Status,
		CategoryID: q.CategoryID,
	})
}

func (h *Handler) search(c *gin.Context, req *search_products.Request) {
	products, err := h.queries.SearchProducts.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// SearchSuggestions handles GET /products/suggestions.
func (h *Handler) SearchSuggestions(c *gin.Context) {
	var q suggestionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	suggestions, err := h.queries.SearchSuggestions.Execute(c.Request.Context(), &search_suggestions.Request{
		Query: q.Query,
		Limit: q.Limit,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// CountProducts handles GET /products/count over active products.
func (h *Handler) CountProducts(c *gin.Context) {
	var q countQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	h.count(c, &count_products.Request{
		Status:     string(domain.StatusActive),
		CategoryID: q.CategoryID,
		Search:     q.Search,
	})
}

// AdminCountProducts handles GET /admin/products/count. An empty status counts everything.
func (h *Handler) AdminCountProducts(c *gin.Context) {
	var q adminCountQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	h.count(c, &count_products.Request{
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Search:     q.Search,
	})
}

func (h *Handler) count(c *gin.Context, req *count_products.Request) {
	result, err := h.queries.CountProducts.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProductBySlug handles GET /products/slug/:slug. Only active products are visible.
func (h *Handler) GetProductBySlug(c *gin.Context) {
	product, err := h.queries.GetProduct.Execute(c.Request.Context(), &get_product.Request{
		Slug:       c.Param("slug"),
		ActiveOnly: true,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProducts handles GET /admin/products, cursor paginated.
func (h *Handler) ListProducts(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.queries.ListProducts.Execute(c.Request.Context(), &list_products.Request{
		Cursor:     q.Cursor,
		PageSize:   q.PageSize,
		Status:     q.Status,
		CategoryID: q.CategoryID,
		Search:     q.Search,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProduct handles GET /admin/products/:id, any status.
func (h *Handler) GetProduct(c *gin.Context) {
	h.respondProduct(c, http.StatusOK, c.Param("id"))
}

// CreateProduct handles POST /admin/products.
func (h *Handler) CreateProduct(c *gin.Context) {
	var body createProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	req := body.toRequest()
	req.Actor = actor(c)
	productID, err := h.commands.CreateProduct.Execute(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondProduct(c, http.StatusCreated, productID)
}

// UpdateProduct handles PATCH /admin/products/:id.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var body updateProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	productID, err := h.commands.UpdateProduct.Execute(c.Request.Context(), &update_product.Request{
		Actor:     actor(c),
		ProductID: c.Param("id"),
		Patch:     body.toPatch(),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondProduct(c, http.StatusOK, productID)
}

// ActivateProduct handles POST /admin/products/:id/activate.
func (h *Handler) ActivateProduct(c *gin.Context) {
	err := h.commands.ActivateProduct.Execute(c.Request.Context(), &activate_product.Request{
		Actor:     actor(c),
		ProductID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondProduct(c, http.StatusOK, c.Param("id"))
}

// ArchiveProduct handles POST /admin/products/:id/archive.
func (h *Handler) ArchiveProduct(c *gin.Context) {
	err := h.commands.ArchiveProduct.Execute(c.Request.Context(), &archive_product.Request{
		Actor:     actor(c),
		ProductID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	h.respondProduct(c, http.StatusOK, c.Param("id"))
}

// DeleteProduct handles DELETE /admin/products/:id.
func (h *Handler) DeleteProduct(c *gin.Context) {
	err := h.commands.DeleteProduct.Execute(c.Request.Context(), &delete_product.Request{
		Actor:     actor(c),
		ProductID: c.Param("id"),
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BackfillCounters handles POST /admin/maintenance/backfill-counters.
func (h *Handler) BackfillCounters(c *gin.Context) {
	var body backfillBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			respondBindError(c, err)
			return
		}
	}

	result, err := h.commands.BackfillCounters.Execute(c.Request.Context(), &backfill_counters.Request{
		Actor:     actor(c),
		DryRun:    body.DryRun,
		BatchSize: body.BatchSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondProduct writes the enriched product, whatever its status.
func (h *Handler) respondProduct(c *gin.Context, status int, productID string) {
	product, err := h.queries.GetProduct.Execute(c.Request.Context(), &get_product.Request{ProductID: productID})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(status, product)
}
