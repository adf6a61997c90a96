package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/light-bringer/catalog-engine/internal/pkg/auth"
)

// RouterOptions configures NewRouter.
type RouterOptions struct {
	Verifier           *auth.TokenVerifier
	RateLimitPerSecond float64
	RateLimitBurst     int
	Log                logrus.FieldLogger
}

// NewRouter builds the gin engine serving h.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	registerValidations()

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(opts.Log))
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
		ExposeHeaders:    []string{headerRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	if opts.RateLimitPerSecond > 0 && opts.RateLimitBurst > 0 {
		r.Use(NewRateLimiter(opts.RateLimitPerSecond, opts.RateLimitBurst).Middleware())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		// Storefront routes
		products := v1.Group("/products")
		{
			products.GET("", h.FilterProducts)
			products.GET("/search", h.SearchProducts)
			products.GET("/suggestions", h.SearchSuggestions)
			products.GET("/count", h.CountProducts)
			products.GET("/slug/:slug", h.GetProductBySlug)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(Authenticate(opts.Verifier, opts.Log), RequireAdmin(opts.Log))
		{
			adminProducts := admin.Group("/products")
			{
				adminProducts.GET("", h.ListProducts)
				adminProducts.POST("", h.CreateProduct)
				adminProducts.GET("/search", h.AdminSearchProducts)
				adminProducts.GET("/count", h.AdminCountProducts)
				adminProducts.GET("/:id", h.GetProduct)
				adminProducts.PATCH("/:id", h.UpdateProduct)
				adminProducts.DELETE("/:id", h.DeleteProduct)
				adminProducts.POST("/:id/activate", h.ActivateProduct)
				adminProducts.POST("/:id/archive", h.ArchiveProduct)
			}

			maintenance := admin.Group("/maintenance")
			{
				maintenance.POST("/backfill-counters", h.BackfillCounters)
				maintenance.GET("/sync-failures", h.ListSyncFailures)
			}
		}
	}

	return r
}
