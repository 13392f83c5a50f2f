package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/variantcatalog/internal/service"
	"github.com/utafrali/variantcatalog/pkg/health"
	"github.com/utafrali/variantcatalog/pkg/middleware"
)

// RouterConfig holds the HTTP concerns that vary by environment.
type RouterConfig struct {
	ServiceName       string
	CORS              middleware.CORSConfig
	CatalogMaxAge     time.Duration
	RateLimitRPS      float64
	RateLimitBurst    int
	TokenValidator    middleware.TokenValidator
	PprofEnabled      bool
	PprofAllowedCIDRs []string
}

// NewRouter creates a chi router with all variant service routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	combinationService *service.CombinationService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})
	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	catalogHandler := NewCatalogHandler(catalogService, logger)
	combinationHandler := NewCombinationHandler(combinationService, logger)
	admin := []func(http.Handler) http.Handler{
		middleware.Auth(cfg.TokenValidator),
		middleware.RequireRole(middleware.RoleAdmin),
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Catalog reads only change on deploy.
		r.Group(func(r chi.Router) {
			if cfg.CatalogMaxAge > 0 {
				r.Use(middleware.CacheControl(cfg.CatalogMaxAge))
			}

			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/categories/{categoryId}", catalogHandler.GetCategory)
			r.Get("/categories/{categoryId}/subcategories/{subcategoryId}", catalogHandler.GetSubcategory)
			r.Get("/categories/{categoryId}/product-types", catalogHandler.ListCategoryProductTypes)

			r.Get("/product-types", catalogHandler.ListProductTypes)
			r.Get("/product-types/{productTypeId}", catalogHandler.GetProductType)
			r.Get("/product-types/{productTypeId}/variant-templates", catalogHandler.ListProductTypeTemplates)

			r.Get("/variant-templates", catalogHandler.ListVariantTemplates)
			r.Get("/variant-templates/{templateId}", catalogHandler.GetVariantTemplate)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
			r.Use(middleware.RequireJSON)

			r.Post("/variants/encode", catalogHandler.Encode)
			r.Post("/variants/decode", catalogHandler.Decode)
			r.Post("/combinations/preview", combinationHandler.Preview)
		})

		r.Get("/combinations/search", combinationHandler.Search)
		r.Get("/combinations/{id}", combinationHandler.Get)
		r.Get("/products/{productId}/combinations", combinationHandler.List)
		r.Get("/products/{productId}/combinations/facets", combinationHandler.Facets)

		r.Group(func(r chi.Router) {
			r.Use(admin...)
			r.Use(middleware.RequireJSON)

			r.Put("/products/{productId}/combinations", combinationHandler.Save)
			r.Delete("/products/{productId}/combinations", combinationHandler.Delete)
			r.Patch("/combinations/{id}/quantity", combinationHandler.UpdateQuantity)
		})
	})

	return r
}
