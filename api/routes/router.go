package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strataform/strataform-backend/api/controllers"
	"github.com/strataform/strataform-backend/api/middleware"
	"github.com/strataform/strataform-backend/internal/adminauth"
	"github.com/strataform/strataform-backend/internal/auth"
	"github.com/strataform/strataform-backend/internal/carts"
	"github.com/strataform/strataform-backend/internal/catalog"
	"github.com/strataform/strataform-backend/internal/companies"
	"github.com/strataform/strataform-backend/internal/pricing"
	"github.com/strataform/strataform-backend/internal/quotes"
	"github.com/strataform/strataform-backend/pkg/auth/session"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/enums"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/metrics"
	"github.com/strataform/strataform-backend/pkg/redis"
)

// Services bundles everything the router mounts.
type Services struct {
	Auth      auth.Service
	AdminAuth adminauth.Service
	Companies companies.Service
	Catalog   catalog.Service
	Carts     carts.Service
	Quotes    quotes.Service
	Pricing   pricing.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(httpMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Get("/categories", controllers.CatalogCategories(svcs.Catalog, logg))
		r.Get("/products", controllers.CatalogProducts(svcs.Catalog, logg))
		r.Get("/products/{productId}", controllers.CatalogProduct(svcs.Catalog, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/register", controllers.AuthRegister(svcs.Companies, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(middleware.CompanyAuth(cfg.JWT, sessions, logg)).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CompanyAuth(cfg.JWT, sessions, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(svcs.Carts, logg))
			r.Post("/items", controllers.CartAddItem(svcs.Carts, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(svcs.Carts, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(svcs.Carts, logg))
			r.Delete("/", controllers.CartClear(svcs.Carts, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.QuoteConvert(svcs.Quotes, logg))
			r.Get("/", controllers.QuoteList(svcs.Quotes, logg))
			r.Get("/{quoteId}", controllers.QuoteDetail(svcs.Quotes, logg))
		})
	})

	r.Route("/api/admin/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AdminAuthLogin(svcs.AdminAuth, logg))
		r.Post("/refresh", controllers.AdminAuthRefresh(svcs.Auth, logg))
		r.With(middleware.AdminAuth(cfg.JWT, sessions, svcs.AdminAuth, logg)).Post("/logout", controllers.AdminAuthLogout(svcs.AdminAuth, logg))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.JWT, sessions, svcs.AdminAuth, logg))

		r.Route("/quotes", func(r chi.Router) {
			r.Use(middleware.RequireAdminRole(enums.AdminRoleViewer, logg))
			r.Get("/", controllers.AdminQuoteList(svcs.Quotes, logg))
			r.Get("/{quoteId}", controllers.AdminQuoteDetail(svcs.Quotes, logg))
			r.With(middleware.RequireAdminRole(enums.AdminRoleEditor, logg)).
				Post("/{quoteId}/status", controllers.AdminQuoteUpdateStatus(svcs.Quotes, logg))
		})

		r.Route("/pricing-tiers", func(r chi.Router) {
			r.Use(middleware.RequireAdminRole(enums.AdminRoleEditor, logg))
			r.Get("/", controllers.AdminTierList(svcs.Pricing, logg))
			r.Post("/", controllers.AdminTierCreate(svcs.Pricing, logg))
			r.Get("/{tierId}", controllers.AdminTierDetail(svcs.Pricing, logg))
			r.Put("/{tierId}", controllers.AdminTierUpdate(svcs.Pricing, logg))
			r.With(middleware.RequireAdminRole(enums.AdminRoleAdmin, logg)).
				Delete("/{tierId}", controllers.AdminTierDelete(svcs.Pricing, logg))
		})

		r.Route("/companies", func(r chi.Router) {
			r.Use(middleware.RequireAdminRole(enums.AdminRoleViewer, logg))
			r.Get("/", controllers.AdminCompanyList(svcs.Companies, logg))
			r.Get("/{companyId}", controllers.AdminCompanyDetail(svcs.Companies, logg))
			r.With(middleware.RequireAdminRole(enums.AdminRoleAdmin, logg)).
				Post("/{companyId}/status", controllers.AdminCompanySetStatus(svcs.Companies, logg))
			r.With(middleware.RequireAdminRole(enums.AdminRoleEditor, logg)).
				Post("/{companyId}/pricing-tier", controllers.AdminCompanyAssignTier(svcs.Companies, logg))
		})
	})

	return r
}
