package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/strataform/strataform-backend/api/routes"
	"github.com/strataform/strataform-backend/internal/adminauth"
	"github.com/strataform/strataform-backend/internal/auth"
	"github.com/strataform/strataform-backend/internal/carts"
	"github.com/strataform/strataform-backend/internal/catalog"
	"github.com/strataform/strataform-backend/internal/companies"
	"github.com/strataform/strataform-backend/internal/pricing"
	"github.com/strataform/strataform-backend/internal/quotes"
	"github.com/strataform/strataform-backend/pkg/auth/session"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/logger"
	"github.com/strataform/strataform-backend/pkg/metrics"
	"github.com/strataform/strataform-backend/pkg/migrate"
	"github.com/strataform/strataform-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	companyRepo := companies.NewRepository(dbClient.DB())
	tierRepo := pricing.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := carts.NewRepository(dbClient.DB())
	quoteRepo := quotes.NewRepository(dbClient.DB())

	priceResolver, err := pricing.NewResolver(companyRepo, tierRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create price resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		CompanyRepo:    companyRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	adminRepo, err := adminauth.NewRepository(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create admin repository", err)
		os.Exit(1)
	}
	adminAuthService, err := adminauth.NewService(adminauth.ServiceParams{
		AdminRepo:      adminRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		AdminAuth:      cfg.AdminAuth,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create admin auth service", err)
		os.Exit(1)
	}

	companyService, err := companies.NewService(companyRepo, tierRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create company service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo, priceResolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := carts.NewService(cartRepo, catalogRepo, priceResolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		QuoteRepo: quoteRepo,
		CartRepo:  cartRepo,
		TxRunner:  dbClient,
		Config:    cfg.Quotes,
		Metrics:   metrics.NewQuoteMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create quote service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(tierRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			routes.Services{
				Auth:      authService,
				AdminAuth: adminAuthService,
				Companies: companyService,
				Catalog:   catalogService,
				Carts:     cartService,
				Quotes:    quoteService,
				Pricing:   pricingService,
			},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
