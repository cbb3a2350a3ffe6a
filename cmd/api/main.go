package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/greenfeen/storefront/internal/di"
	"github.com/greenfeen/storefront/internal/domain"
	"github.com/greenfeen/storefront/internal/handlers"
	"github.com/greenfeen/storefront/internal/platform/config"
	"github.com/greenfeen/storefront/internal/platform/idempotency"
	"github.com/greenfeen/storefront/internal/platform/observability"
	"github.com/greenfeen/storefront/internal/platform/secrets"
	"github.com/greenfeen/storefront/internal/platform/session"
	badgerstore "github.com/greenfeen/storefront/internal/repositories/badger"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("storefront")
	ctx = observability.WithLogger(ctx, logger)

	resolver := secrets.NewFetcher(secrets.WithLogger(logger.Named("secrets")))
	cfg, err := config.Load(ctx, config.WithSecretResolver(resolver))
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	store, err := badgerstore.NewStore(badgerstore.Options{
		DataDir:  cfg.Store.DataDir,
		InMemory: cfg.Store.InMemory,
		Logger:   logger.Named("store"),
	})
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn("store close error", zap.Error(err))
		}
	}()

	container, err := di.NewContainer(ctx, cfg, store, logger)
	if err != nil {
		logger.Fatal("failed to build container", zap.Error(err))
	}

	seed, err := loadCatalogSeed(cfg.Catalog.SeedFile)
	if err != nil {
		logger.Fatal("failed to load catalog seed", zap.Error(err))
	}
	if err := container.Services.Catalog.Seed(ctx, seed); err != nil {
		logger.Fatal("failed to seed catalog", zap.Error(err))
	}

	logger.Info("mail transport selected", zap.String("sender", container.Sender.Name()))

	cartHandlers := handlers.NewCartHandlers(container.Services.Cart, container.Services.Notices)
	submissionGuard := idempotency.Middleware(
		idempotency.NewMemoryStore(),
		idempotency.WithLogger(logger.Named("submissions")),
	)
	checkoutHandlers := handlers.NewCheckoutHandlers(
		container.Services.Cart,
		container.Services.Checkout,
		container.Services.Notices,
		handlers.WithSubmissionGuard(submissionGuard),
	)
	contactHandlers := handlers.NewContactHandlers(container.Services.Contact, container.Services.Notices)
	productHandlers := handlers.NewProductHandlers(container.Services.Catalog)
	navHandlers := handlers.NewNavHandlers()

	router := handlers.NewRouter(
		handlers.WithMiddlewares(
			observability.InjectLoggerMiddleware(logger),
			observability.TraceMiddleware(),
			session.Middleware(cfg.Server.SessionCookie),
			observability.RequestLoggerMiddleware(),
			observability.RecoveryMiddleware(logger),
		),
		handlers.WithHealthHandlers(handlers.NewHealthHandlers(store.Health())),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithContactRoutes(contactHandlers.Routes),
		handlers.WithNewsletterRoutes(contactHandlers.NewsletterRoutes),
		handlers.WithProductRoutes(productHandlers.Routes),
		handlers.WithNavRoutes(navHandlers.Routes),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("greenfeen storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

type seedProduct struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Category string `json:"category"`
}

// loadCatalogSeed reads the product seed file, falling back to the built-in
// listing when none is configured. Prices in the file are written as pounds
// ("3.50") and converted to pence.
func loadCatalogSeed(path string) ([]domain.Product, error) {
	if path == "" {
		return defaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog seed %s: %w", path, err)
	}

	var records []seedProduct
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse catalog seed %s: %w", path, err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, record := range records {
		price, err := domain.ParseGBP(record.Price)
		if err != nil {
			return nil, fmt.Errorf("catalog seed %s: product %q: %w", path, record.ID, err)
		}
		products = append(products, domain.Product{
			ID:        record.ID,
			Name:      record.Name,
			UnitPrice: price,
			Category:  record.Category,
		})
	}
	return products, nil
}

func defaultCatalog() []domain.Product {
	return []domain.Product{
		{ID: "item-basil", Name: "Basil Plant", UnitPrice: 350, Category: "herbs"},
		{ID: "item-mint", Name: "Mint Plant", UnitPrice: 300, Category: "herbs"},
		{ID: "item-fern", Name: "Boston Fern", UnitPrice: 1200, Category: "indoor"},
		{ID: "item-monstera", Name: "Monstera Deliciosa", UnitPrice: 2500, Category: "indoor"},
		{ID: "item-snake", Name: "Snake Plant", UnitPrice: 1500, Category: "indoor"},
		{ID: "item-lavender", Name: "Lavender", UnitPrice: 600, Category: "outdoor"},
		{ID: "item-rose", Name: "Climbing Rose", UnitPrice: 1800, Category: "outdoor"},
		{ID: "item-pot-terra", Name: "Terracotta Pot", UnitPrice: 800, Category: "accessories"},
	}
}
