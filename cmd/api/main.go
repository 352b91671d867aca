package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/shopstack/shopstack-backend/api/routes"
	authsvc "github.com/shopstack/shopstack-backend/internal/auth"
	customersvc "github.com/shopstack/shopstack-backend/internal/customers"
	dashboardsvc "github.com/shopstack/shopstack-backend/internal/dashboard"
	inventorysvc "github.com/shopstack/shopstack-backend/internal/inventory"
	productsvc "github.com/shopstack/shopstack-backend/internal/products"
	purchasesvc "github.com/shopstack/shopstack-backend/internal/purchases"
	salesvc "github.com/shopstack/shopstack-backend/internal/sales"
	"github.com/shopstack/shopstack-backend/internal/sequence"
	shopsvc "github.com/shopstack/shopstack-backend/internal/shops"
	"github.com/shopstack/shopstack-backend/internal/users"
	"github.com/shopstack/shopstack-backend/pkg/auth/session"
	"github.com/shopstack/shopstack-backend/pkg/config"
	"github.com/shopstack/shopstack-backend/pkg/db"
	"github.com/shopstack/shopstack-backend/pkg/logger"
	"github.com/shopstack/shopstack-backend/pkg/metrics"
	"github.com/shopstack/shopstack-backend/pkg/migrate"
	"github.com/shopstack/shopstack-backend/pkg/redis"
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

	registry := prometheus.NewRegistry()
	saleMetrics := metrics.NewSaleMetrics(registry)

	gdb := dbClient.DB()
	sequenceRepo := sequence.NewRepository(gdb)
	stockRepo := inventorysvc.NewRepository(gdb)
	productRepo := productsvc.NewRepository(gdb)
	customerRepo := customersvc.NewRepository(gdb)
	saleRepo := salesvc.NewRepository(gdb)
	purchaseRepo := purchasesvc.NewRepository(gdb)
	shopRepo := shopsvc.NewRepository(gdb)
	dashboardRepo := dashboardsvc.NewRepository(gdb)

	allocator, err := sequence.NewAllocator(dbClient, sequenceRepo, cfg.Sequence, saleMetrics)
	exitOn(logg, "sequence allocator", err)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       users.NewRepository(gdb),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOn(logg, "auth service", err)

	productService, err := productsvc.NewService(productRepo, stockRepo, dbClient)
	exitOn(logg, "product service", err)

	customerService, err := customersvc.NewService(customerRepo, allocator)
	exitOn(logg, "customer service", err)

	inventoryService, err := inventorysvc.NewService(stockRepo, dbClient, cfg.Inventory)
	exitOn(logg, "inventory service", err)

	saleService, err := salesvc.NewService(
		saleRepo,
		allocator,
		stockRepo,
		productRepo,
		customerRepo,
		logg,
		saleMetrics,
	)
	exitOn(logg, "sale service", err)

	purchaseService, err := purchasesvc.NewService(purchaseRepo, productRepo, stockRepo, dbClient)
	exitOn(logg, "purchase service", err)

	dashboardService, err := dashboardsvc.NewService(dashboardRepo, redisClient, cfg.Dashboard, cfg.Inventory, logg)
	exitOn(logg, "dashboard service", err)

	shopService, err := shopsvc.NewService(shopRepo)
	exitOn(logg, "shop service", err)

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

	router := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, routes.Services{
		Auth:      authService,
		Products:  productService,
		Customers: customerService,
		Sales:     saleService,
		Inventory: inventoryService,
		Purchases: purchaseService,
		Dashboard: dashboardService,
		Shops:     shopService,
	})

	server := &http.Server{Addr: addr, Handler: router}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err != nil {
		logg.Error(context.Background(), "failed to create "+what, err)
		os.Exit(1)
	}
}
