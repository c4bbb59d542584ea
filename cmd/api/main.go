package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dhiyug/milkdiary-backend/api/routes"
	authsvc "github.com/dhiyug/milkdiary-backend/internal/auth"
	"github.com/dhiyug/milkdiary-backend/internal/billing"
	"github.com/dhiyug/milkdiary-backend/internal/customers"
	"github.com/dhiyug/milkdiary-backend/internal/dashboard"
	"github.com/dhiyug/milkdiary-backend/internal/rates"
	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/internal/users"
	"github.com/dhiyug/milkdiary-backend/pkg/auth/session"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/db"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
	"github.com/dhiyug/milkdiary-backend/pkg/metrics"
	"github.com/dhiyug/milkdiary-backend/pkg/migrate"
	"github.com/dhiyug/milkdiary-backend/pkg/redis"
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
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	gormDB := dbClient.DB()
	usersRepo := users.NewRepository(gormDB)
	customersRepo := customers.NewRepository(gormDB)
	ratesRepo := rates.NewRepository(gormDB)
	transactionsRepo := transactions.NewRepository(gormDB)
	billingRepo := billing.NewRepository(gormDB)
	dashboardRepo := dashboard.NewRepository(gormDB)

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	customersService, err := customers.NewService(customers.ServiceParams{
		DB:       dbClient,
		Repo:     customersRepo,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}

	ratesService, err := rates.NewService(ratesRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create rate service", err)
		os.Exit(1)
	}

	transactionsService, err := transactions.NewService(transactions.ServiceParams{
		Repo:      transactionsRepo,
		Customers: customersRepo,
		Resolver:  ratesService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transaction service", err)
		os.Exit(1)
	}

	billingService, err := billing.NewService(billing.ServiceParams{
		Repo:       billingRepo,
		Customers:  customersRepo,
		RunMetrics: metrics.NewBillingRunMetrics(registry),
		Billing:    cfg.Billing,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing service", err)
		os.Exit(1)
	}

	dashboardService, err := dashboard.NewService(dashboardRepo, transactionsService)
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
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
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Redis:        redisClient,
			Sessions:     sessionManager,
			Registry:     registry,
			Auth:         authService,
			Customers:    customersService,
			Transactions: transactionsService,
			Rates:        ratesService,
			Billing:      billingService,
			Dashboard:    dashboardService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
