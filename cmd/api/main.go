package main

import (
	"context"
	"net/http"
	"os"

	"github.com/astraline/astraline-backend/api/controllers"
	"github.com/astraline/astraline-backend/api/routes"
	"github.com/astraline/astraline-backend/internal/agents"
	"github.com/astraline/astraline-backend/internal/auth"
	"github.com/astraline/astraline-backend/internal/expenses"
	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/internal/journal"
	"github.com/astraline/astraline-backend/internal/payments"
	"github.com/astraline/astraline-backend/internal/pricing"
	"github.com/astraline/astraline-backend/internal/rates"
	"github.com/astraline/astraline-backend/internal/users"
	"github.com/astraline/astraline-backend/pkg/auth/session"
	"github.com/astraline/astraline-backend/pkg/config"
	"github.com/astraline/astraline-backend/pkg/db"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/migrate"
	"github.com/astraline/astraline-backend/pkg/redis"
	"github.com/joho/godotenv"
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

	gormDB := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(gormDB),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ratesService, err := rates.NewService(rates.NewRepository(gormDB), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create rates service", err)
		os.Exit(1)
	}

	journalService, err := journal.NewService(journal.NewRepository(gormDB))
	if err != nil {
		logg.Error(context.Background(), "failed to create journal service", err)
		os.Exit(1)
	}

	invoiceRepo := invoices.NewRepository(gormDB)

	invoicesService, err := invoices.NewService(invoiceRepo, dbClient, ratesService, cfg.Finance.InvoiceNumberPrefix, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create invoices service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.NewRepository(gormDB), invoiceRepo, journalService, dbClient, ratesService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	agentsService, err := agents.NewService(agents.NewRepository(gormDB), ratesService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create agents service", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(gormDB), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	expensesService, err := expenses.NewService(expenses.NewRepository(gormDB), journalService, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, redisClient, sessionManager, routes.Services{
			Auth:     authService,
			Invoices: invoicesService,
			Payments: paymentsService,
			Agents:   agentsService,
			Rates:    ratesService,
			Pricing:  pricingService,
			Expenses: expensesService,
		},
			controllers.ReadinessProbe{Name: "postgres", Ping: dbClient.Ping},
			controllers.ReadinessProbe{Name: "redis", Ping: redisClient.Ping},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
