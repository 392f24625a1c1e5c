package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/astraline/astraline-backend/api/controllers"
	"github.com/astraline/astraline-backend/api/middleware"
	"github.com/astraline/astraline-backend/internal/agents"
	"github.com/astraline/astraline-backend/internal/auth"
	"github.com/astraline/astraline-backend/internal/expenses"
	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/internal/payments"
	"github.com/astraline/astraline-backend/internal/pricing"
	"github.com/astraline/astraline-backend/internal/rates"
	"github.com/astraline/astraline-backend/pkg/auth/session"
	"github.com/astraline/astraline-backend/pkg/config"
	"github.com/astraline/astraline-backend/pkg/logger"
	pkgredis "github.com/astraline/astraline-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth     auth.Service
	Invoices invoices.Service
	Payments payments.Service
	Agents   agents.Service
	Rates    rates.Service
	Pricing  pricing.Service
	Expenses expenses.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *pkgredis.Client,
	sessionManager sessionManager,
	svcs Services,
	probes ...controllers.ReadinessProbe,
) http.Handler {
	// A typed nil *redis.Client must not reach the middleware as a non-nil
	// interface, so the store is only assigned when the client exists.
	var idempotencyStore pkgredis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, probes...))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/payments/quote", controllers.QuoteConversion(svcs.Payments, logg))

		r.Route("/pricing/quotes", func(r chi.Router) {
			r.Post("/shipping", controllers.QuoteShipping(svcs.Pricing, logg))
			r.Post("/vehicle-duty", controllers.QuoteVehicleDuty(svcs.Pricing, logg))
			r.Post("/shop-for-me", controllers.QuoteShopForMe(svcs.Pricing, logg))
		})

		r.Route("/agent", func(r chi.Router) {
			r.Use(middleware.RequireRole("agent", logg))
			r.Get("/balance", controllers.AgentOwnBalance(svcs.Agents, logg))
			r.Get("/invoices", controllers.AgentOwnInvoices(svcs.Invoices, logg))
			r.Get("/invoices/{invoiceId}/payments", controllers.ListInvoicePayments(svcs.Payments, logg))
			r.Post("/invoices/{invoiceId}/payments", controllers.SubmitPayment(svcs.Payments, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireAnyRole(logg, "admin", "staff"))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", controllers.ListInvoices(svcs.Invoices, logg))
			r.Post("/", controllers.CreateInvoice(svcs.Invoices, logg))
			r.Get("/{invoiceId}", controllers.GetInvoice(svcs.Invoices, logg))
			r.Put("/{invoiceId}", controllers.UpdateInvoice(svcs.Invoices, logg))
			r.Patch("/{invoiceId}/status", controllers.UpdateInvoiceStatus(svcs.Invoices, logg))
			r.Get("/{invoiceId}/payments", controllers.ListInvoicePayments(svcs.Payments, logg))
			r.Post("/{invoiceId}/payments", controllers.RecordPayment(svcs.Payments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Post("/{paymentId}/verify", controllers.VerifyPayment(svcs.Payments, logg))
			r.Post("/{paymentId}/reject", controllers.RejectPayment(svcs.Payments, logg))
		})

		r.Route("/agents", func(r chi.Router) {
			r.Get("/", controllers.ListAgents(svcs.Agents, logg))
			r.Post("/", controllers.CreateAgent(svcs.Agents, logg))
			r.Get("/{agentId}", controllers.GetAgent(svcs.Agents, logg))
			r.Put("/{agentId}", controllers.UpdateAgent(svcs.Agents, logg))
			r.Get("/{agentId}/balance", controllers.GetAgentBalance(svcs.Agents, logg))
		})

		r.Route("/rates", func(r chi.Router) {
			r.Get("/", controllers.ListRates(svcs.Rates, logg))
			r.Post("/", controllers.CreateRate(svcs.Rates, logg))
			r.Put("/{rateId}", controllers.UpdateRate(svcs.Rates, logg))
			r.Delete("/{rateId}", controllers.DeleteRate(svcs.Rates, logg))
		})

		r.Route("/pricing", func(r chi.Router) {
			r.Route("/regions", func(r chi.Router) {
				r.Get("/", controllers.ListRegions(svcs.Pricing, logg))
				r.Post("/", controllers.CreateRegion(svcs.Pricing, logg))
				r.Get("/{regionId}", controllers.GetRegion(svcs.Pricing, logg))
				r.Put("/{regionId}", controllers.UpdateRegion(svcs.Pricing, logg))
				r.Delete("/{regionId}", controllers.DeleteRegion(svcs.Pricing, logg))
				r.Put("/{regionId}/pricing", controllers.SetRegionPricing(svcs.Pricing, logg))
			})
			r.Route("/shipping-charges", func(r chi.Router) {
				r.Get("/", controllers.ListShippingCharges(svcs.Pricing, logg))
				r.Post("/", controllers.SaveShippingCharge(svcs.Pricing, logg))
				r.Put("/{chargeId}", controllers.SaveShippingCharge(svcs.Pricing, logg))
				r.Delete("/{chargeId}", controllers.DeleteShippingCharge(svcs.Pricing, logg))
			})
			r.Route("/vehicle-duty-rates", func(r chi.Router) {
				r.Get("/", controllers.ListDutyRates(svcs.Pricing, logg))
				r.Post("/", controllers.SaveDutyRate(svcs.Pricing, logg))
				r.Put("/{rateId}", controllers.SaveDutyRate(svcs.Pricing, logg))
				r.Delete("/{rateId}", controllers.DeleteDutyRate(svcs.Pricing, logg))
			})
			r.Route("/shop-for-me-charges", func(r chi.Router) {
				r.Get("/", controllers.ListShopForMeCharges(svcs.Pricing, logg))
				r.Post("/", controllers.SaveShopForMeCharge(svcs.Pricing, logg))
				r.Put("/{chargeId}", controllers.SaveShopForMeCharge(svcs.Pricing, logg))
				r.Delete("/{chargeId}", controllers.DeleteShopForMeCharge(svcs.Pricing, logg))
			})
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", controllers.ListExpenses(svcs.Expenses, logg))
			r.Post("/", controllers.CreateExpense(svcs.Expenses, logg))
			r.Get("/{expenseId}", controllers.GetExpense(svcs.Expenses, logg))
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin", logg))
				r.Post("/{expenseId}/approve", controllers.ApproveExpense(svcs.Expenses, logg))
				r.Post("/{expenseId}/reject", controllers.RejectExpense(svcs.Expenses, logg))
			})
		})
	})

	return r
}
