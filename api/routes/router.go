package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dhiyug/milkdiary-backend/api/controllers"
	"github.com/dhiyug/milkdiary-backend/api/middleware"
	authsvc "github.com/dhiyug/milkdiary-backend/internal/auth"
	"github.com/dhiyug/milkdiary-backend/internal/billing"
	"github.com/dhiyug/milkdiary-backend/internal/customers"
	"github.com/dhiyug/milkdiary-backend/internal/dashboard"
	"github.com/dhiyug/milkdiary-backend/internal/rates"
	"github.com/dhiyug/milkdiary-backend/internal/transactions"
	"github.com/dhiyug/milkdiary-backend/pkg/auth/session"
	"github.com/dhiyug/milkdiary-backend/pkg/config"
	"github.com/dhiyug/milkdiary-backend/pkg/enums"
	"github.com/dhiyug/milkdiary-backend/pkg/logger"
	"github.com/dhiyug/milkdiary-backend/pkg/metrics"
	"github.com/dhiyug/milkdiary-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs wired in.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker
	Registry *prometheus.Registry

	Auth         authsvc.Service
	Customers    customers.Service
	Transactions transactions.Service
	Rates        rates.Service
	Billing      billing.Service
	Dashboard    dashboard.Service
}

// NewRouter builds the full route tree with the shared middleware
// stack and per-role route groups.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if deps.Registry != nil {
		r.Use(middleware.Metrics(metrics.NewHTTPMetrics(deps.Registry)))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    deps.Redis,
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
			Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
		r.Post("/logout", controllers.Logout(deps.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Get("/dashboard", controllers.Dashboard(deps.Dashboard, logg))
		r.Get("/transactions", controllers.TransactionList(deps.Transactions, logg))
		r.Get("/bills", controllers.BillList(deps.Billing, logg))
		r.Get("/bill/{billID}", controllers.BillDetail(deps.Billing, logg))
		r.Get("/bill/{billID}/pdf", controllers.BillPDF(deps.Billing, logg))
		r.Get("/rate-chart", controllers.RateChartList(deps.Rates, logg))
		r.Get("/milk-types", controllers.MilkTypeList(deps.Rates, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleCustomer.String(), logg))
			r.Get("/customer/portal", controllers.CustomerPortal(deps.Dashboard, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin.String(), logg))

			r.Get("/customers", controllers.CustomerList(deps.Customers, logg))
			r.Post("/customers/new", controllers.CustomerCreate(deps.Customers, logg))
			r.Post("/customers/{customerID}/delete", controllers.CustomerDelete(deps.Customers, logg))

			r.Post("/transactions/new", controllers.TransactionCreate(deps.Transactions, logg))
			r.Post("/transactions/batch", controllers.TransactionBatch(deps.Transactions, logg))
			r.Post("/transactions/{txnID}/delete", controllers.TransactionDelete(deps.Transactions, logg))

			r.Post("/rate-chart", controllers.RateChartSave(deps.Rates, logg))
			r.Post("/milk-types", controllers.MilkTypeCreate(deps.Rates, logg))

			r.Post("/bills/generate", controllers.BillGenerate(deps.Billing, logg))
			r.Post("/billing/{billID}/delete", controllers.BillDelete(deps.Billing, logg))
			r.Post("/billing/{billID}/pay", controllers.BillPay(deps.Billing, logg))
			r.Get("/generate-inline-bill", controllers.InlineBill(deps.Billing, logg))
			r.Post("/generate-inline-bill", controllers.InlineBill(deps.Billing, logg))
		})
	})

	return r
}
