package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rinori/backoffice/internal/adspend"
	"github.com/rinori/backoffice/internal/auth"
	"github.com/rinori/backoffice/internal/budgets"
	"github.com/rinori/backoffice/internal/importer"
	"github.com/rinori/backoffice/internal/masterdata/candidates"
	"github.com/rinori/backoffice/internal/masterdata/channels"
	"github.com/rinori/backoffice/internal/masterdata/products"
	"github.com/rinori/backoffice/internal/masterdata/taxrates"
	"github.com/rinori/backoffice/internal/observability"
	"github.com/rinori/backoffice/internal/pl"
	"github.com/rinori/backoffice/internal/shared"
	"github.com/rinori/backoffice/internal/users"
	"github.com/rinori/backoffice/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	ProductsHandler   *products.Handler
	CandidatesHandler *candidates.Handler
	TaxRatesHandler   *taxrates.Handler
	ChannelsHandler   *channels.Handler
	ImportHandler     *importer.Handler
	PLHandler         *pl.Handler
	AdSpendHandler    *adspend.Handler
	BudgetsHandler    *budgets.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth)

			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/products", params.ProductsHandler.MountRoutes)
			r.Route("/candidates", params.CandidatesHandler.MountRoutes)
			r.Route("/channels", params.ChannelsHandler.MountRoutes)
			r.Route("/imports", params.ImportHandler.MountRoutes)
			r.Route("/pl", params.PLHandler.MountRoutes)
			r.Route("/ads", params.AdSpendHandler.MountRoutes)

			// Masters that steer money math are master only.
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireMaster)
				r.Route("/tax-rates", params.TaxRatesHandler.MountRoutes)
				r.Route("/budgets", params.BudgetsHandler.MountRoutes)
			})

			if params.JobHandler != nil {
				r.Route("/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	return r
}
