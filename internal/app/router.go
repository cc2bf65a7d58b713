package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/topline-app/topline/internal/auth"
	"github.com/topline-app/topline/internal/behaviors"
	"github.com/topline-app/topline/internal/kpis"
	"github.com/topline-app/topline/internal/logs"
	"github.com/topline-app/topline/internal/observability"
	"github.com/topline-app/topline/internal/roles"
	"github.com/topline-app/topline/internal/scoreboard"
	"github.com/topline-app/topline/internal/users"
	"github.com/topline-app/topline/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthMiddleware    auth.Middleware
	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	BehaviorsHandler  *behaviors.Handler
	LogsHandler       *logs.Handler
	ScoreboardHandler *scoreboard.Handler
	KPIsHandler       *kpis.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Topline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)
			params.AuthHandler.MountProtected(r)
		})
	})

	// Everything below requires a verified bearer token.
	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.Authenticate)
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.RolesHandler != nil {
			r.Route("/roles", params.RolesHandler.MountRoutes)
		}
		if params.BehaviorsHandler != nil {
			r.Route("/behaviors", params.BehaviorsHandler.MountRoutes)
		}
		if params.LogsHandler != nil {
			r.Route("/logs", params.LogsHandler.MountRoutes)
		}
		if params.ScoreboardHandler != nil {
			r.Route("/scoreboard", params.ScoreboardHandler.MountRoutes)
		}
		if params.KPIsHandler != nil {
			r.Route("/kpis", params.KPIsHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
