package kpis

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/topline-app/topline/internal/auth"
	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// Handler manages KPI endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw, validate: validator.New()}
}

// MountRoutes registers KPI routes. The game block is readable by every
// role; the rest sits behind the analytics feature gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/game", h.game)
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireFeature(policy.FeatureAnalytics))
		r.Get("/summary", h.summary)
		r.Post("/entries", h.record)
		r.Put("/target", h.setTarget)
	})
}

type entryRequest struct {
	Date         string  `json:"date" validate:"required,datetime=2006-01-02"`
	Revenue      float64 `json:"revenue" validate:"gte=0"`
	Covers       int     `json:"covers" validate:"gte=0"`
	Cost         float64 `json:"cost" validate:"gte=0"`
	Transactions int     `json:"transactions" validate:"gte=0"`
	Employees    int     `json:"employees" validate:"gte=0"`
	Budget       float64 `json:"budget" validate:"gte=0"`
}

type targetRequest struct {
	Year    int     `json:"year" validate:"required,gte=2000"`
	Revenue float64 `json:"revenue" validate:"required,gt=0"`
}

func (h *Handler) record(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	var req entryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	saved, err := h.service.Record(r.Context(), principal, Entry{
		Date:         date,
		Revenue:      req.Revenue,
		Covers:       req.Covers,
		Cost:         req.Cost,
		Transactions: req.Transactions,
		Employees:    req.Employees,
		Budget:       req.Budget,
	})
	if err != nil {
		h.logger.Error("record kpi entry", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, saved)
}

func (h *Handler) setTarget(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	var req targetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	target, err := h.service.SetTarget(r.Context(), principal, req.Year, req.Revenue)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, target)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	summary, err := h.service.Summary(r.Context(), principal.OrgID, r.URL.Query().Get("period"))
	if err != nil {
		h.logger.Error("kpi summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) game(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	game, err := h.service.Game(r.Context(), principal.OrgID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, game)
}
