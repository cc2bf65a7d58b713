package scoreboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/shared"
)

// Handler serves leaderboard endpoints. Every authenticated role may read
// the board; the standing endpoint always reflects the caller.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers scoreboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.board)
	r.Get("/me", h.standing)
}

func parseQuery(r *http.Request) Query {
	q := Query{Period: r.URL.Query().Get("period")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			q.Limit = limit
		}
	}
	q.VerifiedOnly = r.URL.Query().Get("verified") == "true"
	return q
}

func (h *Handler) board(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	board, err := h.service.Leaderboard(r.Context(), principal.OrgID, parseQuery(r))
	if err != nil {
		h.logger.Error("build leaderboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, board)
}

func (h *Handler) standing(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	standing, err := h.service.Standing(r.Context(), principal.OrgID, principal.UserID, parseQuery(r))
	if err != nil {
		h.logger.Error("build standing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, standing)
}
