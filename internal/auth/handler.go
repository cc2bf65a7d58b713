package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// Handler wires the PIN login endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers auth routes on the provided router. MountProtected
// adds the routes that need an authenticated principal.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
}

// MountProtected registers routes that run behind the token middleware.
func (h *Handler) MountProtected(r chi.Router) {
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	OrgID  string `json:"orgId" validate:"required"`
	UserID string `json:"userId" validate:"required"`
	PIN    string `json:"pin" validate:"required,min=4,max=8,numeric"`
}

type sessionUser struct {
	ID    string `json:"id"`
	OrgID string `json:"orgId"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type loginResponse struct {
	Token         string      `json:"token"`
	User          sessionUser `json:"user"`
	AllowedRoutes []string    `json:"allowedRoutes"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	token, account, err := h.service.Authenticate(r.Context(), req.OrgID, req.UserID, req.PIN)
	if err != nil {
		h.logger.Warn("login rejected", slog.String("org_id", req.OrgID), slog.String("user_id", req.UserID))
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		Token: token,
		User: sessionUser{
			ID:    account.ID,
			OrgID: account.OrgID,
			Name:  account.Name,
			Role:  string(account.Role),
		},
		AllowedRoutes: policy.AllowedRoutes(account.Role),
	})
}

type meResponse struct {
	User                 sessionUser             `json:"user"`
	AllowedRoutes        []string                `json:"allowedRoutes"`
	Features             map[policy.Feature]bool `json:"features"`
	UnauthorizedRedirect string                  `json:"unauthorizedRedirect"`
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	features := make(map[policy.Feature]bool)
	for _, f := range []policy.Feature{
		policy.FeatureBriefings,
		policy.FeatureVerification,
		policy.FeatureAnalytics,
		policy.FeatureSettings,
		policy.FeatureUsers,
		policy.FeatureRoles,
	} {
		features[f] = policy.CanAccessFeature(principal.Role, f)
	}
	httpx.JSON(w, http.StatusOK, meResponse{
		User: sessionUser{
			ID:    principal.UserID,
			OrgID: principal.OrgID,
			Name:  principal.Name,
			Role:  string(principal.Role),
		},
		AllowedRoutes:        policy.AllowedRoutes(principal.Role),
		Features:             features,
		UnauthorizedRedirect: policy.UnauthorizedRedirect(principal.Role, r.URL.Path),
	})
}
