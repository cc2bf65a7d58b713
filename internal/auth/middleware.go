package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/topline-app/topline/internal/platform/httpx"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

// Middleware verifies bearer tokens and enforces feature gates.
type Middleware struct {
	Tokens *TokenManager
	Logger *slog.Logger
}

// Authenticate verifies the Authorization header and stores the principal
// in the request context. Requests without a valid token get a 401 problem.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := m.Tokens.Verify(token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("reject bearer token", slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		principal := &shared.Principal{
			UserID: claims.Subject,
			OrgID:  claims.OrgID,
			Name:   claims.Name,
			Role:   policy.Role(claims.Role),
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireFeature gates a route group behind a policy feature check.
func (m Middleware) RequireFeature(feature policy.Feature) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := shared.PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !policy.CanAccessFeature(principal.Role, feature) {
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
