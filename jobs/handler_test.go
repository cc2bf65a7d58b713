package jobs

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/topline-app/topline/internal/auth"
	"github.com/topline-app/topline/internal/policy"
	"github.com/topline-app/topline/internal/shared"
)

func newJobsRouter() chi.Router {
	h := NewHandler(nil, nil, auth.Middleware{}, discardLogger())
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	return r
}

func doAs(t *testing.T, r chi.Router, role policy.Role, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	ctx := shared.ContextWithPrincipal(req.Context(), &shared.Principal{
		UserID: "u-1", OrgID: "org-1", Role: role,
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

func TestJobRoutesRefuseNonAdmins(t *testing.T) {
	r := newJobsRouter()

	for _, role := range []policy.Role{policy.RoleServer, policy.RoleBartender, policy.RoleHost, policy.RoleManager} {
		if rec := doAs(t, r, role, http.MethodGet, "/jobs/health"); rec.Code != http.StatusForbidden {
			t.Fatalf("expected %s forbidden on health, got %d", role, rec.Code)
		}
		if rec := doAs(t, r, role, http.MethodPost, "/jobs/warmup?orgId=other-org"); rec.Code != http.StatusForbidden {
			t.Fatalf("expected %s forbidden on warmup, got %d", role, rec.Code)
		}
	}
}

func TestJobRoutesAllowAdmins(t *testing.T) {
	r := newJobsRouter()

	if rec := doAs(t, r, policy.RoleAdmin, http.MethodGet, "/jobs/health"); rec.Code != http.StatusOK {
		t.Fatalf("expected admin to read queue health, got %d", rec.Code)
	}
	// No queue client wired in this test, so the enqueue path degrades to
	// unavailable rather than forbidden.
	if rec := doAs(t, r, policy.RoleAdmin, http.MethodPost, "/jobs/warmup"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a queue client, got %d", rec.Code)
	}
}
