package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sokofresh/soko-api/internal/auth"
)

func testGuard() *Guard {
	return &Guard{Issuer: &auth.TokenIssuer{
		Secret:     []byte("test-secret"),
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}}
}

func bearerFor(t *testing.T, g *Guard, role auth.Role) string {
	t.Helper()
	tokens, err := g.Issuer.Issue(auth.SessionUser{ID: "u-1", Email: "a@b.ke", Role: role})
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tokens.Access
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsToLogin(t *testing.T) {
	g := testGuard()
	srv := g.RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("code = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?redirect=%2Fdashboard" {
		t.Fatalf("location = %q", loc)
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	g := testGuard()
	srv := g.RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("code = %d, want 302", rec.Code)
	}
}

func TestRequireAuthPassesValidToken(t *testing.T) {
	g := testGuard()
	var gotUser auth.SessionUser
	srv := g.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", bearerFor(t, g, auth.RoleCustomer))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
	if gotUser.ID != "u-1" || gotUser.Role != auth.RoleCustomer {
		t.Fatalf("user = %+v", gotUser)
	}
}

func TestRequireRole(t *testing.T) {
	g := testGuard()
	srv := g.RequireAuth(g.RequireRole(auth.RoleAdmin)(okHandler()))

	t.Run("wrong role redirects to unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)
		req.Header.Set("Authorization", bearerFor(t, g, auth.RoleCustomer))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("code = %d, want 302", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/unauthorized" {
			t.Fatalf("location = %q", loc)
		}
	})

	t.Run("matching role passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/dashboard/admin", nil)
		req.Header.Set("Authorization", bearerFor(t, g, auth.RoleAdmin))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200", rec.Code)
		}
	})
}
