package httpx

import (
	"context"
	"net/http"
	"net/url"

	"github.com/sokofresh/soko-api/internal/auth"
)

type ctxKey int

const userKey ctxKey = 0

// Guard gates protected routes. Evaluation happens before the wrapped
// handler runs, so unauthorized requests never reach protected logic.
type Guard struct {
	Issuer *auth.TokenIssuer
}

// UserFrom returns the authenticated user placed in the context by
// RequireAuth.
func UserFrom(ctx context.Context) (auth.SessionUser, bool) {
	u, ok := ctx.Value(userKey).(auth.SessionUser)
	return u, ok
}

// RequireAuth redirects requests without a valid bearer token to /login,
// carrying the originally requested path for the post-login hop.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := g.authenticate(r)
		if !ok {
			target := "/login?redirect=" + url.QueryEscape(r.URL.Path)
			http.Redirect(w, r, target, http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireRole narrows an authenticated route to the given role set.
// A wrong role lands on the unauthorized page, not an inline error.
func (g *Guard) RequireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	req := auth.Requirement(roles)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				target := "/login?redirect=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusFound)
				return
			}
			if !auth.Allowed(user.Role, req) {
				http.Redirect(w, r, "/unauthorized", http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) authenticate(r *http.Request) (auth.SessionUser, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return auth.SessionUser{}, false
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
		return auth.SessionUser{}, false
	}
	user, err := g.Issuer.Parse(header[len(prefix):], "access")
	if err != nil {
		return auth.SessionUser{}, false
	}
	return user, true
}
