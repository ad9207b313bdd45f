package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/auth"
)

// DashboardHandler owns the role-gated dashboard entry points. The guards
// run before any dashboard content is produced.
type DashboardHandler struct{}

func (h *DashboardHandler) Register(r *chi.Mux, g *Guard) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(g.RequireAuth)
		r.Get("/", h.home)
		r.With(g.RequireRole(auth.RoleAdmin)).Get("/admin", h.admin)
		r.With(g.RequireRole(auth.RoleVendor, auth.RoleAdmin)).Get("/vendor", h.vendor)
		r.With(g.RequireRole(auth.RoleDriver, auth.RoleAdmin)).Get("/driver", h.driver)
	})
	r.Get("/unauthorized", h.unauthorized)
}

func (h *DashboardHandler) home(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": user,
		"sections": map[string]string{
			string(auth.RoleAdmin):  "/dashboard/admin",
			string(auth.RoleVendor): "/dashboard/vendor",
			string(auth.RoleDriver): "/dashboard/driver",
		},
	})
}

func (h *DashboardHandler) admin(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"links": []string{"/admin/users", "/admin/drivers", "/admin/stations", "/admin/categories"},
	})
}

func (h *DashboardHandler) vendor(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"links": []string{"/stores", "/products"},
	})
}

func (h *DashboardHandler) driver(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"links": []string{"/orders"},
	})
}

func (h *DashboardHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusForbidden, "you do not have access to this page")
}
