package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/users"
)

type UsersHandler struct {
	Repo *users.Repo
}

func (h *UsersHandler) Register(r *chi.Mux, g *Guard) {
	r.Route("/admin/users", func(r chi.Router) {
		r.Use(g.RequireAuth, g.RequireRole(auth.RoleAdmin))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Put("/{id}/role", h.updateRole)
		r.Put("/{id}/verify", h.markVerified)
	})
	r.Route("/admin/drivers", func(r chi.Router) {
		r.Use(g.RequireAuth, g.RequireRole(auth.RoleAdmin))
		r.Get("/", h.listDrivers)
		r.Post("/", h.createDriver)
	})
}

func (h *UsersHandler) list(w http.ResponseWriter, r *http.Request) {
	us, err := h.Repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, us)
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, users.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, u)
}

type updateRoleReq struct {
	Role string `json:"role"`
}

func (h *UsersHandler) updateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	err := h.Repo.UpdateRole(r.Context(), chi.URLParam(r, "id"), role)
	if errors.Is(err, users.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"role": string(role)})
}

func (h *UsersHandler) markVerified(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.MarkVerified(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, users.ErrNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_verified": true})
}

type createDriverReq struct {
	UserID   string `json:"user_id"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	CountyID string `json:"county_id,omitempty"`
}

func (h *UsersHandler) createDriver(w http.ResponseWriter, r *http.Request) {
	var req createDriverReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	// driver accounts carry the driver role
	if err := h.Repo.UpdateRole(r.Context(), req.UserID, auth.RoleDriver); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	d, err := h.Repo.CreateDriver(r.Context(), users.Driver{
		UserID:   req.UserID,
		Name:     req.Name,
		Phone:    req.Phone,
		CountyID: req.CountyID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *UsersHandler) listDrivers(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Repo.ListDrivers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ds)
}
