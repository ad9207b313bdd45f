package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/redisx"
)

type OrdersHandler struct {
	Repo  *orders.Repo
	Redis *redis.Client
}

func (h *OrdersHandler) Register(r *chi.Mux, g *Guard) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(g.RequireAuth)
		r.Get("/", h.listMine)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.getStatus)
		r.With(g.RequireRole(auth.RoleAdmin, auth.RoleDriver)).
			Put("/{id}/status", h.setStatus)
	})
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	os, err := h.Repo.ListByCustomer(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, os)
}

type orderDetailResp struct {
	Order orders.Order       `json:"order"`
	Items []orders.OrderItem `json:"items"`
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	o, items, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// a customer may only read their own orders
	user, _ := UserFrom(r.Context())
	if user.Role == auth.RoleCustomer && o.CustomerID != user.ID {
		writeError(w, http.StatusForbidden, "not your order")
		return
	}
	writeJSON(w, http.StatusOK, orderDetailResp{Order: o, Items: items})
}

func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	// 1) cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		writeJSON(w, http.StatusOK, json.RawMessage(s))
		return
	}

	// 2) fallback to DB
	status, err := h.Repo.GetStatus(r.Context(), orderID)
	if errors.Is(err, orders.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	body := map[string]any{"status": status}
	b, _ := json.Marshal(body)
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type setStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeError(w, http.StatusBadRequest, "missing status")
		return
	}

	if err := h.Repo.SetStatus(r.Context(), orderID, req.Status); err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// refresh the status cache
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	b, _ := json.Marshal(map[string]any{"status": req.Status})
	_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatusCache).Err()

	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}
