package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/cart"
	"github.com/sokofresh/soko-api/internal/catalog"
)

type CartHandler struct {
	Carts   *cart.Store
	Catalog *catalog.Repo
}

func (h *CartHandler) Register(r *chi.Mux, g *Guard) {
	r.Route("/cart", func(r chi.Router) {
		r.Use(g.RequireAuth)
		r.Get("/", h.get)
		r.Delete("/", h.clear)
		r.Post("/items", h.add)
		r.Put("/items/{id}", h.setQuantity)
		r.Delete("/items/{id}", h.remove)
	})
}

type cartResp struct {
	Lines      []cart.Line `json:"lines"`
	TotalUnits int         `json:"total_units"`
	Subtotal   string      `json:"subtotal"`
}

func toCartResp(c cart.Cart) cartResp {
	return cartResp{
		Lines:      c.Lines,
		TotalUnits: c.TotalUnits(),
		Subtotal:   c.Subtotal().StringFixed(2),
	}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	c, err := h.Carts.Load(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

type addToCartReq struct {
	ProductID string `json:"product_id"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing product_id")
		return
	}

	p, err := h.Catalog.GetProduct(r.Context(), req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if p.Stock <= 0 {
		writeError(w, http.StatusConflict, "product out of stock")
		return
	}

	c, err := h.Carts.Mutate(r.Context(), user.ID, func(c *cart.Cart) error {
		return c.Add(cart.Line{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			ImageURL:  p.ImageURL,
			Stock:     p.Stock,
			StoreID:   p.StoreID,
		})
	})
	if errors.Is(err, cart.ErrLimitExceeded) {
		writeError(w, http.StatusConflict, "cart limit reached")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

type setQuantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	productID := chi.URLParam(r, "id")

	var req setQuantityReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	c, err := h.Carts.Mutate(r.Context(), user.ID, func(c *cart.Cart) error {
		c.SetQuantity(productID, req.Quantity)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	productID := chi.URLParam(r, "id")

	c, err := h.Carts.Mutate(r.Context(), user.ID, func(c *cart.Cart) error {
		c.Remove(productID)
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	c, err := h.Carts.Mutate(r.Context(), user.ID, func(c *cart.Cart) error {
		c.Clear()
		return nil
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toCartResp(c))
}
