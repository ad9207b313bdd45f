package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/catalog"
)

type CatalogHandler struct {
	Repo *catalog.Repo
}

func (h *CatalogHandler) Register(r *chi.Mux, g *Guard) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.With(g.RequireAuth, g.RequireRole(auth.RoleVendor, auth.RoleAdmin)).
		Post("/products", h.createProduct)

	r.Get("/categories", h.listCategories)
	r.Get("/categories/{id}/subcategories", h.listSubcategories)
	r.Route("/admin/categories", func(r chi.Router) {
		r.Use(g.RequireAuth, g.RequireRole(auth.RoleAdmin))
		r.Post("/", h.createCategory)
		r.Delete("/{id}", h.deleteCategory)
		r.Post("/{id}/subcategories", h.createSubcategory)
	})

	r.Get("/stores", h.listStores)
	r.Get("/stores/{id}", h.getStore)
	r.With(g.RequireAuth, g.RequireRole(auth.RoleVendor, auth.RoleAdmin)).
		Post("/stores", h.createStore)
	r.With(g.RequireAuth, g.RequireRole(auth.RoleVendor, auth.RoleAdmin)).
		Get("/stores/{id}/dashboard", h.storeDashboard)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Repo.ListProducts(r.Context(), r.URL.Query().Get("category"), r.URL.Query().Get("store"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Repo.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type createProductReq struct {
	StoreID       string `json:"store_id"`
	CategoryID    string `json:"category_id"`
	SubcategoryID string `json:"subcategory_id,omitempty"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ImageURL      string `json:"image_url,omitempty"`
	Price         string `json:"price"`
	Stock         int    `json:"stock"`
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.StoreID == "" || req.CategoryID == "" || req.Name == "" || req.Price == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeError(w, http.StatusBadRequest, "invalid price")
		return
	}
	if req.Stock < 0 {
		writeError(w, http.StatusBadRequest, "invalid stock")
		return
	}

	p, err := h.Repo.CreateProduct(r.Context(), catalog.Product{
		StoreID:       req.StoreID,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		Name:          req.Name,
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Price:         price,
		Stock:         req.Stock,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Repo.ListCategories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

type nameReq struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	c, err := h.Repo.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.DeleteCategory(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "category not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) listSubcategories(w http.ResponseWriter, r *http.Request) {
	ss, err := h.Repo.ListSubcategories(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, ss)
}

func (h *CatalogHandler) createSubcategory(w http.ResponseWriter, r *http.Request) {
	var req nameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}
	s, err := h.Repo.CreateSubcategory(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *CatalogHandler) listStores(w http.ResponseWriter, r *http.Request) {
	sts, err := h.Repo.ListStores(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sts)
}

func (h *CatalogHandler) getStore(w http.ResponseWriter, r *http.Request) {
	st, err := h.Repo.GetStore(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "store not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type createStoreReq struct {
	Name     string `json:"name"`
	CountyID string `json:"county_id,omitempty"`
}

func (h *CatalogHandler) createStore(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req createStoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "missing name")
		return
	}

	st, err := h.Repo.CreateStore(r.Context(), catalog.Store{
		OwnerID:  user.ID,
		Name:     req.Name,
		CountyID: req.CountyID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *CatalogHandler) storeDashboard(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")

	// vendors may only read their own store's numbers
	user, _ := UserFrom(r.Context())
	if user.Role == auth.RoleVendor {
		st, err := h.Repo.GetStore(r.Context(), storeID)
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, "store not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if st.OwnerID != user.ID {
			writeError(w, http.StatusForbidden, "not your store")
			return
		}
	}

	d, err := h.Repo.StoreDashboard(r.Context(), storeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, d)
}
