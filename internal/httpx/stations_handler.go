package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/stations"
)

type StationsHandler struct {
	Repo *stations.Repo
}

func (h *StationsHandler) Register(r *chi.Mux, g *Guard) {
	r.Get("/counties", h.listCounties)
	r.Get("/counties/{id}/constituencies", h.listConstituencies)
	r.Get("/stations", h.listStations)
	r.Get("/stations/{id}", h.getStation)
	r.Route("/admin/stations", func(r chi.Router) {
		r.Use(g.RequireAuth, g.RequireRole(auth.RoleAdmin))
		r.Post("/", h.createStation)
		r.Delete("/{id}", h.deleteStation)
	})
}

func (h *StationsHandler) listCounties(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Repo.ListCounties(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *StationsHandler) listConstituencies(w http.ResponseWriter, r *http.Request) {
	cs, err := h.Repo.ListConstituencies(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *StationsHandler) listStations(w http.ResponseWriter, r *http.Request) {
	county := r.URL.Query().Get("county")
	if county == "" {
		writeError(w, http.StatusBadRequest, "missing county query parameter")
		return
	}
	sts, err := h.Repo.ListByCounty(r.Context(), county)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sts)
}

func (h *StationsHandler) getStation(w http.ResponseWriter, r *http.Request) {
	st, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, stations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type createStationReq struct {
	Name           string `json:"name"`
	CountyID       string `json:"county_id"`
	ConstituencyID string `json:"constituency_id"`
	Address        string `json:"address,omitempty"`
}

func (h *StationsHandler) createStation(w http.ResponseWriter, r *http.Request) {
	var req createStationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.CountyID == "" || req.ConstituencyID == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	st, err := h.Repo.Create(r.Context(), stations.Station{
		Name:           req.Name,
		CountyID:       req.CountyID,
		ConstituencyID: req.ConstituencyID,
		Address:        req.Address,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

func (h *StationsHandler) deleteStation(w http.ResponseWriter, r *http.Request) {
	err := h.Repo.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, stations.ErrNotFound) {
		writeError(w, http.StatusNotFound, "station not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
