package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/checkout"
	"github.com/sokofresh/soko-api/internal/orders"
	"github.com/sokofresh/soko-api/internal/payment"
	"github.com/sokofresh/soko-api/internal/stations"
)

type CheckoutHandler struct {
	Ctl      *checkout.Controller
	Stations *stations.Repo
}

func (h *CheckoutHandler) Register(r *chi.Mux, g *Guard) {
	r.Route("/checkout", func(r chi.Router) {
		r.Use(g.RequireAuth)
		r.Get("/", h.state)
		r.Post("/next", h.next)
		r.Post("/back", h.back)
		r.Post("/jump", h.jump)
		r.Put("/location", h.location)
		r.Put("/instructions", h.instructions)
		r.Get("/quote", h.quote)
		r.Post("/pay", h.pay)
		r.Post("/confirm", h.confirm)
		r.Post("/restart", h.restart)
	})
}

type checkoutStateResp struct {
	Session    checkout.Session `json:"session"`
	CanProceed bool             `json:"can_proceed"`
}

func (h *CheckoutHandler) writeState(w http.ResponseWriter, sess checkout.Session, code int) {
	writeJSON(w, code, checkoutStateResp{Session: sess, CanProceed: sess.CanProceed()})
}

func (h *CheckoutHandler) state(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	sess, err := h.Ctl.State(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, sess, http.StatusOK)
}

func (h *CheckoutHandler) next(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	sess, err := h.Ctl.Advance(r.Context(), user.ID)
	switch {
	case errors.Is(err, checkout.ErrIncompleteStep):
		writeError(w, http.StatusBadRequest, "complete the current step first")
	case errors.Is(err, checkout.ErrAlreadyFinished):
		writeError(w, http.StatusConflict, "checkout already finished")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		h.writeState(w, sess, http.StatusOK)
	}
}

func (h *CheckoutHandler) back(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	sess, err := h.Ctl.Rewind(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, sess, http.StatusOK)
}

type jumpReq struct {
	Step checkout.Step `json:"step"`
}

func (h *CheckoutHandler) jump(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req jumpReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, err := h.Ctl.Jump(r.Context(), user.ID, req.Step)
	if errors.Is(err, checkout.ErrStepNotReached) {
		writeError(w, http.StatusBadRequest, "step not completed yet")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, sess, http.StatusOK)
}

type locationReq struct {
	Mode           string `json:"mode"` // "pickup" or "delivery"
	CountyID       string `json:"county_id"`
	ConstituencyID string `json:"constituency_id,omitempty"`
	StationID      string `json:"station_id,omitempty"`
}

func (h *CheckoutHandler) location(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req locationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var sess checkout.Session
	var err error
	switch orders.FulfilmentMode(req.Mode) {
	case orders.ModePickup:
		if req.StationID == "" {
			writeError(w, http.StatusBadRequest, "missing station_id")
			return
		}
		// capture the station's constituency as the sub-location
		st, gerr := h.Stations.Get(r.Context(), req.StationID)
		if errors.Is(gerr, stations.ErrNotFound) {
			writeError(w, http.StatusNotFound, "station not found")
			return
		}
		if gerr != nil {
			writeError(w, http.StatusInternalServerError, gerr.Error())
			return
		}
		sess, err = h.Ctl.ChoosePickup(r.Context(), user.ID, st.CountyID, st.ID, st.ConstituencyID)
	case orders.ModeDelivery:
		if req.CountyID == "" || req.ConstituencyID == "" {
			writeError(w, http.StatusBadRequest, "missing county_id or constituency_id")
			return
		}
		sess, err = h.Ctl.ChooseDelivery(r.Context(), user.ID, req.CountyID, req.ConstituencyID)
	default:
		writeError(w, http.StatusBadRequest, "mode must be pickup or delivery")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, sess, http.StatusOK)
}

type instructionsReq struct {
	Text string `json:"text"`
}

func (h *CheckoutHandler) instructions(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req instructionsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, err := h.Ctl.SetInstructions(r.Context(), user.ID, req.Text)
	if errors.Is(err, checkout.ErrWrongStep) {
		writeError(w, http.StatusBadRequest, "instructions apply to delivery mode only")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, sess, http.StatusOK)
}

func (h *CheckoutHandler) quote(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	q, err := h.Ctl.BuildQuote(r.Context(), user.ID)
	if errors.Is(err, checkout.ErrEmptyCart) {
		writeError(w, http.StatusBadRequest, "cart is empty")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type payReq struct {
	Method string `json:"method"` // e.g. "card", "mpesa"
	Phone  string `json:"phone,omitempty"`
}

type payResp struct {
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
}

func (h *CheckoutHandler) pay(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method == "" {
		writeError(w, http.StatusBadRequest, "missing payment method")
		return
	}

	res, err := h.Ctl.StartPayment(r.Context(), user.ID, user.Email, req.Method, req.Phone)
	switch {
	case errors.Is(err, checkout.ErrWrongStep):
		writeError(w, http.StatusBadRequest, "not on the payment step")
	case errors.Is(err, payment.ErrGateway):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, payResp{AuthorizationURL: res.AuthorizationURL, Reference: res.Reference})
	}
}

func (h *CheckoutHandler) restart(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := h.Ctl.Restart(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeState(w, checkout.NewSession(user.ID), http.StatusOK)
}

func (h *CheckoutHandler) confirm(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	orderID, err := h.Ctl.Confirm(r.Context(), user.ID)
	switch {
	case errors.Is(err, checkout.ErrPaymentFailed):
		// inline failure: the shopper stays on the payment step
		writeError(w, http.StatusPaymentRequired, "payment verification failed")
	case errors.Is(err, checkout.ErrNoReference):
		writeError(w, http.StatusBadRequest, "no payment session to confirm")
	case errors.Is(err, checkout.ErrWrongStep):
		writeError(w, http.StatusBadRequest, "not on the payment step")
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, checkout.ErrAmountMismatch):
		writeError(w, http.StatusConflict, "charged amount no longer matches the cart total")
	case errors.Is(err, payment.ErrGateway):
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"order_id": orderID, "status": "success"})
	}
}
