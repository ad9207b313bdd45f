package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/chat"
)

type ChatHandler struct {
	Client *chat.Client
}

func (h *ChatHandler) Register(r *chi.Mux, g *Guard) {
	r.With(g.RequireAuth).Post("/chat", h.reply)
}

type chatReq struct {
	Message string         `json:"message"`
	History []chat.Message `json:"history,omitempty"`
}

func (h *ChatHandler) reply(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "missing message")
		return
	}

	reply := h.Client.Reply(r.Context(), req.Message, req.History)
	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
