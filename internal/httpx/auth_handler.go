package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sokofresh/soko-api/internal/auth"
	"github.com/sokofresh/soko-api/internal/users"
)

type AuthHandler struct {
	Users    *users.Repo
	Issuer   *auth.TokenIssuer
	Sessions *auth.SessionStore
}

func (h *AuthHandler) Register(r *chi.Mux, g *Guard) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Post("/auth/refresh", h.refresh)
	r.With(g.RequireAuth).Post("/auth/reset-password", h.resetPassword)
	r.With(g.RequireAuth).Post("/auth/logout", h.logout)
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type sessionResp struct {
	User       auth.SessionUser `json:"user"`
	Tokens     auth.Tokens      `json:"tokens"`
	IsVerified bool             `json:"is_verified"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}
	role := auth.RoleCustomer
	if req.Role != "" {
		parsed, ok := auth.ParseRole(req.Role)
		if !ok || parsed == auth.RoleAdmin {
			writeError(w, http.StatusBadRequest, "invalid role")
			return
		}
		role = parsed
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password")
		return
	}
	u, err := h.Users.Create(r.Context(), req.Email, hash, role)
	if errors.Is(err, users.ErrEmailTaken) {
		writeError(w, http.StatusConflict, "email already registered")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondWithSession(w, r, u, http.StatusCreated)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, users.ErrNotFound) || (err == nil && !auth.CheckPassword(u.PasswordHash, req.Password)) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.respondWithSession(w, r, u, http.StatusOK)
}

type refreshReq struct {
	Refresh string `json:"refresh"`
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	su, err := h.Issuer.Parse(req.Refresh, "refresh")
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}
	// re-read the account so a role change lands in the new token pair
	u, err := h.Users.Get(r.Context(), su.ID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "account not found")
		return
	}

	h.respondWithSession(w, r, u, http.StatusOK)
}

type resetPasswordReq struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) resetPassword(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())

	var req resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, "missing new password")
		return
	}

	u, err := h.Users.Get(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		writeError(w, http.StatusUnauthorized, "wrong password")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "hash password")
		return
	}
	if err := h.Users.SetPassword(r.Context(), user.ID, hash); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFrom(r.Context())
	if err := h.Sessions.Delete(r.Context(), user.ID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (h *AuthHandler) respondWithSession(w http.ResponseWriter, r *http.Request, u users.User, code int) {
	su := auth.SessionUser{ID: u.ID, Email: u.Email, Role: u.Role}
	tokens, err := h.Issuer.Issue(su)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "issue tokens")
		return
	}
	sess := auth.Session{Tokens: tokens, User: su, IsVerified: u.IsVerified}
	if err := h.Sessions.Save(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, "persist session")
		return
	}
	writeJSON(w, code, sessionResp{User: su, Tokens: tokens, IsVerified: u.IsVerified})
}
