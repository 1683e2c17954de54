package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/http/dto"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type AuthHandler struct {
	auth   *clients.AuthClient
	logger *zap.Logger
}

func NewAuthHandler(auth *clients.AuthClient, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login keeps the token in the session; the browser only gets the user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in dto.LoginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, r, err)
		return
	}
	s, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, r, errNoSession)
		return
	}

	res, err := session.Login(r.Context(), h.auth, s, clients.LoginRequest{Email: in.Email, Password: in.Password}, in.RememberMe)
	if err != nil {
		h.logger.Info("admin login failed", zap.String("session_id", s.ID()), zap.Error(err))
		WriteError(w, r, err)
		return
	}
	h.logger.Info("admin login", zap.String("session_id", s.ID()), zap.Int64("user_id", res.User.ID))
	WriteOK(w, r, http.StatusOK, "Logged in", res.User)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, r, errNoSession)
		return
	}
	if err := s.Logout(r.Context()); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, r, errNoSession)
		return
	}
	u, err := s.User(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	if u == nil || !s.IsAuthenticated(r.Context()) {
		WriteError(w, r, clients.ErrUnauthorized)
		return
	}
	WriteOK(w, r, http.StatusOK, "", u)
}

// Remembered prefills the login form.
func (h *AuthHandler) Remembered(w http.ResponseWriter, r *http.Request) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, r, errNoSession)
		return
	}
	email, on, err := s.RememberedEmail(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteOK(w, r, http.StatusOK, "", dto.RememberedResponse{RememberMe: on, Email: email})
}
