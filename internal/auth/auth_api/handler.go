package auth_api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"ms-reservations/internal/apierror"
	"ms-reservations/internal/auth"
	"ms-reservations/internal/logger"
)

type Handler struct {
	AuthService *auth.Service
	Logger      *logger.Logger
}

func NewHandler(authService *auth.Service, log *logger.Logger) *Handler {
	return &Handler{AuthService: authService, Logger: log}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: failed to decode request body: %v", err))
		apierror.Write(w, apierror.NewValidation().Add("body", "the request body must be valid JSON"))
		return
	}

	user, err := h.AuthService.Register(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Register: user %d registered (%s)", user.ID, user.Email))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "user registered successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to decode request body: %v", err))
		apierror.Write(w, apierror.NewValidation().Add("body", "the request body must be valid JSON"))
		return
	}

	token, err := h.AuthService.Login(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", "Login: token issued")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user := auth.CurrentUser(r.Context())
	if user == nil {
		apierror.Write(w, apierror.Unauthenticated("unauthenticated"))
		return
	}

	if err := h.AuthService.Logout(r.Context(), user.ID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Logout: %v", err))
		apierror.Write(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("Logout: all tokens revoked for user %d", user.ID))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"message": "logged out successfully"})
}
