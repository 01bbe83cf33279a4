package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kalaasutra/storefront/internal/models"
	"github.com/kalaasutra/storefront/internal/repository"
	"github.com/kalaasutra/storefront/internal/service"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	service *service.AuthService
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

// Register handles POST /api/auth/register
// - 201: user created
// - 400: Email already registered, or invalid input
// - 403: privileged role requested
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("failed to decode registration", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrEmailTaken):
		WriteError(w, http.StatusBadRequest, "Email already registered", h.logger)
		return
	case errors.Is(err, service.ErrInvalidRegistration):
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	case errors.Is(err, service.ErrRoleNotAllowed):
		h.logger.Warn("privileged signup refused", "role", req.Role)
		WriteError(w, http.StatusForbidden, "Role cannot be self-assigned", h.logger)
		return
	default:
		h.logger.Error("failed to register user", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	WriteJSON(w, http.StatusCreated, user, h.logger)
}

// Login handles POST /api/auth/login with form fields username and password
// - 200: bearer token
// - 401: Incorrect email or password
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid form body", h.logger)
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		WriteError(w, http.StatusBadRequest, "username and password are required", h.logger)
		return
	}

	token, err := h.service.Login(r.Context(), username, password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		h.logger.Info("login failed", "username", username)
		WriteUnauthorized(w, "Incorrect email or password", h.logger)
		return
	}
	if err != nil {
		h.logger.Error("login error", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, token, h.logger)
}
