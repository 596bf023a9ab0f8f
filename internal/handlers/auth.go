package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/otcheredev/hms-console/internal/middleware"
	"github.com/otcheredev/hms-console/internal/models"
	"github.com/otcheredev/hms-console/internal/services"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
)

type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login exchanges credentials for a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		log.Info().Str("username", req.Username).Msg("Login rejected")
		writeError(w, r, err)
		return
	}
	log.Info().Str("username", resp.User.Username).Str("role", string(resp.User.Role)).Msg("Login succeeded")
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the caller's identity
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	me, err := h.authService.Me(r.Context(), claims)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}

// UsersByRole lists active staff holding a role
func (h *AuthHandler) UsersByRole(w http.ResponseWriter, r *http.Request) {
	role, err := models.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, r, apperrors.NewValidationError("Invalid role", map[string]string{"role": err.Error()}))
		return
	}
	writeJSON(w, http.StatusOK, h.userService.ByRole(r.Context(), role))
}

// UserByID returns one staff member
func (h *AuthHandler) UserByID(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := h.userService.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
