package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/planforge/v1/internal/infrastructure/http/middleware"
	"github.com/planforge/v1/internal/ports/inbound"
	"github.com/planforge/v1/pkg/errors"
	"go.uber.org/zap"
)

// AuthHandlers serves registration, login and profile endpoints.
type AuthHandlers struct {
	userService  inbound.UserService
	validate     *validator.Validate
	cookieName   string
	cookieSecure bool
	logger       *zap.Logger
}

// NewAuthHandlers creates auth API handlers.
func NewAuthHandlers(userService inbound.UserService, cookieName string, cookieSecure bool, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		userService:  userService,
		validate:     validator.New(),
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		logger:       logger.Named("auth-handlers"),
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.RegisterCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(&cmd); err != nil {
		respondError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	resp, err := h.userService.Register(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, resp)
	respondJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd inbound.LoginCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(&cmd); err != nil {
		respondError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	resp, err := h.userService.Login(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	h.setSessionCookie(w, resp)
	respondJSON(w, http.StatusOK, resp)
}

// Logout handles POST /api/v1/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		token = cookie.Value
	}
	if auth := r.Header.Get("Authorization"); len(auth) > 7 && auth[:7] == "Bearer " {
		token = auth[7:]
	}

	if err := h.userService.Logout(r.Context(), token); err != nil {
		respondError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me handles GET /api/v1/auth/me.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	profile, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, r, errors.NewUnauthorizedError("authentication required"))
		return
	}

	var cmd inbound.UpdateProfileCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		respondError(w, r, errors.NewBadRequestError("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(&cmd); err != nil {
		respondError(w, r, errors.NewValidationError(err.Error()))
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), userID, cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, resp *inbound.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    resp.AccessToken,
		Path:     "/",
		Expires:  time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
