package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for registration, login and the
// password-reset flow.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenManager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenManager) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// AuthPayload defines the structure for login requests.
type AuthPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
}

// Register handles new user registration. No token is issued here; the
// client logs in as a separate step.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if payload.Email == "" || payload.Password == "" || payload.Name == "" {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}

	_, err := h.service.CreateUser(payload.Name, payload.Email, payload.Password, payload.Age, payload.Gender)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateEmail) {
			respondError(w, http.StatusBadRequest, "DuplicateEmail")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondMessage(w, http.StatusCreated, "Registration successful")
}

// Login handles user authentication and JWT generation.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload AuthPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
			respondError(w, http.StatusBadRequest, "InvalidCredentials")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Msg("Login failed")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	token, err := h.tokens.GenerateSession(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate JWT")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	// Set Secure flag based on environment.
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// GetMe retrieves the currently authenticated user from the token.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found in DB")
		respondError(w, http.StatusNotFound, "UserNotFound")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// RequestPasswordReset accepts a reset request. The response is identical
// whether or not the email belongs to an account, so it cannot be used to
// enumerate users.
func (h *UserHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}

	if err := h.service.RequestPasswordReset(r.Context(), payload.Email); err != nil {
		log.Error().Err(err).Msg("Failed to process password reset request")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondMessage(w, http.StatusOK, "If that account exists, a reset link has been sent")
}

// UpdatePassword consumes a reset token and sets a new password.
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Token == "" || payload.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}

	if err := h.service.ResetPassword(r.Context(), payload.Token, payload.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			respondError(w, http.StatusBadRequest, "InvalidOrExpiredToken")
			return
		}
		log.Error().Err(err).Msg("Failed to reset password")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondMessage(w, http.StatusOK, "Password updated successfully")
}
