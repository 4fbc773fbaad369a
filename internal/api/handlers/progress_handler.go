package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ipquest/ipquest-be/internal/auth"
	"github.com/ipquest/ipquest-be/internal/services"
	"github.com/rs/zerolog/log"
)

// ProgressHandler handles HTTP requests for level completions and
// unlock-state queries.
type ProgressHandler struct {
	service services.ProgressServiceProvider
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(service services.ProgressServiceProvider) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// SaveLevelPayload defines the structure for save-level requests.
type SaveLevelPayload struct {
	Email       string `json:"email"`
	Chapter     string `json:"chapter"`
	LevelNumber int    `json:"levelNumber"`
	Score       int    `json:"score"`
	TimeTaken   int    `json:"timeTaken"`
}

// SaveLevel appends one completion record. The payload email must match the
// authenticated identity; replays of the same level accumulate history.
func (h *ProgressHandler) SaveLevel(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	var payload SaveLevelPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if payload.Chapter == "" || payload.LevelNumber < 1 {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if payload.Email != claims.Email {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	_, err := h.service.SaveCompletion(payload.Email, payload.Chapter, payload.LevelNumber, payload.Score, payload.TimeTaken)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "UserNotFound")
			return
		}
		log.Error().Err(err).Str("email", payload.Email).Str("chapter", payload.Chapter).Msg("Failed to save level completion")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondMessage(w, http.StatusOK, "Level progress saved")
}

// GetUserLevels returns completed and unlocked level numbers plus the full
// completion history for one chapter.
func (h *ProgressHandler) GetUserLevels(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	email := r.URL.Query().Get("email")
	chapter := r.URL.Query().Get("chapter")
	if email == "" || chapter == "" {
		respondError(w, http.StatusBadRequest, "InvalidRequest")
		return
	}
	if email != claims.Email {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	progress, err := h.service.GetUserLevels(email, chapter)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "UserNotFound")
			return
		}
		log.Error().Err(err).Str("email", email).Str("chapter", chapter).Msg("Failed to load user levels")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondJSON(w, http.StatusOK, progress)
}
