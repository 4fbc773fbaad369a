package handlers

import (
	"net/http"

	"github.com/ipquest/ipquest-be/internal/services"
	"github.com/rs/zerolog/log"
)

// LeaderboardHandler handles HTTP requests for the global ranking.
type LeaderboardHandler struct {
	service services.LeaderboardServiceProvider
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(service services.LeaderboardServiceProvider) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Get returns every user ranked by cumulative score. Unauthenticated;
// the ranking is public within the app.
func (h *LeaderboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetLeaderboard()
	if err != nil {
		log.Error().Err(err).Msg("Failed to build leaderboard")
		respondError(w, http.StatusInternalServerError, "ServerError")
		return
	}

	respondJSON(w, http.StatusOK, entries)
}
