package handlers

import (
	"encoding/json"
	"net/http"
)

// respondJSON writes v as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes a stable error kind. Clients key off the kind, not
// the status text.
func respondError(w http.ResponseWriter, status int, kind string) {
	respondJSON(w, status, map[string]string{"error": kind})
}

// respondMessage writes a plain confirmation body.
func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
