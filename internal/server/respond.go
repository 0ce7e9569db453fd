package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchday/backend/internal/client"
	"matchday/backend/internal/repository"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorBody{Error: code, Message: message})
}

// respondTaxonomyError maps the failure taxonomy to HTTP statuses.
// Every upstream or ledger failure surfaces to the caller as a formatted
// error body; nothing is swallowed and nothing kills the process.
func respondTaxonomyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, client.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "no data for query")
	case errors.Is(err, client.ErrRateLimited):
		respondError(w, http.StatusTooManyRequests, "rate_limited", "provider quota exceeded, try again later")
	case errors.Is(err, client.ErrUpstreamUnavailable):
		respondError(w, http.StatusBadGateway, "upstream_unavailable", "sports data provider unavailable")
	case errors.Is(err, client.ErrMalformedResponse):
		respondError(w, http.StatusBadGateway, "malformed_response", "sports data provider returned an unexpected response")
	case errors.Is(err, repository.ErrDuplicatePrediction):
		respondError(w, http.StatusConflict, "duplicate_prediction", "an open prediction for this match already exists")
	case errors.Is(err, repository.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", "user has not interacted with the service")
	default:
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
