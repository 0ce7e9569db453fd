package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"matchday/backend/internal/dispatcher"
	"matchday/backend/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// handleFixtures serves GET /v1/{sport}/fixtures?date=YYYY-MM-DD
func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	sport := models.Sport(chi.URLParam(r, "sport"))

	resp, err := s.dispatcher.Dispatch(r.Context(), dispatcher.Query{
		Sport:  sport,
		Intent: models.IntentFixtures,
		Date:   r.URL.Query().Get("date"),
	})
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleStandings serves GET /v1/{sport}/standings?league=&season=
func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	sport := models.Sport(chi.URLParam(r, "sport"))

	leagueID, err := strconv.Atoi(r.URL.Query().Get("league"))
	if err != nil || leagueID <= 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "league query parameter is required")
		return
	}

	var season int
	if v := r.URL.Query().Get("season"); v != "" {
		season, err = strconv.Atoi(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "bad_request", "season must be a year")
			return
		}
	}

	resp, err := s.dispatcher.Dispatch(r.Context(), dispatcher.Query{
		Sport:    sport,
		Intent:   models.IntentStandings,
		LeagueID: leagueID,
		Season:   season,
	})
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// handleRankings serves GET /v1/{sport}/rankings?tour=atp|wta
func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	sport := models.Sport(chi.URLParam(r, "sport"))

	resp, err := s.dispatcher.Dispatch(r.Context(), dispatcher.Query{
		Sport:  sport,
		Intent: models.IntentRankings,
		Tour:   r.URL.Query().Get("tour"),
	})
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// predictionResponse is the wire shape of a ledger record; nullable columns
// come out as omitted fields until reconciliation fills them
type predictionResponse struct {
	ID               int          `json:"id"`
	TelegramID       int64        `json:"user_id"`
	Sport            models.Sport `json:"sport"`
	MatchID          int64        `json:"match_id"`
	PredictedOutcome string       `json:"predicted_outcome"`
	PredictedScore   *string      `json:"predicted_score,omitempty"`
	ActualOutcome    *string      `json:"actual_outcome,omitempty"`
	IsCorrect        *bool        `json:"is_correct,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	ResolvedAt       *time.Time   `json:"resolved_at,omitempty"`
}

func toPredictionResponse(p *models.Prediction, telegramID int64) predictionResponse {
	resp := predictionResponse{
		ID:               p.ID,
		TelegramID:       telegramID,
		Sport:            p.Sport,
		MatchID:          p.MatchID,
		PredictedOutcome: p.PredictedOutcome,
		CreatedAt:        p.CreatedAt,
	}
	if p.PredictedScore.Valid {
		resp.PredictedScore = &p.PredictedScore.String
	}
	if p.ActualOutcome.Valid {
		resp.ActualOutcome = &p.ActualOutcome.String
	}
	if p.IsCorrect.Valid {
		resp.IsCorrect = &p.IsCorrect.Bool
	}
	if p.ResolvedAt.Valid {
		resp.ResolvedAt = &p.ResolvedAt.Time
	}
	return resp
}

// recordPredictionRequest extends the ledger input with optional profile
// fields forwarded by the chat relay
type recordPredictionRequest struct {
	models.PredictionInput
	Profile models.UserProfile `json:"profile"`
}

// handleRecordPrediction serves POST /v1/predictions
func (s *Server) handleRecordPrediction(w http.ResponseWriter, r *http.Request) {
	var req recordPredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	if req.TelegramID == 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "user_id is required")
		return
	}
	if req.MatchID == 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "match_id is required")
		return
	}
	if !models.ValidSport(req.Sport) {
		respondError(w, http.StatusBadRequest, "bad_request", "unsupported sport")
		return
	}
	if req.PredictedOutcome == "" {
		respondError(w, http.StatusBadRequest, "bad_request", "predicted_outcome is required")
		return
	}
	if err := models.ValidOutcome(req.Sport, req.PredictedOutcome); err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	user, err := s.db.Users.GetOrCreate(r.Context(), req.TelegramID, req.Profile)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", req.TelegramID).Msg("Failed to resolve user")
		respondTaxonomyError(w, err)
		return
	}

	if !s.allowed(user) {
		respondError(w, http.StatusForbidden, "not_invited", "invite-only mode: contact an administrator for access")
		return
	}

	pred := req.PredictionInput.ToPrediction(user.ID)
	if err := s.db.Predictions.Record(r.Context(), pred); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	// Recorded prediction changes the denominator once resolved
	s.cache.InvalidateAccuracy(r.Context(), user.TelegramID)

	respondJSON(w, http.StatusCreated, toPredictionResponse(pred, user.TelegramID))
}

// handleAccuracy serves GET /v1/users/{telegramID}/accuracy
func (s *Server) handleAccuracy(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	// Cache entries are only written after the user lookup below succeeds,
	// and users are never deleted, so a hit implies the user exists
	if stats, ok := s.cache.GetAccuracy(r.Context(), telegramID); ok {
		respondJSON(w, http.StatusOK, stats)
		return
	}

	user, err := s.db.Users.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	stats, err := s.db.Predictions.Accuracy(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int64("telegram_id", telegramID).Msg("Failed to compute accuracy")
		respondTaxonomyError(w, err)
		return
	}

	s.cache.SetAccuracy(r.Context(), telegramID, stats)
	respondJSON(w, http.StatusOK, stats)
}

// handleUserPredictions serves GET /v1/users/{telegramID}/predictions
func (s *Server) handleUserPredictions(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(chi.URLParam(r, "telegramID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	user, err := s.db.Users.GetByTelegramID(r.Context(), telegramID)
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	preds, err := s.db.Predictions.ListByUser(r.Context(), user.ID, limit)
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	out := make([]predictionResponse, 0, len(preds))
	for _, p := range preds {
		out = append(out, toPredictionResponse(p, telegramID))
	}

	respondJSON(w, http.StatusOK, out)
}

type adminUserRequest struct {
	TelegramID int64 `json:"telegram_id"`
	Revoke     bool  `json:"revoke,omitempty"`
}

// handleAdminInvite serves POST /v1/admin/invite.
// The target user row is created if the user was never seen, so admins can
// invite ahead of first contact.
func (s *Server) handleAdminInvite(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TelegramID == 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "telegram_id is required")
		return
	}

	if _, err := s.db.Users.GetOrCreate(r.Context(), req.TelegramID, models.UserProfile{}); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	if err := s.db.Users.SetInvited(r.Context(), req.TelegramID, !req.Revoke); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"telegram_id": req.TelegramID,
		"is_invited":  !req.Revoke,
	})
}

// handleAdminPromote serves POST /v1/admin/promote
func (s *Server) handleAdminPromote(w http.ResponseWriter, r *http.Request) {
	var req adminUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TelegramID == 0 {
		respondError(w, http.StatusBadRequest, "bad_request", "telegram_id is required")
		return
	}

	if _, err := s.db.Users.GetOrCreate(r.Context(), req.TelegramID, models.UserProfile{}); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	if err := s.db.Users.SetAdmin(r.Context(), req.TelegramID, !req.Revoke); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"telegram_id": req.TelegramID,
		"is_admin":    !req.Revoke,
	})
}

// handleAdminStats serves GET /v1/admin/stats
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Predictions.Stats(r.Context())
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

// handleHealth serves GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Health(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
