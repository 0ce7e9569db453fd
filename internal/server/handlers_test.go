package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"matchday/backend/internal/client"
	"matchday/backend/internal/config"
	"matchday/backend/internal/dispatcher"
	"matchday/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDispatcher returns a canned response or error without network calls
type stubDispatcher struct {
	resp    *models.Response
	err     error
	lastQry dispatcher.Query
}

func (s *stubDispatcher) Dispatch(ctx context.Context, q dispatcher.Query) (*models.Response, error) {
	s.lastQry = q
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func testServer(d CommandDispatcher) *Server {
	cfg := &config.Config{
		InviteOnly:   true,
		AdminUserIDs: []int64{42},
	}
	return NewServer(cfg, d, nil, nil)
}

func doRequest(t *testing.T, handler http.Handler, method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleFixtures(t *testing.T) {
	stub := &stubDispatcher{resp: &models.Response{
		Sport:  models.SportFootball,
		Intent: models.IntentFixtures,
		Fixtures: []models.Fixture{
			{MatchID: 868549, League: "Premier League", HomeTeam: "Home FC", AwayTeam: "Away FC", StartTime: time.Now(), Status: "NS"},
		},
	}}

	router := testServer(stub).Router()
	rec := doRequest(t, router, http.MethodGet, "/v1/football/fixtures?date=2026-08-23", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SportFootball, stub.lastQry.Sport)
	assert.Equal(t, models.IntentFixtures, stub.lastQry.Intent)
	assert.Equal(t, "2026-08-23", stub.lastQry.Date)

	var resp models.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fixtures, 1)
	assert.Equal(t, int64(868549), resp.Fixtures[0].MatchID)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), "Every response carries a correlation ID")
}

func TestHandleStandingsRequiresLeague(t *testing.T) {
	stub := &stubDispatcher{resp: &models.Response{}}
	router := testServer(stub).Router()

	rec := doRequest(t, router, http.MethodGet, "/v1/football/standings", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/v1/football/standings?league=39&season=2026", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 39, stub.lastQry.LeagueID)
	assert.Equal(t, 2026, stub.lastQry.Season)
}

func TestHandleRankings(t *testing.T) {
	stub := &stubDispatcher{resp: &models.Response{
		Sport:  models.SportTennis,
		Intent: models.IntentRankings,
		Rankings: []models.RankingRow{
			{Position: 1, Name: "A. Player", Country: "ES", Points: 11000},
		},
	}}
	router := testServer(stub).Router()

	rec := doRequest(t, router, http.MethodGet, "/v1/tennis/rankings?tour=wta", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "wta", stub.lastQry.Tour)
}

func TestErrorTaxonomyMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", client.ErrNotFound, http.StatusNotFound, "not_found"},
		{"rate limited", client.ErrRateLimited, http.StatusTooManyRequests, "rate_limited"},
		{"upstream down", client.ErrUpstreamUnavailable, http.StatusBadGateway, "upstream_unavailable"},
		{"malformed", client.ErrMalformedResponse, http.StatusBadGateway, "malformed_response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := testServer(&stubDispatcher{err: tt.err}).Router()
			rec := doRequest(t, router, http.MethodGet, "/v1/football/fixtures", "", nil)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}

func TestRecordPredictionValidation(t *testing.T) {
	router := testServer(&stubDispatcher{}).Router()

	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"missing user", `{"sport": "football", "match_id": 1, "predicted_outcome": "home_win"}`},
		{"missing match", `{"user_id": 1, "sport": "football", "predicted_outcome": "home_win"}`},
		{"bad sport", `{"user_id": 1, "sport": "cricket", "match_id": 1, "predicted_outcome": "home_win"}`},
		{"missing outcome", `{"user_id": 1, "sport": "football", "match_id": 1}`},
		{"unknown outcome", `{"user_id": 1, "sport": "football", "match_id": 1, "predicted_outcome": "home"}`},
		{"draw in tennis", `{"user_id": 1, "sport": "tennis", "match_id": 1, "predicted_outcome": "draw"}`},
		{"draw in basketball", `{"user_id": 1, "sport": "basketball", "match_id": 1, "predicted_outcome": "draw"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/v1/predictions", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestAdminRoutesRequireHeader(t *testing.T) {
	router := testServer(&stubDispatcher{}).Router()

	rec := doRequest(t, router, http.MethodPost, "/v1/admin/invite", `{"telegram_id": 7}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "Missing X-Admin-ID must be rejected")

	rec = doRequest(t, router, http.MethodPost, "/v1/admin/invite", `{"telegram_id": 7}`,
		map[string]string{"X-Admin-ID": "999"})
	assert.Equal(t, http.StatusForbidden, rec.Code, "Non-admin caller must be rejected")
}

func TestHealthWithoutDatabase(t *testing.T) {
	router := testServer(&stubDispatcher{}).Router()

	rec := doRequest(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAllowed(t *testing.T) {
	srv := testServer(&stubDispatcher{})

	assert.False(t, srv.allowed(&models.User{TelegramID: 1}), "Uninvited user blocked in invite-only mode")
	assert.True(t, srv.allowed(&models.User{TelegramID: 1, IsInvited: true}))
	assert.True(t, srv.allowed(&models.User{TelegramID: 1, IsAdmin: true}))
	assert.True(t, srv.allowed(&models.User{TelegramID: 42}), "Configured admin always allowed")

	srv.cfg.InviteOnly = false
	assert.True(t, srv.allowed(&models.User{TelegramID: 1}), "Everyone allowed when invite-only is off")
}
