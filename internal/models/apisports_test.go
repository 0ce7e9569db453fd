package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func footballFixture(status string, home, away *int) FootballFixtureInput {
	var f FootballFixtureInput
	f.Fixture.ID = 868549
	f.Fixture.Status.Short = status
	f.Teams.Home.Name = "Home FC"
	f.Teams.Away.Name = "Away FC"
	f.Goals.Home = home
	f.Goals.Away = away
	return f
}

func TestFootballOutcome(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		home    *int
		away    *int
		outcome string
	}{
		{"home win", "FT", intPtr(2), intPtr(1), OutcomeHomeWin},
		{"away win", "FT", intPtr(0), intPtr(3), OutcomeAwayWin},
		{"draw", "FT", intPtr(1), intPtr(1), OutcomeDraw},
		{"extra time", "AET", intPtr(2), intPtr(1), OutcomeHomeWin},
		{"penalties", "PEN", intPtr(1), intPtr(1), OutcomeDraw},
		{"in progress", "2H", intPtr(1), intPtr(0), ""},
		{"not started", "NS", nil, nil, ""},
		{"final without goals", "FT", nil, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := footballFixture(tt.status, tt.home, tt.away)
			assert.Equal(t, tt.outcome, f.Outcome())
			assert.Equal(t, tt.outcome != "", f.Final())
		})
	}
}

func TestGameOutcome(t *testing.T) {
	game := func(status string, home, away *int) *GameInput {
		var g GameInput
		g.ID = 42
		g.Status.Short = status
		g.Scores.Home.Total = home
		g.Scores.Away.Total = away
		return &g
	}

	assert.Equal(t, OutcomeHomeWin, game("FT", intPtr(102), intPtr(99)).Outcome())
	assert.Equal(t, OutcomeAwayWin, game("FT", intPtr(1), intPtr(2)).Outcome())
	assert.Equal(t, "", game("Q4", intPtr(80), intPtr(78)).Outcome(), "Game in progress has no outcome")

	// A tie score on a final game stays unresolved until the provider settles it
	assert.Equal(t, "", game("FT", intPtr(100), intPtr(100)).Outcome())
}

func TestFootballToFixture(t *testing.T) {
	f := footballFixture("FT", intPtr(2), intPtr(1))
	f.League.Name = "Premier League"

	fx := f.ToFixture()
	assert.Equal(t, int64(868549), fx.MatchID)
	assert.Equal(t, "Premier League", fx.League)
	assert.Equal(t, "Home FC", fx.HomeTeam)
	assert.Equal(t, "Away FC", fx.AwayTeam)
	assert.Equal(t, "FT", fx.Status)
	require.NotNil(t, fx.HomeScore)
	assert.Equal(t, 2, *fx.HomeScore)
}

func TestFootballStandingsFlatten(t *testing.T) {
	raw := `{
		"league": {
			"id": 39, "name": "Premier League", "season": 2026,
			"standings": [[
				{"rank": 1, "team": {"id": 50, "name": "Manchester City"}, "goalsDiff": 45, "points": 89,
				 "all": {"played": 38, "win": 28, "draw": 5, "lose": 5, "goals": {"for": 94, "against": 49}}},
				{"rank": 2, "team": {"id": 42, "name": "Arsenal"}, "goalsDiff": 40, "points": 86,
				 "all": {"played": 38, "win": 27, "draw": 5, "lose": 6, "goals": {"for": 88, "against": 48}}}
			]]
		}
	}`

	var input FootballStandingsInput
	require.NoError(t, json.Unmarshal([]byte(raw), &input))

	rows := input.ToStandings()
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, "Manchester City", rows[0].Team)
	assert.Equal(t, 38, rows[0].Played)
	assert.Equal(t, 28, rows[0].Won)
	assert.Equal(t, 45, rows[0].GoalDiff)
	assert.Equal(t, 89, rows[0].Points)
}

func TestFootballStandingsEmpty(t *testing.T) {
	var input FootballStandingsInput
	assert.Nil(t, input.ToStandings())
}

func TestValidSport(t *testing.T) {
	assert.True(t, ValidSport(SportFootball))
	assert.True(t, ValidSport(SportTennis))
	assert.True(t, ValidSport(SportBasketball))
	assert.False(t, ValidSport("cricket"))
	assert.False(t, ValidSport(""))
}

func TestValidOutcome(t *testing.T) {
	assert.NoError(t, ValidOutcome(SportFootball, OutcomeHomeWin))
	assert.NoError(t, ValidOutcome(SportFootball, OutcomeDraw))
	assert.NoError(t, ValidOutcome(SportTennis, OutcomeAwayWin))
	assert.NoError(t, ValidOutcome(SportBasketball, OutcomeHomeWin))

	assert.Error(t, ValidOutcome(SportTennis, OutcomeDraw), "Tennis has no draw outcome")
	assert.Error(t, ValidOutcome(SportBasketball, OutcomeDraw), "Basketball has no draw outcome")
	assert.Error(t, ValidOutcome(SportFootball, "home"))
	assert.Error(t, ValidOutcome(SportFootball, ""))
}

func TestPredictionInputToPrediction(t *testing.T) {
	input := PredictionInput{
		TelegramID:       12345,
		Sport:            SportFootball,
		MatchID:          868549,
		PredictedOutcome: OutcomeHomeWin,
		PredictedScore:   "2-1",
	}

	pred := input.ToPrediction(7)
	assert.Equal(t, 7, pred.UserID)
	assert.Equal(t, int64(868549), pred.MatchID)
	assert.True(t, pred.PredictedScore.Valid)
	assert.Equal(t, "2-1", pred.PredictedScore.String)
	assert.False(t, pred.Resolved())

	// No score stays NULL
	input.PredictedScore = ""
	assert.False(t, input.ToPrediction(7).PredictedScore.Valid)
}
