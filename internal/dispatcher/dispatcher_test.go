package dispatcher

import (
	"testing"
	"time"

	"matchday/backend/internal/client"
	"matchday/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEndpoint(t *testing.T) {
	tests := []struct {
		sport    models.Sport
		intent   models.Intent
		wantPath string
		wantErr  bool
	}{
		{models.SportFootball, models.IntentFixtures, "fixtures", false},
		{models.SportFootball, models.IntentStandings, "standings", false},
		{models.SportFootball, models.IntentRankings, "", true},
		{models.SportTennis, models.IntentFixtures, "games", false},
		{models.SportTennis, models.IntentRankings, "rankings", false},
		{models.SportTennis, models.IntentStandings, "", true},
		{models.SportBasketball, models.IntentFixtures, "games", false},
		{models.SportBasketball, models.IntentStandings, "standings", false},
		{models.SportBasketball, models.IntentRankings, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.sport)+"/"+string(tt.intent), func(t *testing.T) {
			ep, err := ResolveEndpoint(tt.sport, tt.intent)
			if tt.wantErr {
				assert.ErrorIs(t, err, client.ErrNotFound, "Unsupported pair must map to not found")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.sport, ep.API)
			assert.Equal(t, tt.wantPath, ep.Path)
		})
	}
}

func TestResolveEndpointUnknownSport(t *testing.T) {
	_, err := ResolveEndpoint("cricket", models.IntentFixtures)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestQueryDefaults(t *testing.T) {
	q := Query{Sport: models.SportFootball, Intent: models.IntentStandings, LeagueID: 39}.withDefaults()

	assert.Equal(t, time.Now().Format("2006-01-02"), q.Date, "Date should default to today")
	assert.Equal(t, time.Now().Year(), q.Season, "Season should default to the current year")
	assert.Equal(t, "atp", q.Tour, "Tour should default to ATP")
	assert.Equal(t, 39, q.LeagueID, "Explicit values stay untouched")
}

func TestQueryDefaultsKeepExplicit(t *testing.T) {
	q := Query{
		Sport:    models.SportTennis,
		Intent:   models.IntentRankings,
		Date:     "2026-01-15",
		LeagueID: 140,
		Season:   2023,
		Tour:     "wta",
	}.withDefaults()

	assert.Equal(t, "2026-01-15", q.Date)
	assert.Equal(t, 140, q.LeagueID)
	assert.Equal(t, 2023, q.Season)
	assert.Equal(t, "wta", q.Tour)
}
