package dispatcher

import (
	"context"
	"fmt"
	"time"

	"matchday/backend/internal/client"
	"matchday/backend/internal/metrics"
	"matchday/backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Query is one inbound command: a sport, an intent, and optional parameters
type Query struct {
	Sport    models.Sport
	Intent   models.Intent
	Date     string // YYYY-MM-DD, defaults to today
	LeagueID int    // standings only
	Season   int    // standings only, defaults to current year
	Tour     string // rankings only: "atp" or "wta", defaults to "atp"
}

// Endpoint is the upstream target a (sport, intent) pair maps to
type Endpoint struct {
	API  models.Sport // which provider API the call goes to
	Path string
}

// endpointTable is the complete (sport, intent) → endpoint mapping.
// Pairs absent from the table are not served by the provider.
var endpointTable = map[models.Sport]map[models.Intent]Endpoint{
	models.SportFootball: {
		models.IntentFixtures:  {API: models.SportFootball, Path: "fixtures"},
		models.IntentStandings: {API: models.SportFootball, Path: "standings"},
	},
	models.SportTennis: {
		models.IntentFixtures: {API: models.SportTennis, Path: "games"},
		models.IntentRankings: {API: models.SportTennis, Path: "rankings"},
	},
	models.SportBasketball: {
		models.IntentFixtures:  {API: models.SportBasketball, Path: "games"},
		models.IntentStandings: {API: models.SportBasketball, Path: "standings"},
	},
}

// ResolveEndpoint maps a (sport, intent) pair to its single upstream endpoint.
// Unsupported pairs fail with ErrNotFound.
func ResolveEndpoint(sport models.Sport, intent models.Intent) (Endpoint, error) {
	intents, ok := endpointTable[sport]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: unsupported sport %q", client.ErrNotFound, sport)
	}
	ep, ok := intents[intent]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w: %s does not support %s", client.ErrNotFound, sport, intent)
	}
	return ep, nil
}

// Dispatcher maps sport/intent pairs to provider calls and normalizes the results
type Dispatcher struct {
	client *client.Client
}

// NewDispatcher creates a dispatcher backed by the given provider client
func NewDispatcher(c *client.Client) *Dispatcher {
	return &Dispatcher{client: c}
}

// Dispatch executes one command: exactly one outbound provider call,
// normalized into a Response. Failures surface as taxonomy errors.
func (d *Dispatcher) Dispatch(ctx context.Context, q Query) (*models.Response, error) {
	ep, err := ResolveEndpoint(q.Sport, q.Intent)
	if err != nil {
		return nil, err
	}

	q = q.withDefaults()

	start := time.Now()
	resp, err := d.dispatch(ctx, ep, q)
	metrics.RecordDispatch(string(q.Sport), string(q.Intent), statusLabel(err), time.Since(start).Seconds())

	if err != nil {
		log.Warn().
			Err(err).
			Str("sport", string(q.Sport)).
			Str("intent", string(q.Intent)).
			Msg("Dispatch failed")
		return nil, err
	}

	log.Debug().
		Str("sport", string(q.Sport)).
		Str("intent", string(q.Intent)).
		Dur("duration", time.Since(start)).
		Msg("Dispatch complete")

	return resp, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, ep Endpoint, q Query) (*models.Response, error) {
	resp := &models.Response{
		Sport:     q.Sport,
		Intent:    q.Intent,
		FetchedAt: time.Now(),
	}

	switch {
	case q.Sport == models.SportFootball && q.Intent == models.IntentFixtures:
		fixtures, err := d.client.FetchFootballFixtures(ctx, q.Date)
		if err != nil {
			return nil, err
		}
		for i := range fixtures {
			resp.Fixtures = append(resp.Fixtures, fixtures[i].ToFixture())
		}

	case q.Sport == models.SportFootball && q.Intent == models.IntentStandings:
		standings, err := d.client.FetchFootballStandings(ctx, q.LeagueID, q.Season)
		if err != nil {
			return nil, err
		}
		if len(standings) == 0 {
			return nil, client.ErrNotFound
		}
		resp.League = standings[0].League.Name
		resp.Standings = standings[0].ToStandings()

	case q.Sport == models.SportTennis && q.Intent == models.IntentFixtures:
		games, err := d.client.FetchTennisGames(ctx, q.Date)
		if err != nil {
			return nil, err
		}
		for i := range games {
			resp.Fixtures = append(resp.Fixtures, games[i].ToFixture())
		}

	case q.Sport == models.SportTennis && q.Intent == models.IntentRankings:
		rankings, err := d.client.FetchTennisRankings(ctx, q.Tour)
		if err != nil {
			return nil, err
		}
		for i := range rankings {
			resp.Rankings = append(resp.Rankings, rankings[i].ToRankingRow())
		}

	case q.Sport == models.SportBasketball && q.Intent == models.IntentFixtures:
		games, err := d.client.FetchBasketballGames(ctx, q.Date)
		if err != nil {
			return nil, err
		}
		for i := range games {
			resp.Fixtures = append(resp.Fixtures, games[i].ToFixture())
		}

	case q.Sport == models.SportBasketball && q.Intent == models.IntentStandings:
		standings, err := d.client.FetchBasketballStandings(ctx, q.LeagueID, q.Season)
		if err != nil {
			return nil, err
		}
		for i := range standings {
			resp.Standings = append(resp.Standings, standings[i].ToStandingRow())
		}

	default:
		// Unreachable: ResolveEndpoint already rejected the pair
		return nil, fmt.Errorf("%w: %s/%s", client.ErrNotFound, ep.API, ep.Path)
	}

	return resp, nil
}

// withDefaults fills optional query parameters the way the original commands did
func (q Query) withDefaults() Query {
	if q.Date == "" {
		q.Date = time.Now().Format("2006-01-02")
	}
	if q.Season == 0 {
		q.Season = time.Now().Year()
	}
	if q.Tour == "" {
		q.Tour = "atp"
	}
	return q
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
