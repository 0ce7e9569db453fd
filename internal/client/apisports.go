package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"matchday/backend/internal/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Upstream failure taxonomy. Every provider call resolves to one of these
// (or succeeds); callers branch with errors.Is.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrRateLimited         = errors.New("provider rate limit exceeded")
	ErrNotFound            = errors.New("no data for query")
	ErrMalformedResponse   = errors.New("malformed provider response")
)

// Config holds client construction parameters
type Config struct {
	APIKey            string
	FootballBaseURL   string
	TennisBaseURL     string
	BasketballBaseURL string
	Timeout           time.Duration
	RateLimit         int // requests per second towards the provider
	BurstLimit        int
	MaxRetries        int
	RetryDelay        time.Duration
}

// Client is the API-SPORTS client covering the football, tennis and
// basketball APIs, which share one envelope format
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// envelope is the common API-SPORTS response wrapper
type envelope struct {
	Get      string          `json:"get"`
	Errors   json.RawMessage `json:"errors"`
	Results  int             `json:"results"`
	Response json.RawMessage `json:"response"`
}

// NewClient creates a new API-SPORTS client
func NewClient(cfg Config) *Client {
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstLimit <= 0 {
		cfg.BurstLimit = cfg.RateLimit
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1 * time.Second
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.BurstLimit),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a GET request against one of the provider APIs with retry
// and client-side rate limiting. Retryable statuses follow the provider's
// guidance: 429 only counts as retryable until attempts run out, then it
// surfaces as ErrRateLimited.
func (c *Client) get(ctx context.Context, baseURL, path string, params map[string]string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", baseURL, path)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: 1s, 2s, 4s
			backoff := c.cfg.RetryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("url", url).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying provider request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("x-rapidapi-key", c.cfg.APIKey)
		req.Header.Set("Accept", "application/json")

		if len(params) > 0 {
			q := req.URL.Query()
			for key, value := range params {
				q.Add(key, value)
			}
			req.URL.RawQuery = q.Encode()
		}

		log.Debug().
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making provider request")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
			if attempt < c.cfg.MaxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", ErrUpstreamUnavailable, err)
			if attempt < c.cfg.MaxRetries {
				continue
			}
			return nil, lastErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return c.decodeEnvelope(url, body)

		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
			if attempt < c.cfg.MaxRetries {
				log.Warn().
					Str("url", url).
					Int("attempt", attempt+1).
					Msg("Provider quota hit, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
			lastErr = fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
			if attempt < c.cfg.MaxRetries {
				log.Warn().
					Str("url", url).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return nil, lastErr

		case http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, url)

		default:
			if resp.StatusCode >= 500 {
				return nil, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
			}
			return nil, fmt.Errorf("%w: unexpected status %d: %s", ErrMalformedResponse, resp.StatusCode, string(body))
		}
	}

	return nil, lastErr
}

// decodeEnvelope validates the provider envelope and returns the response payload
func (c *Client) decodeEnvelope(url string, body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	// The provider reports quota and parameter errors inside a 200 body
	if hasProviderErrors(env.Errors) {
		log.Warn().
			Str("url", url).
			RawJSON("errors", env.Errors).
			Msg("Provider reported request errors")
		return nil, fmt.Errorf("%w: provider errors: %s", ErrUpstreamUnavailable, string(env.Errors))
	}

	if env.Results == 0 || len(env.Response) == 0 {
		return nil, ErrNotFound
	}

	log.Debug().
		Str("url", url).
		Int("results", env.Results).
		Msg("Provider request successful")

	return env.Response, nil
}

// hasProviderErrors reports whether the envelope errors field carries content.
// The provider sends [] or {} when there are none.
func hasProviderErrors(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
		return false
	case bytes.Equal(trimmed, []byte("null")),
		bytes.Equal(trimmed, []byte("[]")),
		bytes.Equal(trimmed, []byte("{}")):
		return false
	}
	return true
}

// FetchFootballFixtures fetches football fixtures for a date (YYYY-MM-DD)
func (c *Client) FetchFootballFixtures(ctx context.Context, date string) ([]models.FootballFixtureInput, error) {
	raw, err := c.get(ctx, c.cfg.FootballBaseURL, "fixtures", map[string]string{"date": date})
	if err != nil {
		return nil, err
	}

	var fixtures []models.FootballFixtureInput
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("%w: fixtures: %v", ErrMalformedResponse, err)
	}
	return fixtures, nil
}

// FetchFootballFixtureByID fetches a single football fixture (used by reconciliation)
func (c *Client) FetchFootballFixtureByID(ctx context.Context, matchID int64) (*models.FootballFixtureInput, error) {
	raw, err := c.get(ctx, c.cfg.FootballBaseURL, "fixtures", map[string]string{"id": strconv.FormatInt(matchID, 10)})
	if err != nil {
		return nil, err
	}

	var fixtures []models.FootballFixtureInput
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, fmt.Errorf("%w: fixture by id: %v", ErrMalformedResponse, err)
	}
	if len(fixtures) == 0 {
		return nil, ErrNotFound
	}
	return &fixtures[0], nil
}

// FetchFootballStandings fetches the league table for a league and season
func (c *Client) FetchFootballStandings(ctx context.Context, leagueID, season int) ([]models.FootballStandingsInput, error) {
	raw, err := c.get(ctx, c.cfg.FootballBaseURL, "standings", map[string]string{
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	})
	if err != nil {
		return nil, err
	}

	var standings []models.FootballStandingsInput
	if err := json.Unmarshal(raw, &standings); err != nil {
		return nil, fmt.Errorf("%w: standings: %v", ErrMalformedResponse, err)
	}
	return standings, nil
}

// FetchTennisGames fetches tennis games for a date (YYYY-MM-DD)
func (c *Client) FetchTennisGames(ctx context.Context, date string) ([]models.GameInput, error) {
	raw, err := c.get(ctx, c.cfg.TennisBaseURL, "games", map[string]string{"date": date})
	if err != nil {
		return nil, err
	}

	var games []models.GameInput
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("%w: tennis games: %v", ErrMalformedResponse, err)
	}
	return games, nil
}

// FetchTennisGameByID fetches a single tennis game (used by reconciliation)
func (c *Client) FetchTennisGameByID(ctx context.Context, matchID int64) (*models.GameInput, error) {
	return c.fetchGameByID(ctx, c.cfg.TennisBaseURL, matchID)
}

// FetchTennisRankings fetches ATP or WTA rankings (tour: "atp" or "wta")
func (c *Client) FetchTennisRankings(ctx context.Context, tour string) ([]models.RankingInput, error) {
	raw, err := c.get(ctx, c.cfg.TennisBaseURL, "rankings", map[string]string{"tour": tour})
	if err != nil {
		return nil, err
	}

	var rankings []models.RankingInput
	if err := json.Unmarshal(raw, &rankings); err != nil {
		return nil, fmt.Errorf("%w: rankings: %v", ErrMalformedResponse, err)
	}
	return rankings, nil
}

// FetchBasketballGames fetches basketball games for a date (YYYY-MM-DD)
func (c *Client) FetchBasketballGames(ctx context.Context, date string) ([]models.GameInput, error) {
	raw, err := c.get(ctx, c.cfg.BasketballBaseURL, "games", map[string]string{"date": date})
	if err != nil {
		return nil, err
	}

	var games []models.GameInput
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("%w: basketball games: %v", ErrMalformedResponse, err)
	}
	return games, nil
}

// FetchBasketballGameByID fetches a single basketball game (used by reconciliation)
func (c *Client) FetchBasketballGameByID(ctx context.Context, matchID int64) (*models.GameInput, error) {
	return c.fetchGameByID(ctx, c.cfg.BasketballBaseURL, matchID)
}

// FetchBasketballStandings fetches basketball standings for a league and season
func (c *Client) FetchBasketballStandings(ctx context.Context, leagueID, season int) ([]models.BasketballStandingInput, error) {
	raw, err := c.get(ctx, c.cfg.BasketballBaseURL, "standings", map[string]string{
		"league": strconv.Itoa(leagueID),
		"season": strconv.Itoa(season),
	})
	if err != nil {
		return nil, err
	}

	// The basketball API nests the table one level deeper than tennis
	var nested [][]models.BasketballStandingInput
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("%w: basketball standings: %v", ErrMalformedResponse, err)
	}
	if len(nested) == 0 {
		return nil, ErrNotFound
	}
	return nested[0], nil
}

func (c *Client) fetchGameByID(ctx context.Context, baseURL string, matchID int64) (*models.GameInput, error) {
	raw, err := c.get(ctx, baseURL, "games", map[string]string{"id": strconv.FormatInt(matchID, 10)})
	if err != nil {
		return nil, err
	}

	var games []models.GameInput
	if err := json.Unmarshal(raw, &games); err != nil {
		return nil, fmt.Errorf("%w: game by id: %v", ErrMalformedResponse, err)
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}
	return &games[0], nil
}
