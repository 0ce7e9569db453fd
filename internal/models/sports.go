package models

import (
	"fmt"
	"time"
)

// Sport identifies a supported sport
type Sport string

const (
	SportFootball   Sport = "football"
	SportTennis     Sport = "tennis"
	SportBasketball Sport = "basketball"
)

// Intent identifies what the user asked for
type Intent string

const (
	IntentFixtures  Intent = "fixtures"
	IntentStandings Intent = "standings"
	IntentRankings  Intent = "rankings"
)

// ValidSport reports whether s is a supported sport
func ValidSport(s Sport) bool {
	switch s {
	case SportFootball, SportTennis, SportBasketball:
		return true
	}
	return false
}

// Match outcomes as stored in the ledger
const (
	OutcomeHomeWin = "home_win"
	OutcomeDraw    = "draw"
	OutcomeAwayWin = "away_win"
)

// ValidOutcome checks that outcome is recordable for the sport.
// Draws only exist in football.
func ValidOutcome(sport Sport, outcome string) error {
	switch outcome {
	case OutcomeHomeWin, OutcomeAwayWin:
	case OutcomeDraw:
		if sport != SportFootball {
			return fmt.Errorf("%s has no draw outcome", sport)
		}
	default:
		return fmt.Errorf("unsupported outcome %q", outcome)
	}
	return nil
}

// Fixture is a normalized match entry, independent of sport
type Fixture struct {
	MatchID   int64     `json:"match_id"`
	League    string    `json:"league"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
	Status    string    `json:"status"`
	HomeScore *int      `json:"home_score,omitempty"`
	AwayScore *int      `json:"away_score,omitempty"`
}

// StandingRow is a normalized league table entry
type StandingRow struct {
	Position     int    `json:"position"`
	Team         string `json:"team"`
	Played       int    `json:"played"`
	Won          int    `json:"won"`
	Drawn        int    `json:"drawn"`
	Lost         int    `json:"lost"`
	GoalsFor     int    `json:"goals_for"`
	GoalsAgainst int    `json:"goals_against"`
	GoalDiff     int    `json:"goal_diff"`
	Points       int    `json:"points"`
}

// RankingRow is a normalized tour ranking entry (tennis ATP/WTA)
type RankingRow struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Country  string `json:"country"`
	Points   int    `json:"points"`
}

// Response is the normalized result of one dispatched command
type Response struct {
	Sport     Sport         `json:"sport"`
	Intent    Intent        `json:"intent"`
	League    string        `json:"league,omitempty"`
	Fixtures  []Fixture     `json:"fixtures,omitempty"`
	Standings []StandingRow `json:"standings,omitempty"`
	Rankings  []RankingRow  `json:"rankings,omitempty"`
	FetchedAt time.Time     `json:"fetched_at"`
}
