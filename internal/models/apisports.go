package models

import "time"

// Input types mirror the API-SPORTS response shapes and convert to the
// normalized models. Field coverage follows what the service actually reads,
// not the full provider schema.

// Football fixture statuses the provider reports for finished matches
const (
	statusFullTime     = "FT"
	statusAfterExtra   = "AET"
	statusAfterPenalty = "PEN"
)

// FootballFixtureInput is one entry of the football /fixtures response
type FootballFixtureInput struct {
	Fixture struct {
		ID     int64     `json:"id"`
		Date   time.Time `json:"date"`
		Status struct {
			Short string `json:"short"`
			Long  string `json:"long"`
		} `json:"status"`
	} `json:"fixture"`
	League struct {
		ID     int    `json:"id"`
		Name   string `json:"name"`
		Season int    `json:"season"`
	} `json:"league"`
	Teams struct {
		Home struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Goals struct {
		Home *int `json:"home"`
		Away *int `json:"away"`
	} `json:"goals"`
}

// ToFixture converts the provider entry to a normalized Fixture
func (f *FootballFixtureInput) ToFixture() Fixture {
	return Fixture{
		MatchID:   f.Fixture.ID,
		League:    f.League.Name,
		HomeTeam:  f.Teams.Home.Name,
		AwayTeam:  f.Teams.Away.Name,
		StartTime: f.Fixture.Date,
		Status:    f.Fixture.Status.Short,
		HomeScore: f.Goals.Home,
		AwayScore: f.Goals.Away,
	}
}

// Final reports whether the fixture has a settled result
func (f *FootballFixtureInput) Final() bool {
	switch f.Fixture.Status.Short {
	case statusFullTime, statusAfterExtra, statusAfterPenalty:
		return f.Goals.Home != nil && f.Goals.Away != nil
	}
	return false
}

// Outcome derives the ledger outcome for a final fixture.
// Returns "" when the fixture is not final.
func (f *FootballFixtureInput) Outcome() string {
	if !f.Final() {
		return ""
	}
	switch {
	case *f.Goals.Home > *f.Goals.Away:
		return OutcomeHomeWin
	case *f.Goals.Home < *f.Goals.Away:
		return OutcomeAwayWin
	default:
		return OutcomeDraw
	}
}

// FootballStandingsInput is one entry of the football /standings response.
// The provider nests the table as standings[group][row].
type FootballStandingsInput struct {
	League struct {
		ID        int    `json:"id"`
		Name      string `json:"name"`
		Season    int    `json:"season"`
		Standings [][]struct {
			Rank int `json:"rank"`
			Team struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"team"`
			GoalsDiff int `json:"goalsDiff"`
			Points    int `json:"points"`
			All       struct {
				Played int `json:"played"`
				Win    int `json:"win"`
				Draw   int `json:"draw"`
				Lose   int `json:"lose"`
				Goals  struct {
					For     int `json:"for"`
					Against int `json:"against"`
				} `json:"goals"`
			} `json:"all"`
		} `json:"standings"`
	} `json:"league"`
}

// ToStandings flattens the first standings group into normalized rows
func (s *FootballStandingsInput) ToStandings() []StandingRow {
	if len(s.League.Standings) == 0 {
		return nil
	}

	rows := make([]StandingRow, 0, len(s.League.Standings[0]))
	for _, r := range s.League.Standings[0] {
		rows = append(rows, StandingRow{
			Position:     r.Rank,
			Team:         r.Team.Name,
			Played:       r.All.Played,
			Won:          r.All.Win,
			Drawn:        r.All.Draw,
			Lost:         r.All.Lose,
			GoalsFor:     r.All.Goals.For,
			GoalsAgainst: r.All.Goals.Against,
			GoalDiff:     r.GoalsDiff,
			Points:       r.Points,
		})
	}
	return rows
}

// GameInput is one entry of the tennis/basketball /games response.
// Both v1 APIs share this envelope shape.
type GameInput struct {
	ID     int64     `json:"id"`
	Date   time.Time `json:"date"`
	Status struct {
		Short string `json:"short"`
		Long  string `json:"long"`
	} `json:"status"`
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Teams struct {
		Home struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"home"`
		Away struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"away"`
	} `json:"teams"`
	Scores struct {
		Home struct {
			Total *int `json:"total"`
		} `json:"home"`
		Away struct {
			Total *int `json:"total"`
		} `json:"away"`
	} `json:"scores"`
}

// ToFixture converts the provider entry to a normalized Fixture
func (g *GameInput) ToFixture() Fixture {
	return Fixture{
		MatchID:   g.ID,
		League:    g.League.Name,
		HomeTeam:  g.Teams.Home.Name,
		AwayTeam:  g.Teams.Away.Name,
		StartTime: g.Date,
		Status:    g.Status.Short,
		HomeScore: g.Scores.Home.Total,
		AwayScore: g.Scores.Away.Total,
	}
}

// Final reports whether the game has a settled result
func (g *GameInput) Final() bool {
	return g.Status.Short == statusFullTime && g.Scores.Home.Total != nil && g.Scores.Away.Total != nil
}

// Outcome derives the ledger outcome for a final game.
// Tennis and basketball have no draws; a tie is treated as unresolved.
func (g *GameInput) Outcome() string {
	if !g.Final() {
		return ""
	}
	switch {
	case *g.Scores.Home.Total > *g.Scores.Away.Total:
		return OutcomeHomeWin
	case *g.Scores.Home.Total < *g.Scores.Away.Total:
		return OutcomeAwayWin
	default:
		return ""
	}
}

// BasketballStandingInput is one row of the basketball /standings response
type BasketballStandingInput struct {
	Position int `json:"position"`
	Team     struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Games struct {
		Played int `json:"played"`
		Win    struct {
			Total int `json:"total"`
		} `json:"win"`
		Lose struct {
			Total int `json:"total"`
		} `json:"lose"`
	} `json:"games"`
	Points struct {
		For     int `json:"for"`
		Against int `json:"against"`
	} `json:"points"`
}

// ToStandingRow converts the provider row to a normalized entry
func (b *BasketballStandingInput) ToStandingRow() StandingRow {
	return StandingRow{
		Position:     b.Position,
		Team:         b.Team.Name,
		Played:       b.Games.Played,
		Won:          b.Games.Win.Total,
		Lost:         b.Games.Lose.Total,
		GoalsFor:     b.Points.For,
		GoalsAgainst: b.Points.Against,
		GoalDiff:     b.Points.For - b.Points.Against,
		Points:       b.Games.Win.Total,
	}
}

// RankingInput is one row of the tennis /rankings response
type RankingInput struct {
	Position int `json:"position"`
	Player   struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"player"`
	Points int `json:"points"`
}

// ToRankingRow converts the provider row to a normalized entry
func (r *RankingInput) ToRankingRow() RankingRow {
	return RankingRow{
		Position: r.Position,
		Name:     r.Player.Name,
		Country:  r.Player.Country,
		Points:   r.Points,
	}
}
