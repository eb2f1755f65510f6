package types

import (
	"fmt"
	"time"
)

// MarketType identifies a betting market on a game.
type MarketType string

const (
	MarketSpread    MarketType = "spread"
	MarketTotal     MarketType = "total"
	MarketMoneyline MarketType = "moneyline"
)

// MarketTypes lists market types in evaluation order.
//
//nolint:gochecknoglobals // fixed ordering
var MarketTypes = []MarketType{MarketSpread, MarketTotal, MarketMoneyline}

// Valid reports whether m is a known market type.
func (m MarketType) Valid() bool {
	switch m {
	case MarketSpread, MarketTotal, MarketMoneyline:
		return true
	}
	return false
}

// Side is one side of a market.
type Side string

const (
	SideHome  Side = "home"
	SideAway  Side = "away"
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Sides returns the two sides of a market type, with the tie-break
// preference first.
func (m MarketType) Sides() (preferred Side, other Side) {
	if m == MarketTotal {
		return SideUnder, SideOver
	}
	return SideAway, SideHome
}

// Accepts reports whether side belongs to market type m.
func (m MarketType) Accepts(side Side) bool {
	a, b := m.Sides()
	return side == a || side == b
}

// Quote is one priced side of one market at one sportsbook.
// Quotes are never mutated after they are fetched.
type Quote struct {
	MarketType   MarketType `json:"market_type" yaml:"market_type"`
	Side         Side       `json:"side" yaml:"side"`
	DecimalOdds  float64    `json:"decimal_odds" yaml:"decimal_odds"`
	AmericanOdds int        `json:"american_odds,omitempty" yaml:"american_odds,omitempty"`
	Line         *float64   `json:"line,omitempty" yaml:"line,omitempty"`
	Sportsbook   string     `json:"sportsbook" yaml:"sportsbook"`
}

// Clone copies the line so the result can be modified independently.
func (q Quote) Clone() Quote {
	if q.Line != nil {
		l := *q.Line
		q.Line = &l
	}
	return q
}

// ImpliedProbability returns 1/d.
func (q Quote) ImpliedProbability() float64 {
	if q.DecimalOdds <= 0 {
		return 0
	}
	return 1 / q.DecimalOdds
}

// Label renders the quote the way a bettor reads it, e.g. "under 138.5 (-108)".
func (q Quote) Label() string {
	label := string(q.Side)
	if q.Line != nil {
		if q.MarketType == MarketSpread && *q.Line > 0 {
			label = fmt.Sprintf("%s +%.1f", label, *q.Line)
		} else {
			label = fmt.Sprintf("%s %.1f", label, *q.Line)
		}
	}
	if q.AmericanOdds != 0 {
		return fmt.Sprintf("%s (%+d)", label, q.AmericanOdds)
	}
	return fmt.Sprintf("%s (%.3f)", label, q.DecimalOdds)
}

// TeamStats holds per-team efficiency statistics used as context for
// probability estimation.
type TeamStats struct {
	TeamID              string  `json:"team_id" yaml:"team_id"`
	TeamName            string  `json:"team_name" yaml:"team_name"`
	Record              string  `json:"record" yaml:"record"`
	OffensiveEfficiency float64 `json:"offensive_efficiency" yaml:"offensive_efficiency"`
	DefensiveEfficiency float64 `json:"defensive_efficiency" yaml:"defensive_efficiency"`
	Pace                float64 `json:"pace" yaml:"pace"`
	ThreePointRate      float64 `json:"three_point_rate" yaml:"three_point_rate"`
	ATSRecord           string  `json:"ats_record,omitempty" yaml:"ats_record,omitempty"`
	Conference          string  `json:"conference,omitempty" yaml:"conference,omitempty"`
}

// Game is one matchup with its quotes and optional context.
type Game struct {
	ID          string     `json:"id" yaml:"id"`
	HomeTeam    string     `json:"home_team" yaml:"home_team"`
	AwayTeam    string     `json:"away_team" yaml:"away_team"`
	StartTime   time.Time  `json:"start_time" yaml:"start_time"`
	Quotes      []Quote    `json:"quotes" yaml:"quotes"`
	HomeStats   *TeamStats `json:"home_stats,omitempty" yaml:"home_stats,omitempty"`
	AwayStats   *TeamStats `json:"away_stats,omitempty" yaml:"away_stats,omitempty"`
	InjuryNotes string     `json:"injury_notes,omitempty" yaml:"injury_notes,omitempty"`
}

// Matchup returns "Away @ Home".
func (g *Game) Matchup() string {
	return fmt.Sprintf("%s @ %s", g.AwayTeam, g.HomeTeam)
}

// StatsCount returns how many of the two teams carry statistics.
func (g *Game) StatsCount() int {
	n := 0
	if g.HomeStats != nil {
		n++
	}
	if g.AwayStats != nil {
		n++
	}
	return n
}

// QuotesFor returns the quotes of one market type in input order.
func (g *Game) QuotesFor(m MarketType) []Quote {
	var out []Quote
	for _, q := range g.Quotes {
		if q.MarketType == m {
			out = append(out, q)
		}
	}
	return out
}

// GameSummary is the part of a Game frozen into recommendations and bet
// records.
type GameSummary struct {
	ID        string    `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	StartTime time.Time `json:"start_time"`
}

// Summary returns the frozen summary of g.
func (g *Game) Summary() GameSummary {
	return GameSummary{
		ID:        g.ID,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		StartTime: g.StartTime,
	}
}

// Matchup returns "Away @ Home".
func (s GameSummary) Matchup() string {
	return fmt.Sprintf("%s @ %s", s.AwayTeam, s.HomeTeam)
}
