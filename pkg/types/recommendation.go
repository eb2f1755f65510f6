package types

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// MarketSelection is the one side of a market type chosen for evaluation.
type MarketSelection struct {
	GameID     string     `json:"game_id"`
	MarketType MarketType `json:"market_type"`
	Quote      Quote      `json:"quote"`
	Opposing   Quote      `json:"opposing"`
	Rationale  string     `json:"rationale"`
}

// Key identifies the (game, market type) pair a selection covers.
func (s MarketSelection) Key() string {
	return s.GameID + "/" + string(s.MarketType)
}

// ProbabilityEstimate is produced by an external estimator. Reasoning is
// opaque and passed through untouched. ProposedUnits is informational
// only and never feeds stake sizing.
type ProbabilityEstimate struct {
	Probability   float64         `json:"probability"`
	Confidence    float64         `json:"confidence"`
	Reasoning     json.RawMessage `json:"reasoning,omitempty"`
	ProposedUnits *float64        `json:"proposed_units,omitempty"`
	Source        string          `json:"source,omitempty"`
}

// Clone copies the reasoning and proposed units.
func (e ProbabilityEstimate) Clone() ProbabilityEstimate {
	if e.Reasoning != nil {
		e.Reasoning = append(json.RawMessage(nil), e.Reasoning...)
	}
	if e.ProposedUnits != nil {
		u := *e.ProposedUnits
		e.ProposedUnits = &u
	}
	return e
}

// EVResult is the expected value of a unit stake.
type EVResult struct {
	EV                 float64 `json:"ev"`
	ImpliedProbability float64 `json:"implied_probability"`
	Edge               float64 `json:"edge"`
	Threshold          float64 `json:"threshold"`
	MeetsThreshold     bool    `json:"meets_threshold"`
}

// StakeResult is the fractional-Kelly sizing of one bet.
type StakeResult struct {
	FullKelly        float64 `json:"full_kelly"`
	KellyFraction    float64 `json:"kelly_fraction"`
	BankrollFraction float64 `json:"bankroll_fraction"`
	RawUnits         float64 `json:"raw_units"`
	Units            float64 `json:"units"`
	MinUnits         float64 `json:"min_units"`
	MaxUnits         float64 `json:"max_units"`
	Capped           bool    `json:"capped"`
	MeetsFloor       bool    `json:"meets_floor"`
	Currency         float64 `json:"currency,omitempty"`
}

// Suppression reasons recorded on recommendations that are not bets.
const (
	SuppressBelowThreshold = "below_ev_threshold"
	SuppressBelowFloor     = "below_unit_floor"
	SuppressLowConfidence  = "low_confidence"
)

// BetRecommendation is the immutable outcome of evaluating one selection.
type BetRecommendation struct {
	Game          GameSummary         `json:"game"`
	Selection     MarketSelection     `json:"selection"`
	Estimate      ProbabilityEstimate `json:"estimate"`
	EV            EVResult            `json:"ev"`
	Stake         StakeResult         `json:"stake"`
	IsRecommended bool                `json:"is_recommended"`
	Suppression   string              `json:"suppression,omitempty"`
	EvaluatedAt   time.Time           `json:"evaluated_at"`
}

// Clone returns a copy that shares no pointers or slices with r.
func (r BetRecommendation) Clone() BetRecommendation {
	r.Selection.Quote = r.Selection.Quote.Clone()
	r.Selection.Opposing = r.Selection.Opposing.Clone()
	r.Estimate = r.Estimate.Clone()
	return r
}

// Summary is a one-line description for listings and notifications.
func (r *BetRecommendation) Summary() string {
	return fmt.Sprintf("%s %s %s | p=%.3f EV=%+.2f%% | %.2fu",
		r.Game.Matchup(),
		r.Selection.MarketType,
		r.Selection.Quote.Label(),
		r.Estimate.Probability,
		r.EV.EV*100,
		r.Stake.Units)
}

// Omission records a market that produced no evaluation.
type Omission struct {
	GameID     string     `json:"game_id"`
	MarketType MarketType `json:"market_type,omitempty"`
	Reason     string     `json:"reason"`
	Err        error      `json:"-"`
}

// DailySlate is the output of one aggregation run.
type DailySlate struct {
	Date             string              `json:"date"`
	GeneratedAt      time.Time           `json:"generated_at"`
	GamesConsidered  int                 `json:"games_considered"`
	GamesAnalyzed    int                 `json:"games_analyzed"`
	Recommendations  []BetRecommendation `json:"recommendations"`
	Suppressed       []BetRecommendation `json:"suppressed"`
	Omissions        []Omission          `json:"omissions"`
	TotalUnitsAtRisk float64             `json:"total_units_at_risk"`
	Partial          bool                `json:"partial"`
}

// EstimateRequest is what an estimator sees for one selection.
type EstimateRequest struct {
	Game      *Game           `json:"game"`
	Selection MarketSelection `json:"selection"`
}
