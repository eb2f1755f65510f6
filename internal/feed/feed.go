// Package feed supplies the daily slate of games with their quotes and
// team statistics.
package feed

import (
	"context"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// Feed returns the games available for evaluation.
type Feed interface {
	Games(ctx context.Context) ([]types.Game, error)
}

// StatsLookup resolves a display team name to its statistics. It returns
// nil when no confident match exists.
type StatsLookup interface {
	Lookup(teamName string) *types.TeamStats
}
