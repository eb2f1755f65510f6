package feed

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/oddsmath"
	"github.com/mselser95/hoops-edge/pkg/types"
	"go.uber.org/zap"
)

// FileFeed reads a slate snapshot from a JSON or YAML file. Teams without
// inline stats are filled from Stats when it is set.
type FileFeed struct {
	Path   string
	Stats  StatsLookup
	Logger *zap.Logger
}

// Games implements Feed.
func (f *FileFeed) Games(ctx context.Context) ([]types.Game, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		FetchesTotal.WithLabelValues("file", "error").Inc()
		return nil, fmt.Errorf("read slate file: %w", err)
	}

	var games []types.Game
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		err = json.Unmarshal(data, &games)
	default:
		games, err = decodeYAMLSlate(data, nil)
	}
	if err != nil {
		FetchesTotal.WithLabelValues("file", "error").Inc()
		return nil, fmt.Errorf("parse slate file %s: %w", f.Path, err)
	}

	err = normalize(games, f.Stats)
	if err != nil {
		FetchesTotal.WithLabelValues("file", "error").Inc()
		return nil, err
	}

	FetchesTotal.WithLabelValues("file", "ok").Inc()
	GamesFetched.Set(float64(len(games)))
	if f.Logger != nil {
		f.Logger.Info("slate-file-loaded",
			zap.String("path", f.Path),
			zap.Int("games", len(games)))
	}
	return games, nil
}

// normalize derives decimal odds from American odds where only the latter
// is given and fills missing stats from lookup.
func normalize(games []types.Game, lookup StatsLookup) error {
	for i := range games {
		g := &games[i]
		for j := range g.Quotes {
			q := &g.Quotes[j]
			if q.DecimalOdds != 0 || q.AmericanOdds == 0 {
				continue
			}
			d, err := oddsmath.AmericanToDecimal(q.AmericanOdds)
			if err != nil {
				return fmt.Errorf("game %s %s/%s: %w", g.ID, q.MarketType, q.Side, err)
			}
			q.DecimalOdds = d
		}

		if lookup == nil {
			continue
		}
		if g.HomeStats == nil {
			g.HomeStats = lookup.Lookup(g.HomeTeam)
		}
		if g.AwayStats == nil {
			g.AwayStats = lookup.Lookup(g.AwayTeam)
		}
	}
	return nil
}
