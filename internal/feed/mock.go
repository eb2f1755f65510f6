package feed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/mselser95/hoops-edge/pkg/types"
	"gopkg.in/yaml.v3"
)

//go:embed mock_slate.yaml
var mockSlate []byte

// MockFeed serves a built-in eight-game slate for offline runs.
type MockFeed struct {
	Now func() time.Time
}

type yamlGame struct {
	types.Game    `yaml:",inline"`
	StartsInHours *float64 `yaml:"starts_in_hours,omitempty"`
}

// Games implements Feed.
func (m *MockFeed) Games(ctx context.Context) ([]types.Game, error) {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	base := now().UTC().Truncate(time.Hour)

	games, err := decodeYAMLSlate(mockSlate, &base)
	if err != nil {
		return nil, fmt.Errorf("parse mock slate: %w", err)
	}
	err = normalize(games, nil)
	if err != nil {
		return nil, err
	}

	FetchesTotal.WithLabelValues("mock", "ok").Inc()
	GamesFetched.Set(float64(len(games)))
	return games, nil
}

// decodeYAMLSlate parses a YAML slate. Games may give starts_in_hours
// instead of start_time; it is resolved against base when base is set.
func decodeYAMLSlate(data []byte, base *time.Time) ([]types.Game, error) {
	var raw []yamlGame
	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, err
	}

	ref := time.Now().UTC()
	if base != nil {
		ref = *base
	}

	games := make([]types.Game, 0, len(raw))
	for _, r := range raw {
		g := r.Game
		if r.StartsInHours != nil {
			g.StartTime = ref.Add(time.Duration(*r.StartsInHours * float64(time.Hour)))
		}
		games = append(games, g)
	}
	return games, nil
}
