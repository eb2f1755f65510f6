package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mselser95/hoops-edge/pkg/types"
	"gopkg.in/yaml.v3"
)

// minOverlap is the number of meaningful shared words needed for a fuzzy
// match. A lone mascot like "Tigers" is not enough.
const minOverlap = 2

//nolint:gochecknoglobals // lookup table
var stopWords = map[string]struct{}{
	"st": {}, "st.": {}, "state": {}, "the": {}, "of": {}, "at": {},
	"university": {}, "college": {}, "a&m": {}, "u": {},
	"nc": {}, "pa": {}, "ny": {}, "la": {},
}

// StatsBook matches sportsbook team names to stored team statistics.
type StatsBook struct {
	teams []types.TeamStats
}

// NewStatsBook creates a book over teams.
func NewStatsBook(teams []types.TeamStats) *StatsBook {
	return &StatsBook{teams: teams}
}

// LoadStatsBook reads team statistics from a YAML or JSON file, chosen by
// extension.
func LoadStatsBook(path string) (*StatsBook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}

	var teams []types.TeamStats
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &teams)
	default:
		err = yaml.Unmarshal(data, &teams)
	}
	if err != nil {
		return nil, fmt.Errorf("parse stats file %s: %w", path, err)
	}

	return NewStatsBook(teams), nil
}

// Len returns the number of teams in the book.
func (b *StatsBook) Len() int {
	return len(b.teams)
}

// Lookup returns the stats for teamName. A case-insensitive exact match
// wins; otherwise the team sharing the most meaningful words is returned
// if it shares at least two. Returns nil rather than a doubtful match.
func (b *StatsBook) Lookup(teamName string) *types.TeamStats {
	name := strings.ToLower(strings.TrimSpace(teamName))
	if name == "" {
		return nil
	}
	words := meaningfulWords(name)

	var best *types.TeamStats
	bestScore := 0
	for i := range b.teams {
		stored := strings.ToLower(b.teams[i].TeamName)
		if stored == name {
			s := b.teams[i]
			return &s
		}

		score := 0
		for w := range meaningfulWords(stored) {
			if _, ok := words[w]; ok {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = &b.teams[i]
		}
	}

	if bestScore < minOverlap || best == nil {
		return nil
	}
	s := *best
	return &s
}

func meaningfulWords(name string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(name) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
