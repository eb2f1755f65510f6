package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch(t *testing.T) {
	scores := []FinalScore{
		{EventID: "1", HomeTeam: "uconn huskies", AwayTeam: "villanova wildcats"},
		{EventID: "2", HomeTeam: "st. john's red storm", AwayTeam: "marquette golden eagles"},
		{EventID: "3", HomeTeam: "iowa state cyclones", AwayTeam: "houston cougars"},
	}

	tests := []struct {
		name      string
		home      string
		away      string
		wantEvent string
	}{
		{"exact", "UConn Huskies", "Villanova Wildcats", "1"},
		{"punctuation", "St. John's Red Storm", "Marquette Golden Eagles", "2"},
		{"partial-names", "Iowa State", "Houston", "3"},
		{"stop-words-only", "The State", "Houston Cougars", ""},
		{"swapped-sides", "Villanova Wildcats", "UConn Huskies", ""},
		{"unknown", "Kansas Jayhawks", "Baylor Bears", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.home, tt.away, scores)
			if tt.wantEvent == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantEvent, got.EventID)
		})
	}
}

func TestNameWords(t *testing.T) {
	words := nameWords("Texas A&M Aggies")
	assert.Contains(t, words, "texas")
	assert.Contains(t, words, "aggies")
	assert.NotContains(t, words, "am")
	assert.Len(t, words, 2)
}
