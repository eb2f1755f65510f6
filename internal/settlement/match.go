package settlement

import (
	"strings"
	"unicode"
)

//nolint:gochecknoglobals // lookup table
var stopWords = map[string]struct{}{
	"st": {}, "state": {}, "the": {}, "of": {}, "at": {},
	"university": {}, "college": {}, "am": {}, "u": {},
	"nc": {}, "pa": {}, "ny": {}, "la": {},
}

// nameWords lowercases name, strips punctuation and drops stop words.
func nameWords(name string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(name)) {
		clean := strings.Map(func(r rune) rune {
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				return -1
			}
			return r
		}, w)
		if clean == "" {
			continue
		}
		if _, stop := stopWords[clean]; stop {
			continue
		}
		out[clean] = struct{}{}
	}
	return out
}

func overlaps(a, b map[string]struct{}) bool {
	for w := range a {
		if _, ok := b[w]; ok {
			return true
		}
	}
	return false
}

// Match returns the first completed game whose home and away teams each
// share at least one meaningful word with the bet's teams, or nil.
func Match(homeTeam, awayTeam string, scores []FinalScore) *FinalScore {
	home, away := nameWords(homeTeam), nameWords(awayTeam)
	for i := range scores {
		if overlaps(home, nameWords(scores[i].HomeTeam)) && overlaps(away, nameWords(scores[i].AwayTeam)) {
			return &scores[i]
		}
	}
	return nil
}
