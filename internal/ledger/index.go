package ledger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mselser95/hoops-edge/pkg/types"
)

// Index resolves identifier prefixes against every known bet ID.
// IDs are kept sorted so all IDs sharing a prefix are contiguous.
type Index struct {
	mu  sync.RWMutex
	ids []string
}

// NewIndex builds an index over ids.
func NewIndex(ids []string) *Index {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return &Index{ids: sorted}
}

// Add inserts id. Adding a known ID is a no-op.
func (x *Index) Add(id string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	i := sort.SearchStrings(x.ids, id)
	if i < len(x.ids) && x.ids[i] == id {
		return
	}
	x.ids = append(x.ids, "")
	copy(x.ids[i+1:], x.ids[i:])
	x.ids[i] = id
}

// Reset replaces the indexed IDs with ids.
func (x *Index) Reset(ids []string) {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)

	x.mu.Lock()
	x.ids = sorted
	x.mu.Unlock()
}

// Len returns the number of indexed IDs.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Resolve returns the single ID that equals or starts with prefix.
// It fails with types.ErrNotFound when nothing matches and with a
// *types.AmbiguousError when several IDs match.
func (x *Index) Resolve(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty bet identifier", types.ErrInvalidInput)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	start := sort.SearchStrings(x.ids, prefix)
	end := start
	for end < len(x.ids) && strings.HasPrefix(x.ids[end], prefix) {
		end++
	}

	switch {
	case end == start:
		return "", fmt.Errorf("bet %q: %w", prefix, types.ErrNotFound)
	case x.ids[start] == prefix, end-start == 1:
		return x.ids[start], nil
	}

	candidates := make([]string, end-start)
	copy(candidates, x.ids[start:end])
	return "", &types.AmbiguousError{Prefix: prefix, Candidates: candidates}
}
