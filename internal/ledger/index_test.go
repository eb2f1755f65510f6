package ledger

import (
	"errors"
	"testing"

	"github.com/mselser95/hoops-edge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex_Resolve(t *testing.T) {
	idx := NewIndex([]string{
		"ab12cd34-0000-0000-0000-000000000001",
		"ab12ff00-0000-0000-0000-000000000002",
		"c0ffee00-0000-0000-0000-000000000003",
	})

	tests := []struct {
		name   string
		prefix string
		want   string
		err    error
	}{
		{name: "unique_prefix", prefix: "c0f", want: "c0ffee00-0000-0000-0000-000000000003"},
		{name: "longer_unique_prefix", prefix: "ab12c", want: "ab12cd34-0000-0000-0000-000000000001"},
		{name: "full_id", prefix: "ab12ff00-0000-0000-0000-000000000002", want: "ab12ff00-0000-0000-0000-000000000002"},
		{name: "ambiguous", prefix: "ab12", err: types.ErrAmbiguousIdentifier},
		{name: "missing", prefix: "zz", err: types.ErrNotFound},
		{name: "empty", prefix: "  ", err: types.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.Resolve(tt.prefix)
			if tt.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIndex_AmbiguousCarriesCandidates(t *testing.T) {
	idx := NewIndex([]string{"ab12-2", "ab12-1", "ab99"})

	_, err := idx.Resolve("ab12")
	var amb *types.AmbiguousError
	require.True(t, errors.As(err, &amb))
	assert.Equal(t, "ab12", amb.Prefix)
	assert.Equal(t, []string{"ab12-1", "ab12-2"}, amb.Candidates)
	assert.False(t, errors.Is(err, types.ErrNotFound))
}

func TestIndex_Add(t *testing.T) {
	idx := NewIndex(nil)
	idx.Add("b")
	idx.Add("a")
	idx.Add("c")
	idx.Add("b")

	assert.Equal(t, 3, idx.Len())
	got, err := idx.Resolve("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}
