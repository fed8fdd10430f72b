// core/finder/trie_test.go
package finder

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talen-core/model"
)

func TestTrieStats(t *testing.T) {
	ds := randomDataset(t, 30, 150, 12)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	cfg := TrieConfig{StartDepth: 3, MaxDepth: 9, Logger: log}
	tr, err := NewPrunedSearchTrie(ds, model.ExactMatch{}, cfg)
	require.NoError(t, err)

	st := tr.Stats()
	assert.Equal(t, 30*(150-9+1), st.Windows)
	assert.NotZero(t, st.Leaves)
	assert.LessOrEqual(t, st.MaxDepth, 9)
	assert.Equal(t, len(tr.nodes), st.Inner+st.Leaves, "compact leaves no orphans")
	assert.Contains(t, buf.String(), "trie built")

	// every window sits in exactly one leaf
	seen := make(map[leafEntry]bool)
	for _, nd := range tr.nodes {
		if !nd.leaf {
			continue
		}
		assert.Equal(t, len(nd.entries), nd.n)
		for _, e := range nd.entries {
			assert.False(t, seen[e])
			seen[e] = true
		}
	}
	assert.Len(t, seen, st.Windows)
}

func TestTrieBalancesPopulation(t *testing.T) {
	ds := randomDataset(t, 40, 200, 6)
	cfg := TrieConfig{StartDepth: 2, MaxDepth: 10, PruneBelow: 10, ExpandAbove: 20}
	tr, err := NewPrunedSearchTrie(ds, model.ExactMatch{}, cfg)
	require.NoError(t, err)

	var walk func(id int32, depth int)
	walk = func(id int32, depth int) {
		nd := tr.nodes[id]
		if nd.leaf {
			if depth < cfg.MaxDepth {
				assert.LessOrEqual(t, nd.n, cfg.ExpandAbove, "leaf at depth %d", depth)
			}
			return
		}
		if id != 0 {
			assert.Greater(t, nd.n, cfg.PruneBelow, "inner at depth %d", depth)
		}
		total := 0
		for _, c := range nd.children {
			if c >= 0 {
				total += tr.nodes[c].n
				walk(c, depth+1)
			}
		}
		assert.Equal(t, nd.n, total)
	}
	walk(0, 0)
}

func TestTrieCloneSharesArena(t *testing.T) {
	ds := e2eDataset(t)
	tr, err := NewPrunedSearchTrie(ds, model.ExactMatch{}, TrieConfig{StartDepth: 2, MaxDepth: 4})
	require.NoError(t, err)
	c := tr.Clone().(*PrunedSearchTrie)
	assert.Equal(t, tr.Stats(), c.Stats())

	require.NoError(t, c.ResetDataset(ds[1:]))
	assert.Equal(t, 13+9, tr.Stats().Windows)
	assert.Equal(t, 9, c.Stats().Windows)
}
