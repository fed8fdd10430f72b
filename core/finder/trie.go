// core/finder/trie.go
package finder

import (
	"log/slog"

	"talen-core/model"
	"talen-core/seq"
	"talen-core/topk"
)

const (
	DefaultStartDepth  = 4
	DefaultMaxDepth    = 10
	DefaultPruneBelow  = 10
	DefaultExpandAbove = 20
)

// TrieConfig configures a PrunedSearchTrie. Zero fields take the defaults.
type TrieConfig struct {
	StartDepth  int // inner nodes are created down to this depth
	MaxDepth    int // window length indexed; every probe site must be at least this long
	PruneBelow  int // inner nodes with population <= this collapse into leaves
	ExpandAbove int // leaves with population > this are split further
	Logger      *slog.Logger
}

func (c TrieConfig) withDefaults() TrieConfig {
	if c.StartDepth == 0 {
		c.StartDepth = DefaultStartDepth
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = max(DefaultMaxDepth, c.StartDepth)
	}
	if c.PruneBelow == 0 {
		c.PruneBelow = DefaultPruneBelow
	}
	if c.ExpandAbove == 0 {
		c.ExpandAbove = DefaultExpandAbove
	}
	return c
}

// ---- arena -----------------------------------------------------------------

type leafEntry struct {
	seq   int32
	start int32
}

// trieNode is an inner node (children set) or a leaf (entries set).
// children[c] < 0 means absent.
type trieNode struct {
	children [4]int32
	leaf     bool
	entries  []leafEntry
	n        int // windows below this node
}

func newTrieNode(leaf bool) trieNode {
	return trieNode{children: [4]int32{-1, -1, -1, -1}, leaf: leaf}
}

// TrieStats summarizes the shape of a built trie.
type TrieStats struct {
	Windows  int
	Inner    int
	Leaves   int
	MaxLeaf  int // largest leaf population
	MaxDepth int // deepest leaf
}

// PrunedSearchTrie finds binding sites by branch-and-bound over a trie of
// subject windows whose depth adapts to the window population.
type PrunedSearchTrie struct {
	ds     seq.Dataset
	scorer model.Scorer
	cfg    TrieConfig
	cache  *matchCache

	nodes []trieNode // nodes[0] is the root
	alpha *seq.Alphabet
	stats TrieStats
}

// NewPrunedSearchTrie validates c and builds the trie over ds.
func NewPrunedSearchTrie(ds seq.Dataset, s model.Scorer, c TrieConfig) (*PrunedSearchTrie, error) {
	if err := checkAlphabet("trie", s); err != nil {
		return nil, err
	}
	if err := checkDataset("trie", ds); err != nil {
		return nil, err
	}
	c = c.withDefaults()
	if c.StartDepth < 1 || c.StartDepth > c.MaxDepth {
		return nil, precondition("trie", ErrDepth, "need 1 <= start %d <= max %d", c.StartDepth, c.MaxDepth)
	}
	if c.PruneBelow < 0 || c.ExpandAbove < c.PruneBelow {
		return nil, precondition("trie", ErrDepth, "prune below %d, expand above %d", c.PruneBelow, c.ExpandAbove)
	}
	t := &PrunedSearchTrie{ds: ds, scorer: s, cfg: c, cache: newMatchCache()}
	t.build()
	return t, nil
}

func (t *PrunedSearchTrie) Dataset() seq.Dataset { return t.ds }
func (t *PrunedSearchTrie) Scorer() model.Scorer { return t.scorer }
func (t *PrunedSearchTrie) Config() TrieConfig   { return t.cfg }
func (t *PrunedSearchTrie) Stats() TrieStats     { return t.stats }

// ResetDataset rebuilds the trie over ds and drops cached matches. On error
// the trie keeps its current dataset.
func (t *PrunedSearchTrie) ResetDataset(ds seq.Dataset) error {
	if err := checkDataset("trie", ds); err != nil {
		return err
	}
	t.ds = ds
	t.cache.reset()
	t.build()
	return nil
}

// Clone shares the (read-only) arena; the model and caches are copied.
func (t *PrunedSearchTrie) Clone() Finder {
	return &PrunedSearchTrie{
		ds:     t.ds,
		scorer: t.scorer.Clone(),
		cfg:    t.cfg,
		cache:  t.cache.clone(),
		nodes:  t.nodes,
		alpha:  t.alpha,
		stats:  t.stats,
	}
}

// ---- build -----------------------------------------------------------------

func (t *PrunedSearchTrie) build() {
	t.nodes = make([]trieNode, 1, 1024)
	t.nodes[0] = newTrieNode(false)
	t.alpha = nil
	d := t.cfg.MaxDepth
	for i := 0; i < t.ds.Len(); i++ {
		s := t.ds.At(i)
		if t.alpha == nil {
			t.alpha = s.Alphabet()
		}
		sym := s.Symbols()
		for p := 0; p+d <= len(sym); p++ {
			t.insert(0, 0, leafEntry{seq: int32(i), start: int32(p)}, t.cfg.StartDepth)
		}
	}
	t.prune(0, t.cfg.PruneBelow)
	t.expand(0, 0)
	t.compact()
	t.stats = t.collectStats()
	if t.cfg.Logger != nil {
		t.cfg.Logger.Debug("trie built",
			"sequences", t.ds.Len(),
			"windows", t.stats.Windows,
			"inner", t.stats.Inner,
			"leaves", t.stats.Leaves,
			"max_leaf", t.stats.MaxLeaf,
			"max_depth", t.stats.MaxDepth)
	}
}

func (t *PrunedSearchTrie) symbolOf(e leafEntry, depth int) byte {
	return t.ds.At(int(e.seq)).At(int(e.start) + depth)
}

// insert adds e below node id (at depth), creating inner nodes down to
// leafDepth and a leaf there. Existing leaves absorb e.
func (t *PrunedSearchTrie) insert(id int32, depth int, e leafEntry, leafDepth int) {
	for {
		t.nodes[id].n++
		if t.nodes[id].leaf {
			t.nodes[id].entries = append(t.nodes[id].entries, e)
			return
		}
		c := t.symbolOf(e, depth)
		child := t.nodes[id].children[c]
		if child < 0 {
			child = int32(len(t.nodes))
			t.nodes = append(t.nodes, newTrieNode(depth+1 >= leafDepth))
			t.nodes[id].children[c] = child
		}
		id = child
		depth++
	}
}

// prune collapses inner nodes with population <= limit into leaves. The
// root stays inner.
func (t *PrunedSearchTrie) prune(id int32, limit int) {
	for _, c := range t.nodes[id].children {
		if c < 0 || t.nodes[c].leaf {
			continue
		}
		if t.nodes[c].n <= limit {
			t.collapse(c)
		} else {
			t.prune(c, limit)
		}
	}
}

func (t *PrunedSearchTrie) collapse(id int32) {
	entries := make([]leafEntry, 0, t.nodes[id].n)
	entries = t.gather(id, entries)
	nd := newTrieNode(true)
	nd.entries = entries
	nd.n = len(entries)
	t.nodes[id] = nd
}

func (t *PrunedSearchTrie) gather(id int32, dst []leafEntry) []leafEntry {
	if t.nodes[id].leaf {
		return append(dst, t.nodes[id].entries...)
	}
	for _, c := range t.nodes[id].children {
		if c >= 0 {
			dst = t.gather(c, dst)
		}
	}
	return dst
}

// expand splits leaves above ExpandAbove into subtrees reaching MaxDepth,
// then prunes the new subtree.
func (t *PrunedSearchTrie) expand(id int32, depth int) {
	nd := &t.nodes[id]
	if !nd.leaf {
		for _, c := range nd.children {
			if c >= 0 {
				t.expand(c, depth+1)
			}
		}
		return
	}
	if nd.n <= t.cfg.ExpandAbove || depth >= t.cfg.MaxDepth {
		return
	}
	entries := nd.entries
	t.nodes[id] = newTrieNode(false)
	for _, e := range entries {
		t.insert(id, depth, e, t.cfg.MaxDepth)
	}
	t.prune(id, t.cfg.PruneBelow)
}

// compact drops arena slots orphaned by collapse/expand, renumbering
// reachable nodes in depth-first order.
func (t *PrunedSearchTrie) compact() {
	out := make([]trieNode, 0, len(t.nodes))
	var walk func(id int32) int32
	walk = func(id int32) int32 {
		nid := int32(len(out))
		out = append(out, t.nodes[id])
		for c, ch := range t.nodes[id].children {
			if ch >= 0 {
				nc := walk(ch)
				out[nid].children[c] = nc
			}
		}
		return nid
	}
	walk(0)
	t.nodes = out
}

func (t *PrunedSearchTrie) collectStats() TrieStats {
	st := TrieStats{Windows: t.nodes[0].n}
	var walk func(id int32, depth int)
	walk = func(id int32, depth int) {
		nd := &t.nodes[id]
		if nd.leaf {
			st.Leaves++
			st.MaxLeaf = max(st.MaxLeaf, nd.n)
			st.MaxDepth = max(st.MaxDepth, depth)
			return
		}
		st.Inner++
		for _, c := range nd.children {
			if c >= 0 {
				walk(c, depth+1)
			}
		}
	}
	walk(0, 0)
	return st
}

// ---- search ----------------------------------------------------------------

// ScoresAbove runs the branch-and-bound search. See Finder.
func (t *PrunedSearchTrie) ScoresAbove(probe *seq.Sequence, threshold float64, capacity int, bestEffort bool, strand Strand) (*Matches, error) {
	key := cacheKey{probe: probe, threshold: threshold, capacity: capacity, bestEffort: bestEffort}
	if l, ok := t.cache.lookup(key, strand); ok {
		return l, nil
	}
	if probe.Alphabet() != t.scorer.ProbeAlphabet() {
		return nil, precondition("trie", ErrProbeAlphabet, "%s probe for %s model", probe.Alphabet(), t.scorer.ProbeAlphabet())
	}
	w := t.scorer.SiteLength(probe)
	if w < t.cfg.MaxDepth {
		return nil, precondition("trie", ErrProbeTooShort, "site length %d below trie depth %d", w, t.cfg.MaxDepth)
	}
	if strand == Reverse && t.alpha != nil && !t.alpha.Complementable() {
		return nil, seq.ErrNotComplementable
	}

	scs := make([]float64, w)
	t.scorer.BestPossibleScore(probe, scs)
	s := &search{
		t:          t,
		probe:      probe,
		w:          w,
		order:      t.scorer.Order(),
		curr:       make([]byte, w),
		thr:        threshold,
		bestEffort: bestEffort,
		out:        topk.New[Match](capacity),
	}
	if strand == Reverse {
		// bound[i] = sum of scs[j], j < i
		s.bound = make([]float64, w+1)
		for i := 1; i <= w; i++ {
			s.bound[i] = s.bound[i-1] + scs[i-1]
		}
		s.reverse(0, 0, 0, w)
	} else {
		// bound[i] = sum of scs[j], j >= i
		s.bound = make([]float64, w+1)
		for i := w - 1; i >= 0; i-- {
			s.bound[i] = s.bound[i+1] + scs[i]
		}
		s.forward(0, 0, 0)
	}
	if s.err != nil {
		return nil, s.err
	}
	t.cache.store(key, s.out, strand)
	return s.out, nil
}

type search struct {
	t          *PrunedSearchTrie
	probe      *seq.Sequence
	w, order   int
	curr       []byte // site symbols on the current path
	bound      []float64
	thr        float64
	bestEffort bool
	out        *Matches
	done       bool
	err        error
}

// tighten raises the cutoff to the worst kept score once the list is full.
func (s *search) tighten() {
	if s.out.Full() {
		s.thr = max(s.thr, s.out.WorstScore())
	}
}

func (s *search) offer(sc float64, m Match) {
	if sc < s.thr || !s.out.CheckInsert(sc) {
		return
	}
	s.out.Insert(sc, m)
	if !s.bestEffort && s.out.Full() {
		s.done = true
	}
}

// forward fills the site from position 0 upwards; depth symbols are known
// and scored.
func (s *search) forward(id int32, depth int, cur float64) {
	nd := &s.t.nodes[id]
	if nd.leaf {
		for _, e := range nd.entries {
			subj := s.t.ds.At(int(e.seq)).Symbols()
			start := int(e.start)
			if start+s.w > len(subj) {
				continue
			}
			sc := cur + s.t.scorer.PartialScore(s.probe, subj, start, depth, s.w-depth)
			s.offer(sc, Match{SequenceIndex: int(e.seq), Position: start, Strand: Forward})
			if s.done {
				return
			}
		}
		return
	}
	for c, child := range nd.children {
		if child < 0 {
			continue
		}
		s.curr[depth] = byte(c)
		temp := cur + s.t.scorer.PartialScore(s.probe, s.curr, 0, depth, 1)
		s.tighten()
		if temp+s.bound[depth+1] >= s.thr {
			s.forward(child, depth+1, temp)
		}
		if s.done {
			return
		}
	}
}

// reverse fills the reverse-complement site from position w-1 downwards.
// Positions [scoredFrom, w) are scored; a position q can be scored once
// q-order..q are known.
func (s *search) reverse(id int32, depth int, cur float64, scoredFrom int) {
	nd := &s.t.nodes[id]
	if nd.leaf {
		for _, e := range nd.entries {
			fwd := s.t.ds.At(int(e.seq))
			start := int(e.start)
			n := fwd.Len()
			if start+s.w > n {
				continue
			}
			rc, err := fwd.ReverseComplement()
			if err != nil {
				s.err, s.done = err, true
				return
			}
			sc := cur + s.t.scorer.PartialScore(s.probe, rc.Symbols(), n-start-s.w, 0, scoredFrom)
			s.offer(sc, Match{SequenceIndex: int(e.seq), Position: start, Strand: Reverse})
			if s.done {
				return
			}
		}
		return
	}
	known := s.w - depth - 1 // lowest known site position after this edge
	low := 0
	if known > 0 {
		low = min(known+s.order, scoredFrom)
	}
	for c, child := range nd.children {
		if child < 0 {
			continue
		}
		s.curr[known] = s.t.alpha.Complement(byte(c))
		if low == s.w {
			// nothing scorable yet
			s.reverse(child, depth+1, cur, scoredFrom)
		} else {
			temp := cur + s.t.scorer.PartialScore(s.probe, s.curr, 0, low, scoredFrom-low)
			s.tighten()
			if temp+s.bound[low] >= s.thr {
				s.reverse(child, depth+1, temp, low)
			}
		}
		if s.done {
			return
		}
	}
}
