// pkg/talen/scanner.go
// Package talen searches a DNA dataset for TALE binding sites and for TALEN
// pairs: two sites on one subject separated by a bounded spacer.
//
//	sc, err := talen.NewScanner(ds, model, talen.Config{})
//	hits, err := sc.ScoresAbove(ctx, talen.Infix, probe, thr, 100, true, talen.Forward)
//	pairs, err := sc.FindPairs(ctx, talen.Query{...})
//
// Searches run in parallel over dataset partitions. The per-partition
// finders are built once per dataset, and results are cached until
// ResetDataset.
package talen

import (
	"context"
	"fmt"
	"sync"

	"talen-core/engine"
	"talen-core/finder"
	"talen-core/model"
	"talen-core/seq"

	"talen/internal/logging"
	"talen/internal/pipeline"
)

type (
	Match       = finder.Match
	Matches     = finder.Matches
	Strand      = finder.Strand
	Query       = engine.Query
	Pair        = engine.Pair
	Pairs       = engine.Pairs
	Category    = engine.Category
	SpacerRange = engine.SpacerRange
)

const (
	Forward = finder.Forward
	Reverse = finder.Reverse
)

// Kind selects the single-probe finder.
type Kind int

const (
	Infix Kind = iota // lookup-table scan; cheap to build
	Trie              // branch-and-bound; built on first use
)

func (k Kind) String() string {
	if k == Trie {
		return "trie"
	}
	return "infix"
}

type (
	infixShards  = pipeline.Shards[*finder.InfixScanner]
	trieShards   = pipeline.Shards[*finder.PrunedSearchTrie]
	engineShards = pipeline.Shards[*engine.Engine]
)

// Scanner owns the finders for one dataset and model.
type Scanner struct {
	cfg    Config
	pcfg   pipeline.Config
	log    *logging.Logger
	scorer model.Scorer

	mu    sync.Mutex
	proto *finder.InfixScanner // whole dataset; seeds the infix workers
	infix *infixShards
	trie  *trieShards
	pairs map[int]*engineShards // by infix length

	scans    results[scanKey, *Matches]
	pairHits results[Query, *Pairs]
}

// NewScanner validates c and prepares the infix workers over ds. s must be
// a locked model.
func NewScanner(ds seq.Dataset, s model.Scorer, c Config) (*Scanner, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c = c.withDefaults()
	x, err := finder.NewInfixScanner(ds, s, finder.InfixConfig{InfixLength: c.InfixLength})
	if err != nil {
		return nil, err
	}
	sc := &Scanner{
		cfg:    c,
		pcfg:   pipeline.Config{Threads: c.Threads, Partitions: c.Partitions},
		log:    c.logger(),
		scorer: s,
		proto:  x,
	}
	if err := sc.rebuild(context.Background()); err != nil {
		return nil, err
	}
	return sc, nil
}

// rebuild replaces every worker set with ones over the proto's dataset.
// The trie and per-length pair workers are built on first use. s.mu must
// be held or s unshared.
func (s *Scanner) rebuild(ctx context.Context) error {
	infix, err := pipeline.CloneShards(ctx, s.pcfg, s.proto, s.proto.Dataset())
	if err != nil {
		return err
	}
	s.infix = infix
	s.trie = nil
	s.pairs = make(map[int]*engineShards)
	if s.cfg.InfixLength > 0 {
		s.pairs[s.cfg.InfixLength] = pipeline.Derive(infix, engine.New)
	}
	s.scans.reset()
	s.pairHits.reset()
	return nil
}

func (s *Scanner) Config() Config { return s.cfg }

func (s *Scanner) Dataset() seq.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.proto.Dataset()
}

func (s *Scanner) tries(ctx context.Context) (*trieShards, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trie != nil {
		return s.trie, nil
	}
	cfg := finder.TrieConfig{
		StartDepth: s.cfg.TrieStartDepth,
		MaxDepth:   s.cfg.TrieMaxDepth,
		Logger:     s.log.WithFinder(Trie.String()).Logger,
	}
	sh, err := pipeline.NewShards(ctx, s.pcfg, s.proto.Dataset(), func(v *seq.View) (*finder.PrunedSearchTrie, error) {
		return finder.NewPrunedSearchTrie(v, s.scorer.Clone(), cfg)
	})
	if err != nil {
		return nil, err
	}
	s.trie = sh
	return sh, nil
}

// engines returns the pair workers for q. Without a configured infix
// length both arms share engine.DefaultInfixLength.
func (s *Scanner) engines(ctx context.Context, q Query) (*engineShards, error) {
	l := s.cfg.InfixLength
	if l == 0 {
		l = engine.DefaultInfixLength(s.scorer, q.ProbeA, q.ProbeB)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.pairs[l]; ok {
		return sh, nil
	}
	x, err := finder.NewInfixScanner(s.proto.Dataset(), s.scorer, finder.InfixConfig{InfixLength: max(l, 0)})
	if err != nil {
		return nil, err
	}
	xs, err := pipeline.CloneShards(ctx, s.pcfg, x, x.Dataset())
	if err != nil {
		return nil, err
	}
	sh := pipeline.Derive(xs, engine.New)
	s.pairs[l] = sh
	return sh, nil
}

// ScoresAbove returns the windows scoring >= threshold on strand, using the
// finder of kind k. capacity<=0 collects everything. A repeated query
// returns the same list; callers must not modify it.
func (s *Scanner) ScoresAbove(ctx context.Context, k Kind, probe *seq.Sequence, threshold float64, capacity int, bestEffort bool, strand Strand) (*Matches, error) {
	key := scanKey{kind: k, probe: probe, threshold: threshold, capacity: capacity, bestEffort: bestEffort, strand: strand}
	if l, ok := s.scans.get(key); ok {
		return l, nil
	}

	log := s.log.WithFinder(k.String())
	var (
		l   *Matches
		err error
	)
	if k == Trie {
		sh, terr := s.tries(ctx)
		if terr != nil {
			return nil, terr
		}
		l, err = pipeline.ScoresAbove(ctx, sh, probe, threshold, capacity, bestEffort, strand, log)
	} else {
		s.mu.Lock()
		sh := s.infix
		s.mu.Unlock()
		l, err = pipeline.ScoresAbove(ctx, sh, probe, threshold, capacity, bestEffort, strand, log)
	}
	if err != nil {
		return nil, err
	}
	s.scans.put(key, l)
	return l, nil
}

// FindPairs runs a paired search. Call Descending on the result for
// best-first order. A repeated query returns the same list; callers must
// not modify it.
func (s *Scanner) FindPairs(ctx context.Context, q Query) (*Pairs, error) {
	if q.ProbeA == nil || q.ProbeB == nil {
		return nil, fmt.Errorf("%w: both probes are required", engine.ErrInvalidQuery)
	}
	if l, ok := s.pairHits.get(q); ok {
		return l, nil
	}
	sh, err := s.engines(ctx, q)
	if err != nil {
		return nil, err
	}
	l, err := pipeline.FindPairs(ctx, sh, q, s.log)
	if err != nil {
		return nil, err
	}
	s.pairHits.put(q, l)
	return l, nil
}

// FilterThresholds derives relative thresholds from a fraction of the best
// possible score and applies them to q. See engine.FilterLoose and friends
// for the usual fractions.
func (s *Scanner) FilterThresholds(q *Query, fraction float64) error {
	th, err := engine.FilterThresholds(s.scorer, q.ProbeA, q.ProbeB, fraction)
	if err != nil {
		return err
	}
	th.Apply(q)
	return nil
}

// ResetDataset switches every finder to ds and drops cached results. On
// error the scanner keeps its current dataset. Not safe concurrently with
// running searches.
func (s *Scanner) ResetDataset(ds seq.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.proto.ResetDataset(ds); err != nil {
		return err
	}
	return s.rebuild(context.Background())
}
