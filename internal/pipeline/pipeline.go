// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"talen-core/engine"
	"talen-core/finder"
	"talen-core/seq"
	"talen-core/topk"

	"talen/internal/logging"
)

// Config controls the parallel search.
type Config struct {
	Threads    int // number of worker goroutines (>=1)
	Partitions int // dataset partitions; 0 => Threads
}

func (c Config) normalize() Config {
	if c.Threads < 1 {
		c.Threads = 1
	}
	if c.Partitions < 1 {
		c.Partitions = c.Threads
	}
	return c
}

// Partition splits sequence indices [0, n) round-robin into parts sets.
func Partition(n, parts int) []*roaring.Bitmap {
	if parts < 1 {
		parts = 1
	}
	out := make([]*roaring.Bitmap, parts)
	for i := range out {
		out[i] = roaring.New()
	}
	for i := 0; i < n; i++ {
		out[i%parts].Add(uint32(i))
	}
	return out
}

// Shards holds one worker per non-empty partition of a dataset. Workers are
// built once and reused by every search until the dataset changes.
type Shards[W any] struct {
	cfg     Config
	views   []*seq.View
	workers []W
}

// NewShards partitions ds and builds one worker per non-empty partition, at
// most cfg.Threads at a time. The first error wins.
func NewShards[W any](ctx context.Context, cfg Config, ds seq.Dataset, build func(v *seq.View) (W, error)) (*Shards[W], error) {
	cfg = cfg.normalize()
	s := &Shards[W]{cfg: cfg}
	for _, part := range Partition(ds.Len(), cfg.Partitions) {
		if part.IsEmpty() {
			continue
		}
		ids := part.ToArray()
		idx := make([]int, len(ids))
		for k, id := range ids {
			idx[k] = int(id)
		}
		s.views = append(s.views, seq.Subset(ds, idx))
	}
	s.workers = make([]W, len(s.views))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Threads)
	for i, v := range s.views {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, err := build(v)
			if err != nil {
				return err
			}
			s.workers[i] = w
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s, nil
}

// CloneShards clones proto once per partition of ds and points each clone
// at its partition. proto itself is left untouched.
func CloneShards[F finder.Finder](ctx context.Context, cfg Config, proto F, ds seq.Dataset) (*Shards[F], error) {
	return NewShards(ctx, cfg, ds, func(v *seq.View) (F, error) {
		w := proto.Clone().(F)
		if err := w.ResetDataset(v); err != nil {
			var zero F
			return zero, err
		}
		return w, nil
	})
}

// Derive builds a worker from each worker of s, sharing its partitions.
func Derive[W, V any](s *Shards[W], fn func(W) V) *Shards[V] {
	out := &Shards[V]{cfg: s.cfg, views: s.views, workers: make([]V, len(s.workers))}
	for i, w := range s.workers {
		out.workers[i] = fn(w)
	}
	return out
}

// Len returns the number of non-empty partitions.
func (s *Shards[W]) Len() int { return len(s.workers) }

func (s *Shards[W]) Worker(i int) W       { return s.workers[i] }
func (s *Shards[W]) View(i int) *seq.View { return s.views[i] }

// each calls fn once per shard, at most cfg.Threads at a time. The context
// is checked before each shard starts. The first error wins.
func (s *Shards[W]) each(ctx context.Context, log *logging.Logger, fn func(v *seq.View, w W, log *logging.Logger) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Threads)
	for i, v := range s.views {
		if gctx.Err() != nil {
			break
		}
		w := s.workers[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(v, w, log.WithPartition(i, v.Len()))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ScoresAbove runs ScoresAbove on every shard and merges the matches under
// global sequence indices. Repeated queries hit each worker's match cache.
func ScoresAbove[F finder.Finder](ctx context.Context, sh *Shards[F], probe *seq.Sequence, threshold float64, capacity int, bestEffort bool, strand finder.Strand, log *logging.Logger) (*finder.Matches, error) {
	log = logging.OrNoop(log).WithProbe(probe)
	start := time.Now()

	out := topk.New[finder.Match](capacity)
	var mu sync.Mutex
	err := sh.each(ctx, log, func(v *seq.View, w F, plog *logging.Logger) error {
		t0 := time.Now()
		res, err := w.ScoresAbove(probe, threshold, capacity, bestEffort, strand)
		if err != nil {
			return err
		}
		plog.LogScan(ctx, strand, res.Len(), time.Since(t0), nil)

		local := topk.NewUnbounded[finder.Match](res.Len())
		for i := 0; i < res.Len(); i++ {
			e := res.At(i)
			m := e.Value
			m.SequenceIndex = v.Global(m.SequenceIndex)
			local.Insert(e.Score, m)
		}
		mu.Lock()
		out.InsertAll(local)
		mu.Unlock()
		return nil
	})
	if err != nil {
		log.LogScan(ctx, strand, 0, time.Since(start), err)
		return nil, err
	}
	log.LogScan(ctx, strand, out.Len(), time.Since(start), nil)
	return out, nil
}

// FindPairs runs FindPairs on every shard. Pairs never span sequences, so
// partitioning by sequence loses none.
func FindPairs(ctx context.Context, sh *Shards[*engine.Engine], q engine.Query, log *logging.Logger) (*engine.Pairs, error) {
	log = logging.OrNoop(log)
	start := time.Now()

	out := topk.New[engine.Pair](q.Limit)
	var mu sync.Mutex
	err := sh.each(ctx, log, func(v *seq.View, e *engine.Engine, plog *logging.Logger) error {
		t0 := time.Now()
		res, err := e.FindPairs(q)
		if err != nil {
			return err
		}
		plog.LogPairs(ctx, res.Len(), time.Since(t0), nil)

		local := topk.NewUnbounded[engine.Pair](res.Len())
		for i := 0; i < res.Len(); i++ {
			en := res.At(i)
			p := en.Value
			p.A.SequenceIndex = v.Global(p.A.SequenceIndex)
			p.B.SequenceIndex = v.Global(p.B.SequenceIndex)
			local.Insert(en.Score, p)
		}
		mu.Lock()
		out.InsertAll(local)
		mu.Unlock()
		return nil
	})
	log.LogPairs(ctx, out.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}
