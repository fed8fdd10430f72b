// core/engine/engine.go
// Paired binding-site search: two arms on one subject separated by a
// spacer of bounded length, in one of four terminus geometries.
package engine

import (
	"errors"
	"fmt"

	"talen-core/finder"
	"talen-core/topk"
)

// ErrInvalidQuery is returned for queries that name no probes.
var ErrInvalidQuery = errors.New("engine: invalid query")

// Engine runs paired searches on top of an InfixScanner.
type Engine struct {
	x *finder.InfixScanner
}

// New creates an Engine over x.
func New(x *finder.InfixScanner) *Engine { return &Engine{x: x} }

// FindPairs returns the pairs scoring >= q.TotalThreshold whose arms each
// pass their single threshold. Call Descending on the result for best-first
// order.
func (e *Engine) FindPairs(q Query) (*Pairs, error) {
	if q.ProbeA == nil || q.ProbeB == nil {
		return nil, fmt.Errorf("%w: both probes are required", ErrInvalidQuery)
	}
	out := topk.New[Pair](q.Limit)
	for _, j := range q.jobs() {
		if err := e.run(j, q, out); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ---- per-geometry join ------------------------------------------------------

func (e *Engine) run(j job, q Query, out *Pairs) error {
	s := e.x.Scorer()
	wF := s.SiteLength(j.first)
	wS := s.SiteLength(j.second)
	thrF, thrS := j.thrFirst, j.thrSecond
	if q.RelativeScores {
		thrF *= float64(wF)
		thrS *= float64(wS)
	}

	firsts, err := e.x.ScoresAbove(j.first, thrF, 0, true, j.geom.first)
	if err != nil {
		return err
	}
	if firsts.Len() == 0 || q.MaxDist < q.MinDist {
		return nil
	}
	tabs, err := e.x.Tables(j.second, thrS)
	if err != nil {
		return err
	}

	scratch := topk.NewFixed[finder.Match](q.MaxDist - q.MinDist + wS + 2)
	for i := 0; i < firsts.Len(); i++ {
		ea := firsts.At(i)
		lo, hi := j.geom.window(ea.Value.Position, wF, wS, q.MinDist, q.MaxDist)
		scratch.Clear()
		if err := e.x.ScanWindows(tabs, j.second, ea.Value.SequenceIndex, j.geom.second, lo, hi, thrS, scratch); err != nil {
			return err
		}
		for k := 0; k < scratch.Len(); k++ {
			eb := scratch.At(k)
			sc := ea.Score + eb.Score
			if q.RelativeScores {
				sc = ea.Score/float64(wF) + eb.Score/float64(wS)
			}
			if sc < q.TotalThreshold || !out.CheckInsert(sc) {
				continue
			}
			out.Insert(sc, Pair{
				A:        ea.Value,
				B:        eb.Value,
				ProbeA:   j.first,
				ProbeB:   j.second,
				SiteA:    wF,
				SiteB:    wS,
				ScoreA:   ea.Score,
				ScoreB:   eb.Score,
				Category: j.geom.cat,
			})
		}
	}
	return nil
}
