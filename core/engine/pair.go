// core/engine/pair.go
package engine

import (
	"fmt"

	"talen-core/finder"
	"talen-core/seq"
	"talen-core/topk"
)

// Category records which termini of the two arms face the spacer.
type Category uint8

const (
	CC Category = iota // C-terminus / C-terminus (classic TALEN)
	CN
	NC
	NN
)

func (c Category) String() string {
	switch c {
	case CC:
		return "C/C"
	case CN:
		return "C/N"
	case NC:
		return "N/C"
	case NN:
		return "N/N"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// geometry places the second arm relative to the first. Positions are
// forward-strand window starts for both arms.
type geometry struct {
	cat           Category
	first, second finder.Strand
	upstream      bool // second arm lies left of the first
}

var geometries = [...]geometry{
	CC: {cat: CC, first: finder.Forward, second: finder.Reverse},
	CN: {cat: CN, first: finder.Reverse, second: finder.Reverse},
	NC: {cat: NC, first: finder.Forward, second: finder.Forward},
	NN: {cat: NN, first: finder.Forward, second: finder.Reverse, upstream: true},
}

// window returns the range of second-arm window starts whose spacer to a
// first arm at pos lies in [minDist, maxDist].
func (g geometry) window(pos, wFirst, wSecond, minDist, maxDist int) (lo, hi int) {
	if g.upstream {
		return pos - wSecond - maxDist, pos - wSecond - minDist
	}
	return pos + wFirst + minDist, pos + wFirst + maxDist
}

// Pair is one paired binding site. A is the first arm scanned, B the arm
// found in its spacer window.
type Pair struct {
	A, B           finder.Match
	ProbeA, ProbeB *seq.Sequence
	SiteA, SiteB   int // site lengths
	ScoreA, ScoreB float64
	Category       Category
}

// Spacer is the number of subject positions between the two sites.
func (p Pair) Spacer() int {
	if geometries[p.Category].upstream {
		return p.A.Position - (p.B.Position + p.SiteB)
	}
	return p.B.Position - (p.A.Position + p.SiteA)
}

func (p Pair) String() string {
	return fmt.Sprintf("%s %v+%v spacer=%d", p.Category, p.A, p.B, p.Spacer())
}

// Pairs is the result container of FindPairs.
type Pairs = topk.List[Pair]

// Query describes one paired search.
type Query struct {
	ProbeA, ProbeB *seq.Sequence

	// TotalThreshold bounds the combined score; the single thresholds bound
	// each arm. With RelativeScores all three are per site position.
	TotalThreshold   float64
	SingleThresholdA float64
	SingleThresholdB float64
	RelativeScores   bool

	MinDist, MaxDist int // spacer length bounds, inclusive
	Limit            int // >0 keeps the best Limit pairs; <=0 keeps all

	NTermA, NTermB  bool // arm binds with its N-terminus towards the spacer
	OnlyHeterodimer bool
}

// job is one (geometry, first probe, second probe) combination.
type job struct {
	geom          geometry
	first, second *seq.Sequence
	thrFirst      float64
	thrSecond     float64
}

// jobs expands the terminus flags into the geometries to run.
func (q Query) jobs() []job {
	a, b := q.ProbeA, q.ProbeB
	ta, tb := q.SingleThresholdA, q.SingleThresholdB
	mk := func(c Category, first, second *seq.Sequence) job {
		j := job{geom: geometries[c], first: first, second: second, thrFirst: ta, thrSecond: ta}
		if first == b {
			j.thrFirst = tb
		}
		if second == b {
			j.thrSecond = tb
		}
		return j
	}

	var hetero, homo []job
	switch {
	case q.NTermA && q.NTermB:
		hetero = []job{mk(NN, a, b), mk(NN, b, a)}
		homo = []job{mk(NN, a, a), mk(NN, b, b)}
	case q.NTermA:
		hetero = []job{mk(NC, b, a), mk(CN, a, b)}
		homo = []job{mk(NN, a, a), mk(CC, b, b)}
	case q.NTermB:
		hetero = []job{mk(NC, a, b), mk(CN, b, a)}
		homo = []job{mk(NN, b, b), mk(CC, a, a)}
	default:
		hetero = []job{mk(CC, a, b), mk(CC, b, a)}
		homo = []job{mk(CC, a, a), mk(CC, b, b)}
	}
	if q.OnlyHeterodimer {
		return hetero
	}
	return append(hetero, homo...)
}
