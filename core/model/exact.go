// core/model/exact.go
package model

import (
	"math"

	"talen-core/seq"
)

// ExactMatch scores 0 for a window identical to the probe and -Inf
// otherwise. Probes are DNA; the site is as long as the probe.
type ExactMatch struct{}

var _ Scorer = ExactMatch{}

func (ExactMatch) Order() int                         { return 0 }
func (ExactMatch) AlphabetSize() int                  { return seq.DNA.Size() }
func (ExactMatch) ProbeAlphabet() *seq.Alphabet       { return seq.DNA }
func (ExactMatch) SiteLength(probe *seq.Sequence) int { return probe.Len() }
func (m ExactMatch) Clone() Scorer                    { return m }

func (ExactMatch) PartialScore(probe *seq.Sequence, subject []byte, windowStart, probeStart, length int) float64 {
	p := probe.Symbols()
	for k := probeStart; k < probeStart+length; k++ {
		if subject[windowStart+k] != p[k] {
			return math.Inf(-1)
		}
	}
	return 0
}

func (ExactMatch) BestPossibleScore(probe *seq.Sequence, perPos []float64) float64 {
	for i := range perPos {
		perPos[i] = 0
	}
	return 0
}
