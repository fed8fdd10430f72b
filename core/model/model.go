// core/model/model.go
// Scoring models for probe/subject binding affinity.
//
// A model is built mutable and then locked; finders only ever see the locked
// Scorer, which is read-only and safe for concurrent use. Workers that want
// private state take a Clone.
//
// This package has no finder/engine deps; both import it cleanly.

package model

import (
	"errors"

	"talen-core/seq"
)

// ErrLocked is returned by builder mutators after Lock.
var ErrLocked = errors.New("model: locked")

// Scorer is a locked scoring model.
//
// Site positions are numbered 0..SiteLength(probe)-1 relative to a window
// start in the subject. The score of a window is the sum of one term per
// site position; the term at position p depends on subject symbols
// [p-Order(), p] of the window (clipped at the window start).
type Scorer interface {
	// Order is the number of preceding subject positions a term depends on.
	Order() int

	// AlphabetSize is the size of the subject alphabet.
	AlphabetSize() int

	// ProbeAlphabet is the alphabet probes must be written in.
	ProbeAlphabet() *seq.Alphabet

	// SiteLength is the number of subject positions covered by probe.
	SiteLength(probe *seq.Sequence) int

	// PartialScore returns the exact log-score of site positions
	// [probeStart, probeStart+length) for the window of subject starting at
	// windowStart.
	PartialScore(probe *seq.Sequence, subject []byte, windowStart, probeStart, length int) float64

	// BestPossibleScore writes an upper bound for each site position into
	// perPos (may be nil; entries past the site are zeroed) and returns
	// their sum.
	BestPossibleScore(probe *seq.Sequence, perPos []float64) float64

	// Clone returns an independent copy.
	Clone() Scorer
}

// WindowScore is the full score of the window at start.
func WindowScore(s Scorer, probe *seq.Sequence, subject []byte, start int) float64 {
	return s.PartialScore(probe, subject, start, 0, s.SiteLength(probe))
}
