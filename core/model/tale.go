// core/model/tale.go
// RVD-dependent Markov model of TALE target sites.
//
// Site position 0 (the T0 before the repeats) has its own distribution.
// Position i>=1 is bound by repeat i-1: its term is a conditional log
// probability table selected by the RVD, conditioned on up to
// min(i-1, order) preceding subject symbols (position 0 never serves as
// context). A probe of P RVDs therefore covers P+1 subject positions.

package model

import (
	"errors"
	"fmt"
	"math"

	"talen-core/seq"
)

const nucs = 4

// TALEBuilder is the mutable form of a TALE model. Values are log-scores;
// every table starts uniform (ln 1/4).
type TALEBuilder struct {
	t      *TALE
	locked bool
}

// TALE is the locked model.
type TALE struct {
	rvds  *seq.Alphabet
	order int
	first [nucs]float64
	// cond[k] holds, for context length k, rvd x 4^k contexts x 4 symbols.
	cond [][]float64
	pows []int
}

var _ Scorer = (*TALE)(nil)

// NewTALE creates a builder over the RVD alphabet with the given order.
func NewTALE(rvds *seq.Alphabet, order int) (*TALEBuilder, error) {
	if rvds == nil {
		return nil, errors.New("model: nil RVD alphabet")
	}
	if order < 0 || order > 6 {
		return nil, fmt.Errorf("model: order %d out of range [0,6]", order)
	}
	t := &TALE{
		rvds:  rvds,
		order: order,
		cond:  make([][]float64, order+1),
		pows:  make([]int, order+2),
	}
	t.pows[0] = 1
	for i := 1; i < len(t.pows); i++ {
		t.pows[i] = t.pows[i-1] * nucs
	}
	uni := math.Log(1.0 / nucs)
	for i := range t.first {
		t.first[i] = uni
	}
	for k := 0; k <= order; k++ {
		tab := make([]float64, rvds.Size()*t.pows[k]*nucs)
		for i := range tab {
			tab[i] = uni
		}
		t.cond[k] = tab
	}
	return &TALEBuilder{t: t}, nil
}

// SetFirst sets the position-0 log-scores.
func (b *TALEBuilder) SetFirst(logs [nucs]float64) error {
	if b.locked {
		return ErrLocked
	}
	b.t.first = logs
	return nil
}

// SetSpecificity sets the log-scores of rvd for context length k and the
// packed context ctx (sum of s[j]*4^j over the k preceding symbols, oldest
// first).
func (b *TALEBuilder) SetSpecificity(rvd byte, k, ctx int, logs [nucs]float64) error {
	if b.locked {
		return ErrLocked
	}
	if int(rvd) >= b.t.rvds.Size() {
		return fmt.Errorf("model: rvd code %d out of range", rvd)
	}
	if k < 0 || k > b.t.order {
		return fmt.Errorf("model: context length %d out of range [0,%d]", k, b.t.order)
	}
	if ctx < 0 || ctx >= b.t.pows[k] {
		return fmt.Errorf("model: context %d out of range for length %d", ctx, k)
	}
	off := b.t.cell(k, int(rvd), ctx)
	copy(b.t.cond[k][off:off+nucs], logs[:])
	return nil
}

// SetUniformSpecificity sets the same log-scores of rvd for every context.
func (b *TALEBuilder) SetUniformSpecificity(rvd byte, logs [nucs]float64) error {
	for k := 0; k <= b.t.order; k++ {
		for ctx := 0; ctx < b.t.pows[k]; ctx++ {
			if err := b.SetSpecificity(rvd, k, ctx, logs); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lock freezes the builder and returns the read-only model.
func (b *TALEBuilder) Lock() (*TALE, error) {
	b.locked = true
	return b.t.clone(), nil
}

func (t *TALE) cell(k, rvd, ctx int) int {
	return ((rvd*t.pows[k])+ctx)*nucs
}

func (t *TALE) Order() int                         { return t.order }
func (t *TALE) AlphabetSize() int                  { return nucs }
func (t *TALE) ProbeAlphabet() *seq.Alphabet       { return t.rvds }
func (t *TALE) SiteLength(probe *seq.Sequence) int { return probe.Len() + 1 }
func (t *TALE) Clone() Scorer                      { return t.clone() }

func (t *TALE) clone() *TALE {
	c := &TALE{rvds: t.rvds, order: t.order, first: t.first, pows: append([]int(nil), t.pows...)}
	c.cond = make([][]float64, len(t.cond))
	for k := range t.cond {
		c.cond[k] = append([]float64(nil), t.cond[k]...)
	}
	return c
}

func (t *TALE) PartialScore(probe *seq.Sequence, subject []byte, windowStart, probeStart, length int) float64 {
	rv := probe.Symbols()
	sc := 0.0
	for p := probeStart; p < probeStart+length; p++ {
		at := windowStart + p
		if p == 0 {
			sc += t.first[subject[at]]
			continue
		}
		k := p - 1
		if k > t.order {
			k = t.order
		}
		ctx := 0
		for j := 0; j < k; j++ {
			ctx += int(subject[at-k+j]) * t.pows[j]
		}
		sc += t.cond[k][t.cell(k, int(rv[p-1]), ctx)+int(subject[at])]
	}
	return sc
}

func (t *TALE) BestPossibleScore(probe *seq.Sequence, perPos []float64) float64 {
	w := t.SiteLength(probe)
	rv := probe.Symbols()
	sum := 0.0
	for p := 0; p < w; p++ {
		var best float64
		if p == 0 {
			best = maxOf(t.first[:])
		} else {
			k := p - 1
			if k > t.order {
				k = t.order
			}
			off := t.cell(k, int(rv[p-1]), 0)
			best = maxOf(t.cond[k][off : off+t.pows[k]*nucs])
		}
		sum += best
		if p < len(perPos) {
			perPos[p] = best
		}
	}
	for p := w; p < len(perPos); p++ {
		perPos[p] = 0
	}
	return sum
}

func maxOf(v []float64) float64 {
	m := math.Inf(-1)
	for _, x := range v {
		if x > m {
			m = x
		}
	}
	return m
}
