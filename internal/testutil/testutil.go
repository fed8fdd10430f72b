package testutil

import (
	"math/rand"

	"talen-core/finder"
	"talen-core/model"
	"talen-core/seq"
)

// RVDs is a four-token repeat alphabet.
var RVDs = mustAlphabet(seq.NewAlphabet("RVD", "NI", "HD", "NG", "NN"))

func mustAlphabet(a *seq.Alphabet, err error) *seq.Alphabet {
	if err != nil {
		panic(err)
	}
	return a
}

// RandomTALE returns a locked model of the given order. Each RVD prefers
// one base (score 0); the others score -0.25..-2.25.
func RandomTALE(seed int64, order int) *model.TALE {
	rng := rand.New(rand.NewSource(seed))
	b, err := model.NewTALE(RVDs, order)
	if err != nil {
		panic(err)
	}
	must(b.SetFirst([4]float64{-1, -0.5, -1.5, -0.25}))
	for k, pow := 0, 1; k <= order; k, pow = k+1, pow*4 {
		for r := 0; r < RVDs.Size(); r++ {
			for ctx := 0; ctx < pow; ctx++ {
				var logs [4]float64
				for i := range logs {
					logs[i] = -0.25 * float64(1+rng.Intn(9))
				}
				logs[r] = 0
				must(b.SetSpecificity(byte(r), k, ctx, logs))
			}
		}
	}
	m, err := b.Lock()
	must(err)
	return m
}

// RandomDataset returns n random DNA sequences of the given length.
func RandomDataset(seed int64, n, length int) seq.Sequences {
	rng := rand.New(rand.NewSource(seed))
	ds := make(seq.Sequences, n)
	for i := range ds {
		codes := make([]byte, length)
		for j := range codes {
			codes[j] = byte(rng.Intn(4))
		}
		s, err := seq.New(seq.DNA, codes)
		must(err)
		ds[i] = s
	}
	return ds
}

// ExactMatches scores every window on strand and keeps those >= threshold.
func ExactMatches(ds seq.Dataset, m model.Scorer, probe *seq.Sequence, threshold float64, strand finder.Strand) map[finder.Match]float64 {
	w := m.SiteLength(probe)
	out := make(map[finder.Match]float64)
	for i := 0; i < ds.Len(); i++ {
		s := ds.At(i)
		n := s.Len()
		sym := s.Symbols()
		if strand == finder.Reverse {
			rc, err := s.ReverseComplement()
			must(err)
			sym = rc.Symbols()
		}
		for at := 0; at+w <= n; at++ {
			sc := model.WindowScore(m, probe, sym, at)
			if sc < threshold {
				continue
			}
			pos := at
			if strand == finder.Reverse {
				pos = n - at - w
			}
			out[finder.Match{SequenceIndex: i, Position: pos, Strand: strand}] = sc
		}
	}
	return out
}

// AsMap flattens a result list.
func AsMap(l *finder.Matches) map[finder.Match]float64 {
	out := make(map[finder.Match]float64, l.Len())
	for i := 0; i < l.Len(); i++ {
		e := l.At(i)
		out[e.Value] = e.Score
	}
	return out
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
