// core/seq/dataset.go
package seq

// Dataset is an indexable, read-only collection of subject sequences.
type Dataset interface {
	Len() int
	At(i int) *Sequence
}

// Sequences is the plain slice Dataset.
type Sequences []*Sequence

func (s Sequences) Len() int            { return len(s) }
func (s Sequences) At(i int) *Sequence { return s[i] }

// ParseAll parses each text into a sequence over a.
func ParseAll(a *Alphabet, texts ...string) (Sequences, error) {
	out := make(Sequences, 0, len(texts))
	for _, t := range texts {
		s, err := Parse(a, t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// View is a Dataset restricted to a subset of another Dataset's indices.
// Local index i maps to Global(i) in the parent.
type View struct {
	parent Dataset
	idx    []int
}

// Subset returns the view of ds over idx (kept in the given order).
// Out-of-range indices are dropped.
func Subset(ds Dataset, idx []int) *View {
	keep := make([]int, 0, len(idx))
	for _, i := range idx {
		if i >= 0 && i < ds.Len() {
			keep = append(keep, i)
		}
	}
	return &View{parent: ds, idx: keep}
}

func (v *View) Len() int            { return len(v.idx) }
func (v *View) At(i int) *Sequence { return v.parent.At(v.idx[i]) }

// Global maps a local index to the parent's index.
func (v *View) Global(i int) int { return v.idx[i] }
