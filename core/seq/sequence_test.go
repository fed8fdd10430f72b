// core/seq/sequence_test.go
package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseComplementSimple(t *testing.T) {
	s := MustParse(DNA, "AGTC")
	rc, err := s.ReverseComplement()
	require.NoError(t, err)
	assert.Equal(t, "GACT", rc.String())
}

func TestReverseComplementCached(t *testing.T) {
	s := MustParse(DNA, "ACCGTTA")
	a, err := s.ReverseComplement()
	require.NoError(t, err)
	b, err := s.ReverseComplement()
	require.NoError(t, err)
	assert.Same(t, a, b, "reverse complement not cached")

	back, err := a.ReverseComplement()
	require.NoError(t, err)
	assert.Same(t, s, back, "rc(rc(s)) should be s itself")
}

func TestReverseComplementEmpty(t *testing.T) {
	s := MustParse(DNA, "")
	rc, err := s.ReverseComplement()
	require.NoError(t, err)
	assert.Equal(t, 0, rc.Len())
}

func TestReverseComplementUnsupported(t *testing.T) {
	rvd, err := NewAlphabet("RVD", "NI", "HD", "NG", "NN")
	require.NoError(t, err)
	s := MustParse(rvd, "NI-HD-NG")
	_, err = s.ReverseComplement()
	assert.ErrorIs(t, err, ErrNotComplementable)
}

func TestParse(t *testing.T) {
	rvd, err := NewAlphabet("RVD", "NI", "HD", "NG", "NN", "N*")
	require.NoError(t, err)

	tests := []struct {
		name    string
		alpha   *Alphabet
		in      string
		want    string
		wantErr bool
		errPos  int
	}{
		{name: "dna", alpha: DNA, in: "ACGT", want: "ACGT"},
		{name: "dna lowercase", alpha: DNA, in: "acgt", want: "ACGT"},
		{name: "dna N rejected", alpha: DNA, in: "ACNT", wantErr: true, errPos: 2},
		{name: "rvd", alpha: rvd, in: "NI-HD-N*", want: "NI-HD-N*"},
		{name: "rvd lowercase", alpha: rvd, in: "ni-hd", want: "NI-HD"},
		{name: "rvd unknown", alpha: rvd, in: "NI-XX", wantErr: true, errPos: 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.alpha, tc.in)
			if tc.wantErr {
				var se *SymbolError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, tc.errPos, se.Pos)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestSubSharesStorage(t *testing.T) {
	s := MustParse(DNA, "TTTTACGTAAAA")
	sub := s.Sub(4, 4)
	require.Equal(t, "ACGT", sub.String())
	assert.Same(t, &s.Symbols()[4], &sub.Symbols()[0], "Sub copied storage")
}

func TestSubset(t *testing.T) {
	ds, err := ParseAll(DNA, "AAAA", "CCCC", "GGGG")
	require.NoError(t, err)

	v := Subset(ds, []int{2, 7, 0})
	require.Equal(t, 2, v.Len())
	assert.Equal(t, "GGGG", v.At(0).String())
	assert.Equal(t, 2, v.Global(0))
	assert.Equal(t, 0, v.Global(1))
}
