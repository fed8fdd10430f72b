// core/finder/infix_test.go
package finder

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talen-core/model"
	"talen-core/seq"
	"talen-core/topk"
)

func TestRollerMatchesPackedIndex(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s := make([]byte, 300)
	for i := range s {
		s[i] = byte(rng.Intn(4))
	}
	for _, l := range []int{1, 2, 5, 8} {
		r := newRoller(s, 0, l)
		for at := 0; ; at++ {
			want := 0
			for i := 0; i < l; i++ {
				want += int(s[at+i]) * pow4(i)
			}
			require.Equal(t, want, r.idx, "length %d at %d", l, at)
			if at+l == len(s) {
				break
			}
			r.next(s[at+l])
		}
	}
}

func TestUnpackInvertsPack(t *testing.T) {
	buf := make([]byte, 5)
	for idx := 0; idx < pow4(5); idx += 37 {
		unpack(idx, buf)
		assert.Equal(t, idx, pack(buf))
	}
}

func TestInfixTablesLayout(t *testing.T) {
	tests := []struct {
		name                          string
		order, rvds, infix            int
		tailOff, tailLen, middleStart int
	}{
		{"no middle", 2, 11, 8, 6, 6, 12},
		{"middle", 1, 10, 5, 4, 5, 9},
		{"order 0", 0, 7, 3, 3, 3, 6},
	}
	probeText := "NI-HD-NG-NN-NI-NI-HD-NG-NN-HD-NG"
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := randomTALE(t, tc.order, 1)
			probe := seq.MustParse(rvds, probeText[:3*tc.rvds-1])
			x, err := NewInfixScanner(seq.Sequences{}, m, InfixConfig{InfixLength: tc.infix})
			require.NoError(t, err)
			tab, err := x.Tables(probe, -20)
			require.NoError(t, err)

			assert.Equal(t, tc.rvds+1, tab.SiteLength)
			assert.Equal(t, tc.infix, tab.HeadLength)
			assert.Equal(t, tc.tailOff, tab.TailOffset)
			assert.Equal(t, tc.tailLen, tab.TailLength)
			assert.Equal(t, tc.middleStart, tab.MiddleStart)
			assert.Len(t, tab.HeadScores, pow4(tc.infix))
			assert.Len(t, tab.TailScores, pow4(tc.tailLen))

			scs := make([]float64, tab.SiteLength)
			m.BestPossibleScore(probe, scs)
			assert.Equal(t, sum(scs[tab.MiddleStart:]), tab.ResidualBound)
		})
	}
}

func TestInfixTablesAdmissibility(t *testing.T) {
	m := randomTALE(t, 1, 8)
	probe := seq.MustParse(rvds, "NN-HD-NI-NG-NG-HD-NI")
	x, err := NewInfixScanner(seq.Sequences{}, m, InfixConfig{InfixLength: 3})
	require.NoError(t, err)

	scs := make([]float64, m.SiteLength(probe))
	m.BestPossibleScore(probe, scs)
	thr := sum(scs) - 2

	tab, err := x.Tables(probe, thr)
	require.NoError(t, err)
	restTail := sum(scs[tab.HeadLength:])
	for idx, sc := range tab.HeadScores {
		assert.Equal(t, sc+restTail >= thr, tab.HeadAdmissible.Test(uint(idx)))
	}
	assert.NotZero(t, tab.HeadAdmissible.Count())
	assert.Less(t, tab.HeadAdmissible.Count(), uint(len(tab.HeadScores)))
}

func TestTablesCacheIsBounded(t *testing.T) {
	probe := seq.MustParse(seq.DNA, "ACGTACGT")
	x, err := NewInfixScanner(seq.Sequences{}, model.ExactMatch{}, InfixConfig{InfixLength: 3})
	require.NoError(t, err)

	first, err := x.Tables(probe, 0)
	require.NoError(t, err)
	again, err := x.Tables(probe, 0)
	require.NoError(t, err)
	assert.Same(t, first, again)

	for i := 1; i <= 20; i++ {
		_, err := x.Tables(probe, float64(-i))
		require.NoError(t, err)
		assert.LessOrEqual(t, len(x.tables), maxCachedTables+1)
	}
}

func TestScanWindowsClampsAndTranslates(t *testing.T) {
	ds := e2eDataset(t)
	probe := seq.MustParse(seq.DNA, "ACGT")
	x, err := NewInfixScanner(ds, model.ExactMatch{}, InfixConfig{InfixLength: 2})
	require.NoError(t, err)
	tab, err := x.Tables(probe, 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		strand Strand
		lo, hi int
		want   [][2]int
	}{
		{"forward middle", Forward, 3, 9, [][2]int{{0, 4}, {0, 8}}},
		{"forward clamped", Forward, -5, 100, [][2]int{{0, 0}, {0, 4}, {0, 8}, {0, 12}}},
		{"reverse middle", Reverse, 1, 8, [][2]int{{0, 4}, {0, 8}}},
		{"empty", Forward, 9, 3, nil},
		{"past the end", Reverse, 13, 20, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := topk.NewUnbounded[Match](4)
			require.NoError(t, x.ScanWindows(tab, probe, 0, tc.strand, tc.lo, tc.hi, 0, out))
			assert.Equal(t, tc.want, positions(out))
		})
	}
}
