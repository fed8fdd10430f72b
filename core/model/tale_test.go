// core/model/tale_test.go
package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talen-core/seq"
)

var testRVDs = func() *seq.Alphabet {
	a, err := seq.NewAlphabet("RVD", "NI", "HD", "NG", "NN")
	if err != nil {
		panic(err)
	}
	return a
}()

func randomTALE(t *testing.T, order int, rng *rand.Rand) *TALE {
	t.Helper()
	b, err := NewTALE(testRVDs, order)
	require.NoError(t, err)
	require.NoError(t, b.SetFirst([4]float64{-2, -0.5, -2, -0.25}))
	for r := 0; r < testRVDs.Size(); r++ {
		for k := 0; k <= order; k++ {
			for ctx := 0; ctx < int(math.Pow(4, float64(k))); ctx++ {
				var logs [4]float64
				for i := range logs {
					logs[i] = -0.25 * float64(rng.Intn(12))
				}
				require.NoError(t, b.SetSpecificity(byte(r), k, ctx, logs))
			}
		}
	}
	m, err := b.Lock()
	require.NoError(t, err)
	return m
}

func TestTALELockRejectsMutation(t *testing.T) {
	b, err := NewTALE(testRVDs, 1)
	require.NoError(t, err)
	_, err = b.Lock()
	require.NoError(t, err)

	assert.ErrorIs(t, b.SetFirst([4]float64{}), ErrLocked)
	assert.ErrorIs(t, b.SetSpecificity(0, 0, 0, [4]float64{}), ErrLocked)
	assert.ErrorIs(t, b.SetUniformSpecificity(1, [4]float64{}), ErrLocked)
}

func TestTALELockedIsIndependentOfBuilder(t *testing.T) {
	b, err := NewTALE(testRVDs, 0)
	require.NoError(t, err)
	m, err := b.Lock()
	require.NoError(t, err)
	c := m.Clone().(*TALE)
	c.first[0] = 42
	assert.NotEqual(t, 42.0, m.first[0])
}

func TestTALEBuilderValidation(t *testing.T) {
	_, err := NewTALE(testRVDs, -1)
	assert.Error(t, err)
	b, err := NewTALE(testRVDs, 1)
	require.NoError(t, err)
	assert.Error(t, b.SetSpecificity(9, 0, 0, [4]float64{}))
	assert.Error(t, b.SetSpecificity(0, 2, 0, [4]float64{}))
	assert.Error(t, b.SetSpecificity(0, 1, 4, [4]float64{}))
}

func TestTALEPartialScoresAdd(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for order := 0; order <= 2; order++ {
		m := randomTALE(t, order, rng)
		probe := seq.MustParse(testRVDs, "NI-HD-NG-NN-HD-NI")
		w := m.SiteLength(probe)
		require.Equal(t, 7, w)

		subj := make([]byte, 40)
		for i := range subj {
			subj[i] = byte(rng.Intn(4))
		}
		for start := 0; start+w <= len(subj); start++ {
			full := WindowScore(m, probe, subj, start)
			for cut := 0; cut <= w; cut++ {
				parts := m.PartialScore(probe, subj, start, 0, cut) + m.PartialScore(probe, subj, start, cut, w-cut)
				assert.InDelta(t, full, parts, 1e-12, "order %d start %d cut %d", order, start, cut)
			}
		}
	}
}

func TestTALEBestPossibleBoundsEveryWindow(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := randomTALE(t, 2, rng)
	probe := seq.MustParse(testRVDs, "NN-NI-HD-HD-NG")
	w := m.SiteLength(probe)
	per := make([]float64, w+3)
	best := m.BestPossibleScore(probe, per)

	sum := 0.0
	for _, v := range per[:w] {
		sum += v
	}
	assert.InDelta(t, best, sum, 1e-12)
	assert.Equal(t, []float64{0, 0, 0}, per[w:])

	subj := make([]byte, 200)
	for i := range subj {
		subj[i] = byte(rng.Intn(4))
	}
	for start := 0; start+w <= len(subj); start++ {
		for p := 0; p < w; p++ {
			assert.LessOrEqual(t, m.PartialScore(probe, subj, start, p, 1), per[p]+1e-12)
		}
	}
}

func TestExactMatch(t *testing.T) {
	probe := seq.MustParse(seq.DNA, "ACGT")
	subj := seq.MustParse(seq.DNA, "TTACGTT").Symbols()
	m := ExactMatch{}

	assert.Equal(t, 4, m.SiteLength(probe))
	assert.Equal(t, 0.0, WindowScore(m, probe, subj, 2))
	assert.True(t, math.IsInf(WindowScore(m, probe, subj, 1), -1))
	assert.Equal(t, 0.0, m.PartialScore(probe, subj, 2, 1, 3), "suffix of the matching window")
	assert.True(t, math.IsInf(m.PartialScore(probe, subj, 1, 1, 3), -1))
	assert.Equal(t, 0.0, m.BestPossibleScore(probe, make([]float64, 5)))
}
