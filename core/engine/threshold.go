// core/engine/threshold.go
package engine

import (
	"fmt"
	"math"

	"talen-core/finder"
	"talen-core/model"
	"talen-core/seq"
)

// Thresholds are relative (per site position) score cutoffs for a query.
type Thresholds struct {
	Total   float64
	SingleA float64
	SingleB float64
}

// FilterThresholds derives relative cutoffs that keep sites scoring within
// a fraction f (0 < f <= 1) of the best possible score:
//
//	total  = bestA/WA + bestB/WB + 2 ln f
//	single = best/W + ln(0.9 f)
func FilterThresholds(s model.Scorer, probeA, probeB *seq.Sequence, f float64) (Thresholds, error) {
	if !(f > 0 && f <= 1) {
		return Thresholds{}, fmt.Errorf("%w: filter %g not in (0,1]", ErrInvalidQuery, f)
	}
	wA := float64(s.SiteLength(probeA))
	wB := float64(s.SiteLength(probeB))
	bestA := s.BestPossibleScore(probeA, nil) / wA
	bestB := s.BestPossibleScore(probeB, nil) / wB
	return Thresholds{
		Total:   bestA + bestB + 2*math.Log(f),
		SingleA: bestA + math.Log(0.9*f),
		SingleB: bestB + math.Log(0.9*f),
	}, nil
}

// Apply copies the cutoffs into q and switches it to relative scores.
func (t Thresholds) Apply(q *Query) {
	q.TotalThreshold = t.Total
	q.SingleThresholdA = t.SingleA
	q.SingleThresholdB = t.SingleB
	q.RelativeScores = true
}

// DefaultInfixLength is the infix length for scanning both probes: at most
// finder.DefaultInfixLength and shorter than the shorter site.
func DefaultInfixLength(s model.Scorer, probeA, probeB *seq.Sequence) int {
	w := min(s.SiteLength(probeA), s.SiteLength(probeB))
	return min(finder.DefaultInfixLength, w-1)
}

// Filter fractions for FilterThresholds, loosest first.
const (
	FilterLoose        = 0.35
	FilterMediumLoose  = 0.375
	FilterMedium       = 0.4
	FilterMediumStrict = 0.45
	FilterStrict       = 0.5
)

// SpacerRange is an inclusive range of spacer lengths.
type SpacerRange struct {
	Min, Max int
}

// Apply sets the distance bounds of q.
func (r SpacerRange) Apply(q *Query) {
	q.MinDist, q.MaxDist = r.Min, r.Max
}

// Spacer ranges of published TALEN architectures.
var (
	Cermak2011          = SpacerRange{15, 24} // Cermak et al., NAR 2011
	Li2011              = SpacerRange{16, 31} // Li et al., NAR 2011
	Miller2011Plus28    = SpacerRange{12, 20} // Miller et al., NBT 2011, +28
	Miller2011Plus63    = SpacerRange{12, 24} // Miller et al., NBT 2011, +63
	Mussolino2011       = SpacerRange{12, 20} // Mussolino et al., NAR 2011
	Christian2012Plus18 = SpacerRange{13, 17} // Christian et al., PLoS ONE 2012, +18
	Christian2012Full   = SpacerRange{15, 24} // Christian et al., PLoS ONE 2012, full length
	DefaultSpacer       = SpacerRange{12, 24}
)
