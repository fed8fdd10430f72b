// core/finder/infix.go
package finder

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	"talen-core/model"
	"talen-core/seq"
	"talen-core/topk"
)

const (
	// DefaultInfixLength is used when InfixConfig.InfixLength is 0 and the
	// site is long enough.
	DefaultInfixLength = 8
	// MaxInfixLength bounds the 4^L table size.
	MaxInfixLength = 12

	maxCachedTables = 6
)

// InfixConfig configures an InfixScanner.
type InfixConfig struct {
	// InfixLength is the head infix length L. 0 => min(8, W-1) per probe.
	InfixLength int
}

// InfixTables holds the per-(probe, threshold) lookup tables.
//
// The head infix covers site positions [0, HeadLength). The tail infix
// covers [TailOffset, TailOffset+TailLength) and overlaps the head by the
// model order; its scores cover [HeadLength, MiddleStart). The middle
// [MiddleStart, SiteLength) is scored exactly during the scan and bounded by
// ResidualBound. Table indices pack an infix as sum(s[i] * 4^i).
type InfixTables struct {
	SiteLength  int
	HeadLength  int
	TailOffset  int
	TailLength  int
	MiddleStart int

	HeadScores     []float64
	HeadAdmissible *bitset.BitSet
	TailScores     []float64
	TailAdmissible *bitset.BitSet
	ResidualBound  float64
}

type tableKey struct {
	probe     *seq.Sequence
	threshold float64
}

// InfixScanner finds binding sites by a linear scan driven by head/tail
// infix lookup tables.
type InfixScanner struct {
	ds     seq.Dataset
	scorer model.Scorer
	cfg    InfixConfig
	cache  *matchCache

	tmu    sync.Mutex
	tables map[tableKey]*InfixTables
}

// NewInfixScanner creates a scanner over ds. The model must be locked.
func NewInfixScanner(ds seq.Dataset, s model.Scorer, c InfixConfig) (*InfixScanner, error) {
	if err := checkAlphabet("infix", s); err != nil {
		return nil, err
	}
	if err := checkDataset("infix", ds); err != nil {
		return nil, err
	}
	if c.InfixLength < 0 || c.InfixLength > MaxInfixLength {
		return nil, precondition("infix", ErrInfixLength, "length %d not in [1,%d]", c.InfixLength, MaxInfixLength)
	}
	if c.InfixLength > 0 && c.InfixLength <= s.Order() {
		return nil, precondition("infix", ErrInfixLength, "length %d must exceed model order %d", c.InfixLength, s.Order())
	}
	return &InfixScanner{
		ds:     ds,
		scorer: s,
		cfg:    c,
		cache:  newMatchCache(),
		tables: make(map[tableKey]*InfixTables),
	}, nil
}

func (x *InfixScanner) Dataset() seq.Dataset { return x.ds }
func (x *InfixScanner) Scorer() model.Scorer { return x.scorer }
func (x *InfixScanner) Config() InfixConfig  { return x.cfg }

// ResetDataset switches the dataset and drops cached matches. Tables only
// depend on the probe and stay valid.
func (x *InfixScanner) ResetDataset(ds seq.Dataset) error {
	if err := checkDataset("infix", ds); err != nil {
		return err
	}
	x.ds = ds
	x.cache.reset()
	return nil
}

// Clone returns a scanner with its own model copy and caches.
func (x *InfixScanner) Clone() Finder { return x.clone() }

func (x *InfixScanner) clone() *InfixScanner {
	x.tmu.Lock()
	tabs := make(map[tableKey]*InfixTables, len(x.tables))
	for k, v := range x.tables {
		tabs[k] = v
	}
	x.tmu.Unlock()
	return &InfixScanner{
		ds:     x.ds,
		scorer: x.scorer.Clone(),
		cfg:    x.cfg,
		cache:  x.cache.clone(),
		tables: tabs,
	}
}

// infixLengthFor picks L for a site of length w.
func infixLengthFor(w, cfg int) int {
	if cfg > 0 {
		return cfg
	}
	if w-1 < DefaultInfixLength {
		return w - 1
	}
	return DefaultInfixLength
}

// Tables returns the lookup tables for (probe, threshold), building them on
// first use. The table cache is cleared wholesale once it grows past a
// handful of entries.
func (x *InfixScanner) Tables(probe *seq.Sequence, threshold float64) (*InfixTables, error) {
	k := tableKey{probe: probe, threshold: threshold}
	x.tmu.Lock()
	t, ok := x.tables[k]
	x.tmu.Unlock()
	if ok {
		return t, nil
	}

	t, err := x.prepare(probe, threshold)
	if err != nil {
		return nil, err
	}

	x.tmu.Lock()
	if len(x.tables) > maxCachedTables {
		clear(x.tables)
	}
	x.tables[k] = t
	x.tmu.Unlock()
	return t, nil
}

func (x *InfixScanner) prepare(probe *seq.Sequence, threshold float64) (*InfixTables, error) {
	if probe.Alphabet() != x.scorer.ProbeAlphabet() {
		return nil, precondition("infix", ErrProbeAlphabet, "%s probe for %s model", probe.Alphabet(), x.scorer.ProbeAlphabet())
	}
	order := x.scorer.Order()
	w := x.scorer.SiteLength(probe)
	l := infixLengthFor(w, x.cfg.InfixLength)
	if l < 1 || w <= l {
		return nil, precondition("infix", ErrProbeTooShort, "site length %d, infix length %d", w, l)
	}
	if l <= order {
		return nil, precondition("infix", ErrInfixLength, "length %d must exceed model order %d", l, order)
	}
	l2 := min(l, w-l+order)

	t := &InfixTables{
		SiteLength:  w,
		HeadLength:  l,
		TailOffset:  l - order,
		TailLength:  l2,
		MiddleStart: l + l2 - order,
	}

	scs := make([]float64, w)
	x.scorer.BestPossibleScore(probe, scs)
	restHead := sum(scs[:l])
	restTail := sum(scs[l:])
	t.ResidualBound = sum(scs[t.MiddleStart:])

	// head
	t.HeadScores = make([]float64, pow4(l))
	t.HeadAdmissible = bitset.New(uint(len(t.HeadScores)))
	buf := make([]byte, l)
	for idx := range t.HeadScores {
		unpack(idx, buf)
		sc := x.scorer.PartialScore(probe, buf, 0, 0, l)
		t.HeadScores[idx] = sc
		if sc+restTail >= threshold {
			t.HeadAdmissible.Set(uint(idx))
		}
	}

	// tail: positions before TailOffset are never read by the model
	t.TailScores = make([]float64, pow4(l2))
	t.TailAdmissible = bitset.New(uint(len(t.TailScores)))
	buf = make([]byte, t.MiddleStart)
	for idx := range t.TailScores {
		unpack(idx, buf[t.TailOffset:])
		sc := x.scorer.PartialScore(probe, buf, 0, l, l2-order)
		t.TailScores[idx] = sc
		if sc+restHead+t.ResidualBound >= threshold {
			t.TailAdmissible.Set(uint(idx))
		}
	}
	return t, nil
}

// ScoresAbove scans every subject of the dataset. See Finder.
func (x *InfixScanner) ScoresAbove(probe *seq.Sequence, threshold float64, capacity int, bestEffort bool, strand Strand) (*Matches, error) {
	key := cacheKey{probe: probe, threshold: threshold, capacity: capacity, bestEffort: bestEffort}
	if l, ok := x.cache.lookup(key, strand); ok {
		return l, nil
	}
	t, err := x.Tables(probe, threshold)
	if err != nil {
		return nil, err
	}
	out := topk.New[Match](capacity)
	for i := 0; i < x.ds.Len(); i++ {
		s, err := strandOf(x.ds.At(i), strand)
		if err != nil {
			return nil, err
		}
		n := s.Len()
		if n < t.SiteLength {
			continue
		}
		if x.fill(t, probe, s.Symbols(), i, strand, 0, n-t.SiteLength, threshold, bestEffort, out) {
			break
		}
	}
	x.cache.store(key, out, strand)
	return out, nil
}

// ScanWindows scans forward-coordinate window starts [lo, hi] of one
// subject into out, keeping the best entries. The range is clamped to the
// subject; an empty range is a no-op.
func (x *InfixScanner) ScanWindows(t *InfixTables, probe *seq.Sequence, seqIdx int, strand Strand, lo, hi int, threshold float64, out *Matches) error {
	s, err := strandOf(x.ds.At(seqIdx), strand)
	if err != nil {
		return err
	}
	n := s.Len()
	lo = max(lo, 0)
	hi = min(hi, n-t.SiteLength)
	if lo > hi {
		return nil
	}
	if strand == Reverse {
		lo, hi = n-hi-t.SiteLength, n-lo-t.SiteLength
	}
	x.fill(t, probe, s.Symbols(), seqIdx, strand, lo, hi, threshold, true, out)
	return nil
}

// fill scans window starts [lo, hi] of subj (already on the requested
// strand). It reports whether a fixed list filled and the caller should stop.
func (x *InfixScanner) fill(t *InfixTables, probe *seq.Sequence, subj []byte, seqIdx int, strand Strand, lo, hi int, threshold float64, bestEffort bool, out *Matches) bool {
	n := len(subj)
	w := t.SiteLength
	mid := w - t.MiddleStart
	cut := threshold - t.ResidualBound

	head := newRoller(subj, lo, t.HeadLength)
	tail := newRoller(subj, lo+t.TailOffset, t.TailLength)
	for at := lo; ; at++ {
		if t.HeadAdmissible.Test(uint(head.idx)) && t.TailAdmissible.Test(uint(tail.idx)) {
			sc := t.HeadScores[head.idx] + t.TailScores[tail.idx]
			if sc >= cut {
				if mid > 0 {
					sc += x.scorer.PartialScore(probe, subj, at, t.MiddleStart, mid)
				}
				if sc >= threshold && out.CheckInsert(sc) {
					pos := at
					if strand == Reverse {
						pos = n - at - w
					}
					out.Insert(sc, Match{SequenceIndex: seqIdx, Position: pos, Strand: strand})
					if !bestEffort && out.Full() {
						return true
					}
				}
			}
		}
		if at == hi {
			return false
		}
		head.next(subj[at+t.HeadLength])
		tail.next(subj[at+t.TailOffset+t.TailLength])
	}
}

func strandOf(s *seq.Sequence, strand Strand) (*seq.Sequence, error) {
	if strand == Reverse {
		return s.ReverseComplement()
	}
	return s, nil
}

// ---- packed infix indices --------------------------------------------------

// roller keeps sum(s[at+i] * 4^i) for i < length while at advances by one.
type roller struct {
	idx int
	top int // 4^(length-1)
}

func newRoller(s []byte, at, length int) roller {
	return roller{idx: pack(s[at : at+length]), top: pow4(length - 1)}
}

func (r *roller) next(in byte) { r.idx = r.idx>>2 + int(in)*r.top }

func pack(s []byte) int {
	idx := 0
	for i := len(s) - 1; i >= 0; i-- {
		idx = idx<<2 | int(s[i])
	}
	return idx
}

func unpack(idx int, out []byte) {
	for i := range out {
		out[i] = byte(idx & 3)
		idx >>= 2
	}
}

func pow4(n int) int { return 1 << (2 * n) }

func sum(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x
	}
	return s
}
