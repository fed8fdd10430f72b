// core/topk/topk.go
// Package topk keeps the highest-scoring (score, payload) entries of a
// stream. A fixed list holds at most K entries; an unbounded list keeps
// everything. Order among equal scores is unspecified.
package topk

import (
	"math"
	"sort"
)

// Entry is one scored payload.
type Entry[T any] struct {
	Score float64
	Value T
}

// List is a bounded (or unbounded) top-K container. Not safe for concurrent
// mutation.
type List[T any] struct {
	entries []Entry[T]
	n       int
	limit   int  // >0: fixed capacity; 0: unbounded
	sorted  bool // entries[:n] ascending; only maintained once a fixed list is full
}

// NewFixed returns a list keeping the k best entries (k<1 is treated as 1).
func NewFixed[T any](k int) *List[T] {
	if k < 1 {
		k = 1
	}
	return &List[T]{entries: make([]Entry[T], k), limit: k}
}

// NewUnbounded returns a list that never rejects; hint is the initial size.
func NewUnbounded[T any](hint int) *List[T] {
	if hint < 1 {
		hint = 1
	}
	return &List[T]{entries: make([]Entry[T], hint)}
}

// New selects the variant by sign: capacity>0 is NewFixed(capacity),
// capacity<=0 is NewUnbounded(-capacity).
func New[T any](capacity int) *List[T] {
	if capacity > 0 {
		return NewFixed[T](capacity)
	}
	return NewUnbounded[T](-capacity)
}

// Fixed reports whether the list has a capacity.
func (l *List[T]) Fixed() bool { return l.limit > 0 }

// Capacity returns K for fixed lists and 0 for unbounded ones.
func (l *List[T]) Capacity() int { return l.limit }

func (l *List[T]) Len() int { return l.n }

// Full reports whether a fixed list holds K entries. Unbounded lists are
// never full.
func (l *List[T]) Full() bool { return l.limit > 0 && l.n >= l.limit }

// CheckInsert reports whether Insert(score, ...) would succeed. Use it to
// skip expensive work before building a payload.
func (l *List[T]) CheckInsert(score float64) bool {
	return !l.Full() || score > l.entries[0].Score
}

// Insert adds an entry. A full list only accepts scores strictly above its
// minimum, which is evicted.
func (l *List[T]) Insert(score float64, v T) bool {
	e := Entry[T]{Score: score, Value: v}
	if l.limit == 0 {
		if l.n == len(l.entries) {
			l.grow()
		}
		l.entries[l.n] = e
		l.n++
		return true
	}
	if l.n < l.limit {
		l.entries[l.n] = e
		l.n++
		if l.n == l.limit {
			sortAsc(l.entries[:l.n])
			l.sorted = true
		}
		return true
	}
	if score <= l.entries[0].Score {
		return false
	}
	// drop entries[0], keep ascending order
	pos := sort.Search(l.n, func(i int) bool { return l.entries[i].Score >= score })
	copy(l.entries[:pos-1], l.entries[1:pos])
	l.entries[pos-1] = e
	return true
}

func (l *List[T]) grow() {
	size := len(l.entries) * 3 / 2
	if size <= len(l.entries) {
		size = len(l.entries) + 1
	}
	next := make([]Entry[T], size)
	copy(next, l.entries[:l.n])
	l.entries = next
}

// InsertAll inserts every entry of other.
func (l *List[T]) InsertAll(other *List[T]) {
	for i := 0; i < other.n; i++ {
		e := other.entries[i]
		l.Insert(e.Score, e.Value)
	}
}

// Clear drops all entries, keeping storage.
func (l *List[T]) Clear() {
	var zero Entry[T]
	for i := 0; i < l.n; i++ {
		l.entries[i] = zero
	}
	l.n = 0
	l.sorted = false
}

// At returns the i-th entry in storage order (not score order).
func (l *List[T]) At(i int) Entry[T] { return l.entries[i] }

// Best returns the highest-scoring entry.
func (l *List[T]) Best() (Entry[T], bool) {
	if l.n == 0 {
		return Entry[T]{}, false
	}
	if l.sorted {
		return l.entries[l.n-1], true
	}
	b := 0
	for i := 1; i < l.n; i++ {
		if l.entries[i].Score > l.entries[b].Score {
			b = i
		}
	}
	return l.entries[b], true
}

// Worst returns the lowest-scoring entry.
func (l *List[T]) Worst() (Entry[T], bool) {
	if l.n == 0 {
		return Entry[T]{}, false
	}
	if l.sorted {
		return l.entries[0], true
	}
	w := 0
	for i := 1; i < l.n; i++ {
		if l.entries[i].Score < l.entries[w].Score {
			w = i
		}
	}
	return l.entries[w], true
}

// BestScore is Best().Score, or -Inf when empty.
func (l *List[T]) BestScore() float64 {
	if e, ok := l.Best(); ok {
		return e.Score
	}
	return math.Inf(-1)
}

// WorstScore is Worst().Score, or -Inf when empty.
func (l *List[T]) WorstScore() float64 {
	if e, ok := l.Worst(); ok {
		return e.Score
	}
	return math.Inf(-1)
}

// Sorted returns an ascending snapshot.
func (l *List[T]) Sorted() []Entry[T] {
	out := make([]Entry[T], l.n)
	copy(out, l.entries[:l.n])
	if !l.sorted {
		sortAsc(out)
	}
	return out
}

// Descending returns a best-first snapshot.
func (l *List[T]) Descending() []Entry[T] {
	out := l.Sorted()
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func sortAsc[T any](es []Entry[T]) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Score < es[j].Score })
}
