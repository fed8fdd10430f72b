// pkg/talen/cache.go
package talen

import (
	"sync"

	"talen-core/seq"
)

type scanKey struct {
	kind       Kind
	probe      *seq.Sequence
	threshold  float64
	capacity   int
	bestEffort bool
	strand     Strand
}

// results memoizes merged lists until the dataset changes. Concurrent
// misses may compute the same list twice; the last store wins.
type results[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]V
}

func (r *results[K, V]) get(k K) (V, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[k]
	return v, ok
}

func (r *results[K, V]) put(k K, v V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.m == nil {
		r.m = make(map[K]V)
	}
	r.m[k] = v
}

func (r *results[K, V]) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.m)
}

func (r *results[K, V]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
