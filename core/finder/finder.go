// core/finder/finder.go
// Single-probe binding-site search over a dataset of subject sequences.
//
// Two finders share one contract: InfixScanner (lookup tables over a head
// and a tail infix of the site, linear scan) and PrunedSearchTrie
// (branch-and-bound over a population-balanced trie of subject windows).
// Both return every window scoring >= threshold, up to capacity, and cache
// results per (probe, threshold, capacity, bestEffort, strand) until the
// dataset is reset.

package finder

import (
	"talen-core/model"
	"talen-core/seq"
)

// Finder is implemented by InfixScanner and PrunedSearchTrie.
type Finder interface {
	// ScoresAbove returns windows scoring >= threshold. capacity>0 keeps at
	// most capacity matches, capacity<=0 collects everything. With
	// bestEffort=false a fixed list is returned as soon as it fills.
	ScoresAbove(probe *seq.Sequence, threshold float64, capacity int, bestEffort bool, strand Strand) (*Matches, error)

	// ResetDataset switches to ds and drops every cached result. Not safe
	// concurrently with ScoresAbove.
	ResetDataset(ds seq.Dataset) error

	Dataset() seq.Dataset
	Scorer() model.Scorer

	// Clone returns a finder with its own model copy and cache maps, safe
	// to use from another goroutine.
	Clone() Finder
}

var (
	_ Finder = (*InfixScanner)(nil)
	_ Finder = (*PrunedSearchTrie)(nil)
)

func checkAlphabet(op string, s model.Scorer) error {
	if n := s.AlphabetSize(); n != 4 {
		return precondition(op, ErrAlphabetSize, "got %d", n)
	}
	return nil
}

// checkDataset rejects subjects written over an alphabet that is not size 4.
// Packed infix indices and trie children hold exactly four symbols.
func checkDataset(op string, ds seq.Dataset) error {
	for i := 0; i < ds.Len(); i++ {
		a := ds.At(i).Alphabet()
		if a.Size() != 4 {
			return precondition(op, ErrAlphabetSize, "sequence %d: %s has %d symbols", i, a, a.Size())
		}
	}
	return nil
}
