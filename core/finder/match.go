// core/finder/match.go
package finder

import (
	"fmt"

	"talen-core/topk"
)

// Strand selects which strand of a subject is scanned.
type Strand uint8

const (
	Forward Strand = iota
	Reverse
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Match is one binding site. Position is always the 0-based forward-strand
// start of the site window, for both strands.
type Match struct {
	SequenceIndex int
	Position      int
	Strand        Strand
}

func (m Match) String() string {
	return fmt.Sprintf("%d:%d%s", m.SequenceIndex, m.Position, m.Strand)
}

// Matches is the result container of a single-probe search.
type Matches = topk.List[Match]
