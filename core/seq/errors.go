// core/seq/errors.go
package seq

import (
	"errors"
	"fmt"
)

// ErrNotComplementable is returned when a reverse complement is requested
// for a sequence whose alphabet has no complement.
var ErrNotComplementable = errors.New("alphabet has no complement")

// SymbolError reports an unknown symbol while parsing.
type SymbolError struct {
	Alphabet string
	Pos      int // 0-based symbol position
	Token    string
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("invalid %s symbol %q at %d", e.Alphabet, e.Token, e.Pos+1)
}
