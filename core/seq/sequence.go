// core/seq/sequence.go
package seq

import (
	"strconv"
	"strings"
	"sync"
)

// Sequence is an immutable run of symbol codes over an Alphabet.
// Sequences are compared by pointer identity wherever they act as keys.
type Sequence struct {
	alpha *Alphabet
	sym   []byte

	rcOnce sync.Once
	rc     *Sequence
}

// New wraps symbol codes. The slice is copied.
func New(a *Alphabet, codes []byte) (*Sequence, error) {
	out := make([]byte, len(codes))
	for i, c := range codes {
		if int(c) >= a.Size() {
			return nil, &SymbolError{Alphabet: a.name, Pos: i, Token: strconv.Itoa(int(c))}
		}
		out[i] = c
	}
	return &Sequence{alpha: a, sym: out}, nil
}

// Parse reads text over a. Single-character alphabets take one symbol per
// byte; others take '-' separated tokens ("NI-HD-NG").
func Parse(a *Alphabet, text string) (*Sequence, error) {
	text = strings.TrimSpace(text)
	if a.single {
		out := make([]byte, len(text))
		for i := 0; i < len(text); i++ {
			v := a.lookup[text[i]]
			if v == 0 {
				return nil, &SymbolError{Alphabet: a.name, Pos: i, Token: text[i : i+1]}
			}
			out[i] = v - 1
		}
		return &Sequence{alpha: a, sym: out}, nil
	}
	if text == "" {
		return &Sequence{alpha: a}, nil
	}
	parts := strings.Split(text, "-")
	out := make([]byte, len(parts))
	for i, p := range parts {
		c, ok := a.Code(strings.TrimSpace(p))
		if !ok {
			return nil, &SymbolError{Alphabet: a.name, Pos: i, Token: p}
		}
		out[i] = c
	}
	return &Sequence{alpha: a, sym: out}, nil
}

// MustParse is Parse for literals; it panics on error.
func MustParse(a *Alphabet, text string) *Sequence {
	s, err := Parse(a, text)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Sequence) Alphabet() *Alphabet { return s.alpha }

func (s *Sequence) Len() int { return len(s.sym) }

// At returns the symbol code at i.
func (s *Sequence) At(i int) byte { return s.sym[i] }

// Symbols exposes the backing codes. Callers must not modify them.
func (s *Sequence) Symbols() []byte { return s.sym }

// Sub returns the n symbols starting at start, sharing storage with s.
func (s *Sequence) Sub(start, n int) *Sequence {
	return &Sequence{alpha: s.alpha, sym: s.sym[start : start+n : start+n]}
}

// ReverseComplement returns the reverse complement, computed once and cached.
func (s *Sequence) ReverseComplement() (*Sequence, error) {
	if !s.alpha.Complementable() {
		return nil, ErrNotComplementable
	}
	s.rcOnce.Do(func() {
		s.rc = &Sequence{alpha: s.alpha, sym: revComp(s.alpha, s.sym)}
		s.rc.rcOnce.Do(func() {}) // rc(rc(s)) is s
		s.rc.rc = s
	})
	return s.rc, nil
}

func revComp(a *Alphabet, sym []byte) []byte {
	n := len(sym)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		out[i] = a.complement[sym[n-1-i]]
	}
	return out
}

func (s *Sequence) String() string {
	var b strings.Builder
	if s.alpha.single {
		b.Grow(len(s.sym))
		for _, c := range s.sym {
			b.WriteString(s.alpha.tokens[c])
		}
		return b.String()
	}
	for i, c := range s.sym {
		if i > 0 {
			b.WriteByte('-')
		}
		b.WriteString(s.alpha.tokens[c])
	}
	return b.String()
}
