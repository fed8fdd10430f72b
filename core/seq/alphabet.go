// core/seq/alphabet.go
package seq

import (
	"fmt"
	"strings"
)

// Alphabet is an ordered set of symbol tokens. A symbol's code is its index.
type Alphabet struct {
	name   string
	tokens []string
	codes  map[string]byte
	single bool // every token is one byte long

	// byte lookup for single-character alphabets; 0 = unknown, else code+1
	lookup [256]byte

	complement []byte // nil if the alphabet has no complement
}

// DNA is the size-4 nucleotide alphabet A,C,G,T with Watson-Crick complement.
var DNA = mustAlphabet(NewAlphabet("DNA", "A", "C", "G", "T")).WithComplement(3, 2, 1, 0)

func mustAlphabet(a *Alphabet, err error) *Alphabet {
	if err != nil {
		panic(err)
	}
	return a
}

// NewAlphabet returns an alphabet over the given tokens. Tokens must be
// non-empty, unique and must not contain '-'.
func NewAlphabet(name string, tokens ...string) (*Alphabet, error) {
	if len(tokens) == 0 || len(tokens) > 255 {
		return nil, fmt.Errorf("alphabet %q: need 1..255 tokens, got %d", name, len(tokens))
	}
	a := &Alphabet{
		name:   name,
		tokens: make([]string, len(tokens)),
		codes:  make(map[string]byte, len(tokens)),
		single: true,
	}
	for i, t := range tokens {
		t = strings.ToUpper(t)
		if t == "" || strings.Contains(t, "-") {
			return nil, fmt.Errorf("alphabet %q: bad token %q", name, t)
		}
		if _, dup := a.codes[t]; dup {
			return nil, fmt.Errorf("alphabet %q: duplicate token %q", name, t)
		}
		a.tokens[i] = t
		a.codes[t] = byte(i)
		if len(t) != 1 {
			a.single = false
		}
	}
	if a.single {
		for i, t := range a.tokens {
			c := t[0]
			a.lookup[c] = byte(i) + 1
			if c >= 'A' && c <= 'Z' {
				a.lookup[c+'a'-'A'] = byte(i) + 1
			}
		}
	}
	return a, nil
}

// WithComplement sets the complement permutation (perm[code] = complement
// code) and returns the alphabet. It panics on a malformed permutation; it is
// meant for package-level alphabet definitions.
func (a *Alphabet) WithComplement(perm ...byte) *Alphabet {
	if len(perm) != len(a.tokens) {
		panic(fmt.Sprintf("alphabet %q: complement needs %d entries, got %d", a.name, len(a.tokens), len(perm)))
	}
	for i, c := range perm {
		if int(c) >= len(a.tokens) || perm[c] != byte(i) {
			panic(fmt.Sprintf("alphabet %q: complement is not an involution at %d", a.name, i))
		}
	}
	a.complement = append([]byte(nil), perm...)
	return a
}

func (a *Alphabet) Name() string { return a.name }

// Size returns the number of symbols.
func (a *Alphabet) Size() int { return len(a.tokens) }

// Token returns the token for a code.
func (a *Alphabet) Token(code byte) string { return a.tokens[code] }

// Code returns the code of a token (case-insensitive).
func (a *Alphabet) Code(tok string) (byte, bool) {
	c, ok := a.codes[strings.ToUpper(tok)]
	return c, ok
}

// Complementable reports whether ReverseComplement is supported.
func (a *Alphabet) Complementable() bool { return a.complement != nil }

// Complement returns the complement code of c. Only valid if Complementable.
func (a *Alphabet) Complement(c byte) byte { return a.complement[c] }

func (a *Alphabet) String() string { return a.name }
