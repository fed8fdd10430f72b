// core/finder/errors.go
package finder

import (
	"errors"
	"fmt"
)

var (
	// ErrProbeTooShort: the site does not extend past the head infix.
	ErrProbeTooShort = errors.New("probe too short")
	// ErrAlphabetSize: the model's or a subject's alphabet is not size 4.
	ErrAlphabetSize = errors.New("subject alphabet size must be 4")
	// ErrInfixLength: infix length is not above the model order.
	ErrInfixLength = errors.New("invalid infix length")
	// ErrDepth: trie depths are inconsistent with each other or the site.
	ErrDepth = errors.New("invalid trie depth")
	// ErrProbeAlphabet: the probe is not written in the model's probe alphabet.
	ErrProbeAlphabet = errors.New("probe alphabet does not match model")
)

// PreconditionError reports a query or configuration the finder cannot run.
// It wraps one of the sentinels above.
type PreconditionError struct {
	Op     string
	Detail string
	cause  error
}

func (e *PreconditionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("finder: %s: %v", e.Op, e.cause)
	}
	return fmt.Sprintf("finder: %s: %v (%s)", e.Op, e.cause, e.Detail)
}

func (e *PreconditionError) Unwrap() error { return e.cause }

func precondition(op string, cause error, format string, args ...any) error {
	return &PreconditionError{Op: op, Detail: fmt.Sprintf(format, args...), cause: cause}
}
