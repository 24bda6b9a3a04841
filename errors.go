package kipper

import (
	"fmt"
	"strings"

	"kipper/internal/diag"
)

// SyntaxError is returned by Compile when the source has one or more
// parse errors.
type SyntaxError struct {
	Diagnostics []diag.Diagnostic
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	for i, d := range e.Diagnostics {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Message)
	}
	return b.String()
}

// RuntimeErrorKind distinguishes the evaluator-level error taxonomy from
// compile-time SyntaxErrors and heap-level allocation failures.
type RuntimeErrorKind string

const (
	ReferenceError    RuntimeErrorKind = "ReferenceError"
	NotAFunctionError RuntimeErrorKind = "NotAFunctionError"
	AssertionError    RuntimeErrorKind = "AssertionError"
)

// RuntimeError wraps an evaluator-raised error for the embedding
// boundary; Kind matches one of the RuntimeErrorKind constants.
type RuntimeError struct {
	Kind    RuntimeErrorKind
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

// OutOfMemoryError is returned when an allocation failed even after the
// retry-after-GC policy ran; it always wraps heap.ErrOutOfMemory.
type OutOfMemoryError struct {
	Err error
}

func (e *OutOfMemoryError) Error() string { return e.Err.Error() }
func (e *OutOfMemoryError) Unwrap() error { return e.Err }
