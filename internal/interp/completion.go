package interp

import "kipper/internal/value"

// CompletionType distinguishes how a statement finished executing.
type CompletionType uint8

const (
	Normal CompletionType = iota
	Return
	Break
	Continue
)

// Completion is the result of executing a statement: either a normal
// fall-through, or an early exit carrying an optional value.
type Completion struct {
	Type  CompletionType
	Value value.Word
}

func normal() Completion { return Completion{Type: Normal, Value: value.Undefined} }

func isAbrupt(c Completion) bool { return c.Type != Normal }
