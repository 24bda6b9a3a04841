package diag

import (
	"kipper/internal/source"
)

// Note attaches secondary context to a Diagnostic at another span.
type Note struct {
	Span source.Span
	Msg  string
}

// Diagnostic is a single compile-time error or warning tied to a source span.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Notes    []Note
}

// WithNote returns d with an additional note appended.
func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}
