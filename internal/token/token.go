package token

import "kipper/internal/source"

// Token is a single lexical unit with its source span and raw text.
type Token struct {
	Kind Kind
	Span source.Span
	Text string // raw lexeme; for StringLit the content between quotes
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Kind.String() + "(" + t.Text + ")"
	}
	return t.Kind.String()
}
