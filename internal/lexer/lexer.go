// Package lexer turns source bytes into a token stream for the parser.
//
// This is an external collaborator by the runtime's own contract (the
// interpreter core only consumes a finished AST) but a real implementation
// is kept here so the module runs end to end without an external frontend.
package lexer

import (
	"fmt"

	"kipper/internal/diag"
	"kipper/internal/source"
	"kipper/internal/token"
)

// Lexer produces tokens from a single source.File.
type Lexer struct {
	file    *source.File
	cursor  Cursor
	depth   int // bracket nesting: (), [], {} — newlines inside are not statement separators
	lastEOL bool
	bag     *diag.Bag
}

func New(file *source.File, bag *diag.Bag) *Lexer {
	return &Lexer{file: file, cursor: NewCursor(file), bag: bag}
}

// Next returns the next significant token. Repeated calls after EOF keep
// returning EOF.
func (lx *Lexer) Next() token.Token {
	lx.skipTrivia()

	if lx.cursor.EOF() {
		return lx.tok(token.EOF, lx.cursor.Pos(), lx.cursor.Pos(), "")
	}

	start := lx.cursor.Pos()
	ch := lx.cursor.Peek()

	switch {
	case ch == '\n':
		lx.cursor.Advance()
		if lx.depth > 0 {
			return lx.Next()
		}
		return lx.tok(token.EOL, start, lx.cursor.Pos(), "\n")
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword(start)
	case isDigit(ch):
		return lx.scanNumber(start)
	case ch == '"':
		return lx.scanString(start)
	default:
		return lx.scanOperatorOrPunct(start)
	}
}

// skipTrivia consumes spaces, tabs, carriage returns and '#' comments,
// but leaves newlines for Next to classify (they may be significant).
func (lx *Lexer) skipTrivia() {
	for !lx.cursor.EOF() {
		switch lx.cursor.Peek() {
		case ' ', '\t', '\r':
			lx.cursor.Advance()
		case '#':
			for !lx.cursor.EOF() && lx.cursor.Peek() != '\n' {
				lx.cursor.Advance()
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scanIdentOrKeyword(start uint32) token.Token {
	for !lx.cursor.EOF() && isIdentContinue(lx.cursor.Peek()) {
		lx.cursor.Advance()
	}
	text := string(lx.file.Content[start:lx.cursor.Pos()])
	if kind, ok := token.Lookup(text); ok {
		return lx.tok(kind, start, lx.cursor.Pos(), text)
	}
	return lx.tok(token.Ident, start, lx.cursor.Pos(), text)
}

func (lx *Lexer) scanNumber(start uint32) token.Token {
	for !lx.cursor.EOF() && isDigit(lx.cursor.Peek()) {
		lx.cursor.Advance()
	}
	isFloat := false
	if lx.cursor.Peek() == '.' && isDigit(lx.cursor.PeekAt(1)) {
		isFloat = true
		lx.cursor.Advance()
		for !lx.cursor.EOF() && isDigit(lx.cursor.Peek()) {
			lx.cursor.Advance()
		}
	}
	text := string(lx.file.Content[start:lx.cursor.Pos()])
	if isFloat {
		return lx.tok(token.FloatLit, start, lx.cursor.Pos(), text)
	}
	return lx.tok(token.IntLit, start, lx.cursor.Pos(), text)
}

func (lx *Lexer) scanString(start uint32) token.Token {
	lx.cursor.Advance() // opening quote
	contentStart := lx.cursor.Pos()
	for {
		if lx.cursor.EOF() || lx.cursor.Peek() == '\n' {
			lx.reportCode(diag.CodeUnterminatedString, start, lx.cursor.Pos(), "unterminated string literal")
			text := string(lx.file.Content[contentStart:lx.cursor.Pos()])
			return lx.tok(token.StringLit, start, lx.cursor.Pos(), text)
		}
		if lx.cursor.Peek() == '"' {
			text := string(lx.file.Content[contentStart:lx.cursor.Pos()])
			lx.cursor.Advance() // closing quote
			return lx.tok(token.StringLit, start, lx.cursor.Pos(), text)
		}
		lx.cursor.Advance()
	}
}

func (lx *Lexer) scanOperatorOrPunct(start uint32) token.Token {
	b0 := lx.cursor.Advance()
	b1 := lx.cursor.Peek()

	two := func(k token.Kind) token.Token {
		lx.cursor.Advance()
		return lx.tok(k, start, lx.cursor.Pos(), string(lx.file.Content[start:lx.cursor.Pos()]))
	}
	one := func(k token.Kind) token.Token {
		return lx.tok(k, start, lx.cursor.Pos(), string(b0))
	}

	switch b0 {
	case '+':
		if b1 == '+' {
			return two(token.PlusPlus)
		}
		if b1 == '=' {
			return two(token.PlusAssign)
		}
		return one(token.Plus)
	case '-':
		if b1 == '-' {
			return two(token.MinusMinus)
		}
		if b1 == '=' {
			return two(token.MinusAssign)
		}
		return one(token.Minus)
	case '*':
		if b1 == '=' {
			return two(token.StarAssign)
		}
		return one(token.Star)
	case '/':
		if b1 == '=' {
			return two(token.SlashAssign)
		}
		return one(token.Slash)
	case '%':
		if b1 == '=' {
			return two(token.PercentAssign)
		}
		return one(token.Percent)
	case '=':
		if b1 == '=' {
			return two(token.EqEq)
		}
		return one(token.Assign)
	case '!':
		if b1 == '=' {
			return two(token.BangEq)
		}
		return one(token.Bang)
	case '<':
		if b1 == '=' {
			return two(token.LtEq)
		}
		return one(token.Lt)
	case '>':
		if b1 == '=' {
			return two(token.GtEq)
		}
		return one(token.Gt)
	case '&':
		if b1 == '&' {
			return two(token.AndAnd)
		}
	case '|':
		if b1 == '|' {
			return two(token.OrOr)
		}
	case '?':
		return one(token.Question)
	case ':':
		return one(token.Colon)
	case ';':
		return one(token.Semicolon)
	case ',':
		return one(token.Comma)
	case '.':
		return one(token.Dot)
	case '(':
		lx.depth++
		return one(token.LParen)
	case ')':
		lx.depth--
		return one(token.RParen)
	case '{':
		lx.depth++
		return one(token.LBrace)
	case '}':
		lx.depth--
		return one(token.RBrace)
	case '[':
		lx.depth++
		return one(token.LBracket)
	case ']':
		lx.depth--
		return one(token.RBracket)
	}

	lx.report(start, lx.cursor.Pos(), fmt.Sprintf("unexpected byte %q", b0))
	return lx.tok(token.Invalid, start, lx.cursor.Pos(), string(b0))
}

func (lx *Lexer) tok(kind token.Kind, start, end uint32, text string) token.Token {
	return token.Token{Kind: kind, Span: source.Span{File: lx.file.ID, Start: start, End: end}, Text: text}
}

func (lx *Lexer) report(start, end uint32, msg string) {
	lx.reportCode(diag.CodeUnexpectedToken, start, end, msg)
}

func (lx *Lexer) reportCode(code diag.Code, start, end uint32, msg string) {
	if lx.bag == nil {
		return
	}
	sp := source.Span{File: lx.file.ID, Start: start, End: end}
	lx.bag.Add(diag.NewError(code, sp, msg))
}
