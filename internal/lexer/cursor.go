package lexer

import "kipper/internal/source"

// Cursor walks the bytes of a source.File, tracking a byte offset.
type Cursor struct {
	content []byte
	pos     uint32
}

func NewCursor(file *source.File) Cursor {
	return Cursor{content: file.Content}
}

func (c *Cursor) EOF() bool {
	return int(c.pos) >= len(c.content)
}

func (c *Cursor) Pos() uint32 {
	return c.pos
}

// Peek returns the current byte, or 0 at EOF.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.content[c.pos]
}

// PeekAt returns the byte n positions ahead of the cursor, or 0 past EOF.
func (c *Cursor) PeekAt(n int) byte {
	idx := int(c.pos) + n
	if idx < 0 || idx >= len(c.content) {
		return 0
	}
	return c.content[idx]
}

func (c *Cursor) Advance() byte {
	b := c.Peek()
	if !c.EOF() {
		c.pos++
	}
	return b
}
