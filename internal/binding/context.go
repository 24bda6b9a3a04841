// Package binding implements the lexical variable-binding store: a
// context is a chain of fixed-size chunks mapping interned-symbol
// addresses to values, looked up by resolving the current context then
// each ancestor in turn.
package binding

import "kipper/internal/value"

const chunkSlots = 16

// slot stores its symbol as a heap-reference Word, not a raw Addr, so
// that the same root-rewriting pass the collector uses for ordinary
// values also keeps symbol keys correct across a compaction that moves
// the interned String they point to.
type slot struct {
	name  value.Word
	value value.Word
}

// Context is one lexical scope: a function call frame or a block. It
// links to its lexical parent for name resolution and to the next
// sibling context allocated so the collector can walk every live context
// from the root without needing a separate registry.
type Context struct {
	parent *Context
	next   *Context

	chunks [][]slot

	self value.Word // the dotted-call receiver, or Undefined
}

// NewRoot creates the top-level context with no parent.
func NewRoot() *Context {
	return &Context{self: value.Undefined}
}

// NewChild creates a context lexically nested inside parent and links it
// into parent's next-chain.
func NewChild(parent *Context) *Context {
	c := &Context{parent: parent, self: value.Undefined}
	c.next = parent.next
	parent.next = c
	return c
}

// Exit unlinks c from parent's next-chain, restoring parent.next to the
// value it held before NewChild spliced c in. Callers must exit children
// in the reverse order they were created and must not use c after
// calling Exit.
func (c *Context) Exit() {
	c.parent.next = c.next
}

// Self returns the current "method receiver" slot.
func (c *Context) Self() value.Word { return c.self }

// SetSelf sets the current "method receiver" slot.
func (c *Context) SetSelf(w value.Word) { c.self = w }

// Parent returns c's lexical parent, or nil for the root.
func (c *Context) Parent() *Context { return c.parent }

// Push stores value under name in c: if a slot already exists for that
// symbol address anywhere in c's own chunks, it is overwritten and no
// new slot is created; otherwise a new slot is appended, growing into a
// fresh chunk when the last one is full.
func (c *Context) Push(name value.Addr, val value.Word) {
	nameWord := value.FromAddr(name)
	for _, chunk := range c.chunks {
		for i := range chunk {
			if chunk[i].name == nameWord {
				chunk[i].value = val
				return
			}
		}
	}
	if len(c.chunks) == 0 || len(lastChunk(c.chunks)) == chunkSlots {
		c.chunks = append(c.chunks, make([]slot, 0, chunkSlots))
	}
	idx := len(c.chunks) - 1
	c.chunks[idx] = append(c.chunks[idx], slot{name: nameWord, value: val})
}

func lastChunk(chunks [][]slot) []slot { return chunks[len(chunks)-1] }

// Resolve walks c's own chunks, then each ancestor's, matching by
// interned-symbol address identity. It reports whether a binding was
// found at all so callers can distinguish "unbound" from "bound to
// Undefined".
func (c *Context) Resolve(name value.Addr) (value.Word, bool) {
	nameWord := value.FromAddr(name)
	for cur := c; cur != nil; cur = cur.parent {
		for _, chunk := range cur.chunks {
			for i := range chunk {
				if chunk[i].name == nameWord {
					return chunk[i].value, true
				}
			}
		}
	}
	return value.Undefined, false
}

// Set writes through an existing binding reachable from c, searching the
// same chain Resolve does. It reports whether a binding was found.
func (c *Context) Set(name value.Addr, val value.Word) bool {
	nameWord := value.FromAddr(name)
	for cur := c; cur != nil; cur = cur.parent {
		for _, chunk := range cur.chunks {
			for i := range chunk {
				if chunk[i].name == nameWord {
					chunk[i].value = val
					return true
				}
			}
		}
	}
	return false
}

// VisitRoots implements heap.RootVisitor by walking this context and
// every context linked into its next-chain, visiting every bound value
// and the self slot. Only the process-wide root context is registered
// as a root; every child created by NewChild is reached through its
// next-chain until it calls Exit.
func (c *Context) VisitRoots(visit func(w *value.Word)) {
	for cur := c; cur != nil; cur = cur.next {
		visit(&cur.self)
		for _, chunk := range cur.chunks {
			for i := range chunk {
				visit(&chunk[i].name)
				visit(&chunk[i].value)
			}
		}
	}
}
