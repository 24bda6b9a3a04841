package heap

import "kipper/internal/value"

// SymbolTable interns strings as tenured String objects keyed by their
// byte contents, so that Intern(s) == Intern(s) as an address (the
// evaluator's notion of pointer identity). Entries are weak: a symbol
// that nothing else references is evicted the next time old space is
// mark-compacted.
type SymbolTable struct {
	h         *Heap
	byContent map[string]value.Addr
}

func newSymbolTable(h *Heap) *SymbolTable {
	return &SymbolTable{h: h, byContent: make(map[string]value.Addr)}
}

// Intern returns the canonical String address for bytes, allocating one
// the first time a given content is seen.
func (t *SymbolTable) Intern(bytes []byte) (value.Addr, error) {
	key := string(bytes)
	if a, ok := t.byContent[key]; ok {
		return a, nil
	}
	a, err := t.h.AllocateString(bytes, Tenured)
	if err != nil {
		return 0, err
	}
	t.byContent[key] = a
	return a, nil
}

// Len reports how many distinct symbols are currently interned.
func (t *SymbolTable) Len() int { return len(t.byContent) }

// evictUnmarked drops every entry whose backing String was not reached
// during the preceding mark pass; called between mark and
// forwarding-address computation in a mark-compact collection.
func (t *SymbolTable) evictUnmarked(isMarked func(value.Addr) bool) {
	for k, a := range t.byContent {
		if !isMarked(a) {
			delete(t.byContent, k)
		}
	}
}

// relocate rewrites every surviving entry to its post-compaction address.
func (t *SymbolTable) relocate(forwardingOf func(value.Addr) value.Addr) {
	for k, a := range t.byContent {
		t.byContent[k] = forwardingOf(a)
	}
}
