package heap

import "kipper/internal/value"

func align8(n uint32) uint32 { return (n + 7) &^ 7 }

// newSpace is the young generation: two equal semispaces laid out
// back-to-back in the heap's backing arena. Allocation bumps a pointer
// through the active to-space; Flip swaps which half is active.
type newSpace struct {
	base     value.Addr
	semiSize uint32
	toOffset uint32 // 0 or semiSize, selects which half is "to"
	bump     uint32
}

func newNewSpace(base value.Addr, semiSize uint32) *newSpace {
	s := &newSpace{base: base, semiSize: semiSize}
	s.bump = uint32(s.toStart())
	return s
}

func (s *newSpace) toStart() value.Addr   { return s.base + value.Addr(s.toOffset) }
func (s *newSpace) toEnd() value.Addr     { return s.toStart() + value.Addr(s.semiSize) }
func (s *newSpace) fromStart() value.Addr { return s.base + value.Addr(s.semiSize-s.toOffset) }
func (s *newSpace) fromEnd() value.Addr   { return s.fromStart() + value.Addr(s.semiSize) }

// Flip swaps to-space and from-space and resets the bump pointer.
func (s *newSpace) Flip() {
	s.toOffset = s.semiSize - s.toOffset
	s.bump = uint32(s.toStart())
}

func (s *newSpace) Contains(a value.Addr) bool {
	return a >= s.base && a < s.base+value.Addr(2*s.semiSize)
}

func (s *newSpace) InFromSpace(a value.Addr) bool {
	return a >= s.fromStart() && a < s.fromEnd()
}

func (s *newSpace) InToSpace(a value.Addr) bool {
	return a >= s.toStart() && a < s.toEnd()
}

// AllocateRaw bumps the to-space pointer. It never triggers GC.
func (s *newSpace) AllocateRaw(size uint32) (value.Addr, bool) {
	size = align8(size)
	if uint64(s.bump)+uint64(size) > uint64(s.toEnd()) {
		return 0, false
	}
	addr := value.Addr(s.bump)
	s.bump += size
	return addr, true
}

// oldSpace is a single bump-allocated region with an auxiliary remembered
// set of addresses known to hold references into the young generation.
type oldSpace struct {
	base       value.Addr
	size       uint32
	bump       uint32
	remembered []value.Addr
}

func newOldSpace(base value.Addr, size uint32) *oldSpace {
	return &oldSpace{base: base, size: size, bump: uint32(base)}
}

func (s *oldSpace) end() value.Addr { return s.base + value.Addr(s.size) }

func (s *oldSpace) Contains(a value.Addr) bool {
	return a >= s.base && a < s.end()
}

func (s *oldSpace) AllocateRaw(size uint32) (value.Addr, bool) {
	size = align8(size)
	if uint64(s.bump)+uint64(size) > uint64(s.end()) {
		return 0, false
	}
	addr := value.Addr(s.bump)
	s.bump += size
	return addr, true
}

// remember appends holder to the remembered set without checking for a
// duplicate; callers are expected to consult/set the header's remembered
// bit so this stays idempotent without a linear scan on the hot path.
func (s *oldSpace) remember(holder value.Addr) {
	s.remembered = append(s.remembered, holder)
}

// pruneRemembered replaces the remembered set with keep, in place.
func (s *oldSpace) pruneRemembered(keep []value.Addr) {
	s.remembered = keep
}
