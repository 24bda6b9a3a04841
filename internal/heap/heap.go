package heap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"

	"kipper/internal/value"
)

// Space selects which region an allocation or collection targets.
type Space uint8

const (
	NewSpace Space = iota
	OldSpace
)

func (s Space) String() string {
	if s == OldSpace {
		return "old"
	}
	return "new"
}

// Config mirrors the embedding API's heap_size/tenure_threshold options.
// heap_size is split 1/4 to each of the two young semispaces and 1/2 to
// old space, each independently rounded up to the next power of two.
type Config struct {
	HeapSizeBytes   uint32
	TenureThreshold uint8
}

// DefaultConfig matches the values a freshly Initialize()'d runtime uses
// when Configure was never called.
func DefaultConfig() Config {
	return Config{HeapSizeBytes: 1 << 20, TenureThreshold: 3}
}

func roundUpPow2(n uint32) uint32 {
	if n == 0 {
		return 8
	}
	return 1 << bits.Len32(n-1)
}

// ErrOutOfMemory is returned to the embedding boundary when a retry after
// GC still cannot satisfy an allocation.
var ErrOutOfMemory = errors.New("kipper: out of memory")

// RootVisitor is implemented by anything the collector must treat as a
// source of live words: the root binding context, active handle scopes,
// and any fixed root slots the runtime keeps. Keeping this as a small
// interface lets the heap collect without importing the binding or
// handle packages, which instead import heap.
type RootVisitor interface {
	VisitRoots(visit func(w *value.Word))
}

// Heap owns the simulated memory arena and both generations. There is
// exactly one Heap per runtime instance; Initialize/Configure/Shutdown in
// the runtime package manage its process-wide lifetime.
type Heap struct {
	mem     []byte
	young   *newSpace
	old     *oldSpace
	symbols *SymbolTable

	tenureThreshold uint8

	roots []RootVisitor

	// gcPromoted is reused scratch space for the promoted-object stack
	// during a young collection; it is only valid while a collection is
	// in progress.
	gcPromoted []value.Addr

	Stats Stats

	// OnCollect, if set, is invoked synchronously after every completed
	// collection with which space was the direct target. A CLI or TUI
	// uses this to drive a live occupancy display; the evaluator itself
	// never reads it.
	OnCollect func(Space)
}

// Stats accumulates lightweight counters a CLI or TUI can display; it is
// not part of the collection algorithm itself.
type Stats struct {
	YoungCollections uint64
	OldCollections    uint64
	BytesAllocated    uint64
	ObjectsPromoted   uint64
}

// New builds a Heap sized per cfg.
func New(cfg Config) *Heap {
	if cfg.HeapSizeBytes == 0 {
		cfg = DefaultConfig()
	}
	semi := roundUpPow2(cfg.HeapSizeBytes / 4)
	oldSize := roundUpPow2(cfg.HeapSizeBytes / 2)
	// Address 0 is reserved and never allocated to, so that a header's
	// forwarding field being zero unambiguously means "not forwarded".
	const reserved = 8
	total := uint64(reserved) + uint64(2*semi) + uint64(oldSize)
	mem := make([]byte, total)

	h := &Heap{
		mem:             mem,
		young:           newNewSpace(reserved, semi),
		old:             newOldSpace(value.Addr(reserved+2*semi), oldSize),
		tenureThreshold: cfg.TenureThreshold,
	}
	h.symbols = newSymbolTable(h)
	return h
}

// PushRoot registers r as a live root source until a matching PopRoot.
// The root binding context is pushed once at startup and never popped
// (child contexts are reached through its next-chain); nested handle
// scopes are pushed on entry and popped on exit, so the root list
// always reflects exactly what is reachable from the call stack at any
// point during evaluation.
func (h *Heap) PushRoot(r RootVisitor) { h.roots = append(h.roots, r) }

// PopRoot removes the most recently pushed root source.
func (h *Heap) PopRoot() { h.roots = h.roots[:len(h.roots)-1] }

// Symbols returns the process-wide interned-string table.
func (h *Heap) Symbols() *SymbolTable { return h.symbols }

// YoungOccupancy reports bytes used and total capacity of the active
// young to-space.
func (h *Heap) YoungOccupancy() (used, capacity uint32) {
	return h.young.bump - uint32(h.young.toStart()), h.young.semiSize
}

// OldOccupancy reports bytes used and total capacity of old space.
func (h *Heap) OldOccupancy() (used, capacity uint32) {
	return h.old.bump - uint32(h.old.base), h.old.size
}

// --- raw memory access -----------------------------------------------

func (h *Heap) readHeader(a value.Addr) uint64 {
	return binary.LittleEndian.Uint64(h.mem[a:])
}

func (h *Heap) writeHeader(a value.Addr, v uint64) {
	binary.LittleEndian.PutUint64(h.mem[a:], v)
}

func (h *Heap) readWord(a value.Addr) value.Word {
	return value.Word(binary.LittleEndian.Uint64(h.mem[a:]))
}

func (h *Heap) writeWord(a value.Addr, w value.Word) {
	binary.LittleEndian.PutUint64(h.mem[a:], uint64(w))
}

func (h *Heap) readU32(a value.Addr) uint32 {
	return binary.LittleEndian.Uint32(h.mem[a:])
}

func (h *Heap) writeU32(a value.Addr, v uint32) {
	binary.LittleEndian.PutUint32(h.mem[a:], v)
}

func (h *Heap) readI64(a value.Addr) int64 {
	return int64(binary.LittleEndian.Uint64(h.mem[a:]))
}

func (h *Heap) writeI64(a value.Addr, v int64) {
	binary.LittleEndian.PutUint64(h.mem[a:], uint64(v))
}

func (h *Heap) readBytes(a value.Addr, n uint32) []byte {
	return h.mem[a : a+value.Addr(n)]
}

// Kind reports the object variant stored at a.
func (h *Heap) Kind(a value.Addr) Kind { return headerKind(h.readHeader(a)) }

// Age reports a young-generation object's survival count.
func (h *Heap) Age(a value.Addr) uint8 { return headerAge(h.readHeader(a)) }

// sizeOf returns an object's total byte size, header included.
func (h *Heap) sizeOf(a value.Addr) uint32 {
	switch k := headerKind(h.readHeader(a)); k {
	case KindHeapNumber:
		return 16
	case KindString:
		n := h.readU32(a + 8)
		return align8(16 + align8(n))
	case KindArray:
		n := h.readU32(a + 8)
		return 16 + n*8
	case KindKSObject:
		return 16
	case KindKSArray:
		return 32
	case KindFunction:
		return 32
	default:
		panic(fmt.Sprintf("kipper/heap: unknown kind %d at %#x", k, a))
	}
}

// fieldOffsets returns the addresses of every Word-valued, GC-visitable
// field within the object at a. Function.body is deliberately excluded:
// it indexes a Go-side registry of AST nodes or native functions rather
// than pointing into the simulated heap.
func (h *Heap) fieldOffsets(a value.Addr) []value.Addr {
	switch headerKind(h.readHeader(a)) {
	case KindHeapNumber, KindString:
		return nil
	case KindArray:
		n := h.readU32(a + 8)
		offs := make([]value.Addr, n)
		for i := uint32(0); i < n; i++ {
			offs[i] = a + 16 + value.Addr(i*8)
		}
		return offs
	case KindKSObject:
		return []value.Addr{a + 8}
	case KindKSArray:
		return []value.Addr{a + 8, a + 24}
	case KindFunction:
		return []value.Addr{a + 8, a + 16}
	default:
		return nil
	}
}
