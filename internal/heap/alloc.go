package heap

import "kipper/internal/value"

// Tenure selects which space a typed allocator targets by default.
type Tenure uint8

const (
	Fresh   Tenure = iota // default: NEW_SPACE
	Tenured               // forced: OLD_SPACE
)

func spaceFor(tenure Tenure) Space {
	if tenure == Tenured {
		return OldSpace
	}
	return NewSpace
}

// allocate wraps a raw allocator in the two-try envelope described for
// typed allocators: attempt, collect on failure, attempt once more, then
// give up with ErrOutOfMemory.
func (h *Heap) allocate(size uint32, tenure Tenure) (value.Addr, error) {
	space := spaceFor(tenure)
	if a, ok := h.tryAllocate(size, space); ok {
		return a, nil
	}
	h.Collect(space)
	if a, ok := h.tryAllocate(size, space); ok {
		return a, nil
	}
	return 0, ErrOutOfMemory
}

func (h *Heap) tryAllocate(size uint32, space Space) (value.Addr, bool) {
	if space == OldSpace {
		return h.old.AllocateRaw(size)
	}
	return h.young.AllocateRaw(size)
}

// pinnedRoot implements RootVisitor over a fixed set of Word slots. A
// multi-step heap mutation that must hold an intermediate address (a
// freshly allocated sub-object, or the receiver itself) across a second
// allocation pushes one of these so a collection triggered by that
// second allocation relocates the pinned words instead of leaving them
// dangling.
type pinnedRoot []*value.Word

func (p pinnedRoot) VisitRoots(visit func(w *value.Word)) {
	for _, w := range p {
		visit(w)
	}
}

// AllocateHeapNumber boxes an int64 outside the int32 small-int range.
func (h *Heap) AllocateHeapNumber(v int64, tenure Tenure) (value.Addr, error) {
	a, err := h.allocate(16, tenure)
	if err != nil {
		return 0, err
	}
	h.writeHeader(a, newHeader(KindHeapNumber))
	h.writeI64(a+8, v)
	h.Stats.BytesAllocated += 16
	return a, nil
}

// AllocateString copies bytes into a fresh String object. Symbols are
// always allocated Tenured by SymbolTable.Intern; ordinary string values default
// to Fresh like any other value.
func (h *Heap) AllocateString(bytes []byte, tenure Tenure) (value.Addr, error) {
	size := align8(16 + align8(uint32(len(bytes))))
	a, err := h.allocate(size, tenure)
	if err != nil {
		return 0, err
	}
	h.writeHeader(a, newHeader(KindString))
	h.writeU32(a+8, uint32(len(bytes)))
	copy(h.readBytes(a+16, uint32(len(bytes))), bytes)
	h.Stats.BytesAllocated += uint64(size)
	return a, nil
}

// AllocateArray allocates a raw slot array of n Words, all initialized to
// Undefined.
func (h *Heap) AllocateArray(n uint32, tenure Tenure) (value.Addr, error) {
	if a, ok := h.allocateArrayNoGC(n, tenure); ok {
		return a, nil
	}
	h.Collect(spaceFor(tenure))
	if a, ok := h.allocateArrayNoGC(n, tenure); ok {
		return a, nil
	}
	return 0, ErrOutOfMemory
}

// allocateArrayNoGC is AllocateArray's collection-free half: it only
// fails, never collects, so a composite constructor built from several
// of these can hold an earlier result across a later call without it
// going stale, then retry the whole composite from scratch on failure
// instead of retrying one sub-allocation at a time.
func (h *Heap) allocateArrayNoGC(n uint32, tenure Tenure) (value.Addr, bool) {
	size := 16 + n*8
	a, ok := h.tryAllocate(size, spaceFor(tenure))
	if !ok {
		return 0, false
	}
	h.writeHeader(a, newHeader(KindArray))
	h.writeU32(a+8, n)
	for i := uint32(0); i < n; i++ {
		h.writeWord(a+16+value.Addr(i*8), value.Undefined)
	}
	h.Stats.BytesAllocated += uint64(size)
	return a, true
}

// hashTableInitialCapacity is the smallest power-of-two capacity a fresh
// HashTable starts with.
const hashTableInitialCapacity = 2

// AllocateHashTable allocates a HashTable (an Array with the [size,
// capacity, key0, val0, ...] slot convention) of the given capacity.
func (h *Heap) AllocateHashTable(capacity uint32, tenure Tenure) (value.Addr, error) {
	if a, ok := h.allocateHashTableNoGC(capacity, tenure); ok {
		return a, nil
	}
	h.Collect(spaceFor(tenure))
	if a, ok := h.allocateHashTableNoGC(capacity, tenure); ok {
		return a, nil
	}
	return 0, ErrOutOfMemory
}

func (h *Heap) allocateHashTableNoGC(capacity uint32, tenure Tenure) (value.Addr, bool) {
	if capacity < hashTableInitialCapacity {
		capacity = hashTableInitialCapacity
	}
	a, ok := h.allocateArrayNoGC(2+capacity*2, tenure)
	if !ok {
		return 0, false
	}
	h.writeWord(a+16, value.FromInt32(0))
	h.writeWord(a+24, value.FromInt32(int32(capacity)))
	return a, true
}

// AllocateKSObject allocates an object with a fresh empty HashTable. The
// HashTable and the object header are built as one collection-free unit
// so the HashTable's address, held in a bare local before the object
// exists to point at it, can never go stale partway through.
func (h *Heap) AllocateKSObject(tenure Tenure) (value.Addr, error) {
	if a, ok := h.allocateKSObjectNoGC(tenure); ok {
		return a, nil
	}
	h.Collect(spaceFor(tenure))
	if a, ok := h.allocateKSObjectNoGC(tenure); ok {
		return a, nil
	}
	return 0, ErrOutOfMemory
}

func (h *Heap) allocateKSObjectNoGC(tenure Tenure) (value.Addr, bool) {
	ht, ok := h.allocateHashTableNoGC(hashTableInitialCapacity, tenure)
	if !ok {
		return 0, false
	}
	a, ok := h.tryAllocate(16, spaceFor(tenure))
	if !ok {
		return 0, false
	}
	h.writeHeader(a, newHeader(KindKSObject))
	h.writeWord(a+8, value.FromAddr(ht))
	h.Stats.BytesAllocated += 16
	return a, true
}

// AllocateKSArray allocates a dense array of n elements backed by a raw
// Array, plus an (initially empty) HashTable for string-keyed
// properties, as one collection-free unit for the same reason as
// AllocateKSObject: the backing Array and HashTable addresses are held
// in bare locals until the KSArray header exists to point at them.
func (h *Heap) AllocateKSArray(n uint32, tenure Tenure) (value.Addr, error) {
	if a, ok := h.allocateKSArrayNoGC(n, tenure); ok {
		return a, nil
	}
	h.Collect(spaceFor(tenure))
	if a, ok := h.allocateKSArrayNoGC(n, tenure); ok {
		return a, nil
	}
	return 0, ErrOutOfMemory
}

func (h *Heap) allocateKSArrayNoGC(n uint32, tenure Tenure) (value.Addr, bool) {
	ht, ok := h.allocateHashTableNoGC(hashTableInitialCapacity, tenure)
	if !ok {
		return 0, false
	}
	items, ok := h.allocateArrayNoGC(n, tenure)
	if !ok {
		return 0, false
	}
	a, ok := h.tryAllocate(32, spaceFor(tenure))
	if !ok {
		return 0, false
	}
	h.writeHeader(a, newHeader(KindKSArray))
	h.writeWord(a+8, value.FromAddr(ht))
	h.writeU32(a+16, n)
	h.writeWord(a+24, value.FromAddr(items))
	h.Stats.BytesAllocated += 32
	return a, true
}

// AllocateFunction allocates a Function object. bodyIndex is a Go-side
// registry index (into the interpreter's AST-block table or native-table);
// native selects which registry bodyIndex refers to.
func (h *Heap) AllocateFunction(name, params value.Word, native bool, bodyIndex uint64, tenure Tenure) (value.Addr, error) {
	a, err := h.allocate(32, tenure)
	if err != nil {
		return 0, err
	}
	h.writeHeader(a, newHeader(KindFunction))
	h.writeWord(a+8, name)
	h.writeWord(a+16, params)
	body := bodyIndex << 1
	if native {
		body |= 1
	}
	h.writeI64(a+24, int64(body))
	h.Stats.BytesAllocated += 32
	return a, nil
}

// FunctionBody decodes a Function's body field: whether it is native, and
// the registry index to look it up by.
func (h *Heap) FunctionBody(a value.Addr) (native bool, index uint64) {
	body := uint64(h.readI64(a + 24))
	return body&1 != 0, body >> 1
}
