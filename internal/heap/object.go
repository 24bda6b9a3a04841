package heap

import "kipper/internal/value"

// HeapNumberValue reads a boxed int64.
func (h *Heap) HeapNumberValue(a value.Addr) int64 { return h.readI64(a + 8) }

// StringLen reports a String object's byte length.
func (h *Heap) StringLen(a value.Addr) uint32 { return h.readU32(a + 8) }

// StringBytes returns a read-only view of a String's bytes.
func (h *Heap) StringBytes(a value.Addr) []byte {
	return h.readBytes(a+16, h.readU32(a+8))
}

// ArrayLen reports a raw Array's slot count.
func (h *Heap) ArrayLen(a value.Addr) uint32 { return h.readU32(a + 8) }

// ArrayGet reads slot i of a raw Array. The caller must ensure i is in
// bounds.
func (h *Heap) ArrayGet(a value.Addr, i uint32) value.Word {
	return h.readWord(a + 16 + value.Addr(i*8))
}

// ArraySet writes slot i of a raw Array if i is in bounds, applying the
// write barrier; it reports whether the write happened.
func (h *Heap) ArraySet(a value.Addr, i uint32, w value.Word) bool {
	if i >= h.ArrayLen(a) {
		return false
	}
	addr := a + 16 + value.Addr(i*8)
	h.writeWord(addr, w)
	h.WriteBarrier(a, w)
	return true
}

// KSObjectElements returns the address of a KSObject's backing HashTable.
func (h *Heap) KSObjectElements(a value.Addr) value.Addr {
	return value.AsAddr(h.readWord(a + 8))
}

func (h *Heap) setKSObjectElements(a value.Addr, ht value.Addr) {
	w := value.FromAddr(ht)
	h.writeWord(a+8, w)
	h.WriteBarrier(a, w)
}

// KSArrayLen reports a KSArray's logical element count.
func (h *Heap) KSArrayLen(a value.Addr) uint32 { return h.readU32(a + 16) }

func (h *Heap) setKSArrayLen(a value.Addr, n uint32) { h.writeU32(a+16, n) }

// KSArrayItems returns the address of a KSArray's backing dense Array.
func (h *Heap) KSArrayItems(a value.Addr) value.Addr {
	return value.AsAddr(h.readWord(a + 24))
}

func (h *Heap) setKSArrayItems(a value.Addr, items value.Addr) {
	w := value.FromAddr(items)
	h.writeWord(a+24, w)
	h.WriteBarrier(a, w)
}

// KSArrayGet reads element i, or Undefined if out of range.
func (h *Heap) KSArrayGet(a value.Addr, i uint32) value.Word {
	if i >= h.KSArrayLen(a) {
		return value.Undefined
	}
	return h.ArrayGet(h.KSArrayItems(a), i)
}

// KSArraySet writes element i in place; out-of-range writes are silently
// dropped, matching Array::Set's documented behavior (growth only
// happens through Push).
func (h *Heap) KSArraySet(a value.Addr, i uint32, w value.Word) {
	if i >= h.KSArrayLen(a) {
		return
	}
	h.ArraySet(h.KSArrayItems(a), i, w)
}

// KSArrayPush appends w, growing the backing Array (doubling capacity)
// when it is full. The receiver and the old backing Array are pinned as
// roots for the duration of the growth allocation: a is a bare address,
// not a handle, so if growing it forces a collection that relocates a
// itself, the stale local must be refreshed rather than reused.
func (h *Heap) KSArrayPush(a value.Addr, w value.Word) error {
	self := value.FromAddr(a)
	var oldItems value.Word = value.Undefined
	h.PushRoot(pinnedRoot{&self, &w, &oldItems})
	defer h.PopRoot()

	a = value.AsAddr(self)
	items := h.KSArrayItems(a)
	n := h.KSArrayLen(a)
	capacity := h.ArrayLen(items)
	if n >= capacity {
		newCap := capacity * 2
		if newCap == 0 {
			newCap = 4
		}
		oldItems = value.FromAddr(items)
		newItems, ok := h.allocateArrayNoGC(newCap, Fresh)
		if !ok {
			h.Collect(NewSpace)
			a = value.AsAddr(self)
			items = value.AsAddr(oldItems)
			newItems, ok = h.allocateArrayNoGC(newCap, Fresh)
			if !ok {
				// too large for a young semispace: place it in old space
				newItems, ok = h.allocateArrayNoGC(newCap, Tenured)
			}
			if !ok {
				return ErrOutOfMemory
			}
		}
		for i := uint32(0); i < n; i++ {
			h.ArraySet(newItems, i, h.ArrayGet(items, i))
		}
		h.setKSArrayItems(a, newItems)
		items = newItems
	}
	h.ArraySet(items, n, w)
	h.setKSArrayLen(a, n+1)
	return nil
}

// FunctionName and FunctionParams read a Function's name/params fields.
func (h *Heap) FunctionName(a value.Addr) value.Word   { return h.readWord(a + 8) }
func (h *Heap) FunctionParams(a value.Addr) value.Word { return h.readWord(a + 16) }
