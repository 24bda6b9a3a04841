package heap

import (
	"sort"

	"kipper/internal/value"
)

// Collect runs the collection mode selected by space, per the three
// entry points: a new-space request runs a young collection; an
// old-space request runs mark-compact, then also a young collection if
// young space is itself full (a "full GC").
func (h *Heap) Collect(space Space) {
	if space == NewSpace {
		h.collectYoung()
		h.Stats.YoungCollections++
		h.notifyCollect(NewSpace)
		return
	}
	h.collectOld()
	h.Stats.OldCollections++
	h.notifyCollect(OldSpace)
	if _, ok := h.tryAllocate(8, NewSpace); !ok {
		h.collectYoung()
		h.Stats.YoungCollections++
		h.notifyCollect(NewSpace)
	}
}

func (h *Heap) notifyCollect(space Space) {
	if h.OnCollect != nil {
		h.OnCollect(space)
	}
}

// --- young generation: Cheney copying ---------------------------------

// copyWord rewrites w if it is a heap reference into from-space: the
// referent is copied (or promoted) to its new location and w becomes a
// reference to that location. Non-heap words and references that are
// already outside from-space pass through unchanged.
func (h *Heap) copyWord(w value.Word) value.Word {
	if !value.IsHeapObject(w) {
		return w
	}
	a := value.AsAddr(w)
	if !h.young.InFromSpace(a) {
		return w
	}
	return value.FromAddr(h.copyObject(a))
}

func (h *Heap) copyObject(a value.Addr) value.Addr {
	hdr := h.readHeader(a)
	if fwd := headerForwarding(hdr); fwd != 0 {
		return fwd
	}
	kind := headerKind(hdr)
	age := headerAge(hdr)
	size := h.sizeOf(a)

	if age+1 >= h.tenureThreshold {
		if dst, ok := h.old.AllocateRaw(size); ok {
			copy(h.mem[dst:dst+value.Addr(size)], h.mem[a:a+value.Addr(size)])
			h.writeHeader(a, headerSetForwarding(hdr, dst))
			h.gcPromoted = append(h.gcPromoted, dst)
			h.Stats.ObjectsPromoted++
			_ = kind
			return dst
		}
		// OLD_SPACE full: fall through and copy into new space instead.
	}

	dst, ok := h.young.AllocateRaw(size)
	if !ok {
		// to-space is sized to hold everything from-space could have held
		// before the flip; running out mid-collection means the scanning
		// loop mishandled its own bookkeeping.
		panic("kipper/heap: to-space exhausted during young collection")
	}
	copy(h.mem[dst:dst+value.Addr(size)], h.mem[a:a+value.Addr(size)])
	newHdr := headerSetAge(h.readHeader(dst), age+1)
	h.writeHeader(dst, newHdr)
	h.writeHeader(a, headerSetForwarding(hdr, dst))
	return dst
}

func (h *Heap) collectYoung() {
	h.young.Flip()
	h.gcPromoted = h.gcPromoted[:0]

	for _, r := range h.roots {
		r.VisitRoots(func(w *value.Word) { *w = h.copyWord(*w) })
	}

	h.pruneRemembered()

	scan := h.young.toStart()
	for scan < value.Addr(h.young.bump) || len(h.gcPromoted) > 0 {
		for scan < value.Addr(h.young.bump) {
			size := h.sizeOf(scan)
			for _, fa := range h.fieldOffsets(scan) {
				h.writeWord(fa, h.copyWord(h.readWord(fa)))
			}
			scan += value.Addr(size)
		}
		for len(h.gcPromoted) > 0 {
			obj := h.gcPromoted[len(h.gcPromoted)-1]
			h.gcPromoted = h.gcPromoted[:len(h.gcPromoted)-1]
			for _, fa := range h.fieldOffsets(obj) {
				nw := h.copyWord(h.readWord(fa))
				h.writeWord(fa, nw)
				if value.IsHeapObject(nw) && h.young.Contains(value.AsAddr(nw)) {
					h.rememberIfOld(obj)
				}
			}
		}
	}
}

// pruneRemembered rewrites every field of every remembered old-space
// object through the same copy rule, then drops remembered-set entries
// that no longer hold any new-space reference, clearing their header's
// remembered bit.
func (h *Heap) pruneRemembered() {
	keep := h.old.remembered[:0]
	for _, obj := range h.old.remembered {
		stillHolds := false
		for _, fa := range h.fieldOffsets(obj) {
			nw := h.copyWord(h.readWord(fa))
			h.writeWord(fa, nw)
			if value.IsHeapObject(nw) && h.young.Contains(value.AsAddr(nw)) {
				stillHolds = true
			}
		}
		if stillHolds {
			keep = append(keep, obj)
		} else {
			h.writeHeader(obj, headerSetRemembered(h.readHeader(obj), false))
		}
	}
	h.old.pruneRemembered(keep)
}

// WriteBarrier records holder in the remembered set when holder lives in
// old space and newVal points into the young generation. Every mutating
// setter on a heap-reference field must call this after the write.
func (h *Heap) WriteBarrier(holder value.Addr, newVal value.Word) {
	if !h.old.Contains(holder) {
		return
	}
	if value.IsHeapObject(newVal) && h.young.Contains(value.AsAddr(newVal)) {
		h.rememberIfOld(holder)
	}
}

func (h *Heap) rememberIfOld(holder value.Addr) {
	hdr := h.readHeader(holder)
	if headerRemembered(hdr) {
		return
	}
	h.writeHeader(holder, headerSetRemembered(hdr, true))
	h.old.remember(holder)
}

// --- old generation: mark-compact -------------------------------------

func (h *Heap) collectOld() {
	marked := make(map[value.Addr]bool)
	h.markOld(marked)
	h.symbols.evictUnmarked(func(a value.Addr) bool { return marked[a] })

	order := h.markedInAddressOrder(marked)
	forwarding := make(map[value.Addr]value.Addr, len(order))
	next := h.old.base
	for _, a := range order {
		forwarding[a] = next
		next += value.Addr(h.sizeOf(a))
	}
	forwardOf := func(a value.Addr) value.Addr {
		if fa, ok := forwarding[a]; ok {
			return fa
		}
		return a
	}

	rewrite := func(w value.Word) value.Word {
		if !value.IsHeapObject(w) {
			return w
		}
		a := value.AsAddr(w)
		if !h.old.Contains(a) {
			return w
		}
		return value.FromAddr(forwardOf(a))
	}

	for _, r := range h.roots {
		r.VisitRoots(func(w *value.Word) { *w = rewrite(*w) })
	}
	h.symbols.relocate(forwardOf)

	keptRemembered := h.old.remembered[:0]
	for _, obj := range h.old.remembered {
		if !marked[obj] {
			continue
		}
		keptRemembered = append(keptRemembered, forwardOf(obj))
	}
	h.old.pruneRemembered(keptRemembered)

	for _, a := range order {
		for _, fa := range h.fieldOffsets(a) {
			h.writeWord(fa, rewrite(h.readWord(fa)))
		}
	}

	for _, a := range order {
		dst := forwarding[a]
		size := h.sizeOf(a)
		copy(h.mem[dst:dst+value.Addr(size)], h.mem[a:a+value.Addr(size)])
		hdr := h.readHeader(dst)
		hdr = headerSetMarked(hdr, false)
		hdr = headerSetForwarding(hdr, 0)
		h.writeHeader(dst, hdr)
	}
	h.old.bump = uint32(next)
}

func (h *Heap) markOld(marked map[value.Addr]bool) {
	var stack []value.Addr
	push := func(w value.Word) {
		if !value.IsHeapObject(w) {
			return
		}
		a := value.AsAddr(w)
		if h.old.Contains(a) && !marked[a] {
			marked[a] = true
			h.writeHeader(a, headerSetMarked(h.readHeader(a), true))
			stack = append(stack, a)
		}
	}
	for _, r := range h.roots {
		r.VisitRoots(func(w *value.Word) { push(*w) })
	}
	for len(stack) > 0 {
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, fa := range h.fieldOffsets(a) {
			push(h.readWord(fa))
		}
	}
}

func (h *Heap) markedInAddressOrder(marked map[value.Addr]bool) []value.Addr {
	out := make([]value.Addr, 0, len(marked))
	for a := range marked {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
