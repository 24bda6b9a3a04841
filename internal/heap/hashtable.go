package heap

import "kipper/internal/value"

// A HashTable is physically a raw Array whose slots carry
// [elements_size, capacity, key0, val0, key1, val1, ...]. capacity is a
// power of two >= 2; an empty slot is marked by an Undefined key.
// Collision resolution is quadratic probing.

func (h *Heap) htSize(a value.Addr) uint32 {
	return uint32(value.AsInt32(h.ArrayGet(a, 0)))
}

func (h *Heap) setHtSize(a value.Addr, n uint32) {
	h.ArraySet(a, 0, value.FromInt32(int32(n)))
}

func (h *Heap) htCapacity(a value.Addr) uint32 {
	return uint32(value.AsInt32(h.ArrayGet(a, 1)))
}

func (h *Heap) htSlotKey(a value.Addr, slot uint32) value.Word {
	return h.ArrayGet(a, 2+slot*2)
}

func (h *Heap) htSlotVal(a value.Addr, slot uint32) value.Word {
	return h.ArrayGet(a, 2+slot*2+1)
}

func (h *Heap) htSetSlot(a value.Addr, slot uint32, key, val value.Word) {
	h.ArraySet(a, 2+slot*2, key)
	h.ArraySet(a, 2+slot*2+1, val)
}

// byteHash is a simple FNV-1a over a byte-keyed String's contents, so
// that property keys with equal bytes land in the same probe sequence
// whether or not they are the same interned String.
func byteHash(b []byte) uint32 {
	var hv uint32 = 2166136261
	for _, c := range b {
		hv ^= uint32(c)
		hv *= 16777619
	}
	return hv
}

func (h *Heap) stringsEqual(a, b value.Addr) bool {
	if a == b {
		return true
	}
	ab, bb := h.StringBytes(a), h.StringBytes(b)
	if len(ab) != len(bb) {
		return false
	}
	for i := range ab {
		if ab[i] != bb[i] {
			return false
		}
	}
	return true
}

// htFindSlot returns the slot holding key (by string content), or the
// first empty slot where it would be inserted, via quadratic probing.
func (h *Heap) htFindSlot(a value.Addr, key value.Addr) (slot uint32, found bool) {
	capacity := h.htCapacity(a)
	mask := capacity - 1
	start := byteHash(h.StringBytes(key)) & mask
	for i := uint32(0); i < capacity; i++ {
		s := (start + i*(i+1)/2) & mask
		k := h.htSlotKey(a, s)
		if value.IsUndefined(k) {
			return s, false
		}
		if value.IsHeapObject(k) && h.stringsEqual(value.AsAddr(k), key) {
			return s, true
		}
	}
	return 0, false
}

// GetProperty looks up a string key in a KSObject's backing HashTable.
func (h *Heap) GetProperty(obj value.Addr, key value.Addr) (value.Word, bool) {
	ht := h.KSObjectElements(obj)
	slot, found := h.htFindSlot(ht, key)
	if !found {
		return value.Undefined, false
	}
	return h.htSlotVal(ht, slot), true
}

// SetProperty stores val under key in obj's HashTable, rehashing into a
// larger table first if the load factor would exceed ~0.8
// ((n + n/4) > capacity, n being the size after the insert).
func (h *Heap) SetProperty(obj value.Addr, key value.Addr, val value.Word) error {
	ht := h.KSObjectElements(obj)
	slot, found := h.htFindSlot(ht, key)
	if found {
		h.htSetSlot(ht, slot, h.htSlotKey(ht, slot), val)
		h.WriteBarrier(ht, val)
		return nil
	}

	size := h.htSize(ht)
	capacity := h.htCapacity(ht)
	if (size+1)+(size+1)/4 > capacity {
		if err := h.rehash(obj, ht); err != nil {
			return err
		}
		ht = h.KSObjectElements(obj)
		slot, _ = h.htFindSlot(ht, key)
	}

	keyWord := value.FromAddr(key)
	h.htSetSlot(ht, slot, keyWord, val)
	h.WriteBarrier(ht, keyWord)
	h.WriteBarrier(ht, val)
	h.setHtSize(ht, size+1)
	return nil
}

// rehash doubles capacity to the next power of two >= 2*(size+1) and
// reinserts every live entry. obj and oldHt are pinned across the new
// table's allocation: both are bare addresses, and a collection
// triggered by that allocation can relocate either one.
func (h *Heap) rehash(obj value.Addr, oldHt value.Addr) error {
	objWord := value.FromAddr(obj)
	oldHtWord := value.FromAddr(oldHt)
	h.PushRoot(pinnedRoot{&objWord, &oldHtWord})
	defer h.PopRoot()

	size := h.htSize(oldHt)
	target := roundUpPow2(2 * (size + 1))
	newHt, ok := h.allocateHashTableNoGC(target, Fresh)
	if !ok {
		h.Collect(NewSpace)
		obj = value.AsAddr(objWord)
		oldHt = value.AsAddr(oldHtWord)
		newHt, ok = h.allocateHashTableNoGC(target, Fresh)
		if !ok {
			return ErrOutOfMemory
		}
	}
	capacity := h.htCapacity(oldHt)
	for s := uint32(0); s < capacity; s++ {
		k := h.htSlotKey(oldHt, s)
		if value.IsUndefined(k) {
			continue
		}
		v := h.htSlotVal(oldHt, s)
		slot, _ := h.htFindSlot(newHt, value.AsAddr(k))
		h.htSetSlot(newHt, slot, k, v)
	}
	h.setHtSize(newHt, size)
	h.setKSObjectElements(obj, newHt)
	return nil
}
