package foa

import "github.com/localhash/htab/internal/ctrl"

// insertEmptySlot finds (and reserves) a slot for hash without
// checking for an existing key, marking every group it has to skip
// over as overflowed for hash's class so later lookups can stop early.
func (t *Table[K, V]) insertEmptySlot(hash uint64) int {
	p := newProber(t.positionFor(hash))
	for {
		g := p.group(t.groupMask)
		grp := &t.ctrls[g]
		if avail := grp.MatchAvailable(); avail != 0 {
			n, _ := ctrl.LowestSet(avail)
			grp.Set(n, hash)
			return int(g)*ctrl.Size + n
		}
		grp.MarkOverflow(hash)
		p.advance()
	}
}

// TryEmplace inserts key/value only if key is absent, returning the
// stored value (existing or newly inserted) and whether an insertion
// happened.
func (t *Table[K, V]) TryEmplace(key K, value V) (V, bool) {
	hash := t.mix(key)
	if idx := t.findSlot(key, hash); idx >= 0 {
		return t.slots[idx].val, false
	}
	t.growIfNeeded()
	idx := t.insertEmptySlot(hash)
	t.slots[idx] = elem[K, V]{key: key, val: value}
	t.size++
	return value, true
}

// Emplace inserts key/value, overwriting any existing value for key.
// It reports whether a new element was added.
func (t *Table[K, V]) Emplace(key K, value V) bool {
	hash := t.mix(key)
	if idx := t.findSlot(key, hash); idx >= 0 {
		t.slots[idx].val = value
		return false
	}
	t.growIfNeeded()
	idx := t.insertEmptySlot(hash)
	t.slots[idx] = elem[K, V]{key: key, val: value}
	t.size++
	return true
}

func (t *Table[K, V]) growIfNeeded() {
	if t.size+1 <= t.ml {
		return
	}
	t.rehash(t.sizeIndex + 1)
}

// Reserve grows the table, if needed, so that n more elements can be
// inserted without triggering a rehash.
func (t *Table[K, V]) Reserve(n int) {
	target := t.groupsNeeded(t.size + n)
	if target > t.sizeIndex {
		t.rehash(target)
	}
}

// rehash reallocates to newSizeIndex and reinserts every element.
// Pointer stability for V depends only on whether V is itself a
// pointer type; the (K, V) pairs themselves always move.
func (t *Table[K, V]) rehash(newSizeIndex int) {
	old := t.slots
	oldCtrls := t.ctrls
	size := t.size
	t.allocate(newSizeIndex)
	for g := range oldCtrls {
		grp := &oldCtrls[g]
		for n := 0; n < ctrl.Size; n++ {
			if !grp.IsOccupied(n) {
				continue
			}
			e := old[g*ctrl.Size+n]
			hash := t.mix(e.key)
			idx := t.insertEmptySlot(hash)
			t.slots[idx] = e
		}
	}
	t.size = size
}

// Rehash forces the table to at least the capacity needed for n
// elements at the current max load factor, even if that capacity is
// smaller than the current one is not supported: Rehash never shrinks.
func (t *Table[K, V]) Rehash(n int) {
	target := t.groupsNeeded(n)
	if target > t.sizeIndex {
		t.rehash(target)
	}
}
