package foa

import "github.com/localhash/htab/internal/ctrl"

// Erase removes key if present, reporting whether it was found.
//
// Erasure never needs a tombstone: a group's overflow byte, once set
// for a hash class, is only ever cleared by a full rehash, so Find's
// early-exit test stays correct even after the slot it once pointed
// through is reset straight back to empty.
func (t *Table[K, V]) Erase(key K) bool {
	idx := t.findSlot(key, t.mix(key))
	if idx < 0 {
		return false
	}
	t.deleteAt(idx)
	return true
}

// Extract removes key if present and returns its value.
func (t *Table[K, V]) Extract(key K) (V, bool) {
	idx := t.findSlot(key, t.mix(key))
	if idx < 0 {
		var zero V
		return zero, false
	}
	v := t.slots[idx].val
	t.deleteAt(idx)
	return v, true
}

func (t *Table[K, V]) deleteAt(idx int) {
	g := idx / ctrl.Size
	n := idx % ctrl.Size
	t.ctrls[g].Reset(n)
	var zero elem[K, V]
	t.slots[idx] = zero
	t.size--
}

// EraseIf removes every element for which pred returns true, returning
// the number of elements removed.
func (t *Table[K, V]) EraseIf(pred func(K, V) bool) int {
	removed := 0
	for g := range t.ctrls {
		grp := &t.ctrls[g]
		for n := 0; n < ctrl.Size; n++ {
			if !grp.IsOccupied(n) {
				continue
			}
			idx := g*ctrl.Size + n
			e := &t.slots[idx]
			if pred(e.key, e.val) {
				t.deleteAt(idx)
				removed++
			}
		}
	}
	return removed
}
