package foa

import "github.com/localhash/htab/internal/ctrl"

// Iterator walks every occupied slot of a Table in group-then-slot
// order. The zero value is not valid; obtain one from Begin.
type Iterator[K comparable, V any] struct {
	t     *Table[K, V]
	group int
	slot  int
}

// Begin returns an iterator positioned at the first occupied slot, or
// an iterator for which Valid reports false if the table is empty.
func (t *Table[K, V]) Begin() Iterator[K, V] {
	it := Iterator[K, V]{t: t, group: 0, slot: 0}
	it.advance()
	return it
}

// Valid reports whether the iterator is positioned on an element.
func (it *Iterator[K, V]) Valid() bool {
	return it.group < len(it.t.ctrls)
}

// Key returns the current element's key. Valid must be true.
func (it *Iterator[K, V]) Key() K {
	return it.t.slots[it.group*ctrl.Size+it.slot].key
}

// Value returns a pointer to the current element's value. Valid must
// be true. The pointer is invalidated by any mutating call on the
// table unless V is itself a pointer type.
func (it *Iterator[K, V]) Value() *V {
	return &it.t.slots[it.group*ctrl.Size+it.slot].val
}

// Next advances the iterator to the following occupied slot.
func (it *Iterator[K, V]) Next() {
	it.slot++
	it.advance()
}

func (it *Iterator[K, V]) advance() {
	t := it.t
	for it.group < len(t.ctrls) {
		grp := &t.ctrls[it.group]
		for it.slot < ctrl.Size {
			if grp.IsOccupied(it.slot) {
				return
			}
			it.slot++
		}
		it.group++
		it.slot = 0
	}
}

// Visit calls fn with the current key and a pointer to its value for
// every element, in iteration order.
func (t *Table[K, V]) Visit(fn func(K, *V)) {
	for it := t.Begin(); it.Valid(); it.Next() {
		fn(it.Key(), it.Value())
	}
}
