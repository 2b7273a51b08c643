package foa

import "github.com/localhash/htab/internal/ctrl"

// findSlot returns the flat slot index holding key, or -1 if absent.
func (t *Table[K, V]) findSlot(key K, hash uint64) int {
	p := newProber(t.positionFor(hash))
	for {
		g := p.group(t.groupMask)
		grp := &t.ctrls[g]
		m := grp.Match(hash)
		for m != 0 {
			var n int
			n, m = ctrl.LowestSet(m)
			idx := int(g)*ctrl.Size + n
			if t.eq(t.slots[idx].key, key) {
				return idx
			}
		}
		if grp.IsNotOverflowed(hash) {
			return -1
		}
		if !p.next(t.groupMask) {
			return -1
		}
	}
}

// Find returns the value stored for key and true, or the zero value
// and false if key is absent.
func (t *Table[K, V]) Find(key K) (V, bool) {
	idx := t.findSlot(key, t.mix(key))
	if idx < 0 {
		var zero V
		return zero, false
	}
	return t.slots[idx].val, true
}

// Contains reports whether key is present.
func (t *Table[K, V]) Contains(key K) bool {
	return t.findSlot(key, t.mix(key)) >= 0
}

// At returns a pointer to the stored value for key, or nil if absent.
// The pointer is invalidated by any mutating call on t.
func (t *Table[K, V]) At(key K) *V {
	idx := t.findSlot(key, t.mix(key))
	if idx < 0 {
		return nil
	}
	return &t.slots[idx].val
}
