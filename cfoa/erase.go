package cfoa

import "github.com/localhash/htab/internal/ctrl"

// erase walks the probe sequence under per-group write locks and
// removes key's slot if pred (nil meaning "always") accepts its value.
// As in the single-threaded engine, no tombstone is needed: a group's
// overflow byte is sticky until the next rehash, so Find's early exit
// stays correct after the slot is reset straight to empty.
func (t *Table[K, V]) erase(key K, pred func(V) bool) bool {
	hash := t.mix(key)
	stripe := &t.stripes[stripeFor(hash)]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	p := newProber(hash & a.groupMask)
	for {
		g := p.group(a.groupMask)
		gl := &a.groupLocks[g]
		gl.Lock()
		grp := &a.ctrls[g]
		m := grp.Match(hash)
		for m != 0 {
			var n int
			n, m = ctrl.LowestSet(m)
			idx := int(g)*ctrl.Size + n
			if !t.eq(a.slots[idx].key, key) {
				continue
			}
			if pred != nil && !pred(a.slots[idx].val) {
				gl.Unlock()
				return false
			}
			grp.Reset(n)
			var zero elem[K, V]
			a.slots[idx] = zero
			gl.Unlock()
			t.size.Add(-1)
			return true
		}
		notOverflowed := grp.IsNotOverflowed(hash)
		gl.Unlock()
		if notOverflowed {
			return false
		}
		if !p.next(a.groupMask) {
			return false
		}
	}
}

// Erase removes key if present, reporting whether it was found.
func (t *Table[K, V]) Erase(key K) bool {
	return t.erase(key, nil)
}

// EraseKeyIf removes key only if pred accepts its current value,
// evaluated under the owning group's exclusive lock. It returns the
// number of elements removed (0 or 1). pred must not call back into t.
func (t *Table[K, V]) EraseKeyIf(key K, pred func(V) bool) int {
	if t.erase(key, pred) {
		return 1
	}
	return 0
}
