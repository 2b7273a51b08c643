package cfoa

import "github.com/localhash/htab/internal/ctrl"

// position locates one slot within a generation.
type position struct {
	g uint64
	n int
}

// lookup walks the probe sequence under per-group read locks and
// returns the position holding key, stopping early once a group's
// overflow byte rules out any further displacement of hash's class.
// The caller must hold a table stripe at least shared.
func (t *Table[K, V]) lookup(a *arrays[K, V], hash uint64, key K) (position, bool) {
	p := newProber(hash & a.groupMask)
	for {
		g := p.group(a.groupMask)
		gl := &a.groupLocks[g]
		gl.RLock()
		grp := &a.ctrls[g]
		m := grp.Match(hash)
		for m != 0 {
			var n int
			n, m = ctrl.LowestSet(m)
			if t.eq(a.slots[int(g)*ctrl.Size+n].key, key) {
				gl.RUnlock()
				return position{g: g, n: n}, true
			}
		}
		notOverflowed := grp.IsNotOverflowed(hash)
		gl.RUnlock()
		if notOverflowed {
			return position{}, false
		}
		if !p.next(a.groupMask) {
			return position{}, false
		}
	}
}

// Find returns the value stored for key and true, or the zero value
// and false if key is absent, as of some instant during the call.
func (t *Table[K, V]) Find(key K) (V, bool) {
	hash := t.mix(key)
	stripe := &t.stripes[stripeFor(hash)]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	p := newProber(hash & a.groupMask)
	for {
		g := p.group(a.groupMask)
		gl := &a.groupLocks[g]
		gl.RLock()
		grp := &a.ctrls[g]
		m := grp.Match(hash)
		for m != 0 {
			var n int
			n, m = ctrl.LowestSet(m)
			idx := int(g)*ctrl.Size + n
			if t.eq(a.slots[idx].key, key) {
				v := a.slots[idx].val
				gl.RUnlock()
				return v, true
			}
		}
		notOverflowed := grp.IsNotOverflowed(hash)
		gl.RUnlock()
		if notOverflowed {
			var zero V
			return zero, false
		}
		if !p.next(a.groupMask) {
			var zero V
			return zero, false
		}
	}
}

// Contains reports whether key is present, as of some instant during
// the call.
func (t *Table[K, V]) Contains(key K) bool {
	_, ok := t.Find(key)
	return ok
}

// Visit calls fn with the value stored for key, under the owning
// group's exclusive lock so fn may mutate it in place. It returns the
// number of elements visited (0 or 1). fn must not call back into t.
func (t *Table[K, V]) Visit(key K, fn func(*V)) int {
	hash := t.mix(key)
	stripe := &t.stripes[stripeFor(hash)]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	for {
		pos, ok := t.lookup(a, hash, key)
		if !ok {
			return 0
		}
		gl := &a.groupLocks[pos.g]
		gl.Lock()
		idx := int(pos.g)*ctrl.Size + pos.n
		if a.ctrls[pos.g].IsOccupied(pos.n) && t.eq(a.slots[idx].key, key) {
			fn(&a.slots[idx].val)
			gl.Unlock()
			return 1
		}
		gl.Unlock()
	}
}
