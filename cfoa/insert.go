package cfoa

import "github.com/localhash/htab/internal/ctrl"

// attempt outcomes for one pass of the insertion protocol.
type attemptStatus int

const (
	attemptDone  attemptStatus = iota // operation finished
	attemptRetry                      // state changed underfoot; restart
	attemptGrow                       // table too full; rehash, then restart
	attemptProbe                      // group exhausted; advance the prober
)

// emplace is the reservation/commit protocol shared by every inserting
// operation:
//
//  1. Under a shared table stripe, record the starting group's
//     insertion counter, then run a lookup pass over the probe
//     sequence under per-group read locks.
//  2. If key is present, re-acquire its group exclusively, re-verify
//     the slot (it may have been erased in the interim), and hand the
//     stored value to onFound; a failed re-verification restarts.
//  3. Otherwise reserve the insertion by bumping size; past the load
//     limit, undo, escape to a rehash, and restart.
//  4. Probe for an available slot under per-group write locks. On
//     taking one, write the metadata, then bump the starting group's
//     counter: if any other insertion landed at the same starting
//     group since step 1 it may have been this very key, so roll the
//     metadata back and restart. Otherwise construct the element and
//     commit.
//
// makeVal runs exactly once, only when an insertion commits; if it
// panics, the reserved slot's metadata is rolled back, the size
// reservation released, and the panic propagates with the table
// valid. onFound runs under the owning group's exclusive lock.
// emplace reports whether an insertion happened.
func (t *Table[K, V]) emplace(key K, makeVal func() V, onFound func(*V)) bool {
	hash := t.mix(key)
	for {
		status, stale, inserted := t.emplaceAttempt(key, hash, makeVal, onFound)
		switch status {
		case attemptDone:
			return inserted
		case attemptGrow:
			t.growBeyond(stale)
		}
	}
}

func (t *Table[K, V]) emplaceAttempt(key K, hash uint64, makeVal func() V, onFound func(*V)) (attemptStatus, *arrays[K, V], bool) {
	stripe := &t.stripes[stripeFor(hash)]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	g0 := hash & a.groupMask
	counter := a.counters[g0].Load()

	if pos, ok := t.lookup(a, hash, key); ok {
		status := t.visitFound(a, pos, key, onFound)
		return status, a, false
	}

	if t.size.Add(1) > a.ml {
		t.size.Add(-1)
		return attemptGrow, a, false
	}

	p := newProber(g0)
	for {
		g := p.group(a.groupMask)
		status, inserted := t.tryInsertAt(a, g, g0, counter, hash, key, makeVal)
		if status != attemptProbe {
			return status, a, inserted
		}
		if !p.next(a.groupMask) {
			// a concurrent erase can free a slot behind the prober
			// after it has moved past; release the reservation and
			// start the pass over rather than spinning here
			t.size.Add(-1)
			return attemptRetry, a, false
		}
	}
}

// visitFound re-verifies a slot located by the lookup pass under its
// group's exclusive lock and applies onFound to it.
func (t *Table[K, V]) visitFound(a *arrays[K, V], pos position, key K, onFound func(*V)) attemptStatus {
	gl := &a.groupLocks[pos.g]
	gl.Lock()
	defer gl.Unlock()
	idx := int(pos.g)*ctrl.Size + pos.n
	if !a.ctrls[pos.g].IsOccupied(pos.n) || !t.eq(a.slots[idx].key, key) {
		return attemptRetry // erased between lookup and lock
	}
	if onFound != nil {
		onFound(&a.slots[idx].val)
	}
	return attemptDone
}

// tryInsertAt claims the lowest available slot of group g for key,
// holding g's exclusive lock throughout. The caller has already
// reserved the size increment; every non-committing outcome releases
// whatever this call took.
func (t *Table[K, V]) tryInsertAt(a *arrays[K, V], g, g0 uint64, counter uint32, hash uint64, key K, makeVal func() V) (attemptStatus, bool) {
	gl := &a.groupLocks[g]
	gl.Lock()
	defer gl.Unlock()
	grp := &a.ctrls[g]
	avail := grp.MatchAvailable()
	if avail == 0 {
		grp.MarkOverflow(hash)
		return attemptProbe, false
	}
	n, _ := ctrl.LowestSet(avail)
	grp.Set(n, hash)
	if a.counters[g0].Add(1) != counter+1 {
		// another insertion landed at g0 since the lookup pass; it may
		// have been this same key
		grp.Reset(n)
		t.size.Add(-1)
		return attemptRetry, false
	}
	committed := false
	defer func() {
		if !committed {
			grp.Reset(n)
			t.size.Add(-1)
		}
	}()
	a.slots[int(g)*ctrl.Size+n] = elem[K, V]{key: key, val: makeVal()}
	committed = true
	return attemptDone, true
}

// Emplace inserts key/value, overwriting any existing value for key.
// It reports whether a new element was added.
func (t *Table[K, V]) Emplace(key K, value V) bool {
	return t.emplace(key, func() V { return value }, func(p *V) { *p = value })
}

// TryEmplace inserts key/value only if key is absent, returning the
// stored value (existing or newly inserted) and whether an insertion
// happened.
func (t *Table[K, V]) TryEmplace(key K, value V) (V, bool) {
	var existing V
	if t.emplace(key, func() V { return value }, func(p *V) { existing = *p }) {
		return value, true
	}
	return existing, false
}

// EmplaceOrVisit inserts key/value if key is absent; otherwise it
// calls fn with the existing value under the owning group's exclusive
// lock. It reports whether an insertion happened. fn must not call
// back into t.
func (t *Table[K, V]) EmplaceOrVisit(key K, value V, fn func(*V)) bool {
	return t.emplace(key, func() V { return value }, fn)
}

// TryEmplaceOrVisit is EmplaceOrVisit with lazy value construction:
// makeVal runs only if the insertion actually happens, mirroring
// TryEmplace's construct-only-if-absent contract. fn must not call
// back into t.
func (t *Table[K, V]) TryEmplaceOrVisit(key K, makeVal func() V, fn func(*V)) bool {
	return t.emplace(key, makeVal, fn)
}
