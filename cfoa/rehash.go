package cfoa

import (
	"github.com/go-kit/log/level"

	"github.com/localhash/htab/internal/ctrl"
)

// rehashLocked builds a generation one size step past stale, moves
// every element across, and publishes it. The caller must hold
// rehashMu and every stripe exclusively.
func (t *Table[K, V]) rehashLocked(stale *arrays[K, V]) {
	next := t.newArrays(stale.sizeIndex + 1)
	for g := range stale.ctrls {
		grp := &stale.ctrls[g]
		for n := 0; n < ctrl.Size; n++ {
			if !grp.IsOccupied(n) {
				continue
			}
			e := stale.slots[g*ctrl.Size+n]
			insertEmptyUnlocked(next, t.mix(e.key), e)
		}
	}
	t.cur.Store(next)

	if t.logger != nil {
		level.Debug(t.logger).Log(
			"msg", "cfoa rehash",
			"old_capacity", len(stale.slots)-1,
			"new_capacity", len(next.slots)-1,
			"size", t.size.Load(),
		)
	}
}

// growBeyond doubles capacity past stale's generation, unless some
// other goroutine has already published a newer generation while the
// caller was deciding to grow.
func (t *Table[K, V]) growBeyond(stale *arrays[K, V]) {
	t.rehashMu.Lock()
	defer t.rehashMu.Unlock()
	if t.cur.Load() != stale {
		return // someone else already grew; let the caller retry
	}
	t.lockAllStripes()
	defer t.unlockAllStripes()
	t.rehashLocked(stale)
}

// insertEmptyUnlocked places e into next without any locking, valid
// only while next is unpublished or every stripe is held exclusively.
func insertEmptyUnlocked[K comparable, V any](next *arrays[K, V], hash uint64, e elem[K, V]) {
	p := newProber(hash & next.groupMask)
	for {
		g := p.group(next.groupMask)
		grp := &next.ctrls[g]
		if avail := grp.MatchAvailable(); avail != 0 {
			n, _ := ctrl.LowestSet(avail)
			grp.Set(n, hash)
			next.slots[int(g)*ctrl.Size+n] = e
			return
		}
		grp.MarkOverflow(hash)
		p.advance()
	}
}

func (t *Table[K, V]) lockAllStripes() {
	for i := range t.stripes {
		t.stripes[i].Lock()
	}
}

func (t *Table[K, V]) unlockAllStripes() {
	for i := range t.stripes {
		t.stripes[i].Unlock()
	}
}

// Reserve grows the table, if needed, so that n more elements can be
// inserted without triggering a rehash.
func (t *Table[K, V]) Reserve(n int) {
	for {
		a := t.cur.Load()
		target := t.groupsNeeded(int(t.size.Load()) + n)
		if target <= a.sizeIndex {
			return
		}
		t.growBeyond(a)
	}
}
