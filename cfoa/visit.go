package cfoa

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/localhash/htab/internal/ctrl"
)

// VisitAll calls fn with the key and value of every element, one group
// at a time under that group's exclusive lock, so fn may mutate the
// value in place. A table stripe is held shared for the duration,
// keeping the generation stable against rehash. It returns the number
// of elements visited. fn must not call back into t.
func (t *Table[K, V]) VisitAll(fn func(K, *V)) int {
	stripe := &t.stripes[nextStripe()]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	visited := 0
	for g := range a.groupLocks {
		visited += visitGroup(a, g, fn)
	}
	return visited
}

func visitGroup[K comparable, V any](a *arrays[K, V], g int, fn func(K, *V)) int {
	gl := &a.groupLocks[g]
	gl.Lock()
	defer gl.Unlock()
	grp := &a.ctrls[g]
	visited := 0
	for n := 0; n < ctrl.Size; n++ {
		if grp.IsOccupied(n) {
			e := &a.slots[g*ctrl.Size+n]
			fn(e.key, &e.val)
			visited++
		}
	}
	return visited
}

// VisitAllParallel is VisitAll with up to concurrency groups visited
// at once. fn must be safe to call concurrently from multiple
// goroutines and must not call back into t.
func (t *Table[K, V]) VisitAllParallel(ctx context.Context, concurrency int, fn func(K, *V)) error {
	if concurrency < 1 {
		concurrency = 1
	}
	stripe := &t.stripes[nextStripe()]
	stripe.RLock()
	defer stripe.RUnlock()

	a := t.cur.Load()
	sem := semaphore.NewWeighted(int64(concurrency))
	for g := range a.groupLocks {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g := g
		go func() {
			defer sem.Release(1)
			visitGroup(a, g, fn)
		}()
	}
	return sem.Acquire(ctx, int64(concurrency))
}

// EraseIf removes every element for which pred returns true, returning
// the number removed. It briefly blocks every other operation on the
// table, the same as a rehash does.
func (t *Table[K, V]) EraseIf(pred func(K, V) bool) int {
	t.lockAllStripes()
	defer t.unlockAllStripes()

	a := t.cur.Load()
	removed := 0
	for g := range a.ctrls {
		grp := &a.ctrls[g]
		for n := 0; n < ctrl.Size; n++ {
			if !grp.IsOccupied(n) {
				continue
			}
			idx := g*ctrl.Size + n
			e := a.slots[idx]
			if pred(e.key, e.val) {
				grp.Reset(n)
				var zero elem[K, V]
				a.slots[idx] = zero
				removed++
			}
		}
	}
	if removed > 0 {
		t.size.Add(int64(-removed))
	}
	return removed
}
