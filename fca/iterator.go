package fca

import "github.com/localhash/htab/internal/fcagroup"

// Iterator walks every element of a Table, hopping over runs of empty
// buckets a whole group (64 buckets) at a time via the bucket-group
// bitmask index, and walking each non-empty bucket's chain node by
// node.
//
// The walk covers the ring of non-empty groups first and the sentinel
// group last: small tables keep all their real buckets inside the
// sentinel group itself (which is never spliced into the ring, since
// its guard bit keeps its bitmask permanently non-zero), so the
// sentinel group must always be visited, and its guard bit — sitting
// one past the last real bucket — is what terminates the walk.
type Iterator[K comparable, V any] struct {
	t     *Table[K, V]
	group int32
	bit   int
	node  int32
	done  bool
}

// Begin returns an iterator positioned at the first element, or one
// for which Valid reports false if the table is empty.
func (t *Table[K, V]) Begin() Iterator[K, V] {
	it := Iterator[K, V]{t: t}
	g, ok := t.groups.FirstGroup()
	if !ok {
		g = t.groups.SentinelGroup()
	}
	it.group = g
	if !it.seedFromGroup(0) {
		it.advanceGroup()
	}
	return it
}

// seedFromGroup positions the iterator at the first non-empty bucket
// of the current group at bit position >= from, reporting false if the
// group holds no further real buckets (the guard bit does not count).
func (it *Iterator[K, V]) seedFromGroup(from int) bool {
	bm := it.t.groups.Group(it.group).Bitmask
	bit, ok := fcagroup.NextBitFrom(bm, from)
	if !ok {
		return false
	}
	bucket := int(it.group)*fcagroup.N + bit
	if bucket >= len(it.t.buckets) {
		return false // the guard bit marking the table's end
	}
	it.bit = bit
	it.node = it.t.buckets[bucket]
	return true
}

// advanceGroup moves to the next group holding a real non-empty
// bucket: through the ring first, then the sentinel group, then done.
func (it *Iterator[K, V]) advanceGroup() {
	for {
		if it.group == it.t.groups.SentinelGroup() {
			it.done = true
			return
		}
		g, ok := it.t.groups.NextGroup(it.group)
		if !ok {
			g = it.t.groups.SentinelGroup()
		}
		it.group = g
		if it.seedFromGroup(0) {
			return
		}
	}
}

// Valid reports whether the iterator is positioned on an element.
func (it *Iterator[K, V]) Valid() bool { return !it.done }

// Key returns the current element's key. Valid must be true.
func (it *Iterator[K, V]) Key() K { return it.t.nodes[it.node].key }

// Value returns a pointer to the current element's value. Valid must
// be true. A rehash only relinks bucket chains, so the pointer
// survives it; a later insertion can still grow the node arena and
// relocate it, so the pointer must not be held across any mutating
// call. For addresses that stay stable for an element's lifetime,
// store a pointer type as V.
func (it *Iterator[K, V]) Value() *V { return &it.t.nodes[it.node].val }

// Next advances the iterator to the following element.
func (it *Iterator[K, V]) Next() {
	if next := it.t.nodes[it.node].next; next != nilIdx {
		it.node = next
		return
	}
	if it.seedFromGroup(it.bit + 1) {
		return
	}
	it.advanceGroup()
}

// Visit calls fn with the current key and a pointer to its value for
// every element, in iteration order.
func (t *Table[K, V]) Visit(fn func(K, *V)) {
	for it := t.Begin(); it.Valid(); it.Next() {
		fn(it.Key(), it.Value())
	}
}
