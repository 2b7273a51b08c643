// Package fcagroup accelerates iteration over a separate-chaining
// bucket array. Buckets are partitioned into fixed-size groups of N=64
// (one machine word), each carrying an occupancy bitmask; only groups
// with at least one non-empty bucket are linked into a circular
// doubly-linked list, so advancing past a long run of empty buckets
// costs one list hop instead of N wasted bucket checks.
//
// Groups and the list that chains them are arena-indexed (plain ints
// into a slice) rather than pointer-linked, since a Go slice can be
// grown and relocated by append/realloc in ways a C++ node arena
// cannot.
package fcagroup

import "math/bits"

// N is the number of buckets covered by one group: one bit per machine
// word, matching the original separate-chaining design's choice of
// sizeof(size_t)*8.
const N = 64

// Group is one block of N buckets' occupancy state plus its position
// in the non-empty-group ring.
type Group struct {
	Bitmask    uint64
	Next, Prev int32
}

// List is an arena of groups for a bucket array of some fixed length,
// plus a permanent guard group one-past-the-last real bucket that
// always stays linked, giving iteration a stable "end" to stop at.
type List struct {
	groups     []Group
	sentinelAt int32
}

// NewList allocates a group arena for bucketCount real buckets (plus
// one guard bucket at position bucketCount) and links the sentinel
// group to itself.
func NewList(bucketCount int) *List {
	numGroups := (bucketCount)/N + 1
	l := &List{groups: make([]Group, numGroups)}
	l.sentinelAt = int32(numGroups - 1)
	sentinel := &l.groups[l.sentinelAt]
	sentinel.Bitmask = 1 << uint(bucketCount%N)
	sentinel.Next = l.sentinelAt
	sentinel.Prev = l.sentinelAt
	return l
}

// SentinelGroup returns the index of the permanent guard group (use
// GroupOf on the bucket count for the guard bit within it).
func (l *List) SentinelGroup() int32 { return l.sentinelAt }

// Group returns the group at arena index idx.
func (l *List) Group(idx int32) *Group { return &l.groups[idx] }

// GroupOf returns the arena index and within-group bit for bucket.
func GroupOf(bucket int) (idx int32, bit int) {
	return int32(bucket / N), bucket % N
}

// SetBit marks bucket non-empty, linking its group into the ring the
// first time any of its bits becomes set.
func (l *List) SetBit(bucket int) {
	idx, bit := GroupOf(bucket)
	g := &l.groups[idx]
	wasEmpty := g.Bitmask == 0
	g.Bitmask |= uint64(1) << uint(bit)
	if wasEmpty {
		l.linkBeforeSentinel(idx)
	}
}

// ResetBit marks bucket empty, unlinking its group once no bit remains
// set (the sentinel group is never unlinked).
func (l *List) ResetBit(bucket int) {
	idx, bit := GroupOf(bucket)
	g := &l.groups[idx]
	g.Bitmask &^= uint64(1) << uint(bit)
	if g.Bitmask == 0 && idx != l.sentinelAt {
		l.unlink(idx)
	}
}

func (l *List) linkBeforeSentinel(idx int32) {
	sentinel := &l.groups[l.sentinelAt]
	tailIdx := sentinel.Prev
	tail := &l.groups[tailIdx]
	tail.Next = idx
	l.groups[idx].Prev = tailIdx
	l.groups[idx].Next = l.sentinelAt
	sentinel.Prev = idx
}

func (l *List) unlink(idx int32) {
	g := &l.groups[idx]
	l.groups[g.Prev].Next = g.Next
	l.groups[g.Next].Prev = g.Prev
	g.Next, g.Prev = idx, idx
}

// FirstGroup returns the first group in the non-empty ring, or false
// if the ring is empty. Groups are appended to the ring in the order
// they become non-empty, so this is not necessarily the lowest-indexed
// group; buckets inside the sentinel group are never in the ring.
func (l *List) FirstGroup() (idx int32, ok bool) {
	n := l.groups[l.sentinelAt].Next
	if n == l.sentinelAt {
		return 0, false
	}
	return n, true
}

// NextGroup returns the group following idx in the non-empty ring, or
// false once the sentinel is reached.
func (l *List) NextGroup(idx int32) (next int32, ok bool) {
	n := l.groups[idx].Next
	if n == l.sentinelAt {
		return 0, false
	}
	return n, true
}

// afterMask returns a word with every bit at position >= off set. In
// Go, shifting a uint64 by 64 is well-defined (yields 0) unlike C's
// undefined behaviour for a full-width shift, so off==64 (meaning "no
// bits after the last one in this group") needs no special case.
func afterMask(off int) uint64 {
	return ^uint64(0) << uint(off)
}

// NextBitFrom returns the lowest set bit in bitmask at position >=
// from, or false if there is none.
func NextBitFrom(bitmask uint64, from int) (bit int, ok bool) {
	m := bitmask & afterMask(from)
	if m == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(m), true
}

// FirstBit returns the lowest set bit in bitmask, or false if it is
// zero.
func FirstBit(bitmask uint64) (bit int, ok bool) {
	return NextBitFrom(bitmask, 0)
}
