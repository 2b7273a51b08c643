// Package fca implements the closed-addressing ("separate chaining")
// hash table engine: one singly-linked list of nodes per bucket, with
// a bucket-group bitmask index (internal/fcagroup) letting iteration
// skip whole runs of empty buckets, and bucket counts drawn from a
// prime sequence (sizepolicy.Prime) so a plain, non-avalanched hash
// still spreads reasonably via modulo.
//
// Nodes sharing an equal key are kept contiguous in their bucket's
// chain and linked into a small ring (via groupPrev on the group's
// first node, pointing at the group's last node) so appending another
// equivalent key, or finding where a group ends, is O(1) rather than
// O(group size).
package fca

import (
	"github.com/localhash/htab/internal/fcagroup"
	"github.com/localhash/htab/sizepolicy"
)

type node[K comparable, V any] struct {
	key  K
	val  V
	next int32 // -1 if last node in the bucket chain

	// groupPrev is only meaningful on the first node of an
	// equivalence group: it holds the index of that group's last
	// node, so the whole run [first..last] can be located in O(1).
	// Non-first members leave it at -1.
	groupPrev int32
}

const nilIdx = int32(-1)

// Table is a generic closed-addressing hash table keyed by K.
// multi records Options.Multi; no operation consults it. Whether a key
// may repeat is decided by the method called: InsertMulti always adds
// an element, while TryEmplace and Emplace keep keys unique.
type Table[K comparable, V any] struct {
	buckets []int32
	groups  *fcagroup.List
	nodes   []node[K, V]
	free    int32 // head of the free list, threaded through node.next

	size          int
	sizeIndex     int
	policy        sizepolicy.Prime
	maxLoadFactor float64

	hash  func(K) uint64
	eq    func(K, K) bool
	multi bool
}

// Options configures a new Table.
type Options[K comparable] struct {
	Hash          func(K) uint64
	Eq            func(K, K) bool
	Multi         bool
	MaxLoadFactor float64 // defaults to 1.0 if zero
}

// New builds an empty Table with bucket capacity for at least n
// elements.
func New[K comparable, V any](n int, opts Options[K]) *Table[K, V] {
	if opts.Hash == nil || opts.Eq == nil {
		panic("fca: Options.Hash and Options.Eq are required")
	}
	mlf := opts.MaxLoadFactor
	if mlf <= 0 {
		mlf = 1.0
	}
	t := &Table[K, V]{
		hash:          opts.Hash,
		eq:            opts.Eq,
		multi:         opts.Multi,
		maxLoadFactor: mlf,
		free:          nilIdx,
	}
	t.allocateBuckets(t.policy.SizeIndex(minBucketsFor(n, mlf)))
	return t
}

func minBucketsFor(n int, mlf float64) uint64 {
	if n < 1 {
		n = 1
	}
	return uint64(float64(n)/mlf) + 1
}

func (t *Table[K, V]) allocateBuckets(sizeIndex int) {
	t.sizeIndex = sizeIndex
	count := t.policy.Size(sizeIndex)
	t.buckets = make([]int32, count)
	for i := range t.buckets {
		t.buckets[i] = nilIdx
	}
	t.groups = fcagroup.NewList(int(count))
}

func (t *Table[K, V]) bucketFor(hash uint64) int {
	return int(t.policy.Position(hash, t.sizeIndex))
}

// Len reports the number of elements stored.
func (t *Table[K, V]) Len() int { return t.size }

// Empty reports whether the table holds no elements.
func (t *Table[K, V]) Empty() bool { return t.size == 0 }

// BucketCount reports the number of buckets currently allocated.
func (t *Table[K, V]) BucketCount() int { return len(t.buckets) }

// LoadFactor reports size divided by bucket count.
func (t *Table[K, V]) LoadFactor() float64 {
	if len(t.buckets) == 0 {
		return 0
	}
	return float64(t.size) / float64(len(t.buckets))
}

// MaxLoadFactor reports the configured growth threshold ratio.
func (t *Table[K, V]) MaxLoadFactor() float64 { return t.maxLoadFactor }

// SetMaxLoadFactor changes the growth threshold ratio; it takes effect
// on the next insertion or rehash, not retroactively.
func (t *Table[K, V]) SetMaxLoadFactor(mlf float64) {
	if mlf <= 0 {
		panic("fca: max load factor must be positive")
	}
	t.maxLoadFactor = mlf
}

func (t *Table[K, V]) allocNode(key K, val V) int32 {
	if t.free != nilIdx {
		idx := t.free
		t.free = t.nodes[idx].next
		t.nodes[idx] = node[K, V]{key: key, val: val, next: nilIdx, groupPrev: nilIdx}
		return idx
	}
	t.nodes = append(t.nodes, node[K, V]{key: key, val: val, next: nilIdx, groupPrev: nilIdx})
	return int32(len(t.nodes) - 1)
}

func (t *Table[K, V]) freeNode(idx int32) {
	t.nodes[idx] = node[K, V]{next: t.free, groupPrev: nilIdx}
	t.free = idx
}

// Clear removes every element, keeping the current bucket count.
func (t *Table[K, V]) Clear() {
	for i := range t.buckets {
		t.buckets[i] = nilIdx
	}
	t.nodes = t.nodes[:0]
	t.free = nilIdx
	t.size = 0
	t.groups = fcagroup.NewList(len(t.buckets))
}

// Swap exchanges the entire contents of t and other in constant time.
func (t *Table[K, V]) Swap(other *Table[K, V]) {
	*t, *other = *other, *t
}
