// Package foa implements the open-addressing "flat" hash table engine:
// fixed-size groups of slots (see internal/ctrl) probed in triangular
// order, with SWAR metadata matching doing most of the work of ruling
// out non-matches without touching key storage at all.
//
// Pointer stability is a property of the value type the caller
// instantiates Table with, not a mode the engine switches on: Table[K,
// V] relocates (K, V) pairs on rehash, so storing V directly means
// values move; storing V as a pointer type means only the pointer
// moves and the pointee never does. Both are the same engine.
package foa

import (
	"github.com/localhash/htab/hashmix"
	"github.com/localhash/htab/internal/ctrl"
	"github.com/localhash/htab/sizepolicy"
)

// sizePolicy is satisfied by sizepolicy.PowerOfTwo; kept as an
// interface here so the probing math never needs to know which
// concrete policy it is talking to.
type sizePolicy interface {
	SizeIndex(n uint64) int
	Size(sizeIndex int) uint64
	Position(hash uint64, sizeIndex int) uint64
}

type elem[K comparable, V any] struct {
	key K
	val V
}

// Table is a generic open-addressing hash table keyed by K, holding
// values of type V, addressed by 15-slot groups of metadata.
type Table[K comparable, V any] struct {
	ctrls []ctrl.Group
	slots []elem[K, V]

	size      int
	ml        int // element count above which the next insert triggers growth
	groupMask uint64
	sizeIndex int
	policy    sizePolicy

	hash    func(K) uint64
	eq      func(K, K) bool
	quality hashmix.Quality

	maxLoadFactor float64
}

// Options configures a new Table. Hash and Eq are required
// collaborators; everything else defaults sensibly.
type Options[K comparable] struct {
	Hash          func(K) uint64
	Eq            func(K, K) bool
	Quality       hashmix.Quality
	MaxLoadFactor float64 // defaults to 0.875 if zero
}

// New builds an empty Table with capacity for at least n elements.
func New[K comparable, V any](n int, opts Options[K]) *Table[K, V] {
	if opts.Eq == nil {
		panic("foa: Options.Eq is required")
	}
	if opts.Hash == nil {
		panic("foa: Options.Hash is required")
	}
	mlf := opts.MaxLoadFactor
	if mlf <= 0 {
		mlf = 0.875
	}
	t := &Table[K, V]{
		hash:          opts.Hash,
		eq:            opts.Eq,
		quality:       opts.Quality,
		maxLoadFactor: mlf,
		policy:        sizepolicy.PowerOfTwo{},
	}
	t.allocate(t.groupsNeeded(n))
	return t
}

// groupsNeeded returns the size index of a group count sized so that n
// elements fit comfortably under maxLoadFactor, with a one-group floor
// so an empty table is never zero capacity. One slot beyond n is always
// reserved for the sentinel, which consumes the last group's last slot.
func (t *Table[K, V]) groupsNeeded(n int) int {
	if n < 1 {
		n = 1
	}
	slots := uint64(float64(n)/t.maxLoadFactor) + 1
	if s := uint64(n) + 1; s > slots {
		slots = s
	}
	groups := (slots + ctrl.Size - 1) / ctrl.Size
	return t.policy.SizeIndex(groups)
}

// allocate replaces the table's storage with a freshly zeroed arena of
// the given size index, discarding any existing contents. Callers are
// responsible for moving elements across beforehand. The last group's
// last slot is marked as the sentinel: MatchAvailable never offers it,
// so it stays reserved for the table's lifetime.
func (t *Table[K, V]) allocate(sizeIndex int) {
	numGroups := t.policy.Size(sizeIndex)
	t.sizeIndex = sizeIndex
	t.groupMask = numGroups - 1
	t.ctrls = make([]ctrl.Group, numGroups)
	t.slots = make([]elem[K, V], numGroups*ctrl.Size)
	t.ctrls[numGroups-1].SetSentinel(ctrl.Size - 1)
	capacity := len(t.slots) - 1
	ml := int(float64(capacity) * t.maxLoadFactor)
	if ml > capacity {
		ml = capacity
	}
	if ml < 1 {
		ml = 1
	}
	t.ml = ml
}

func (t *Table[K, V]) mix(k K) uint64 {
	return hashmix.Apply(t.quality, t.hash(k))
}

// Len reports the number of elements currently stored.
func (t *Table[K, V]) Len() int { return t.size }

// Empty reports whether the table holds no elements.
func (t *Table[K, V]) Empty() bool { return t.size == 0 }

// Capacity reports the number of usable slots across all groups (the
// sentinel slot is excluded).
func (t *Table[K, V]) Capacity() int { return len(t.slots) - 1 }

// LoadFactor reports the current size divided by capacity.
func (t *Table[K, V]) LoadFactor() float64 {
	c := t.Capacity()
	if c <= 0 {
		return 0
	}
	return float64(t.size) / float64(c)
}

// MaxLoadFactor reports the configured growth threshold ratio.
func (t *Table[K, V]) MaxLoadFactor() float64 { return t.maxLoadFactor }

// SetMaxLoadFactor changes the growth threshold ratio; it takes effect
// on the next rehash, not retroactively.
func (t *Table[K, V]) SetMaxLoadFactor(mlf float64) {
	if mlf <= 0 || mlf > 1 {
		panic("foa: max load factor must be in (0, 1]")
	}
	t.maxLoadFactor = mlf
}

// Clear removes every element, keeping the current capacity.
func (t *Table[K, V]) Clear() {
	for i := range t.ctrls {
		t.ctrls[i] = ctrl.Group{}
	}
	t.ctrls[len(t.ctrls)-1].SetSentinel(ctrl.Size - 1)
	var zero elem[K, V]
	for i := range t.slots {
		t.slots[i] = zero
	}
	t.size = 0
}

// Swap exchanges the entire contents (including hash/eq collaborators)
// of t and other in constant time.
func (t *Table[K, V]) Swap(other *Table[K, V]) {
	*t, *other = *other, *t
}
