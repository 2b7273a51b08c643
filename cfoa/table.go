// Package cfoa is a concurrent variant of foa: the same grouped,
// open-addressed layout and triangular probe sequence, protected by
// two tiers of locking instead of requiring external synchronization.
//
// A fixed stripe of 128 table-level reader/writer spinlocks is keyed
// by hash (whole-table visits pick one round-robin instead); ordinary
// operations take one stripe's read side, so they
// only ever contend with a rehash, never with each other, while a
// rehash takes every stripe's write side in index order before
// swapping in a new generation of storage. Within a generation, each
// group additionally carries its own reader/writer spinlock guarding
// that group's metadata and slots.
//
// Duplicate-key races between concurrent insertions are caught by a
// per-group insertion counter: an inserter records its starting
// group's counter before the lookup pass and commits metadata only if
// no other insertion has landed at the same starting group since —
// otherwise it rolls the metadata back and restarts, because the
// interleaved insertion may have been the very same key.
package cfoa

import (
	"sync"
	"sync/atomic"
	"unsafe"

	gokitlog "github.com/go-kit/log"

	"github.com/localhash/htab/hashmix"
	"github.com/localhash/htab/internal/ctrl"
	"github.com/localhash/htab/internal/rwspinlock"
	"github.com/localhash/htab/sizepolicy"
)

const numStripes = 128

type elem[K comparable, V any] struct {
	key K
	val V
}

// arrays is one generation of table storage. A rehash builds a brand
// new arrays value and swaps it in; after publication only the
// contents of ctrls/slots change, either under the owning group's
// lock or with every stripe held exclusively (EraseIf, Merge), and
// counters only ever advance.
type arrays[K comparable, V any] struct {
	ctrls      []ctrl.Group
	slots      []elem[K, V]
	groupLocks []rwspinlock.RWSpinLock
	counters   []atomic.Uint32
	groupMask  uint64
	sizeIndex  int
	ml         int64
}

// Table is a concurrency-safe open-addressing hash table. Its zero
// value is not usable; construct with New.
type Table[K comparable, V any] struct {
	cur atomic.Pointer[arrays[K, V]]

	stripes  [numStripes]rwspinlock.RWSpinLock
	rehashMu sync.Mutex

	size atomic.Int64

	policy        sizepolicy.PowerOfTwo
	hash          func(K) uint64
	eq            func(K, K) bool
	quality       hashmix.Quality
	maxLoadFactor float64
	logger        gokitlog.Logger
}

// Options configures a new Table.
type Options[K comparable] struct {
	Hash          func(K) uint64
	Eq            func(K, K) bool
	Quality       hashmix.Quality
	MaxLoadFactor float64 // defaults to 0.875 if zero

	// Logger, if non-nil, receives structured diagnostics for rehash
	// events (old/new capacity, triggering size). A nil Logger costs
	// nothing on the hot path: no rehash means no log call at all.
	Logger gokitlog.Logger
}

// New builds an empty Table with capacity for at least n elements.
func New[K comparable, V any](n int, opts Options[K]) *Table[K, V] {
	if opts.Hash == nil || opts.Eq == nil {
		panic("cfoa: Options.Hash and Options.Eq are required")
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
		logger:        opts.Logger,
	}
	t.cur.Store(t.newArrays(t.groupsNeeded(n)))
	return t
}

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

func (t *Table[K, V]) newArrays(sizeIndex int) *arrays[K, V] {
	numGroups := t.policy.Size(sizeIndex)
	a := &arrays[K, V]{
		ctrls:      make([]ctrl.Group, numGroups),
		slots:      make([]elem[K, V], numGroups*ctrl.Size),
		groupLocks: make([]rwspinlock.RWSpinLock, numGroups),
		counters:   make([]atomic.Uint32, numGroups),
		groupMask:  numGroups - 1,
		sizeIndex:  sizeIndex,
	}
	a.ctrls[numGroups-1].SetSentinel(ctrl.Size - 1)
	capacity := len(a.slots) - 1
	ml := int64(float64(capacity) * t.maxLoadFactor)
	if ml > int64(capacity) {
		ml = int64(capacity)
	}
	if ml < 1 {
		ml = 1
	}
	a.ml = ml
	return a
}

func (t *Table[K, V]) mix(k K) uint64 {
	return hashmix.Apply(t.quality, t.hash(k))
}

func stripeFor(hash uint64) uint64 {
	return hash % numStripes
}

// stripeRR hands out stripe indices round-robin to operations that are
// not keyed by any particular hash (VisitAll, VisitAllParallel). A
// process-global counter rather than a per-thread one:
// Go has no cheap thread-locals, and the counter only spreads load, it
// never affects correctness.
var stripeRR atomic.Uint32

func nextStripe() uint64 {
	return uint64(stripeRR.Add(1)) % numStripes
}

// Len reports the number of elements currently stored. It is a
// best-effort snapshot under concurrent mutation.
func (t *Table[K, V]) Len() int { return int(t.size.Load()) }

// Empty reports whether the table holds no elements, as a best-effort
// snapshot under concurrent mutation.
func (t *Table[K, V]) Empty() bool { return t.size.Load() == 0 }

// Capacity reports the current generation's usable slot count.
func (t *Table[K, V]) Capacity() int { return len(t.cur.Load().slots) - 1 }

// MaxLoadFactor reports the growth threshold ratio fixed at
// construction.
func (t *Table[K, V]) MaxLoadFactor() float64 { return t.maxLoadFactor }

// Clear removes every element, keeping the current capacity. It is
// linearized against all other operations, the same as a rehash.
func (t *Table[K, V]) Clear() {
	t.rehashMu.Lock()
	defer t.rehashMu.Unlock()
	t.lockAllStripes()
	defer t.unlockAllStripes()
	t.cur.Store(t.newArrays(t.cur.Load().sizeIndex))
	t.size.Store(0)
}

// lockBoth acquires both tables' rehash mutexes and full stripe sets,
// ordered by table address so two goroutines locking the same pair in
// opposite roles cannot deadlock. The returned function releases
// everything.
func lockBoth[K comparable, V any](a, b *Table[K, V]) func() {
	if uintptr(unsafe.Pointer(b)) < uintptr(unsafe.Pointer(a)) {
		a, b = b, a
	}
	a.rehashMu.Lock()
	b.rehashMu.Lock()
	a.lockAllStripes()
	b.lockAllStripes()
	return func() {
		b.unlockAllStripes()
		a.unlockAllStripes()
		b.rehashMu.Unlock()
		a.rehashMu.Unlock()
	}
}

// Swap exchanges the stored elements of t and other. Both tables must
// have been constructed with compatible Hash/Eq collaborators; the
// collaborators themselves are not exchanged, since operations read
// them before acquiring any table lock.
func (t *Table[K, V]) Swap(other *Table[K, V]) {
	if t == other {
		return
	}
	unlock := lockBoth(t, other)
	defer unlock()
	ta, oa := t.cur.Load(), other.cur.Load()
	t.cur.Store(oa)
	other.cur.Store(ta)
	ts, os := t.size.Load(), other.size.Load()
	t.size.Store(os)
	other.size.Store(ts)
}

// Merge moves every element of src whose key is absent from t into t,
// leaving colliding keys behind in src. Both tables are exclusively
// locked for the duration, so the move is atomic with respect to every
// other operation on either table.
func (t *Table[K, V]) Merge(src *Table[K, V]) {
	if t == src {
		return
	}
	unlock := lockBoth(t, src)
	defer unlock()

	sa := src.cur.Load()
	for g := range sa.ctrls {
		grp := &sa.ctrls[g]
		for n := 0; n < ctrl.Size; n++ {
			if !grp.IsOccupied(n) {
				continue
			}
			idx := g*ctrl.Size + n
			e := sa.slots[idx]
			hash := t.mix(e.key)
			a := t.cur.Load()
			if findUnlocked(a, hash, e.key, t.eq) >= 0 {
				continue
			}
			if t.size.Load()+1 > a.ml {
				t.rehashLocked(a)
				a = t.cur.Load()
			}
			insertEmptyUnlocked(a, hash, e)
			t.size.Add(1)
			grp.Reset(n)
			var zero elem[K, V]
			sa.slots[idx] = zero
			src.size.Add(-1)
		}
	}
}

// findUnlocked walks a's probe sequence without locking, valid only
// while the caller holds every stripe exclusively.
func findUnlocked[K comparable, V any](a *arrays[K, V], hash uint64, key K, eq func(K, K) bool) int {
	p := newProber(hash & a.groupMask)
	for {
		g := p.group(a.groupMask)
		grp := &a.ctrls[g]
		m := grp.Match(hash)
		for m != 0 {
			var n int
			n, m = ctrl.LowestSet(m)
			idx := int(g)*ctrl.Size + n
			if eq(a.slots[idx].key, key) {
				return idx
			}
		}
		if grp.IsNotOverflowed(hash) {
			return -1
		}
		if !p.next(a.groupMask) {
			return -1
		}
	}
}
