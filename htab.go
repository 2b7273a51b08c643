// Package htab exposes the Set/Map/MultiSet/MultiMap façades described
// as external collaborators of the underlying table engines: thin
// generic wrappers picking a concrete engine (foa for unique-key
// containers, fca for multi-key ones) and giving it an idiomatic,
// container-shaped API.
package htab

import (
	"github.com/localhash/htab/fca"
	"github.com/localhash/htab/foa"
	"github.com/localhash/htab/hashmix"
)

// Hasher pairs the two collaborators every container needs: a hash
// function and an equality predicate.
type Hasher[K comparable] struct {
	Hash    func(K) uint64
	Eq      func(K, K) bool
	Quality hashmix.Quality
}

func (h Hasher[K]) eq() func(K, K) bool {
	if h.Eq != nil {
		return h.Eq
	}
	return func(a, b K) bool { return a == b }
}

// Map is a unique-key associative container, addressed by open
// addressing (foa.Table).
type Map[K comparable, V any] struct {
	t *foa.Table[K, V]
}

// NewMap builds an empty Map with capacity for at least n elements.
func NewMap[K comparable, V any](n int, h Hasher[K]) *Map[K, V] {
	return &Map[K, V]{t: foa.New[K, V](n, foa.Options[K]{
		Hash: h.Hash, Eq: h.eq(), Quality: h.Quality,
	})}
}

func (m *Map[K, V]) Len() int { return m.t.Len() }

func (m *Map[K, V]) Empty() bool { return m.t.Empty() }

func (m *Map[K, V]) Get(key K) (V, bool) { return m.t.Find(key) }

func (m *Map[K, V]) Contains(key K) bool { return m.t.Contains(key) }

func (m *Map[K, V]) Set(key K, value V) bool { return m.t.Emplace(key, value) }

func (m *Map[K, V]) GetOrInsert(key K, v V) (V, bool) { return m.t.TryEmplace(key, v) }

func (m *Map[K, V]) Delete(key K) bool { return m.t.Erase(key) }

func (m *Map[K, V]) Extract(key K) (V, bool) { return m.t.Extract(key) }

func (m *Map[K, V]) Clear() { m.t.Clear() }

func (m *Map[K, V]) DeleteIf(pred func(K, V) bool) int { return m.t.EraseIf(pred) }

func (m *Map[K, V]) Reserve(n int) { m.t.Reserve(n) }

func (m *Map[K, V]) Capacity() int { return m.t.Capacity() }

func (m *Map[K, V]) LoadFactor() float64 { return m.t.LoadFactor() }

func (m *Map[K, V]) Merge(other *Map[K, V]) { m.t.Merge(other.t) }
func (m *Map[K, V]) Range(fn func(K, V) bool) {
	for it := m.t.Begin(); it.Valid(); it.Next() {
		if !fn(it.Key(), *it.Value()) {
			return
		}
	}
}

// Set is a unique-key set, addressed by open addressing (foa.Table).
type Set[K comparable] struct {
	t *foa.Table[K, struct{}]
}

// NewSet builds an empty Set with capacity for at least n elements.
func NewSet[K comparable](n int, h Hasher[K]) *Set[K] {
	return &Set[K]{t: foa.New[K, struct{}](n, foa.Options[K]{
		Hash: h.Hash, Eq: h.eq(), Quality: h.Quality,
	})}
}

func (s *Set[K]) Len() int { return s.t.Len() }

func (s *Set[K]) Empty() bool { return s.t.Empty() }

func (s *Set[K]) Contains(key K) bool { return s.t.Contains(key) }

func (s *Set[K]) Add(key K) bool {
	_, inserted := s.t.TryEmplace(key, struct{}{})
	return inserted
}

func (s *Set[K]) Delete(key K) bool { return s.t.Erase(key) }

func (s *Set[K]) Clear() { s.t.Clear() }

func (s *Set[K]) Reserve(n int) { s.t.Reserve(n) }

func (s *Set[K]) Capacity() int { return s.t.Capacity() }

func (s *Set[K]) DeleteIf(pred func(K) bool) int {
	return s.t.EraseIf(func(k K, _ struct{}) bool { return pred(k) })
}
func (s *Set[K]) Range(fn func(K) bool) {
	for it := s.t.Begin(); it.Valid(); it.Next() {
		if !fn(it.Key()) {
			return
		}
	}
}

// MultiMap is a multi-key associative container (duplicate keys
// allowed), addressed by separate chaining (fca.Table).
type MultiMap[K comparable, V any] struct {
	t *fca.Table[K, V]
}

// NewMultiMap builds an empty MultiMap with bucket capacity for at
// least n elements.
func NewMultiMap[K comparable, V any](n int, h Hasher[K]) *MultiMap[K, V] {
	return &MultiMap[K, V]{t: fca.New[K, V](n, fca.Options[K]{
		Hash: h.Hash, Eq: h.eq(), Multi: true,
	})}
}

func (m *MultiMap[K, V]) Len() int { return m.t.Len() }

func (m *MultiMap[K, V]) Empty() bool { return m.t.Empty() }

func (m *MultiMap[K, V]) Count(key K) int { return m.t.Count(key) }

func (m *MultiMap[K, V]) Insert(key K, value V) { m.t.InsertMulti(key, value) }

func (m *MultiMap[K, V]) EqualRange(key K, fn func(V)) { m.t.EqualRange(key, fn) }

func (m *MultiMap[K, V]) DeleteOne(key K) bool { return m.t.Erase(key) }

func (m *MultiMap[K, V]) DeleteAll(key K) int { return m.t.EraseAll(key) }

func (m *MultiMap[K, V]) Clear() { m.t.Clear() }

func (m *MultiMap[K, V]) Reserve(n int) { m.t.Reserve(n) }

func (m *MultiMap[K, V]) BucketCount() int { return m.t.BucketCount() }

func (m *MultiMap[K, V]) LoadFactor() float64 { return m.t.LoadFactor() }
func (m *MultiMap[K, V]) Range(fn func(K, V) bool) {
	for it := m.t.Begin(); it.Valid(); it.Next() {
		if !fn(it.Key(), *it.Value()) {
			return
		}
	}
}

// MultiSet is a multi-key set (duplicate keys allowed), addressed by
// separate chaining (fca.Table).
type MultiSet[K comparable] struct {
	t *fca.Table[K, struct{}]
}

// NewMultiSet builds an empty MultiSet with bucket capacity for at
// least n elements.
func NewMultiSet[K comparable](n int, h Hasher[K]) *MultiSet[K] {
	return &MultiSet[K]{t: fca.New[K, struct{}](n, fca.Options[K]{
		Hash: h.Hash, Eq: h.eq(), Multi: true,
	})}
}

func (s *MultiSet[K]) Len() int { return s.t.Len() }

func (s *MultiSet[K]) Empty() bool { return s.t.Empty() }

func (s *MultiSet[K]) Count(key K) int { return s.t.Count(key) }

func (s *MultiSet[K]) Insert(key K) { s.t.InsertMulti(key, struct{}{}) }

func (s *MultiSet[K]) DeleteOne(key K) bool { return s.t.Erase(key) }

func (s *MultiSet[K]) DeleteAll(key K) int { return s.t.EraseAll(key) }

func (s *MultiSet[K]) Clear() { s.t.Clear() }

func (s *MultiSet[K]) Reserve(n int) { s.t.Reserve(n) }

func (s *MultiSet[K]) BucketCount() int { return s.t.BucketCount() }
func (s *MultiSet[K]) Range(fn func(K) bool) {
	for it := s.t.Begin(); it.Valid(); it.Next() {
		if !fn(it.Key()) {
			return
		}
	}
}
