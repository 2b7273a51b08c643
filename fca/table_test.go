package fca

import "testing"

func newIntTable(n int, multi bool) *Table[int, string] {
	return New[int, string](n, Options[int]{
		Hash:  func(k int) uint64 { return uint64(k) },
		Eq:    func(a, b int) bool { return a == b },
		Multi: multi,
	})
}

func newIntIntTable(n int, multi bool) *Table[int, int] {
	return New[int, int](n, Options[int]{
		Hash:  func(k int) uint64 { return uint64(k) },
		Eq:    func(a, b int) bool { return a == b },
		Multi: multi,
	})
}

func TestUniqueInsertFindErase(t *testing.T) {
	tb := newIntTable(0, false)
	for i := 0; i < 300; i++ {
		if !tb.Emplace(i, "v") {
			t.Fatalf("expected fresh insert for %d", i)
		}
	}
	if tb.Len() != 300 {
		t.Fatalf("Len() = %d, want 300", tb.Len())
	}
	for i := 0; i < 300; i++ {
		if v, ok := tb.Find(i); !ok || v != "v" {
			t.Fatalf("Find(%d) = %q,%v", i, v, ok)
		}
	}
	for i := 0; i < 150; i++ {
		if !tb.Erase(i) {
			t.Fatalf("Erase(%d) should find key", i)
		}
	}
	if tb.Len() != 150 {
		t.Fatalf("Len() = %d, want 150", tb.Len())
	}
	for i := 0; i < 150; i++ {
		if tb.Contains(i) {
			t.Fatalf("key %d should be gone", i)
		}
	}
}

// A rehash only relinks bucket chains, so value pointers captured
// before it still address the same nodes afterwards. (Insertions are a
// different matter: growing the node arena relocates it, so no
// insertion happens between capture and check here.)
func TestRehashPreservesNodeIdentity(t *testing.T) {
	tb := newIntTable(0, false)
	for i := 0; i < 500; i++ {
		tb.Emplace(i, "v")
	}
	startBuckets := tb.BucketCount()
	ptrs := map[int]*string{}
	for it := tb.Begin(); it.Valid(); it.Next() {
		ptrs[it.Key()] = it.Value()
	}
	tb.Rehash(5000)
	if tb.BucketCount() <= startBuckets {
		t.Fatalf("table should have grown")
	}
	for k, p := range ptrs {
		*p = "changed"
		nv, _ := tb.Find(k)
		if nv != "changed" {
			t.Fatalf("node identity for key %d not preserved across rehash", k)
		}
	}
}

func TestMultiInsertCountAndEqualRange(t *testing.T) {
	tb := newIntTable(0, true)
	tb.InsertMulti(1, "a")
	tb.InsertMulti(1, "b")
	tb.InsertMulti(1, "c")
	tb.InsertMulti(2, "z")

	if c := tb.Count(1); c != 3 {
		t.Fatalf("Count(1) = %d, want 3", c)
	}
	if c := tb.Count(2); c != 1 {
		t.Fatalf("Count(2) = %d, want 1", c)
	}
	if c := tb.Count(3); c != 0 {
		t.Fatalf("Count(3) = %d, want 0", c)
	}

	var got []string
	tb.EqualRange(1, func(v string) { got = append(got, v) })
	if len(got) != 3 {
		t.Fatalf("EqualRange(1) returned %v", got)
	}
	want := map[string]bool{"a": true, "b": true, "c": true}
	for _, v := range got {
		if !want[v] {
			t.Fatalf("unexpected value %q in EqualRange(1)", v)
		}
	}
	if tb.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", tb.Len())
	}
}

func TestMultiEraseAllAndEraseOne(t *testing.T) {
	tb := newIntTable(0, true)
	tb.InsertMulti(1, "a")
	tb.InsertMulti(1, "b")
	tb.InsertMulti(1, "c")
	tb.InsertMulti(2, "z")

	if !tb.Erase(1) {
		t.Fatalf("Erase(1) should remove one member")
	}
	if c := tb.Count(1); c != 2 {
		t.Fatalf("Count(1) = %d after single erase, want 2", c)
	}

	removed := tb.EraseAll(1)
	if removed != 2 {
		t.Fatalf("EraseAll(1) removed %d, want 2", removed)
	}
	if tb.Contains(1) {
		t.Fatalf("key 1 should be fully gone")
	}
	if !tb.Contains(2) {
		t.Fatalf("key 2 should be untouched")
	}
	if tb.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", tb.Len())
	}
}

func TestEraseIfAcrossGroups(t *testing.T) {
	tb := newIntIntTable(0, true)
	for i := 0; i < 10; i++ {
		tb.InsertMulti(i%3, i)
	}
	removed := tb.EraseIf(func(_ int, v int) bool { return v%2 == 0 })
	if removed != 5 {
		t.Fatalf("removed = %d, want 5", removed)
	}
	if tb.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", tb.Len())
	}
	total := 0
	for it := tb.Begin(); it.Valid(); it.Next() {
		if *it.Value()%2 == 0 {
			t.Fatalf("even value %d survived EraseIf", *it.Value())
		}
		total++
	}
	if total != 5 {
		t.Fatalf("iterator visited %d elements, want 5", total)
	}
}

// A table small enough that every real bucket lives inside the
// sentinel group must still iterate: such groups are never spliced
// into the non-empty ring (their guard bit keeps the bitmask non-zero
// from the start), so the walk has to reach them through its final
// sentinel-group stop.
func TestIteratorCoversBucketsInSentinelGroup(t *testing.T) {
	tb := newIntTable(0, false) // 13 buckets, all in the sentinel group
	if tb.BucketCount() != 13 {
		t.Fatalf("BucketCount() = %d, want 13", tb.BucketCount())
	}
	for i := 0; i < 5; i++ {
		tb.Emplace(i, "v")
	}
	got := map[int]bool{}
	tb.Visit(func(k int, _ *string) { got[k] = true })
	if len(got) != 5 {
		t.Fatalf("visited %d elements, want 5", len(got))
	}
	it := tb.Begin()
	if !it.Valid() {
		t.Fatalf("Begin() should land on an element")
	}
}

func TestIteratorVisitsEveryElement(t *testing.T) {
	tb := newIntTable(0, false)
	want := map[int]bool{}
	for i := 0; i < 400; i++ {
		tb.Emplace(i, "v")
		want[i] = true
	}
	got := map[int]bool{}
	tb.Visit(func(k int, _ *string) { got[k] = true })
	if len(got) != len(want) {
		t.Fatalf("visited %d elements, want %d", len(got), len(want))
	}
}

func TestMerge(t *testing.T) {
	a := newIntTable(0, false)
	b := newIntTable(0, false)
	a.Emplace(1, "a1")
	a.Emplace(2, "a2")
	b.Emplace(2, "b2")
	b.Emplace(3, "b3")

	a.Merge(b)

	if a.Len() != 3 {
		t.Fatalf("a.Len() = %d, want 3", a.Len())
	}
	if v, _ := a.Find(2); v != "a2" {
		t.Fatalf("colliding key should keep destination value, got %q", v)
	}
	if b.Len() != 1 {
		t.Fatalf("b.Len() = %d, want 1", b.Len())
	}
}
