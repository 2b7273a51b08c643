package htab

import (
	"bytes"
	"testing"
)

func stringHasher() Hasher[string] {
	return Hasher[string]{
		Hash: func(s string) uint64 {
			var h uint64 = 1469598103934665603
			for i := 0; i < len(s); i++ {
				h ^= uint64(s[i])
				h *= 1099511628211
			}
			return h
		},
	}
}

func TestMapBasics(t *testing.T) {
	m := NewMap[string, int](0, stringHasher())
	m.Set("a", 1)
	m.Set("b", 2)
	if v, ok := m.Get("a"); !ok || v != 1 {
		t.Fatalf("Get(a) = %d,%v", v, ok)
	}
	if !m.Delete("a") {
		t.Fatalf("Delete(a) should succeed")
	}
	if _, ok := m.Get("a"); ok {
		t.Fatalf("a should be gone")
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestSetBasics(t *testing.T) {
	s := NewSet[string](0, stringHasher())
	s.Add("x")
	s.Add("y")
	if !s.Contains("x") {
		t.Fatalf("should contain x")
	}
	s.Delete("x")
	if s.Contains("x") {
		t.Fatalf("x should be gone")
	}
}

func TestMultiMapEqualRange(t *testing.T) {
	mm := NewMultiMap[string, int](0, stringHasher())
	mm.Insert("a", 1)
	mm.Insert("a", 2)
	mm.Insert("b", 3)

	got := map[int]bool{}
	mm.EqualRange("a", func(v int) { got[v] = true })
	if len(got) != 2 || !got[1] || !got[2] {
		t.Fatalf("EqualRange(a) = %v", got)
	}
	if mm.Count("b") != 1 {
		t.Fatalf("Count(b) should be 1")
	}
}

func TestMapSerializeRoundTrip(t *testing.T) {
	m := NewMap[string, int64](0, stringHasher())
	m.Set("one", 1)
	m.Set("two", 2)
	m.Set("three", 3)

	var buf bytes.Buffer
	if err := SerializeMap(&buf, m, StringCodec, Int64Codec); err != nil {
		t.Fatalf("SerializeMap: %v", err)
	}

	got, err := DeserializeMap[string, int64](&buf, stringHasher(), StringCodec, Int64Codec)
	if err != nil {
		t.Fatalf("DeserializeMap: %v", err)
	}
	if got.Len() != m.Len() {
		t.Fatalf("Len() = %d, want %d", got.Len(), m.Len())
	}
	for _, k := range []string{"one", "two", "three"} {
		want, _ := m.Get(k)
		have, ok := got.Get(k)
		if !ok || have != want {
			t.Fatalf("round trip mismatch for %q: got %d, want %d", k, have, want)
		}
	}
}

func TestMultiMapSerializeRoundTrip(t *testing.T) {
	mm := NewMultiMap[string, int64](0, stringHasher())
	mm.Insert("a", 1)
	mm.Insert("a", 2)
	mm.Insert("b", 3)

	var buf bytes.Buffer
	if err := SerializeMultiMap(&buf, mm, StringCodec, Int64Codec); err != nil {
		t.Fatalf("SerializeMultiMap: %v", err)
	}

	got, err := DeserializeMultiMap[string, int64](&buf, stringHasher(), StringCodec, Int64Codec)
	if err != nil {
		t.Fatalf("DeserializeMultiMap: %v", err)
	}
	if got.Count("a") != 2 {
		t.Fatalf("Count(a) = %d, want 2", got.Count("a"))
	}
	seen := map[int64]bool{}
	got.EqualRange("a", func(v int64) { seen[v] = true })
	if !seen[1] || !seen[2] {
		t.Fatalf("EqualRange(a) = %v", seen)
	}
	if got.Count("b") != 1 {
		t.Fatalf("Count(b) = %d, want 1", got.Count("b"))
	}
}
