package fcagroup

import "testing"

func TestSetResetLinksRing(t *testing.T) {
	l := NewList(200)

	if _, ok := l.FirstGroup(); ok {
		t.Fatalf("fresh list should have no non-empty groups besides the sentinel")
	}

	l.SetBit(5)
	l.SetBit(70)
	l.SetBit(130)

	var got []int32
	idx, ok := l.FirstGroup()
	for ok {
		got = append(got, idx)
		idx, ok = l.NextGroup(idx)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 linked groups, got %v", got)
	}

	l.ResetBit(70)
	got = got[:0]
	idx, ok = l.FirstGroup()
	for ok {
		got = append(got, idx)
		idx, ok = l.NextGroup(idx)
	}
	if len(got) != 2 {
		t.Fatalf("expected group containing bucket 70 to unlink once empty, got %v", got)
	}
}

func TestSentinelAlwaysPresent(t *testing.T) {
	l := NewList(130)
	sentinelIdx, bit := GroupOf(130)
	if sentinelIdx != l.SentinelGroup() {
		t.Fatalf("guard bucket should live in the sentinel group")
	}
	g := l.Group(sentinelIdx)
	if g.Bitmask&(1<<uint(bit)) == 0 {
		t.Fatalf("sentinel bit should be set at construction")
	}
}

func TestNextBitFrom(t *testing.T) {
	bm := uint64(0b1000_1001)
	bit, ok := FirstBit(bm)
	if !ok || bit != 0 {
		t.Fatalf("FirstBit = %d,%v want 0,true", bit, ok)
	}
	bit, ok = NextBitFrom(bm, 1)
	if !ok || bit != 3 {
		t.Fatalf("NextBitFrom(1) = %d,%v want 3,true", bit, ok)
	}
	bit, ok = NextBitFrom(bm, 4)
	if !ok || bit != 7 {
		t.Fatalf("NextBitFrom(4) = %d,%v want 7,true", bit, ok)
	}
	_, ok = NextBitFrom(bm, 8)
	if ok {
		t.Fatalf("NextBitFrom(8) should find nothing")
	}
}
