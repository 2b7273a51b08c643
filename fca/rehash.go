package fca

import "github.com/localhash/htab/internal/fcagroup"

// Rehash grows bucket storage to at least n buckets, drawn from the
// prime sequence. It never shrinks; calling it again with the same n
// is a no-op.
func (t *Table[K, V]) Rehash(n int) {
	target := t.policy.SizeIndex(uint64(n))
	if target > t.sizeIndex {
		t.rehash(target)
	}
}

// rehash reallocates to newSizeIndex buckets and relinks every
// existing node into its new bucket's chain. Node indices never
// change across a rehash — only which bucket head and which chain
// neighbours a node has — so no key or value is ever copied and
// pointers returned by callers into value storage stay valid.
func (t *Table[K, V]) rehash(newSizeIndex int) {
	newCount := t.policy.Size(newSizeIndex)
	newBuckets := make([]int32, newCount)
	tails := make([]int32, newCount)
	for i := range newBuckets {
		newBuckets[i] = nilIdx
		tails[i] = nilIdx
	}
	newGroups := fcagroup.NewList(int(newCount))

	for b := range t.buckets {
		for idx := t.buckets[b]; idx != nilIdx; {
			next := t.nodes[idx].next
			nb := int(t.policy.Position(t.hash(t.nodes[idx].key), newSizeIndex))
			t.nodes[idx].next = nilIdx
			if tails[nb] == nilIdx {
				newBuckets[nb] = idx
				newGroups.SetBit(nb)
			} else {
				t.nodes[tails[nb]].next = idx
			}
			tails[nb] = idx
			idx = next
		}
	}

	t.buckets = newBuckets
	t.groups = newGroups
	t.sizeIndex = newSizeIndex
}
