package hashmix

import (
	"github.com/cespare/xxhash/v2"
	"github.com/dolthub/maphash"
)

// BytesHasher returns a Hash collaborator over byte slices backed by
// xxhash, a strong non-cryptographic hash. Tables using it should be
// constructed with Quality Strong: xxhash already avalanches its
// output, so post-mixing it would only cost cycles.
func BytesHasher() func([]byte) uint64 {
	return xxhash.Sum64
}

// StringHasher returns a Hash collaborator over strings backed by
// xxhash, mirroring BytesHasher. Also Strong quality.
func StringHasher() func(string) uint64 {
	return xxhash.Sum64String
}

// ComparableHasher returns a Hash collaborator over any comparable type
// backed by dolthub/maphash, which wraps Go's runtime hash for the
// type. For small scalar keys (ints, small structs, pointers) this is
// close to identity and must be treated as Weak: callers should mix
// its output (or construct the owning table with Quality Weak) before
// using it to address a table.
func ComparableHasher[K comparable]() func(K) uint64 {
	h := maphash.NewHasher[K]()
	return h.Hash
}
