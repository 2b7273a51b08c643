// Package hashmix post-mixes weak (near-identity) hashes before they
// are used to address a hash table, and passes strong hashes through
// untouched.
//
// Whether a hash needs mixing is a property of the Hash collaborator
// supplied to the table, not of any particular key value, so it is
// fixed once via a Quality tag at table construction time rather than
// re-decided per call.
package hashmix

// Quality describes whether a Hash collaborator already produces
// well-avalanched output.
type Quality int

const (
	// Strong hashes (e.g. xxhash, SipHash, any cryptographic or
	// dedicated non-cryptographic hash function) are used as-is.
	Strong Quality = iota
	// Weak hashes (identity, or near-identity hashes over small
	// integers/pointers) are run through Mix before use.
	Weak
)

// Apply mixes h according to quality.
func Apply(quality Quality, h uint64) uint64 {
	if quality == Strong {
		return h
	}
	return Mix(h)
}

// Mix is the 64-bit avalanche finalizer: two xorshifts around a
// multiply by the Murmur3-style odd constant 0xff51afd7ed558ccd.
func Mix(x uint64) uint64 {
	x ^= x >> 23
	x *= 0xff51afd7ed558ccd
	x ^= x >> 23
	return x
}

// Mix32 is the 32-bit avalanche finalizer, used on platforms where
// uintptr is 32 bits: two shifts, one multiply by 0x56b5aaad.
func Mix32(x uint32) uint32 {
	x ^= x >> 18
	x *= 0x56b5aaad
	x ^= x >> 16
	return x
}
