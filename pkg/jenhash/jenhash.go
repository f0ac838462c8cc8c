// Package jenhash implements the Jenkins one-at-a-time string hash used to
// identify classes, enums and members by name.
//
// The engine variant keeps a 64-bit intermediate between the final mixing
// steps, which gives different results from the canonical 32-bit algorithm.
// Both are provided; every identifier stored by this module uses Sum.
package jenhash

import "fmt"

// Hash is a 32-bit name hash.
type Hash uint32

// Sum returns the engine hash of s.
func Sum(s string) Hash {
	var r uint64
	for i := 0; i < len(s); i++ {
		r += uint64(s[i])
		r += r << 10
		r ^= r >> 6
		r &= 0xffffffff
	}
	r += r << 3
	r ^= r >> 11
	r += r << 15
	return Hash(r)
}

// SumCanonical returns the canonical 32-bit Jenkins one-at-a-time hash of s.
func SumCanonical(s string) Hash {
	var r uint32
	for i := 0; i < len(s); i++ {
		r += uint32(s[i])
		r += r << 10
		r ^= r >> 6
	}
	r += r << 3
	r ^= r >> 11
	r += r << 15
	return Hash(r)
}

// SumAll hashes every name in order.
func SumAll(names ...string) []Hash {
	out := make([]Hash, len(names))
	for i, n := range names {
		out[i] = Sum(n)
	}
	return out
}

// String formats the hash the way dumps print it.
func (h Hash) String() string {
	return fmt.Sprintf("0x%08X", uint32(h))
}
