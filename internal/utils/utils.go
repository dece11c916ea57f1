// Package utils provides small helpers shared by the kzg and kzgmulti
// packages: power-of-two checks, bit-reversal permutations and scalar
// power tables.
package utils

import (
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// IsPowerOfTwo returns true if value is a power of two. Zero is not a
// power of two.
func IsPowerOfTwo(value uint64) bool {
	return value > 0 && (value&(value-1) == 0)
}

// ReverseBits reverses the lowest log2(order) bits of index. order must
// be a power of two and index < order.
func ReverseBits(index, order uint64) uint64 {
	shift := uint64(64 - bits.TrailingZeros64(order))
	return bits.Reverse64(index) >> shift
}

// BitReverse permutes a slice in bit-reversal order, in place. The
// length of the slice must be a power of two.
func BitReverse[K any](list []K) {
	n := uint64(len(list))
	if !IsPowerOfTwo(n) {
		panic("size of list must be a power of two")
	}

	shift := uint64(64 - bits.TrailingZeros64(n))
	for i := uint64(0); i < n; i++ {
		irev := bits.Reverse64(i) >> shift
		if irev > i {
			list[i], list[irev] = list[irev], list[i]
		}
	}
}

// ComputePowers returns [1, x, x^2, ..., x^(n-1)].
func ComputePowers(x fr.Element, n uint64) []fr.Element {
	if n == 0 {
		return []fr.Element{}
	}
	return computePowers(x, n)
}

func computePowers(x fr.Element, n uint64) []fr.Element {
	powers := make([]fr.Element, n)
	powers[0].SetOne()
	for i := uint64(1); i < n; i++ {
		powers[i].Mul(&powers[i-1], &x)
	}
	return powers
}

// ReduceCanonicalBigEndian interprets serScalar as a big-endian integer
// and converts it to an fr.Element. An error is returned if the integer
// is not a canonical representative, ie. if it is greater than or equal
// to the field modulus.
func ReduceCanonicalBigEndian(serScalar []byte) (fr.Element, error) {
	var scalar fr.Element
	err := scalar.SetBytesCanonical(serScalar)
	return scalar, err
}
