package kzg

import (
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// FftG1 is the radix-2 transform of FftFr lifted to the curve group:
// it maps a vector of G1 "coefficients" to its evaluations over the
// domain. It is used to convert a monomial SRS to Lagrange form and to
// turn the FK20 h-commitments into per-coset proofs.
func (d *Domain) FftG1(values []bls12381.G1Affine) []bls12381.G1Affine {
	d.assertSize(len(values))
	return fftG1(values, d.Generator)
}

// IfftG1 is the inverse transform of FftG1.
func (d *Domain) IfftG1(values []bls12381.G1Affine) []bls12381.G1Affine {
	d.assertSize(len(values))
	inverseFFT := fftG1(values, d.GeneratorInv)

	var invBigint big.Int
	d.CardinalityInv.BigInt(&invBigint)
	for i := range inverseFFT {
		inverseFFT[i].ScalarMultiplication(&inverseFFT[i], &invBigint)
	}
	return inverseFFT
}

func fftG1(values []bls12381.G1Affine, root fr.Element) []bls12381.G1Affine {
	n := len(values)
	if n == 1 {
		return []bls12381.G1Affine{values[0]}
	}

	var rootSquared fr.Element
	rootSquared.Square(&root)

	even := make([]bls12381.G1Affine, 0, n/2)
	odd := make([]bls12381.G1Affine, 0, n/2)
	for i := 0; i < n; i += 2 {
		even = append(even, values[i])
		odd = append(odd, values[i+1])
	}

	left := fftG1(even, rootSquared)
	right := fftG1(odd, rootSquared)

	out := make([]bls12381.G1Affine, n)
	pow := fr.One()
	var powBigint big.Int
	for i := 0; i < n/2; i++ {
		var tmp bls12381.G1Affine
		pow.BigInt(&powBigint)
		tmp.ScalarMultiplication(&right[i], &powBigint)
		out[i].Add(&left[i], &tmp)
		out[i+n/2].Sub(&left[i], &tmp)
		pow.Mul(&pow, &root)
	}
	return out
}
