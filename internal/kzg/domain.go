package kzg

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"

	"github.com/protosharding/blobkzg/internal/utils"
)

// ErrPolynomialMismatchedSizeDomain is returned when the number of
// evaluations in a polynomial does not match the domain cardinality.
var ErrPolynomialMismatchedSizeDomain = errors.New("domain size does not equal the number of evaluations in the polynomial")

// Domain is a multiplicative subgroup of the scalar field whose order is
// a power of two. It carries the precomputed roots of unity along with
// their inverses, so that evaluation-form polynomials can be evaluated,
// extended and interpolated over the subgroup.
//
// A Domain is read-only after construction and safe for concurrent use.
type Domain struct {
	// Cardinality is the size of the domain.
	Cardinality uint64
	// CardinalityInv is the inverse of the domain size in the scalar field.
	CardinalityInv fr.Element
	// Generator is a primitive Cardinality'th root of unity.
	Generator fr.Element
	// GeneratorInv is the inverse of Generator.
	GeneratorInv fr.Element
	// Roots are the powers of Generator, possibly permuted by ReverseRoots.
	Roots []fr.Element
	// PreComputedInverses are the inverses of Roots, in the same order.
	PreComputedInverses []fr.Element

	// coset shift for evaluations over g*H instead of H
	cosetGen    fr.Element
	cosetGenInv fr.Element
}

// NewDomain returns a domain of cardinality x with roots in natural
// order. x must be a power of two.
func NewDomain(x uint64) *Domain {
	if !utils.IsPowerOfTwo(x) {
		panic("domain cardinality must be a power of two")
	}

	// gnark-crypto computes the subgroup generator and the coset shift
	// for us; the roots table is laid out here because the engine needs
	// random access to roots and their inverses.
	base := fft.NewDomain(x)

	domain := &Domain{
		Cardinality:    x,
		CardinalityInv: base.CardinalityInv,
		Generator:      base.Generator,
		GeneratorInv:   base.GeneratorInv,
		cosetGen:       base.FrMultiplicativeGen,
		cosetGenInv:    base.FrMultiplicativeGenInv,
	}
	domain.Roots = utils.ComputePowers(domain.Generator, x)
	domain.PreComputedInverses = fr.BatchInvert(domain.Roots)

	return domain
}

// ReverseRoots permutes the roots (and their inverses) into bit-reversal
// order. The blob evaluation domain uses this ordering so that the
// extended evaluation splits into contiguous cosets.
func (d *Domain) ReverseRoots() {
	utils.BitReverse(d.Roots)
	utils.BitReverse(d.PreComputedInverses)
}

// findRootIndex returns the position of point in the roots table, or -1
// if point is not a domain element.
func (d *Domain) findRootIndex(point fr.Element) int {
	for i := 0; i < int(d.Cardinality); i++ {
		if point.Equal(&d.Roots[i]) {
			return i
		}
	}
	return -1
}

// EvaluateLagrangePolynomial evaluates a polynomial given in evaluation
// form at evalPoint using the barycentric formula. The returned index is
// the position of evalPoint in the domain, or -1 if evalPoint lies
// outside of it. When evalPoint is a domain element the stored
// evaluation is returned directly, avoiding a division by zero in the
// barycentric weights.
func (d *Domain) EvaluateLagrangePolynomial(poly []fr.Element, evalPoint fr.Element) (*fr.Element, int, error) {
	if d.Cardinality != uint64(len(poly)) {
		return nil, -1, ErrPolynomialMismatchedSizeDomain
	}

	if index := d.findRootIndex(evalPoint); index != -1 {
		result := poly[index]
		return &result, index, nil
	}

	// ∑ poly_i * root_i / (z - root_i) * (z^n - 1) / n
	denom := make([]fr.Element, d.Cardinality)
	for i := range denom {
		denom[i].Sub(&evalPoint, &d.Roots[i])
	}
	invDenom := fr.BatchInvert(denom)

	var result fr.Element
	for i := 0; i < int(d.Cardinality); i++ {
		var num fr.Element
		num.Mul(&poly[i], &d.Roots[i])
		num.Mul(&num, &invDenom[i])
		result.Add(&result, &num)
	}

	var tmp fr.Element
	tmp.Exp(evalPoint, new(big.Int).SetUint64(d.Cardinality))
	one := fr.One()
	tmp.Sub(&tmp, &one)
	tmp.Mul(&tmp, &d.CardinalityInv)
	result.Mul(&result, &tmp)

	return &result, -1, nil
}

// assertSize guards the transforms: a slice of the wrong length would
// silently pair with the wrong root of unity.
func (d *Domain) assertSize(n int) {
	if uint64(n) != d.Cardinality {
		panic("number of values does not match domain cardinality")
	}
}

// FftFr converts a polynomial in coefficient form to evaluation form
// over the domain. len(values) must equal the domain cardinality.
func (d *Domain) FftFr(values []fr.Element) []fr.Element {
	d.assertSize(len(values))
	return fftFr(values, d.Generator)
}

// IfftFr converts a polynomial in evaluation form over the domain to
// coefficient form.
func (d *Domain) IfftFr(values []fr.Element) []fr.Element {
	d.assertSize(len(values))
	inverseFFT := fftFr(values, d.GeneratorInv)
	for i := range inverseFFT {
		inverseFFT[i].Mul(&inverseFFT[i], &d.CardinalityInv)
	}
	return inverseFFT
}

// CosetFFtFr evaluates a polynomial in coefficient form over the coset
// g*H, where g is the scalar field's multiplicative generator.
func (d *Domain) CosetFFtFr(values []fr.Element) []fr.Element {
	shifted := make([]fr.Element, len(values))
	pow := fr.One()
	for i := range values {
		shifted[i].Mul(&values[i], &pow)
		pow.Mul(&pow, &d.cosetGen)
	}
	return d.FftFr(shifted)
}

// CosetIFFtFr interpolates a polynomial from its evaluations over the
// coset g*H.
func (d *Domain) CosetIFFtFr(values []fr.Element) []fr.Element {
	coeffs := d.IfftFr(values)
	pow := fr.One()
	for i := range coeffs {
		coeffs[i].Mul(&coeffs[i], &pow)
		pow.Mul(&pow, &d.cosetGenInv)
	}
	return coeffs
}

// fftFr is a radix-2 Cooley-Tukey transform. The output is in natural
// order; root must be a primitive len(values)'th root of unity.
func fftFr(values []fr.Element, root fr.Element) []fr.Element {
	n := len(values)
	if n == 1 {
		return []fr.Element{values[0]}
	}

	var rootSquared fr.Element
	rootSquared.Square(&root)

	even := make([]fr.Element, 0, n/2)
	odd := make([]fr.Element, 0, n/2)
	for i := 0; i < n; i += 2 {
		even = append(even, values[i])
		odd = append(odd, values[i+1])
	}

	left := fftFr(even, rootSquared)
	right := fftFr(odd, rootSquared)

	out := make([]fr.Element, n)
	pow := fr.One()
	for i := 0; i < n/2; i++ {
		var tmp fr.Element
		tmp.Mul(&right[i], &pow)
		out[i].Add(&left[i], &tmp)
		out[i+n/2].Sub(&left[i], &tmp)
		pow.Mul(&pow, &root)
	}
	return out
}
