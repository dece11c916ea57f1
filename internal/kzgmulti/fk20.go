// Package kzgmulti implements the cell-level KZG operations used for
// data-availability sampling: batched multi-point opening proofs via the
// Feist-Khovratovich (FK20) technique, per-coset proof verification and
// Reed-Solomon recovery of a blob's extended evaluation.
package kzgmulti

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/utils"
)

const (
	// CellsPerExtBlob is the number of cells in an extended blob.
	CellsPerExtBlob = 128

	// ScalarsPerCell is the number of field elements in a cell; each
	// cell covers one coset of this size.
	ScalarsPerCell = 64

	// ScalarsPerExtBlob is the number of field elements in the
	// extended evaluation of a blob.
	ScalarsPerExtBlob = CellsPerExtBlob * ScalarsPerCell
)

var ErrInvalidPolyLength = errors.New("polynomial length does not match the fk20 configuration")

// FK20 computes opening proofs for all cells of a blob at once. The
// proofs for the k cosets are the group FFT of a vector of h-commitments,
// each of which is a sum of Toeplitz matrix-vector products between the
// polynomial's coefficients and fixed SRS vectors. The SRS-side FFTs do
// not depend on the polynomial and are precomputed here.
type FK20 struct {
	// xExtFFT[i] is the circulant-extended FFT of the SRS vector for
	// in-coset offset i.
	xExtFFT [][]bls12381.G1Affine

	// proofDomain has cardinality 2*numChunks = CellsPerExtBlob; it is
	// used both for the circulant products and for the final proof FFT.
	proofDomain *kzg.Domain

	cosetSize int // field elements per coset
	numChunks int // polynomial length / cosetSize
}

// NewFK20 precomputes the proof tables for the given monomial-basis SRS.
// len(monomialSRS) must equal numChunks*cosetSize, with numChunks equal
// to half the number of cells.
func NewFK20(monomialSRS []bls12381.G1Affine, cosetSize, numProofs int) (*FK20, error) {
	n := len(monomialSRS)
	numChunks := n / cosetSize
	if numChunks*cosetSize != n || numProofs != 2*numChunks {
		return nil, errors.New("srs size is incompatible with the coset geometry")
	}

	proofDomain := kzg.NewDomain(uint64(numProofs))

	xExtFFT := make([][]bls12381.G1Affine, cosetSize)
	for i := 0; i < cosetSize; i++ {
		// x[j] = [τ^(n-cosetSize-1-i-j*cosetSize)]₁ with an identity
		// point in the last slot, zero-extended to circulant length.
		xExt := make([]bls12381.G1Affine, 2*numChunks)
		for j := 0; j < numChunks-1; j++ {
			xExt[j] = monomialSRS[n-cosetSize-1-i-j*cosetSize]
		}
		xExtFFT[i] = proofDomain.FftG1(xExt)
	}

	return &FK20{
		xExtFFT:     xExtFFT,
		proofDomain: proofDomain,
		cosetSize:   cosetSize,
		numChunks:   numChunks,
	}, nil
}

// ComputeMultiOpenProofs returns one opening proof per cell for the
// polynomial given in monomial form. Proofs are ordered by cell index,
// ie. in bit-reversed coset order.
func (fk *FK20) ComputeMultiOpenProofs(polyCoeff []fr.Element) ([]bls12381.G1Affine, error) {
	if len(polyCoeff) != fk.numChunks*fk.cosetSize {
		return nil, ErrInvalidPolyLength
	}

	circulantLen := 2 * fk.numChunks

	// Accumulate the circulant products of every offset in the
	// frequency domain; a single inverse FFT then recovers the summed
	// h-commitments.
	hExtFFT := make([]bls12381.G1Jac, circulantLen)
	var coeffBig big.Int
	for i := 0; i < fk.cosetSize; i++ {
		toeplitzCoeffs := fk.toeplitzCoeffsStride(polyCoeff, i)
		toeplitzCoeffsFFT := fk.proofDomain.FftFr(toeplitzCoeffs)

		for j := 0; j < circulantLen; j++ {
			if toeplitzCoeffsFFT[j].IsZero() {
				continue
			}
			var term bls12381.G1Affine
			toeplitzCoeffsFFT[j].BigInt(&coeffBig)
			term.ScalarMultiplication(&fk.xExtFFT[i][j], &coeffBig)
			hExtFFT[j].AddMixed(&term)
		}
	}

	hExt := fk.proofDomain.IfftG1(bls12381.BatchJacobianToAffineG1(hExtFFT))

	// Only the first numChunks entries carry the h-commitments; the
	// upper half is identity by construction of the circulant.
	h := make([]bls12381.G1Affine, circulantLen)
	copy(h, hExt[:fk.numChunks])

	proofs := fk.proofDomain.FftG1(h)
	utils.BitReverse(proofs)
	return proofs, nil
}

// toeplitzCoeffsStride builds the first column of the circulant matrix
// embedding the Toeplitz matrix for in-coset offset: the strided top
// coefficient first, then zeroes, then the remaining strided
// coefficients in ascending order.
func (fk *FK20) toeplitzCoeffsStride(polyCoeff []fr.Element, offset int) []fr.Element {
	n := len(polyCoeff)
	k := fk.numChunks
	stride := fk.cosetSize

	toeplitzCoeffs := make([]fr.Element, 2*k)
	toeplitzCoeffs[0] = polyCoeff[n-1-offset]
	for i, j := k+2, 2*stride-offset-1; i < 2*k; i, j = i+1, j+stride {
		toeplitzCoeffs[i] = polyCoeff[j]
	}
	return toeplitzCoeffs
}
