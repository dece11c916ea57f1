package kzgmulti

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/protosharding/blobkzg/internal/kzg"
)

// ErrInconsistentCells is returned when the known evaluations do not
// lie on a polynomial of the blob's degree, ie. the supplied cells do
// not all come from the same extended blob.
var ErrInconsistentCells = errors.New("cells are not evaluations of a single blob polynomial")

// vanishingPolyCoeff returns the coefficients of ∏ (X - xᵢ).
func vanishingPolyCoeff(xs []fr.Element) []fr.Element {
	result := make([]fr.Element, 1, len(xs)+1)
	result[0].SetOne()

	for _, x := range xs {
		// multiply the accumulated polynomial by (X - x)
		next := make([]fr.Element, len(result)+1)
		for i := range result {
			var tmp fr.Element
			tmp.Mul(&result[i], &x)
			next[i].Sub(&next[i], &tmp)
			next[i+1].Add(&next[i+1], &result[i])
		}
		result = next
	}
	return result
}

// constructVanishingPolyOnIndices returns, in coefficient form over the
// extended domain, the polynomial vanishing exactly on the positions of
// the missing cells. Since a cell occupies the positions of one residue
// class mod CellsPerExtBlob, the polynomial is V(X^64) for V vanishing
// on the matching roots of the order-128 subdomain.
//
// The indices are positions in the reduced domain's natural order, not
// cell indices.
func constructVanishingPolyOnIndices(missingCellIndices []uint64) []fr.Element {
	rootsOfUnityReduced := kzg.NewDomain(CellsPerExtBlob)

	missingCellIndexRoots := make([]fr.Element, len(missingCellIndices))
	for i, index := range missingCellIndices {
		missingCellIndexRoots[i] = rootsOfUnityReduced.Roots[index]
	}

	shortZeroPoly := vanishingPolyCoeff(missingCellIndexRoots)

	zeroPolyCoeff := make([]fr.Element, ScalarsPerExtBlob)
	for i, coeff := range shortZeroPoly {
		zeroPolyCoeff[i*ScalarsPerCell] = coeff
	}
	return zeroPolyCoeff
}

// RecoverPolynomialCoefficients recovers the blob polynomial from a
// partial extended evaluation. data holds the extended evaluations in
// the domain's natural order with zeroes at the missing positions;
// missingIndices are the missing residue classes mod CellsPerExtBlob.
//
// With Z the vanishing polynomial of the missing positions, E·Z agrees
// with P·Z on the whole domain, so P is the quotient (E·Z)/Z computed
// over a coset where Z has no roots.
func RecoverPolynomialCoefficients(data []fr.Element, domainExtended *kzg.Domain, missingIndices []uint64) ([]fr.Element, error) {
	if uint64(len(data)) != domainExtended.Cardinality {
		return nil, errors.New("data length does not match the extended domain")
	}

	zX := constructVanishingPolyOnIndices(missingIndices)
	zXEval := domainExtended.FftFr(zX)

	eZEval := make([]fr.Element, len(data))
	for i := 0; i < len(data); i++ {
		eZEval[i].Mul(&data[i], &zXEval[i])
	}

	dzPoly := domainExtended.IfftFr(eZEval)

	cosetZxEval := domainExtended.CosetFFtFr(zX)
	cosetDzEval := domainExtended.CosetFFtFr(dzPoly)

	cosetZxEval = fr.BatchInvert(cosetZxEval)
	cosetQuotientEval := make([]fr.Element, len(cosetZxEval))
	for i := 0; i < len(cosetZxEval); i++ {
		cosetQuotientEval[i].Mul(&cosetDzEval[i], &cosetZxEval[i])
	}

	polyCoeff := domainExtended.CosetIFFtFr(cosetQuotientEval)

	// The expansion factor is two, so the upper half of the quotient's
	// coefficients is zero whenever the known evaluations lie on a
	// single low-degree polynomial; the blob polynomial is the lower
	// half. A nonzero high coefficient means the cells are mutually
	// inconsistent.
	half := len(polyCoeff) / 2
	for i := half; i < len(polyCoeff); i++ {
		if !polyCoeff[i].IsZero() {
			return nil, ErrInconsistentCells
		}
	}
	return polyCoeff[:half], nil
}
