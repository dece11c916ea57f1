package kzgmulti

import (
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/utils"
)

// Verifier checks cell opening proofs against blob commitments. Cell
// index j covers the coset h_j·H where H is the order-64 subgroup and
// h_j the corresponding root of the extended domain.
type Verifier struct {
	// extDomain is the order-8192 domain, roots in natural order.
	extDomain *kzg.Domain
	// cosetDomain is the order-64 domain used to interpolate a single
	// cell over its coset.
	cosetDomain *kzg.Domain

	openKey *kzg.OpeningKey
	// commitKeyMonomial commits to interpolation polynomials of degree
	// below the coset size.
	commitKeyMonomial kzg.CommitKey
}

// NewVerifier builds a cell verifier from the opening key. The opening
// key must carry at least ScalarsPerCell monomial G1 points and the
// monomial G2 point of index ScalarsPerCell.
func NewVerifier(openKey *kzg.OpeningKey, extDomain *kzg.Domain) *Verifier {
	return &Verifier{
		extDomain:         extDomain,
		cosetDomain:       kzg.NewDomain(ScalarsPerCell),
		openKey:           openKey,
		commitKeyMonomial: kzg.CommitKey{G1: openKey.G1[:ScalarsPerCell]},
	}
}

// cosetShift returns h_j, the generator shift of cell j's coset.
func (v *Verifier) cosetShift(cellID uint64) fr.Element {
	return v.extDomain.Roots[utils.ReverseBits(cellID, CellsPerExtBlob)]
}

func (v *Verifier) cosetShiftInv(cellID uint64) fr.Element {
	return v.extDomain.PreComputedInverses[utils.ReverseBits(cellID, CellsPerExtBlob)]
}

// interpolateCoset returns the coefficients of the polynomial that
// agrees with the cell's evaluations over its coset. Cell evaluations
// are stored in bit-reversed order within the cell.
func (v *Verifier) interpolateCoset(cosetEvals []fr.Element, cellID uint64) []fr.Element {
	evals := make([]fr.Element, len(cosetEvals))
	copy(evals, cosetEvals)
	utils.BitReverse(evals)

	// interpolate over H, then pull back the coset shift
	coeffs := v.cosetDomain.IfftFr(evals)
	shiftInv := v.cosetShiftInv(cellID)
	pow := fr.One()
	for i := range coeffs {
		coeffs[i].Mul(&coeffs[i], &pow)
		pow.Mul(&pow, &shiftInv)
	}
	return coeffs
}

// VerifyMultiOpenProof checks that the cell's evaluations are openings
// of the committed polynomial over the cell's coset:
//
//	e(C - [I(τ)]₁, [1]₂) == e(π, [τ^64 - h^64]₂)
//
// where I is the coset interpolation polynomial. A well-formed but false
// claim returns false with a nil error.
func (v *Verifier) VerifyMultiOpenProof(commitment *bls12381.G1Affine, cellID uint64, cosetEvals []fr.Element, proof *bls12381.G1Affine) (bool, error) {
	interpCoeffs := v.interpolateCoset(cosetEvals, cellID)
	interpComm, err := kzg.Commit(interpCoeffs, &v.commitKeyMonomial, 0)
	if err != nil {
		return false, err
	}

	var lhsG1 bls12381.G1Affine
	lhsG1.Sub(commitment, interpComm)

	// [τ^64 - h^64]₂
	shift := v.cosetShift(cellID)
	var shiftPow fr.Element
	shiftPow.Exp(shift, big.NewInt(ScalarsPerCell))
	var shiftPowBig big.Int
	shiftPow.BigInt(&shiftPowBig)

	var hPowG2, rhsG2 bls12381.G2Affine
	hPowG2.ScalarMultiplication(&v.openKey.GenG2, &shiftPowBig)
	rhsG2.Sub(v.openKey.AlphaPowG2(ScalarsPerCell), &hPowG2)

	var negProof bls12381.G1Affine
	negProof.Neg(proof)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsG1, negProof},
		[]bls12381.G2Affine{v.openKey.GenG2, rhsG2},
	)
}

// VerifyMultiOpenProofBatch verifies many cell claims against a set of
// row commitments with one combined pairing check. The folding
// coefficients are supplied by the caller's transcript; rowIndices map
// each claim to its commitment and must be in range. All parallel
// slices have equal length, enforced by the caller.
//
// The combined equation folds the per-cell checks:
//
//	e(∑ rᵢπᵢ, [τ^64]₂) == e(∑ rowWeights·C + ∑ rᵢhᵢ^64·πᵢ - [∑ rᵢIᵢ(τ)]₁, [1]₂)
func (v *Verifier) VerifyMultiOpenProofBatch(rowCommitments []bls12381.G1Affine, rowIndices, cellIDs []uint64, cosetsEvals [][]fr.Element, proofs []bls12381.G1Affine, coefficients []fr.Element) (bool, error) {
	if len(cellIDs) == 0 {
		return true, nil
	}

	config := ecc.MultiExpConfig{}

	// ∑ rᵢ πᵢ
	var foldedProofs bls12381.G1Jac
	if _, err := foldedProofs.MultiExp(proofs, coefficients, config); err != nil {
		return false, err
	}

	// per-row commitment weights: ∑ rᵢ over the claims of each row
	rowWeights := make([]fr.Element, len(rowCommitments))
	for i, rowIndex := range rowIndices {
		rowWeights[rowIndex].Add(&rowWeights[rowIndex], &coefficients[i])
	}
	var foldedCommitments bls12381.G1Jac
	if _, err := foldedCommitments.MultiExp(rowCommitments, rowWeights, config); err != nil {
		return false, err
	}

	// aggregated interpolation polynomial ∑ rᵢ Iᵢ
	aggInterp := make([]fr.Element, ScalarsPerCell)
	for i := range cellIDs {
		interpCoeffs := v.interpolateCoset(cosetsEvals[i], cellIDs[i])
		for j := range aggInterp {
			var tmp fr.Element
			tmp.Mul(&interpCoeffs[j], &coefficients[i])
			aggInterp[j].Add(&aggInterp[j], &tmp)
		}
	}
	aggInterpComm, err := kzg.Commit(aggInterp, &v.commitKeyMonomial, 0)
	if err != nil {
		return false, err
	}

	// ∑ rᵢ hᵢ^64 πᵢ
	weightedCoefficients := make([]fr.Element, len(cellIDs))
	for i := range cellIDs {
		shift := v.cosetShift(cellIDs[i])
		var shiftPow fr.Element
		shiftPow.Exp(shift, big.NewInt(ScalarsPerCell))
		weightedCoefficients[i].Mul(&coefficients[i], &shiftPow)
	}
	var foldedWeightedProofs bls12381.G1Jac
	if _, err := foldedWeightedProofs.MultiExp(proofs, weightedCoefficients, config); err != nil {
		return false, err
	}

	var aggInterpJac bls12381.G1Jac
	aggInterpJac.FromAffine(aggInterpComm)
	foldedCommitments.SubAssign(&aggInterpJac)
	foldedCommitments.AddAssign(&foldedWeightedProofs)

	var rhsG1, foldedProofsAff bls12381.G1Affine
	rhsG1.FromJacobian(&foldedCommitments)
	foldedProofsAff.FromJacobian(&foldedProofs)

	var negAlphaPowG2 bls12381.G2Affine
	negAlphaPowG2.Neg(v.openKey.AlphaPowG2(ScalarsPerCell))

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{foldedProofsAff, rhsG1},
		[]bls12381.G2Affine{negAlphaPowG2, v.openKey.GenG2},
	)
}
