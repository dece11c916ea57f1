// Package kzg implements the KZG polynomial commitment scheme over
// bls12-381 for polynomials held in evaluation form: commitments are
// multi-scalar multiplications against a Lagrange-basis SRS, opening
// proofs are quotient-polynomial commitments, and verification is a
// pairing-product check.
package kzg

import (
	"errors"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

var (
	ErrInvalidPolynomialSize = errors.New("invalid polynomial size")
	ErrVerifyOpeningProof    = errors.New("can't verify opening proof")
	ErrMismatchLengths       = errors.New("commitments, points and proofs must have the same length")
)

// Polynomial is a list of evaluations over the blob domain.
type Polynomial = []fr.Element

// Commitment to a polynomial.
type Commitment = bls12381.G1Affine

// OpeningProof attests that a committed polynomial evaluates to
// ClaimedValue at InputPoint.
type OpeningProof struct {
	// QuotientCommitment is a commitment to (p(X)-p(z))/(X-z).
	QuotientCommitment bls12381.G1Affine
	InputPoint         fr.Element
	ClaimedValue       fr.Element
}

// Commit commits to a polynomial in evaluation form using a
// multi-exponentiation against the commit key. nbTasks bounds the number
// of goroutines used by the multi-exponentiation.
func Commit(p Polynomial, ck *CommitKey, nbTasks int) (*Commitment, error) {
	if len(p) == 0 || len(p) > len(ck.G1) {
		return nil, ErrInvalidPolynomialSize
	}

	var res bls12381.G1Jac
	if _, err := res.MultiExp(ck.G1[:len(p)], p, ecc.MultiExpConfig{NbTasks: nbTasks}); err != nil {
		return nil, err
	}

	var commitment Commitment
	commitment.FromJacobian(&res)
	return &commitment, nil
}

// Open creates an opening proof for the polynomial at point. The
// polynomial is in evaluation form over the domain; the quotient is
// computed without leaving that form.
func Open(domain *Domain, p Polynomial, point fr.Element, ck *CommitKey, nbTasks int) (OpeningProof, error) {
	if len(p) == 0 || len(p) > len(ck.G1) {
		return OpeningProof{}, ErrInvalidPolynomialSize
	}

	outputPoint, indexInDomain, err := domain.EvaluateLagrangePolynomial(p, point)
	if err != nil {
		return OpeningProof{}, err
	}

	quotientPoly, err := dividePolyByXMinusA(domain, p, indexInDomain, *outputPoint, point)
	if err != nil {
		return OpeningProof{}, err
	}

	quotientCommit, err := Commit(quotientPoly, ck, nbTasks)
	if err != nil {
		return OpeningProof{}, err
	}

	res := OpeningProof{
		InputPoint:   point,
		ClaimedValue: *outputPoint,
	}
	res.QuotientCommitment.Set(quotientCommit)
	return res, nil
}

// dividePolyByXMinusA computes (f - f(a)) / (X - a) in evaluation form.
// indexInDomain is the position of a in the domain, or -1 when a lies
// outside of it.
func dividePolyByXMinusA(domain *Domain, f Polynomial, indexInDomain int, fa, a fr.Element) ([]fr.Element, error) {
	if domain.Cardinality != uint64(len(f)) {
		return nil, ErrPolynomialMismatchedSizeDomain
	}

	if indexInDomain != -1 {
		return dividePolyByXMinusAOnDomain(domain, f, uint64(indexInDomain))
	}
	return dividePolyByXMinusAOutsideDomain(domain, f, fa, a)
}

func dividePolyByXMinusAOutsideDomain(domain *Domain, f Polynomial, fa, a fr.Element) ([]fr.Element, error) {
	// q_i = (f_i - f(a)) / (ω^i - a)
	numer := make([]fr.Element, len(f))
	for i := 0; i < len(f); i++ {
		numer[i].Sub(&f[i], &fa)
	}

	denom := make([]fr.Element, len(f))
	for i := 0; i < len(f); i++ {
		denom[i].Sub(&domain.Roots[i], &a)
	}
	denom = fr.BatchInvert(denom)

	for i := 0; i < len(f); i++ {
		denom[i].Mul(&denom[i], &numer[i])
	}
	return denom, nil
}

// dividePolyByXMinusAOnDomain handles the case a = ω^m. The quotient
// evaluation at ω^m itself is recovered from the other evaluations via
// q_m = Σ_{j≠m} -q_j ω^j / ω^m.
func dividePolyByXMinusAOnDomain(domain *Domain, f Polynomial, index uint64) ([]fr.Element, error) {
	y := f[index]
	invZ := domain.PreComputedInverses[index]

	rootsMinusZ := make([]fr.Element, domain.Cardinality)
	for i := 0; i < int(domain.Cardinality); i++ {
		rootsMinusZ[i].Sub(&domain.Roots[i], &domain.Roots[index])
	}
	// rootsMinusZ[index] is zero; BatchInvert leaves zeroes untouched
	// and the slot is overwritten below anyway.
	invRootsMinusZ := fr.BatchInvert(rootsMinusZ)

	quotientPoly := make([]fr.Element, domain.Cardinality)
	for j := 0; j < int(domain.Cardinality); j++ {
		if uint64(j) == index {
			continue
		}

		var qj fr.Element
		qj.Sub(&f[j], &y)
		qj.Mul(&qj, &invRootsMinusZ[j])
		quotientPoly[j] = qj

		var qmj fr.Element
		qmj.Neg(&qj)
		qmj.Mul(&qmj, &domain.Roots[j])
		qmj.Mul(&qmj, &invZ)

		quotientPoly[index].Add(&quotientPoly[index], &qmj)
	}

	return quotientPoly, nil
}

// Verify checks an opening proof against a commitment with a single
// pairing-product equation:
//
//	e(C - [y]₁ + z·π, [1]₂) · e(-π, [τ]₂) == 1
//
// It returns false with a nil error when the proof is well formed but
// the claim does not hold.
func Verify(commitment *Commitment, proof *OpeningProof, openKey *OpeningKey) (bool, error) {
	// [f(z)]G1
	var claimedValueBig big.Int
	proof.ClaimedValue.BigInt(&claimedValueBig)
	var claimedValueG1 bls12381.G1Affine
	claimedValueG1.ScalarMultiplication(&openKey.GenG1, &claimedValueBig)

	// [f(τ) - f(z)]G1
	var fMinusFz bls12381.G1Affine
	fMinusFz.Sub(commitment, &claimedValueG1)

	// [z*q(τ)]G1
	var zBig big.Int
	proof.InputPoint.BigInt(&zBig)
	var zQuotient bls12381.G1Affine
	zQuotient.ScalarMultiplication(&proof.QuotientCommitment, &zBig)

	// [f(τ) - f(z) + z*q(τ)]G1
	var totalG1 bls12381.G1Affine
	totalG1.Add(&fMinusFz, &zQuotient)

	var negQuotient bls12381.G1Affine
	negQuotient.Neg(&proof.QuotientCommitment)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{totalG1, negQuotient},
		[]bls12381.G2Affine{openKey.GenG2, openKey.AlphaG2},
	)
}

// BatchVerifyMultiPoints verifies multiple opening proofs, each possibly
// at a distinct point, with a single pairing-product check. The folding
// coefficients must be drawn from a transcript binding every public
// input; a single false claim then fails the combined check except with
// negligible probability.
//
// An empty batch verifies trivially; a batch of one delegates to Verify.
func BatchVerifyMultiPoints(commitments []Commitment, proofs []OpeningProof, coefficients []fr.Element, openKey *OpeningKey) (bool, error) {
	if len(commitments) != len(proofs) || len(commitments) != len(coefficients) {
		return false, ErrMismatchLengths
	}
	if len(commitments) == 0 {
		return true, nil
	}
	if len(commitments) == 1 {
		return Verify(&commitments[0], &proofs[0], openKey)
	}

	config := ecc.MultiExpConfig{}

	// fold the commitments: ∑ rᵢ Cᵢ
	var foldedCommitments bls12381.G1Jac
	if _, err := foldedCommitments.MultiExp(commitments, coefficients, config); err != nil {
		return false, err
	}

	// fold the proofs: ∑ rᵢ πᵢ
	quotients := make([]bls12381.G1Affine, len(proofs))
	for i := range proofs {
		quotients[i].Set(&proofs[i].QuotientCommitment)
	}
	var foldedQuotients bls12381.G1Jac
	if _, err := foldedQuotients.MultiExp(quotients, coefficients, config); err != nil {
		return false, err
	}

	// ∑ rᵢ yᵢ and the per-proof zᵢrᵢ weights
	var foldedEvals fr.Element
	evalWeights := make([]fr.Element, len(proofs))
	for i := range proofs {
		var tmp fr.Element
		tmp.Mul(&coefficients[i], &proofs[i].ClaimedValue)
		foldedEvals.Add(&foldedEvals, &tmp)

		evalWeights[i].Mul(&coefficients[i], &proofs[i].InputPoint)
	}

	// [∑ rᵢ yᵢ]G1
	var foldedEvalsBig big.Int
	foldedEvals.BigInt(&foldedEvalsBig)
	var foldedEvalsCommit bls12381.G1Affine
	foldedEvalsCommit.ScalarMultiplication(&openKey.GenG1, &foldedEvalsBig)

	// ∑ rᵢ Cᵢ - [∑ rᵢ yᵢ]G1 + ∑ rᵢzᵢ πᵢ
	var foldedEvalsJac bls12381.G1Jac
	foldedEvalsJac.FromAffine(&foldedEvalsCommit)
	foldedCommitments.SubAssign(&foldedEvalsJac)

	var foldedPointQuotients bls12381.G1Jac
	if _, err := foldedPointQuotients.MultiExp(quotients, evalWeights, config); err != nil {
		return false, err
	}
	foldedCommitments.AddAssign(&foldedPointQuotients)

	var lhsG1 bls12381.G1Affine
	lhsG1.FromJacobian(&foldedCommitments)

	var foldedQuotientsAff bls12381.G1Affine
	foldedQuotientsAff.FromJacobian(&foldedQuotients)
	foldedQuotientsAff.Neg(&foldedQuotientsAff)

	return bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsG1, foldedQuotientsAff},
		[]bls12381.G2Affine{openKey.GenG2, openKey.AlphaG2},
	)
}
