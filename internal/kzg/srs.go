package kzg

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/protosharding/blobkzg/internal/utils"
)

var (
	ErrMinSRSSize = errors.New("minimum srs size is 2")
)

// CommitKey holds the G1 points needed to commit to polynomials in
// evaluation form: the Lagrange-basis SRS points, in the same order as
// the evaluations.
type CommitKey struct {
	G1 []bls12381.G1Affine
}

// ReversePoints permutes the commitment key into bit-reversal order, to
// match a domain whose roots have been permuted with ReverseRoots.
func (c *CommitKey) ReversePoints() {
	utils.BitReverse(c.G1)
}

// OpeningKey holds the points needed to verify opening proofs: the
// group generators, the first monomial G2 points and a short monomial
// G1 prefix used to commit to low-degree interpolation polynomials
// during cell verification.
type OpeningKey struct {
	GenG1 bls12381.G1Affine
	GenG2 bls12381.G2Affine
	// AlphaG2 is [τ]₂.
	AlphaG2 bls12381.G2Affine
	// G2 are the monomial points [τ^i]₂ for i < len(G2).
	G2 []bls12381.G2Affine
	// G1 are the monomial points [τ^i]₁ for i < len(G1). Only the
	// first CosetSize points are needed by the cell verifier.
	G1 []bls12381.G1Affine
}

// AlphaPowG2 returns [τ^i]₂.
func (o *OpeningKey) AlphaPowG2(i int) *bls12381.G2Affine {
	return &o.G2[i]
}

// SRS is the structured reference string needed to make and verify KZG
// proofs.
type SRS struct {
	CommitKey  CommitKey
	OpeningKey OpeningKey
	// MonomialG1 is the full monomial-basis G1 SRS. The cell prover
	// (FK20) consumes it; blob commitments use the Lagrange form.
	MonomialG1 []bls12381.G1Affine
}

// NewLagrangeSRSInsecure returns an SRS of the domain's size whose
// secret is the supplied scalar, with the commitment key converted to
// Lagrange form. Since the secret is known to the caller, this must
// only be used for testing.
func NewLagrangeSRSInsecure(domain Domain, alpha *big.Int, nbG2Points uint64) (*SRS, error) {
	srs, err := newMonomialSRSInsecure(domain.Cardinality, alpha, nbG2Points)
	if err != nil {
		return nil, err
	}

	// The Lagrange-basis points are the inverse FFT of the monomial
	// ones, by linearity of the commitment.
	srs.CommitKey.G1 = domain.IfftG1(srs.MonomialG1)

	return srs, nil
}

func newMonomialSRSInsecure(size uint64, alpha *big.Int, nbG2Points uint64) (*SRS, error) {
	if size < 2 {
		return nil, ErrMinSRSSize
	}

	var alphaFr fr.Element
	alphaFr.SetBigInt(alpha)

	_, _, gen1Aff, gen2Aff := bls12381.Generators()

	monomialG1 := make([]bls12381.G1Affine, size)
	monomialG1[0] = gen1Aff
	alphas := utils.ComputePowers(alphaFr, size)
	copy(monomialG1[1:], bls12381.BatchScalarMultiplicationG1(&gen1Aff, alphas[1:]))

	monomialG2 := make([]bls12381.G2Affine, nbG2Points)
	var alphaBigint big.Int
	for i := range monomialG2 {
		alphas[i].BigInt(&alphaBigint)
		monomialG2[i].ScalarMultiplication(&gen2Aff, &alphaBigint)
	}

	openKey := OpeningKey{
		GenG1:   gen1Aff,
		GenG2:   gen2Aff,
		AlphaG2: monomialG2[1],
		G2:      monomialG2,
		G1:      monomialG1,
	}

	return &SRS{
		CommitKey:  CommitKey{G1: monomialG1},
		OpeningKey: openKey,
		MonomialG1: monomialG1,
	}, nil
}
