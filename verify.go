package blobkzg

import (
	"golang.org/x/sync/errgroup"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/utils"
)

// VerifyKZGProof checks that the polynomial behind the commitment
// evaluates to y at z. A well-formed but false claim returns
// (false, nil); errors are reserved for malformed inputs.
func (ctx *Context) VerifyKZGProof(blobCommitment KZGCommitment, z, y Scalar, proof KZGProof) (bool, error) {
	commitment, err := DeserializeKZGCommitment(blobCommitment)
	if err != nil {
		return false, err
	}

	inputPoint, err := DeserializeScalar(z)
	if err != nil {
		return false, err
	}
	claimedValue, err := DeserializeScalar(y)
	if err != nil {
		return false, err
	}

	quotient, err := DeserializeKZGProof(proof)
	if err != nil {
		return false, err
	}

	openingProof := kzg.OpeningProof{
		QuotientCommitment: quotient,
		InputPoint:         inputPoint,
		ClaimedValue:       claimedValue,
	}
	return kzg.Verify(&commitment, &openingProof, ctx.openKey)
}

// VerifyBlobKZGProof checks a proof produced by ComputeBlobKZGProof: the
// evaluation point is re-derived from the blob and commitment, and the
// claimed value is the blob polynomial evaluated there.
func (ctx *Context) VerifyBlobKZGProof(blob *Blob, blobCommitment KZGCommitment, proof KZGProof) (bool, error) {
	claim, err := ctx.blobOpeningClaim(blob, blobCommitment, proof)
	if err != nil {
		return false, err
	}
	return kzg.Verify(&claim.commitment, &claim.proof, ctx.openKey)
}

// blobOpeningClaim binds a blob, its commitment and a proof into the
// opening claim that VerifyBlobKZGProof checks.
type blobOpeningClaim struct {
	commitment kzg.Commitment
	proof      kzg.OpeningProof
}

func (ctx *Context) blobOpeningClaim(blob *Blob, blobCommitment KZGCommitment, proof KZGProof) (*blobOpeningClaim, error) {
	poly, err := DeserializeBlob(blob)
	if err != nil {
		return nil, err
	}

	commitment, err := DeserializeKZGCommitment(blobCommitment)
	if err != nil {
		return nil, err
	}

	quotient, err := DeserializeKZGProof(proof)
	if err != nil {
		return nil, err
	}

	evalPoint := computeChallenge(blob, blobCommitment)
	claimedValue, _, err := ctx.domain.EvaluateLagrangePolynomial(poly, evalPoint)
	if err != nil {
		return nil, err
	}

	return &blobOpeningClaim{
		commitment: commitment,
		proof: kzg.OpeningProof{
			QuotientCommitment: quotient,
			InputPoint:         evalPoint,
			ClaimedValue:       *claimedValue,
		},
	}, nil
}

// VerifyBlobKZGProofBatch checks a batch of blob proofs with a single
// pairing check. The claims are folded with powers of a transcript
// challenge, so the batch succeeds only if every claim would verify
// individually (up to the challenge's soundness).
//
// An empty batch is vacuously valid.
func (ctx *Context) VerifyBlobKZGProofBatch(blobs []*Blob, blobCommitments []KZGCommitment, proofs []KZGProof) (bool, error) {
	if len(blobs) != len(blobCommitments) || len(blobs) != len(proofs) {
		return false, ErrLengthMismatch
	}
	switch len(blobs) {
	case 0:
		return true, nil
	case 1:
		return ctx.VerifyBlobKZGProof(blobs[0], blobCommitments[0], proofs[0])
	}

	claims := make([]*blobOpeningClaim, len(blobs))

	var group errgroup.Group
	group.SetLimit(ctx.nbTasks)
	for i := range blobs {
		group.Go(func() error {
			claim, err := ctx.blobOpeningClaim(blobs[i], blobCommitments[i], proofs[i])
			if err != nil {
				return err
			}
			claims[i] = claim
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return false, err
	}

	commitments := make([]kzg.Commitment, len(claims))
	openingProofs := make([]kzg.OpeningProof, len(claims))
	zs := make([]Scalar, len(claims))
	ys := make([]Scalar, len(claims))
	for i, claim := range claims {
		commitments[i] = claim.commitment
		openingProofs[i] = claim.proof
		zs[i] = SerializeScalar(claim.proof.InputPoint)
		ys[i] = SerializeScalar(claim.proof.ClaimedValue)
	}

	r := computeBatchChallenge(blobCommitments, zs, ys, proofs)
	coefficients := utils.ComputePowers(r, uint64(len(claims)))

	return kzg.BatchVerifyMultiPoints(commitments, openingProofs, coefficients, ctx.openKey)
}
