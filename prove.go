package blobkzg

import (
	"github.com/protosharding/blobkzg/internal/kzg"
)

// BlobToKZGCommitment commits to the polynomial interpolating the blob's
// field elements over the blob domain.
func (ctx *Context) BlobToKZGCommitment(blob *Blob) (KZGCommitment, error) {
	poly, err := DeserializeBlob(blob)
	if err != nil {
		return KZGCommitment{}, err
	}

	commitment, err := kzg.Commit(poly, ctx.commitKey, ctx.nbTasks)
	if err != nil {
		return KZGCommitment{}, err
	}

	return KZGCommitment(SerializeG1Point(*commitment)), nil
}

// ComputeKZGProof creates an opening proof for the blob's polynomial at
// the point z, returning the proof and the claimed evaluation y.
func (ctx *Context) ComputeKZGProof(blob *Blob, z Scalar) (KZGProof, Scalar, error) {
	poly, err := DeserializeBlob(blob)
	if err != nil {
		return KZGProof{}, Scalar{}, err
	}

	evalPoint, err := DeserializeScalar(z)
	if err != nil {
		return KZGProof{}, Scalar{}, err
	}

	openingProof, err := kzg.Open(ctx.domain, poly, evalPoint, ctx.commitKey, ctx.nbTasks)
	if err != nil {
		return KZGProof{}, Scalar{}, err
	}

	return KZGProof(SerializeG1Point(openingProof.QuotientCommitment)),
		SerializeScalar(openingProof.ClaimedValue), nil
}

// ComputeBlobKZGProof creates the proof that attests to the blob's
// commitment as a whole: the evaluation point is derived from the blob
// and commitment via Fiat-Shamir, so the proof is bound to both.
//
// The commitment is recomputed from the blob and compared against the
// caller's; a mismatch fails with ErrCommitmentMismatch rather than
// producing a proof for a claim the blob does not back.
func (ctx *Context) ComputeBlobKZGProof(blob *Blob, blobCommitment KZGCommitment) (KZGProof, error) {
	poly, err := DeserializeBlob(blob)
	if err != nil {
		return KZGProof{}, err
	}

	// deserialize to ensure the claimed commitment is a valid point
	// before hashing it into the transcript
	if _, err := DeserializeKZGCommitment(blobCommitment); err != nil {
		return KZGProof{}, err
	}

	commitment, err := kzg.Commit(poly, ctx.commitKey, ctx.nbTasks)
	if err != nil {
		return KZGProof{}, err
	}
	if KZGCommitment(SerializeG1Point(*commitment)) != blobCommitment {
		return KZGProof{}, ErrCommitmentMismatch
	}

	evalPoint := computeChallenge(blob, blobCommitment)

	openingProof, err := kzg.Open(ctx.domain, poly, evalPoint, ctx.commitKey, ctx.nbTasks)
	if err != nil {
		return KZGProof{}, err
	}

	return KZGProof(SerializeG1Point(openingProof.QuotientCommitment)), nil
}
