package blobkzg

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"
)

func TestBlobToKZGCommitment(t *testing.T) {
	ctx := testContext(t)

	commitmentA, err := ctx.BlobToKZGCommitment(testBlob(t, 1))
	require.NoError(t, err)
	commitmentB, err := ctx.BlobToKZGCommitment(testBlob(t, 2))
	require.NoError(t, err)
	require.NotEqual(t, commitmentA, commitmentB)
}

func TestBlobToKZGCommitmentRejectsBadScalar(t *testing.T) {
	ctx := testContext(t)

	blob := testBlob(t, 1)
	// overwrite one element with the field modulus, which is not canonical
	modulusBytes := fr.Modulus().Bytes()
	copy(blob[5*BytesPerFieldElement:], modulusBytes)

	_, err := ctx.BlobToKZGCommitment(blob)
	require.ErrorIs(t, err, ErrBadEncoding)
}

func TestComputeKZGProofClaimedValue(t *testing.T) {
	ctx := testContext(t)

	// a blob whose evaluations are all v represents the constant
	// polynomial v, so the claimed value at any point is v
	blob := uniformBlob(t, 200)

	var z fr.Element
	z.SetUint64(999)

	_, y, err := ctx.ComputeKZGProof(blob, SerializeScalar(z))
	require.NoError(t, err)

	var v fr.Element
	v.SetUint64(200)
	require.Equal(t, SerializeScalar(v), y)
}

func TestComputeKZGProofVerifies(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 3)

	commitment, err := ctx.BlobToKZGCommitment(blob)
	require.NoError(t, err)

	var z fr.Element
	z.SetUint64(0x1234)
	serZ := SerializeScalar(z)

	proof, y, err := ctx.ComputeKZGProof(blob, serZ)
	require.NoError(t, err)

	ok, err := ctx.VerifyKZGProof(commitment, serZ, y, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestComputeKZGProofRejectsBadPoint(t *testing.T) {
	ctx := testContext(t)

	var badZ Scalar
	modulusBytes := fr.Modulus().Bytes()
	copy(badZ[:], modulusBytes)

	_, _, err := ctx.ComputeKZGProof(testBlob(t, 4), badZ)
	require.ErrorIs(t, err, ErrBadEncoding)
}

func TestComputeBlobKZGProofVerifies(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 5)

	commitment, err := ctx.BlobToKZGCommitment(blob)
	require.NoError(t, err)

	proof, err := ctx.ComputeBlobKZGProof(blob, commitment)
	require.NoError(t, err)

	ok, err := ctx.VerifyBlobKZGProof(blob, commitment, proof)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestComputeBlobKZGProofCommitmentMismatch(t *testing.T) {
	ctx := testContext(t)

	// a valid commitment, but for a different blob
	otherCommitment, err := ctx.BlobToKZGCommitment(testBlob(t, 7))
	require.NoError(t, err)

	_, err = ctx.ComputeBlobKZGProof(testBlob(t, 6), otherCommitment)
	require.ErrorIs(t, err, ErrCommitmentMismatch)
}
