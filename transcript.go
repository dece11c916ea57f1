package blobkzg

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Domain separators for the Fiat-Shamir transcripts. These match the
// deneb and fulu consensus specifications byte for byte, so challenges
// are interoperable with other implementations.
const (
	domSepBlobVerify      = "FSBLOBVERIFY_V1_"
	domSepBatchVerify     = "RCKZGBATCH___V1_"
	domSepCellBatchVerify = "RCKZGCBATCH__V1_"
)

// hashToBlsField reduces a 32 byte digest into a scalar. The reduction
// is modular, so the output is biased; acceptable for challenges whose
// only requirement is unpredictability.
func hashToBlsField(digest [32]byte) fr.Element {
	var t big.Int
	t.SetBytes(digest[:])
	t.Mod(&t, fr.Modulus())

	var challenge fr.Element
	challenge.SetBigInt(&t)
	return challenge
}

// computeChallenge derives the evaluation challenge for a blob and its
// commitment, binding both into the transcript.
func computeChallenge(blob *Blob, commitment KZGCommitment) fr.Element {
	h := sha256.New()
	h.Write([]byte(domSepBlobVerify))

	var degree [16]byte
	binary.BigEndian.PutUint64(degree[8:], FieldElementsPerBlob)
	h.Write(degree[:])

	h.Write(blob[:])
	h.Write(commitment[:])

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return hashToBlsField(digest)
}

// computeBatchChallenge derives the random scalar used to fold a batch
// of opening claims into a single pairing check.
func computeBatchChallenge(commitments []KZGCommitment, zs, ys []Scalar, proofs []KZGProof) fr.Element {
	h := sha256.New()
	h.Write([]byte(domSepBatchVerify))

	var u64Bytes [8]byte
	binary.BigEndian.PutUint64(u64Bytes[:], FieldElementsPerBlob)
	h.Write(u64Bytes[:])
	binary.BigEndian.PutUint64(u64Bytes[:], uint64(len(commitments)))
	h.Write(u64Bytes[:])

	for i := range commitments {
		h.Write(commitments[i][:])
		h.Write(zs[i][:])
		h.Write(ys[i][:])
		h.Write(proofs[i][:])
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return hashToBlsField(digest)
}

// computeCellBatchChallenge derives the folding scalar for a batch of
// cell claims. Every public input is absorbed: the row commitments,
// then for each claim its row index, cell index, cell data and proof.
func computeCellBatchChallenge(rowCommitments []KZGCommitment, rowIndices, cellIDs []uint64, cells []*Cell, proofs []KZGProof) fr.Element {
	h := sha256.New()
	h.Write([]byte(domSepCellBatchVerify))

	var u64Bytes [8]byte
	binary.BigEndian.PutUint64(u64Bytes[:], FieldElementsPerCell)
	h.Write(u64Bytes[:])
	binary.BigEndian.PutUint64(u64Bytes[:], uint64(len(rowCommitments)))
	h.Write(u64Bytes[:])
	binary.BigEndian.PutUint64(u64Bytes[:], uint64(len(cells)))
	h.Write(u64Bytes[:])

	for i := range rowCommitments {
		h.Write(rowCommitments[i][:])
	}
	for i := range cells {
		binary.BigEndian.PutUint64(u64Bytes[:], rowIndices[i])
		h.Write(u64Bytes[:])
		binary.BigEndian.PutUint64(u64Bytes[:], cellIDs[i])
		h.Write(u64Bytes[:])
		h.Write(cells[i][:])
		h.Write(proofs[i][:])
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return hashToBlsField(digest)
}
