package blobkzg

import (
	"bytes"
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/utils"
)

const (
	// BytesPerFieldElement is the size of a serialized scalar.
	BytesPerFieldElement = 32

	// FieldElementsPerBlob is the number of field elements in a blob.
	FieldElementsPerBlob = 4096

	// BytesPerBlob is the size of a serialized blob.
	BytesPerBlob = FieldElementsPerBlob * BytesPerFieldElement

	// BytesPerCommitment is the size of a compressed G1 point.
	BytesPerCommitment = 48

	// BytesPerProof is the size of a serialized opening proof.
	BytesPerProof = 48

	// FieldElementsPerCell is the number of field elements in a cell.
	FieldElementsPerCell = 64

	// BytesPerCell is the size of a serialized cell.
	BytesPerCell = FieldElementsPerCell * BytesPerFieldElement

	// CellsPerExtBlob is the number of cells in the extended blob.
	CellsPerExtBlob = 128

	// ScalarsPerExtBlob is the number of field elements in the
	// extended evaluation of a blob.
	ScalarsPerExtBlob = CellsPerExtBlob * FieldElementsPerCell
)

type (
	// Scalar is a canonical big-endian encoding of a field element.
	Scalar [BytesPerFieldElement]byte

	// Blob is a data block: 4096 serialized field elements, holding
	// the evaluations of a polynomial over the blob domain.
	Blob [BytesPerBlob]byte

	// KZGCommitment is a compressed G1 commitment to a blob.
	KZGCommitment [BytesPerCommitment]byte

	// KZGProof is a compressed G1 opening proof.
	KZGProof [BytesPerProof]byte

	// Cell is a contiguous run of 64 field elements of the extended
	// evaluation of a blob.
	Cell [BytesPerCell]byte
)

// DeserializeScalar decodes a canonical big-endian scalar. It errors
// with ErrBadEncoding if the value is not reduced.
func DeserializeScalar(serScalar Scalar) (fr.Element, error) {
	scalar, err := utils.ReduceCanonicalBigEndian(serScalar[:])
	if err != nil {
		return fr.Element{}, ErrBadEncoding
	}
	return scalar, nil
}

// SerializeScalar encodes a field element in canonical big-endian form.
func SerializeScalar(element fr.Element) Scalar {
	return element.Bytes()
}

// DeserializeBlob decodes a blob into a polynomial in evaluation form.
// Every 32-byte chunk must be a canonical scalar.
func DeserializeBlob(blob *Blob) (kzg.Polynomial, error) {
	poly := make(kzg.Polynomial, FieldElementsPerBlob)
	for i := 0; i < FieldElementsPerBlob; i++ {
		chunk := blob[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		if err := poly[i].SetBytesCanonical(chunk); err != nil {
			return nil, fmt.Errorf("%w: blob element %d", ErrBadEncoding, i)
		}
	}
	return poly, nil
}

// SerializeBlob is the inverse of DeserializeBlob.
func SerializeBlob(poly kzg.Polynomial) (*Blob, error) {
	if len(poly) != FieldElementsPerBlob {
		return nil, ErrLengthMismatch
	}
	var blob Blob
	for i := range poly {
		chunk := poly[i].Bytes()
		copy(blob[i*BytesPerFieldElement:], chunk[:])
	}
	return &blob, nil
}

// DeserializeCell decodes a cell into its 64 coset evaluations.
func DeserializeCell(cell *Cell) ([]fr.Element, error) {
	cosetEvals := make([]fr.Element, FieldElementsPerCell)
	for i := 0; i < FieldElementsPerCell; i++ {
		chunk := cell[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		if err := cosetEvals[i].SetBytesCanonical(chunk); err != nil {
			return nil, fmt.Errorf("%w: cell element %d", ErrBadEncoding, i)
		}
	}
	return cosetEvals, nil
}

// SerializeCell encodes 64 coset evaluations as a cell.
func SerializeCell(cosetEvals []fr.Element) (*Cell, error) {
	if len(cosetEvals) != FieldElementsPerCell {
		return nil, ErrLengthMismatch
	}
	var cell Cell
	for i := range cosetEvals {
		chunk := cosetEvals[i].Bytes()
		copy(cell[i*BytesPerFieldElement:], chunk[:])
	}
	return &cell, nil
}

// deserializeG1Point decodes a compressed G1 point, distinguishing
// points that are not on the curve from points outside of the
// prime-order subgroup.
func deserializeG1Point(serPoint []byte) (bls12381.G1Affine, error) {
	var point bls12381.G1Affine
	dec := bls12381.NewDecoder(bytes.NewReader(serPoint), bls12381.NoSubgroupChecks())
	if err := dec.Decode(&point); err != nil {
		return bls12381.G1Affine{}, fmt.Errorf("%w: %s", ErrInvalidPoint, err)
	}
	if !point.IsInSubGroup() {
		return bls12381.G1Affine{}, ErrNotInSubgroup
	}
	return point, nil
}

// DeserializeKZGCommitment decodes and validates a commitment.
func DeserializeKZGCommitment(commitment KZGCommitment) (bls12381.G1Affine, error) {
	return deserializeG1Point(commitment[:])
}

// DeserializeKZGProof decodes and validates a proof.
func DeserializeKZGProof(proof KZGProof) (bls12381.G1Affine, error) {
	return deserializeG1Point(proof[:])
}

// SerializeG1Point compresses a G1 point.
func SerializeG1Point(point bls12381.G1Affine) [BytesPerCommitment]byte {
	return point.Bytes()
}
