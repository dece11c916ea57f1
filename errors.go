package blobkzg

import "errors"

var (
	// ErrBadEncoding is returned when a byte string is not a canonical
	// encoding of a field element.
	ErrBadEncoding = errors.New("scalar is not canonically encoded")

	// ErrInvalidPoint is returned when a byte string does not decode
	// to a point on the curve.
	ErrInvalidPoint = errors.New("point is not on the curve")

	// ErrNotInSubgroup is returned when a decoded point is on the
	// curve but outside of the prime-order subgroup.
	ErrNotInSubgroup = errors.New("point is not in the prime-order subgroup")

	// ErrLengthMismatch is returned when parallel input slices do not
	// have the same length.
	ErrLengthMismatch = errors.New("input slices must have the same length")

	// ErrInvalidCellID is returned when a cell index is not below
	// CellsPerExtBlob.
	ErrInvalidCellID = errors.New("cell index is out of range")

	// ErrInvalidRowIndex is returned when a row index does not
	// reference a row commitment.
	ErrInvalidRowIndex = errors.New("row index is out of range")

	// ErrNotEnoughCells is returned when fewer cells than the
	// erasure-coding threshold are supplied to recovery.
	ErrNotEnoughCells = errors.New("not enough cells to recover the extended blob")

	// ErrDuplicateCellID is returned when the same cell index is
	// supplied twice to recovery.
	ErrDuplicateCellID = errors.New("duplicate cell index")

	// ErrInvalidTrustedSetup is returned when the trusted setup fails
	// validation.
	ErrInvalidTrustedSetup = errors.New("invalid trusted setup")

	// ErrCommitmentMismatch is returned when a supplied commitment
	// does not commit to the supplied blob.
	ErrCommitmentMismatch = errors.New("commitment does not match the blob")
)
