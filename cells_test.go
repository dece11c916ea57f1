package blobkzg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/protosharding/blobkzg/internal/kzgmulti"
)

func TestComputeCellsSystematic(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 40)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	// the extension is systematic: the first half of the cells is the
	// blob itself
	var reassembled Blob
	for i := 0; i < CellsPerExtBlob/2; i++ {
		copy(reassembled[i*BytesPerCell:], cells[i][:])
	}
	require.Equal(t, *blob, reassembled)
}

func TestCellsToBlobRoundTrip(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 41)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	back, err := CellsToBlob(cells[:])
	require.NoError(t, err)
	require.Equal(t, blob, back)
}

func TestCellsToBlobWrongCount(t *testing.T) {
	_, err := CellsToBlob(make([]*Cell, 10))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestComputeCellsAndKZGProofsVerify(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 42)

	commitment, err := ctx.BlobToKZGCommitment(blob)
	require.NoError(t, err)

	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	// cells must agree with the proof-less path
	cellsOnly, err := ctx.ComputeCells(blob)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(cellsOnly, cells))

	for _, cellID := range []uint64{0, 1, 64, 127} {
		ok, err := ctx.VerifyCellKZGProof(commitment, cellID, cells[cellID], proofs[cellID])
		require.NoError(t, err)
		require.True(t, ok, "cell %d did not verify", cellID)
	}
}

func TestVerifyCellKZGProofInvalidCellID(t *testing.T) {
	ctx := testContext(t)

	var commitment KZGCommitment
	var cell Cell
	var proof KZGProof

	_, err := ctx.VerifyCellKZGProof(commitment, CellsPerExtBlob, &cell, proof)
	require.ErrorIs(t, err, ErrInvalidCellID)
}

func TestVerifyCellKZGProofWrongCell(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 43)

	commitment, err := ctx.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	// cell 2's data with cell 3's index is a false claim
	ok, err := ctx.VerifyCellKZGProof(commitment, 3, cells[2], proofs[2])
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyCellKZGProofBatch(t *testing.T) {
	ctx := testContext(t)

	blobA := testBlob(t, 44)
	blobB := testBlob(t, 45)

	commitA, err := ctx.BlobToKZGCommitment(blobA)
	require.NoError(t, err)
	commitB, err := ctx.BlobToKZGCommitment(blobB)
	require.NoError(t, err)

	cellsA, proofsA, err := ctx.ComputeCellsAndKZGProofs(blobA)
	require.NoError(t, err)
	cellsB, proofsB, err := ctx.ComputeCellsAndKZGProofs(blobB)
	require.NoError(t, err)

	rowCommitments := []KZGCommitment{commitA, commitB}
	rowIndices := []uint64{0, 0, 1, 1}
	cellIDs := []uint64{3, 100, 0, 126}
	cells := []*Cell{cellsA[3], cellsA[100], cellsB[0], cellsB[126]}
	proofs := []KZGProof{proofsA[3], proofsA[100], proofsB[0], proofsB[126]}

	ok, err := ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices, cellIDs, cells, proofs)
	require.NoError(t, err)
	require.True(t, ok)

	// pointing one claim at the wrong row must fail the batch
	rowIndices[2] = 0
	ok, err = ctx.VerifyCellKZGProofBatch(rowCommitments, rowIndices, cellIDs, cells, proofs)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyCellKZGProofBatchValidation(t *testing.T) {
	ctx := testContext(t)

	var commitment KZGCommitment
	var cell Cell
	var proof KZGProof

	_, err := ctx.VerifyCellKZGProofBatch(
		[]KZGCommitment{commitment},
		[]uint64{0, 1},
		[]uint64{0},
		[]*Cell{&cell},
		[]KZGProof{proof},
	)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = ctx.VerifyCellKZGProofBatch(
		[]KZGCommitment{commitment},
		[]uint64{1},
		[]uint64{0},
		[]*Cell{&cell},
		[]KZGProof{proof},
	)
	require.ErrorIs(t, err, ErrInvalidRowIndex)

	_, err = ctx.VerifyCellKZGProofBatch(
		[]KZGCommitment{commitment},
		[]uint64{0},
		[]uint64{CellsPerExtBlob},
		[]*Cell{&cell},
		[]KZGProof{proof},
	)
	require.ErrorIs(t, err, ErrInvalidCellID)
}

func TestVerifyCellKZGProofBatchEmpty(t *testing.T) {
	ctx := testContext(t)

	ok, err := ctx.VerifyCellKZGProofBatch(nil, nil, nil, nil, nil)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRecoverAllCellsFromHalf(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 50)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	// keep only the odd-indexed half, the minimum recovery tolerates
	var (
		partialIDs   []uint64
		partialCells []*Cell
	)
	for i := uint64(1); i < CellsPerExtBlob; i += 2 {
		partialIDs = append(partialIDs, i)
		partialCells = append(partialCells, cells[i])
	}

	recovered, err := ctx.RecoverAllCells(partialIDs, partialCells)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(cells, recovered))
}

func TestRecoverCellsAndKZGProofs(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 51)

	cells, proofs, err := ctx.ComputeCellsAndKZGProofs(blob)
	require.NoError(t, err)

	var (
		partialIDs   []uint64
		partialCells []*Cell
	)
	for i := uint64(0); i < CellsPerExtBlob/2+10; i++ {
		partialIDs = append(partialIDs, i)
		partialCells = append(partialCells, cells[i])
	}

	recoveredCells, recoveredProofs, err := ctx.RecoverCellsAndKZGProofs(partialIDs, partialCells)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(cells, recoveredCells))
	require.Equal(t, proofs, recoveredProofs)
}

func TestRecoverAllCellsComplete(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 52)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	ids := make([]uint64, CellsPerExtBlob)
	for i := range ids {
		ids[i] = uint64(i)
	}

	recovered, err := ctx.RecoverAllCells(ids, cells[:])
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(cells, recovered))
}

func TestRecoverAllCellsNotEnough(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 53)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	ids := make([]uint64, CellsPerExtBlob/2-1)
	partial := make([]*Cell, len(ids))
	for i := range ids {
		ids[i] = uint64(i)
		partial[i] = cells[i]
	}

	_, err = ctx.RecoverAllCells(ids, partial)
	require.ErrorIs(t, err, ErrNotEnoughCells)
}

func TestRecoverAllCellsDuplicate(t *testing.T) {
	ctx := testContext(t)
	blob := testBlob(t, 54)

	cells, err := ctx.ComputeCells(blob)
	require.NoError(t, err)

	ids := make([]uint64, CellsPerExtBlob/2+1)
	partial := make([]*Cell, len(ids))
	for i := range ids {
		ids[i] = uint64(i)
		partial[i] = cells[i]
	}
	ids[len(ids)-1] = 0 // repeat the first index

	_, err = ctx.RecoverAllCells(ids, partial)
	require.ErrorIs(t, err, ErrDuplicateCellID)
}

func TestRecoverAllCellsMixedBlobs(t *testing.T) {
	ctx := testContext(t)

	cellsA, err := ctx.ComputeCells(testBlob(t, 55))
	require.NoError(t, err)
	cellsB, err := ctx.ComputeCells(testBlob(t, 56))
	require.NoError(t, err)

	// with more cells than the recovery threshold, a cell from another
	// blob contradicts the redundancy and must be rejected; at exactly
	// the threshold any cell set is consistent with some polynomial
	ids := make([]uint64, CellsPerExtBlob/2+16)
	partial := make([]*Cell, len(ids))
	for i := range ids {
		ids[i] = uint64(i)
		partial[i] = cellsA[i]
	}
	partial[7] = cellsB[7]

	_, err = ctx.RecoverAllCells(ids, partial)
	require.ErrorIs(t, err, kzgmulti.ErrInconsistentCells)
}

func TestRecoverAllCellsInvalidID(t *testing.T) {
	ctx := testContext(t)

	var cell Cell
	_, err := ctx.RecoverAllCells([]uint64{CellsPerExtBlob}, []*Cell{&cell})
	require.ErrorIs(t, err, ErrInvalidCellID)
}

func TestRecoverAllCellsLengthMismatch(t *testing.T) {
	ctx := testContext(t)

	_, err := ctx.RecoverAllCells([]uint64{0, 1}, []*Cell{})
	require.ErrorIs(t, err, ErrLengthMismatch)
}
