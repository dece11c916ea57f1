package blobkzg

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/sync/errgroup"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/kzgmulti"
	"github.com/protosharding/blobkzg/internal/utils"
)

// blobToPolyCoeff interpolates the blob's evaluations into coefficient
// form. Blob evaluations are stored in bit-reversed order, so they are
// permuted back before the inverse FFT.
func (ctx *Context) blobToPolyCoeff(blob *Blob) (kzg.Polynomial, error) {
	poly, err := DeserializeBlob(blob)
	if err != nil {
		return nil, err
	}
	utils.BitReverse(poly)
	return ctx.domain.IfftFr(poly), nil
}

// polyCoeffToCells evaluates the polynomial over the extended domain
// and splits the bit-reversed result into cells. Each cell then holds
// the evaluations over one coset of the extended domain.
func (ctx *Context) polyCoeffToCells(polyCoeff kzg.Polynomial) ([CellsPerExtBlob]*Cell, error) {
	var cells [CellsPerExtBlob]*Cell

	paddedCoeff := make([]fr.Element, ScalarsPerExtBlob)
	copy(paddedCoeff, polyCoeff)

	extEvals := ctx.domainExtended.FftFr(paddedCoeff)
	utils.BitReverse(extEvals)

	for i := range cells {
		cell, err := SerializeCell(extEvals[i*FieldElementsPerCell : (i+1)*FieldElementsPerCell])
		if err != nil {
			return cells, err
		}
		cells[i] = cell
	}
	return cells, nil
}

// ComputeCells erasure-codes a blob into its extended evaluation and
// returns the result split into cells. The first half of the cells is
// the blob itself; the second half is redundancy.
func (ctx *Context) ComputeCells(blob *Blob) ([CellsPerExtBlob]*Cell, error) {
	polyCoeff, err := ctx.blobToPolyCoeff(blob)
	if err != nil {
		return [CellsPerExtBlob]*Cell{}, err
	}
	return ctx.polyCoeffToCells(polyCoeff)
}

// ComputeCellsAndKZGProofs erasure-codes a blob into cells and computes
// an opening proof per cell. The extension and the proof batch are
// independent, so they run concurrently.
func (ctx *Context) ComputeCellsAndKZGProofs(blob *Blob) ([CellsPerExtBlob]*Cell, [CellsPerExtBlob]KZGProof, error) {
	polyCoeff, err := ctx.blobToPolyCoeff(blob)
	if err != nil {
		return [CellsPerExtBlob]*Cell{}, [CellsPerExtBlob]KZGProof{}, err
	}
	return ctx.polyCoeffToCellsAndProofs(polyCoeff)
}

func (ctx *Context) polyCoeffToCellsAndProofs(polyCoeff kzg.Polynomial) ([CellsPerExtBlob]*Cell, [CellsPerExtBlob]KZGProof, error) {
	var (
		cells  [CellsPerExtBlob]*Cell
		proofs [CellsPerExtBlob]KZGProof
	)

	var group errgroup.Group
	group.Go(func() error {
		var err error
		cells, err = ctx.polyCoeffToCells(polyCoeff)
		return err
	})
	group.Go(func() error {
		proofPoints, err := ctx.fk20.ComputeMultiOpenProofs(polyCoeff)
		if err != nil {
			return err
		}
		for i := range proofPoints {
			proofs[i] = KZGProof(SerializeG1Point(proofPoints[i]))
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return cells, proofs, err
	}
	return cells, proofs, nil
}

// VerifyCellKZGProof checks that a cell holds the evaluations of the
// committed polynomial over the coset that cellID designates.
func (ctx *Context) VerifyCellKZGProof(blobCommitment KZGCommitment, cellID uint64, cell *Cell, proof KZGProof) (bool, error) {
	if cellID >= CellsPerExtBlob {
		return false, fmt.Errorf("%w: %d", ErrInvalidCellID, cellID)
	}

	commitment, err := DeserializeKZGCommitment(blobCommitment)
	if err != nil {
		return false, err
	}

	cosetEvals, err := DeserializeCell(cell)
	if err != nil {
		return false, err
	}

	proofPoint, err := DeserializeKZGProof(proof)
	if err != nil {
		return false, err
	}

	return ctx.cellVerifier.VerifyMultiOpenProof(&commitment, cellID, cosetEvals, &proofPoint)
}

// VerifyCellKZGProofBatch checks a batch of cell proofs, possibly
// spanning multiple blobs, with a single pairing check. rowIndices[i]
// selects the commitment in rowCommitments that cells[i] belongs to.
//
// All index validation happens before any deserialization or crypto.
// An empty batch is vacuously valid.
func (ctx *Context) VerifyCellKZGProofBatch(rowCommitments []KZGCommitment, rowIndices, cellIDs []uint64, cells []*Cell, proofs []KZGProof) (bool, error) {
	if len(rowIndices) != len(cells) || len(cellIDs) != len(cells) || len(proofs) != len(cells) {
		return false, ErrLengthMismatch
	}
	for _, rowIndex := range rowIndices {
		if rowIndex >= uint64(len(rowCommitments)) {
			return false, fmt.Errorf("%w: %d", ErrInvalidRowIndex, rowIndex)
		}
	}
	for _, cellID := range cellIDs {
		if cellID >= CellsPerExtBlob {
			return false, fmt.Errorf("%w: %d", ErrInvalidCellID, cellID)
		}
	}

	switch len(cells) {
	case 0:
		return true, nil
	case 1:
		return ctx.VerifyCellKZGProof(rowCommitments[rowIndices[0]], cellIDs[0], cells[0], proofs[0])
	}

	commitmentPoints := make([]bls12381.G1Affine, len(rowCommitments))
	cosetsEvals := make([][]fr.Element, len(cells))
	proofPoints := make([]bls12381.G1Affine, len(proofs))

	var group errgroup.Group
	group.SetLimit(ctx.nbTasks)
	for i := range rowCommitments {
		group.Go(func() error {
			point, err := DeserializeKZGCommitment(rowCommitments[i])
			if err != nil {
				return err
			}
			commitmentPoints[i] = point
			return nil
		})
	}
	for i := range cells {
		group.Go(func() error {
			cosetEvals, err := DeserializeCell(cells[i])
			if err != nil {
				return err
			}
			cosetsEvals[i] = cosetEvals

			point, err := DeserializeKZGProof(proofs[i])
			if err != nil {
				return err
			}
			proofPoints[i] = point
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return false, err
	}

	r := computeCellBatchChallenge(rowCommitments, rowIndices, cellIDs, cells, proofs)
	coefficients := utils.ComputePowers(r, uint64(len(cells)))

	return ctx.cellVerifier.VerifyMultiOpenProofBatch(commitmentPoints, rowIndices, cellIDs, cosetsEvals, proofPoints, coefficients)
}

// recoverPolyCoeff validates a partial set of cells and recovers the
// blob polynomial in coefficient form.
func (ctx *Context) recoverPolyCoeff(cellIDs []uint64, cells []*Cell) (kzg.Polynomial, error) {
	if len(cellIDs) != len(cells) {
		return nil, ErrLengthMismatch
	}

	present := bitset.New(CellsPerExtBlob)
	for _, cellID := range cellIDs {
		if cellID >= CellsPerExtBlob {
			return nil, fmt.Errorf("%w: %d", ErrInvalidCellID, cellID)
		}
		if present.Test(uint(cellID)) {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCellID, cellID)
		}
		present.Set(uint(cellID))
	}
	if present.Count() < CellsPerExtBlob/2 {
		return nil, fmt.Errorf("%w: %d of %d", ErrNotEnoughCells, present.Count(), CellsPerExtBlob/2)
	}

	// lay the known cells out in the extended evaluation's bit-reversed
	// order, with zeroes at the missing positions
	extEvals := make([]fr.Element, ScalarsPerExtBlob)
	for i, cellID := range cellIDs {
		cosetEvals, err := DeserializeCell(cells[i])
		if err != nil {
			return nil, err
		}
		copy(extEvals[cellID*FieldElementsPerCell:], cosetEvals)
	}
	utils.BitReverse(extEvals)

	// in natural order a cell occupies one residue class mod the cell
	// count, indexed by the bit-reversal of its cell index
	var missingIndices []uint64
	for cellID := uint64(0); cellID < CellsPerExtBlob; cellID++ {
		if !present.Test(uint(cellID)) {
			missingIndices = append(missingIndices, utils.ReverseBits(cellID, CellsPerExtBlob))
		}
	}

	if len(missingIndices) == 0 {
		polyCoeff := ctx.domainExtended.IfftFr(extEvals)
		return polyCoeff[:FieldElementsPerBlob], nil
	}

	polyCoeff, err := kzgmulti.RecoverPolynomialCoefficients(extEvals, ctx.domainExtended, missingIndices)
	if err != nil {
		return nil, err
	}
	return polyCoeff, nil
}

// RecoverAllCells reconstructs the full extended evaluation from at
// least half of its cells. The output is identical to ComputeCells of
// the original blob. Consistency with a commitment is not checked here;
// callers verify the recovered cells if the inputs are untrusted.
func (ctx *Context) RecoverAllCells(cellIDs []uint64, cells []*Cell) ([CellsPerExtBlob]*Cell, error) {
	polyCoeff, err := ctx.recoverPolyCoeff(cellIDs, cells)
	if err != nil {
		return [CellsPerExtBlob]*Cell{}, err
	}
	return ctx.polyCoeffToCells(polyCoeff)
}

// RecoverCellsAndKZGProofs reconstructs the full extended evaluation
// and recomputes the proof for every cell.
func (ctx *Context) RecoverCellsAndKZGProofs(cellIDs []uint64, cells []*Cell) ([CellsPerExtBlob]*Cell, [CellsPerExtBlob]KZGProof, error) {
	polyCoeff, err := ctx.recoverPolyCoeff(cellIDs, cells)
	if err != nil {
		return [CellsPerExtBlob]*Cell{}, [CellsPerExtBlob]KZGProof{}, err
	}
	return ctx.polyCoeffToCellsAndProofs(polyCoeff)
}

// CellsToBlob reassembles a blob from the full set of its cells. The
// extension is systematic under the bit-reversed ordering, so the blob
// is the first half of the cells; the redundancy half is not consulted.
func CellsToBlob(cells []*Cell) (*Blob, error) {
	if len(cells) != CellsPerExtBlob {
		return nil, ErrLengthMismatch
	}

	poly := make(kzg.Polynomial, 0, FieldElementsPerBlob)
	for i := 0; i < CellsPerExtBlob/2; i++ {
		cosetEvals, err := DeserializeCell(cells[i])
		if err != nil {
			return nil, err
		}
		poly = append(poly, cosetEvals...)
	}
	return SerializeBlob(poly)
}
