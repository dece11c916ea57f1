package kzgmulti

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/stretchr/testify/require"

	"github.com/protosharding/blobkzg/internal/kzg"
)

func TestVanishingPolyCoeff(t *testing.T) {
	var a, b fr.Element
	a.SetUint64(3)
	b.SetUint64(5)

	// (X - 3)(X - 5) = X² - 8X + 15
	coeffs := vanishingPolyCoeff([]fr.Element{a, b})
	require.Len(t, coeffs, 3)

	var expected0, expected1, expected2 fr.Element
	expected0.SetUint64(15)
	expected1.SetUint64(8)
	expected1.Neg(&expected1)
	expected2.SetOne()

	require.Equal(t, expected0, coeffs[0])
	require.Equal(t, expected1, coeffs[1])
	require.Equal(t, expected2, coeffs[2])
}

func TestVanishingPolyOnIndicesHasCorrectRoots(t *testing.T) {
	missing := []uint64{0, 5, 77}
	zX := constructVanishingPolyOnIndices(missing)

	extDomain := kzg.NewDomain(ScalarsPerExtBlob)
	zEvals := extDomain.FftFr(zX)

	// the polynomial vanishes exactly on the residue classes of the
	// missing indices
	missingSet := map[uint64]bool{}
	for _, m := range missing {
		missingSet[m] = true
	}
	for i := range zEvals {
		if missingSet[uint64(i)%CellsPerExtBlob] {
			require.True(t, zEvals[i].IsZero(), "expected zero at %d", i)
		} else {
			require.False(t, zEvals[i].IsZero(), "unexpected zero at %d", i)
		}
	}
}

func TestRecoverPolynomialCoefficients(t *testing.T) {
	extDomain := kzg.NewDomain(ScalarsPerExtBlob)
	polyCoeff := testPoly(polyLen, 31)

	padded := make([]fr.Element, ScalarsPerExtBlob)
	copy(padded, polyCoeff)
	extEvals := extDomain.FftFr(padded)

	// erase half of the residue classes, the maximum the code tolerates
	missing := make([]uint64, 0, CellsPerExtBlob/2)
	for i := uint64(0); i < CellsPerExtBlob/2; i++ {
		missing = append(missing, i*2+1)
	}

	data := make([]fr.Element, len(extEvals))
	copy(data, extEvals)
	missingSet := map[uint64]bool{}
	for _, m := range missing {
		missingSet[m] = true
	}
	for i := range data {
		if missingSet[uint64(i)%CellsPerExtBlob] {
			data[i].SetZero()
		}
	}

	recovered, err := RecoverPolynomialCoefficients(data, extDomain, missing)
	require.NoError(t, err)
	require.Equal(t, polyCoeff, recovered)
}

func TestRecoverPolynomialCoefficientsInconsistentData(t *testing.T) {
	extDomain := kzg.NewDomain(ScalarsPerExtBlob)
	polyCoeff := testPoly(polyLen, 32)

	padded := make([]fr.Element, ScalarsPerExtBlob)
	copy(padded, polyCoeff)
	data := extDomain.FftFr(padded)

	missing := []uint64{3, 9}
	for i := range data {
		r := uint64(i) % CellsPerExtBlob
		if r == 3 || r == 9 {
			data[i].SetZero()
		}
	}

	// corrupt one known evaluation: the remaining points no longer lie
	// on a polynomial of the blob's degree
	var one fr.Element
	one.SetOne()
	data[0].Add(&data[0], &one)

	_, err := RecoverPolynomialCoefficients(data, extDomain, missing)
	require.ErrorIs(t, err, ErrInconsistentCells)
}

func TestRecoverPolynomialCoefficientsWrongDataLength(t *testing.T) {
	extDomain := kzg.NewDomain(ScalarsPerExtBlob)
	_, err := RecoverPolynomialCoefficients(make([]fr.Element, 100), extDomain, []uint64{1})
	require.Error(t, err)
}
