package blobkzg

import (
	"encoding/hex"
	"encoding/json"
	"math/big"
	"strings"
	"sync"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/require"

	"github.com/protosharding/blobkzg/internal/kzg"
)

var (
	testSetupOnce sync.Once
	testSetup     *TrustedSetup
)

// insecureTrustedSetup serializes the shared insecure SRS into the JSON
// layout of the ceremony output. The secret matches testContext, so the
// two paths must produce identical commitments.
func insecureTrustedSetup(t *testing.T) *TrustedSetup {
	t.Helper()

	testSetupOnce.Do(func() {
		domain := kzg.NewDomain(FieldElementsPerBlob)
		srs, err := kzg.NewLagrangeSRSInsecure(*domain, big.NewInt(1337), FieldElementsPerCell+1)
		if err != nil {
			panic(err)
		}
		testSetup = &TrustedSetup{
			SetupG1Lagrange: hexG1Points(srs.CommitKey.G1),
			SetupG1Monomial: hexG1Points(srs.MonomialG1),
			SetupG2Monomial: hexG2Points(srs.OpeningKey.G2),
		}
	})

	// callers mutate the setup, so hand out a shallow copy
	setup := &TrustedSetup{
		SetupG1Lagrange: append([]string(nil), testSetup.SetupG1Lagrange...),
		SetupG1Monomial: append([]string(nil), testSetup.SetupG1Monomial...),
		SetupG2Monomial: append([]string(nil), testSetup.SetupG2Monomial...),
	}
	return setup
}

func hexG1Points(points []bls12381.G1Affine) []string {
	out := make([]string, len(points))
	for i := range points {
		raw := points[i].Bytes()
		out[i] = "0x" + hex.EncodeToString(raw[:])
	}
	return out
}

func hexG2Points(points []bls12381.G2Affine) []string {
	out := make([]string, len(points))
	for i := range points {
		raw := points[i].Bytes()
		out[i] = "0x" + hex.EncodeToString(raw[:])
	}
	return out
}

func TestReadTrustedSetupRoundTrip(t *testing.T) {
	setup := insecureTrustedSetup(t)

	encoded, err := json.Marshal(setup)
	require.NoError(t, err)

	decoded, err := ReadTrustedSetup(strings.NewReader(string(encoded)))
	require.NoError(t, err)

	ctx, err := NewContext(decoded)
	require.NoError(t, err)

	// the JSON path and the insecure path must agree on commitments
	blob := testBlob(t, 80)
	expected, err := testContext(t).BlobToKZGCommitment(blob)
	require.NoError(t, err)
	got, err := ctx.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	require.Equal(t, expected, got)
}

func TestReadTrustedSetupBadJSON(t *testing.T) {
	_, err := ReadTrustedSetup(strings.NewReader("not json"))
	require.ErrorIs(t, err, ErrInvalidTrustedSetup)
}

func TestNewContextWrongPointCount(t *testing.T) {
	setup := insecureTrustedSetup(t)
	setup.SetupG1Lagrange = setup.SetupG1Lagrange[:10]

	_, err := NewContext(setup)
	require.ErrorIs(t, err, ErrInvalidTrustedSetup)
}

func TestNewContextMalformedPoint(t *testing.T) {
	setup := insecureTrustedSetup(t)
	setup.SetupG2Monomial[3] = "0xzz"

	_, err := NewContext(setup)
	require.ErrorIs(t, err, ErrInvalidTrustedSetup)
}
