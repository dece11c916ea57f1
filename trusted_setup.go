package blobkzg

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"

	"github.com/protosharding/blobkzg/internal/kzg"
)

// TrustedSetup is the serialized form of the structured reference
// string produced by the setup ceremony: hex-encoded compressed points,
// in the layout of the published JSON file.
type TrustedSetup struct {
	SetupG1Lagrange []string `json:"g1_lagrange"`
	SetupG1Monomial []string `json:"g1_monomial"`
	SetupG2Monomial []string `json:"g2_monomial"`
}

// ReadTrustedSetup parses a JSON trusted-setup description. The points
// are not validated here; NewContext performs validation.
func ReadTrustedSetup(r io.Reader) (*TrustedSetup, error) {
	var setup TrustedSetup
	if err := json.NewDecoder(r).Decode(&setup); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrustedSetup, err)
	}
	return &setup, nil
}

// parse decodes and validates every point of the setup, returning the
// SRS in Lagrange form and natural order.
func (ts *TrustedSetup) parse() (*kzg.SRS, error) {
	if len(ts.SetupG1Lagrange) != FieldElementsPerBlob {
		return nil, fmt.Errorf("%w: expected %d lagrange G1 points, got %d", ErrInvalidTrustedSetup, FieldElementsPerBlob, len(ts.SetupG1Lagrange))
	}
	if len(ts.SetupG1Monomial) != FieldElementsPerBlob {
		return nil, fmt.Errorf("%w: expected %d monomial G1 points, got %d", ErrInvalidTrustedSetup, FieldElementsPerBlob, len(ts.SetupG1Monomial))
	}
	if len(ts.SetupG2Monomial) != FieldElementsPerCell+1 {
		return nil, fmt.Errorf("%w: expected %d monomial G2 points, got %d", ErrInvalidTrustedSetup, FieldElementsPerCell+1, len(ts.SetupG2Monomial))
	}

	lagrangeG1, err := parseG1Points(ts.SetupG1Lagrange)
	if err != nil {
		return nil, err
	}
	monomialG1, err := parseG1Points(ts.SetupG1Monomial)
	if err != nil {
		return nil, err
	}
	monomialG2, err := parseG2Points(ts.SetupG2Monomial)
	if err != nil {
		return nil, err
	}

	_, _, genG1, genG2 := bls12381.Generators()
	openKey := kzg.OpeningKey{
		GenG1:   genG1,
		GenG2:   genG2,
		AlphaG2: monomialG2[1],
		G2:      monomialG2,
		G1:      monomialG1,
	}

	return &kzg.SRS{
		CommitKey:  kzg.CommitKey{G1: lagrangeG1},
		OpeningKey: openKey,
		MonomialG1: monomialG1,
	}, nil
}

func parseG1Points(hexPoints []string) ([]bls12381.G1Affine, error) {
	points := make([]bls12381.G1Affine, len(hexPoints))
	for i, hexPoint := range hexPoints {
		raw, err := decodeHexPoint(hexPoint, BytesPerCommitment)
		if err != nil {
			return nil, fmt.Errorf("%w: G1 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
		// subgroup check included
		if _, err := points[i].SetBytes(raw); err != nil {
			return nil, fmt.Errorf("%w: G1 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
	}
	return points, nil
}

func parseG2Points(hexPoints []string) ([]bls12381.G2Affine, error) {
	points := make([]bls12381.G2Affine, len(hexPoints))
	for i, hexPoint := range hexPoints {
		raw, err := decodeHexPoint(hexPoint, 2*BytesPerCommitment)
		if err != nil {
			return nil, fmt.Errorf("%w: G2 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
		if _, err := points[i].SetBytes(raw); err != nil {
			return nil, fmt.Errorf("%w: G2 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
	}
	return points, nil
}

func decodeHexPoint(hexPoint string, expectedSize int) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hexPoint, "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != expectedSize {
		return nil, fmt.Errorf("expected %d bytes, got %d", expectedSize, len(raw))
	}
	return raw, nil
}
