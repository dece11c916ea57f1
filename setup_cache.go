package blobkzg

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/blang/semver/v4"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/fxamacker/cbor/v2"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/utils"
	"github.com/protosharding/blobkzg/logger"
)

// setupCache is the on-disk form of a validated trusted setup. Points
// are stored as concatenated compressed bytes and are not re-validated
// on load: the cache must only be written from an already validated
// Context.
type setupCache struct {
	Version    string `cbor:"version"`
	G1Lagrange []byte `cbor:"g1Lagrange"`
	G1Monomial []byte `cbor:"g1Monomial"`
	G2Monomial []byte `cbor:"g2Monomial"`
}

// WriteSetupCache serializes the context's trusted setup, skipping the
// expensive validation on future loads via NewContextFromCache.
func (ctx *Context) WriteSetupCache(w io.Writer) error {
	start := time.Now()

	// the commit key is held in bit-reversed order; the cache stores
	// the canonical ordering
	lagrange := make([]bls12381.G1Affine, len(ctx.commitKey.G1))
	copy(lagrange, ctx.commitKey.G1)
	utils.BitReverse(lagrange)

	cache := setupCache{
		Version:    Version.String(),
		G1Lagrange: serializeG1Slice(lagrange),
		G1Monomial: serializeG1Slice(ctx.openKey.G1),
		G2Monomial: serializeG2Slice(ctx.openKey.G2),
	}

	if err := cbor.NewEncoder(w).Encode(&cache); err != nil {
		return fmt.Errorf("encoding setup cache: %w", err)
	}

	log := logger.Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("setup cache written")
	return nil
}

// NewContextFromCache rebuilds a Context from a setup cache written by
// WriteSetupCache. The cache is rejected if it was written by a
// different major version of the engine.
func NewContextFromCache(r io.Reader, opts ...Option) (*Context, error) {
	start := time.Now()

	var cache setupCache
	if err := cbor.NewDecoder(r).Decode(&cache); err != nil {
		return nil, fmt.Errorf("%w: decoding setup cache: %s", ErrInvalidTrustedSetup, err)
	}

	cacheVersion, err := semver.Parse(cache.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: setup cache version %q: %s", ErrInvalidTrustedSetup, cache.Version, err)
	}
	if cacheVersion.Major != Version.Major {
		return nil, fmt.Errorf("%w: setup cache version %s is incompatible with %s", ErrInvalidTrustedSetup, cacheVersion, Version)
	}

	lagrangeG1, err := deserializeG1Slice(cache.G1Lagrange, FieldElementsPerBlob)
	if err != nil {
		return nil, err
	}
	monomialG1, err := deserializeG1Slice(cache.G1Monomial, FieldElementsPerBlob)
	if err != nil {
		return nil, err
	}
	monomialG2, err := deserializeG2Slice(cache.G2Monomial, FieldElementsPerCell+1)
	if err != nil {
		return nil, err
	}

	_, _, genG1, genG2 := bls12381.Generators()
	srs := &kzg.SRS{
		CommitKey: kzg.CommitKey{G1: lagrangeG1},
		OpeningKey: kzg.OpeningKey{
			GenG1:   genG1,
			GenG2:   genG2,
			AlphaG2: monomialG2[1],
			G2:      monomialG2,
			G1:      monomialG1,
		},
		MonomialG1: monomialG1,
	}

	ctx, err := newContextFromSRS(srs, opts...)
	if err != nil {
		return nil, err
	}

	log := logger.Logger()
	log.Debug().Dur("took", time.Since(start)).Msg("setup cache loaded")
	return ctx, nil
}

func serializeG1Slice(points []bls12381.G1Affine) []byte {
	out := make([]byte, 0, len(points)*BytesPerCommitment)
	for i := range points {
		raw := points[i].Bytes()
		out = append(out, raw[:]...)
	}
	return out
}

func serializeG2Slice(points []bls12381.G2Affine) []byte {
	out := make([]byte, 0, len(points)*2*BytesPerCommitment)
	for i := range points {
		raw := points[i].Bytes()
		out = append(out, raw[:]...)
	}
	return out
}

func deserializeG1Slice(raw []byte, expected int) ([]bls12381.G1Affine, error) {
	if len(raw) != expected*BytesPerCommitment {
		return nil, fmt.Errorf("%w: expected %d cached G1 points", ErrInvalidTrustedSetup, expected)
	}
	points := make([]bls12381.G1Affine, expected)
	dec := bls12381.NewDecoder(bytes.NewReader(raw), bls12381.NoSubgroupChecks())
	for i := range points {
		if err := dec.Decode(&points[i]); err != nil {
			return nil, fmt.Errorf("%w: cached G1 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
	}
	return points, nil
}

func deserializeG2Slice(raw []byte, expected int) ([]bls12381.G2Affine, error) {
	if len(raw) != expected*2*BytesPerCommitment {
		return nil, fmt.Errorf("%w: expected %d cached G2 points", ErrInvalidTrustedSetup, expected)
	}
	points := make([]bls12381.G2Affine, expected)
	dec := bls12381.NewDecoder(bytes.NewReader(raw), bls12381.NoSubgroupChecks())
	for i := range points {
		if err := dec.Decode(&points[i]); err != nil {
			return nil, fmt.Errorf("%w: cached G2 point %d: %s", ErrInvalidTrustedSetup, i, err)
		}
	}
	return points, nil
}
