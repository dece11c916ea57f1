package blobkzg

import (
	"fmt"
	"math/big"
	"runtime"
	"time"

	"github.com/blang/semver/v4"

	"github.com/protosharding/blobkzg/internal/kzg"
	"github.com/protosharding/blobkzg/internal/kzgmulti"
	"github.com/protosharding/blobkzg/logger"
)

// Version of the engine. Serialized artifacts (the setup cache) embed it
// and are rejected across major versions.
var Version = semver.MustParse("1.0.0")

// Context holds the trusted setup and the tables derived from it. It is
// read-only after construction.
type Context struct {
	// domain is the order-4096 blob domain with bit-reversed roots, so
	// that blob evaluations, the Lagrange commit key and the extended
	// evaluation's cells all share one ordering.
	domain *kzg.Domain
	// domainExtended is the order-8192 domain in natural order, used
	// for the redundancy extension and recovery.
	domainExtended *kzg.Domain

	commitKey *kzg.CommitKey
	openKey   *kzg.OpeningKey

	fk20         *kzgmulti.FK20
	cellVerifier *kzgmulti.Verifier

	nbTasks int
}

// Option configures a Context.
type Option func(*Context)

// WithNbTasks bounds the number of goroutines used by the
// multi-exponentiations. Defaults to runtime.NumCPU.
func WithNbTasks(nbTasks int) Option {
	return func(ctx *Context) {
		ctx.nbTasks = nbTasks
	}
}

// NewContext validates a trusted setup and precomputes the evaluation
// domains and proof tables. It fails with ErrInvalidTrustedSetup when a
// point count is wrong or any point fails subgroup validation.
func NewContext(setup *TrustedSetup, opts ...Option) (*Context, error) {
	start := time.Now()
	log := logger.Logger().With().Str("component", "context").Logger()

	srs, err := setup.parse()
	if err != nil {
		return nil, err
	}

	ctx, err := newContextFromSRS(srs, opts...)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("nbG1Lagrange", len(srs.CommitKey.G1)).
		Int("nbG2", len(srs.OpeningKey.G2)).
		Dur("took", time.Since(start)).
		Msg("trusted setup loaded")
	return ctx, nil
}

// NewContextInsecure returns a Context whose trusted setup is generated
// from the supplied secret. The secret is known to the caller, so the
// resulting commitments carry no security; testing only.
func NewContextInsecure(secret uint64, opts ...Option) (*Context, error) {
	domain := kzg.NewDomain(FieldElementsPerBlob)

	srs, err := kzg.NewLagrangeSRSInsecure(*domain, new(big.Int).SetUint64(secret), FieldElementsPerCell+1)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrustedSetup, err)
	}
	return newContextFromSRS(srs, opts...)
}

// newContextFromSRS builds a Context from an SRS whose commit key is in
// Lagrange form and natural order.
func newContextFromSRS(srs *kzg.SRS, opts ...Option) (*Context, error) {
	domain := kzg.NewDomain(FieldElementsPerBlob)
	domainExtended := kzg.NewDomain(ScalarsPerExtBlob)

	// The blob domain and the commit key share the bit-reversed
	// ordering; the extended domain stays in natural order for the
	// FFT-based cell operations.
	domain.ReverseRoots()
	srs.CommitKey.ReversePoints()

	fk20, err := kzgmulti.NewFK20(srs.MonomialG1, FieldElementsPerCell, CellsPerExtBlob)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTrustedSetup, err)
	}

	ctx := &Context{
		domain:         domain,
		domainExtended: domainExtended,
		commitKey:      &srs.CommitKey,
		openKey:        &srs.OpeningKey,
		fk20:           fk20,
		cellVerifier:   kzgmulti.NewVerifier(&srs.OpeningKey, domainExtended),
		nbTasks:        runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(ctx)
	}
	return ctx, nil
}
