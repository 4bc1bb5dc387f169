// Package pp assembles a curve-cycle engine pair and a pair of step
// circuits into the public parameters both the prover and the
// verifier need: each side's commitment key, augmented-circuit shape,
// and a single digest binding all of it together, computed once and
// cached thereafter, since repeated re-derivation would otherwise
// dominate every verify call.
package pp

import (
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/reilabs/nova-ivc/internal/algsponge"
	"github.com/reilabs/nova-ivc/internal/augcircuit"
	"github.com/reilabs/nova-ivc/internal/circuitshape"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/stepcircuit"
)

// CkHint lets a caller grow a commitment key beyond the floor a shape's
// own witness/error vector lengths require, for compression backends
// whose circuits outgrow the folding shape they compress.
type CkHint func(witnessLen, errorLen int) (int, int)

func defaultHint(w, e int) (int, int) { return w, e }

// Params is the full set of public parameters for one curve-cycle
// setup. It is safe for concurrent use: Digest computes its value once
// and caches it.
type Params struct {
	Primary   curve.Engine
	Secondary curve.Engine

	CkPrimary   curve.CommitmentKey
	CkSecondary curve.CommitmentKey

	CircuitShapePrimary   *circuitshape.CircuitShape
	CircuitShapeSecondary *circuitshape.CircuitShape

	AugParamsPrimary   augcircuit.Params
	AugParamsSecondary augcircuit.Params

	digest atomic.Pointer[big.Int]
	once   sync.Once
}

// Setup builds public parameters for a pair of step circuits, one per
// side of the cycle. primary and secondary must form a valid 2-cycle
// (checked here since Go has no higher-kinded trait to enforce it at
// the type level the way the original Engine trait pairing did).
func Setup(
	primary, secondary curve.Engine,
	c1 stepcircuit.StepCircuit,
	c2 stepcircuit.StepCircuit,
	ckHintPrimary, ckHintSecondary CkHint,
) (*Params, error) {
	if !curve.IsValidCycle(primary, secondary) {
		return nil, ivcerr.ErrCurveCycleMismatch
	}
	if ckHintPrimary == nil {
		ckHintPrimary = defaultHint
	}
	if ckHintSecondary == nil {
		ckHintSecondary = defaultHint
	}

	augParamsPrimary := augcircuit.Params{Label: "primary-augmented", Field: primary.Scalar}
	augParamsSecondary := augcircuit.Params{Label: "secondary-augmented", Field: secondary.Scalar}

	shapePrimary := augcircuit.BuildShape(primary.Scalar, augParamsPrimary, c1)
	shapeSecondary := augcircuit.BuildShape(secondary.Scalar, augParamsSecondary, c2)

	wPrimary, ePrimary := shapePrimary.CommitmentKeyFloor()
	wPrimary, ePrimary = ckHintPrimary(wPrimary, ePrimary)
	ckPrimary := curve.SetupCommitmentKey(primary.Scalar, "primary", max(wPrimary, ePrimary))

	wSecondary, eSecondary := shapeSecondary.CommitmentKeyFloor()
	wSecondary, eSecondary = ckHintSecondary(wSecondary, eSecondary)
	ckSecondary := curve.SetupCommitmentKey(secondary.Scalar, "secondary", max(wSecondary, eSecondary))

	params := &Params{
		Primary:               primary,
		Secondary:             secondary,
		CkPrimary:             ckPrimary,
		CkSecondary:           ckSecondary,
		CircuitShapePrimary:   circuitshape.New(shapePrimary, c1.Arity()),
		CircuitShapeSecondary: circuitshape.New(shapeSecondary, c2.Arity()),
		AugParamsPrimary:      augParamsPrimary,
		AugParamsSecondary:    augParamsSecondary,
	}
	return params, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Digest returns this setup's binding digest, computing it once on
// first call and caching the result for every subsequent call.
func (p *Params) Digest() *big.Int {
	p.once.Do(func() {
		sp := algsponge.NewNativeSponge(p.Primary.Scalar, "public-params-digest")
		sp.Absorb(p.CircuitShapePrimary.Digest(p.Primary.Scalar))
		sp.Absorb(crossFieldDigest(p.Primary.Scalar, p.CircuitShapeSecondary.Digest(p.Secondary.Scalar)))
		sp.Absorb(big.NewInt(int64(len(p.CkPrimary.Generators))))
		sp.Absorb(big.NewInt(int64(len(p.CkSecondary.Generators))))
		p.digest.Store(sp.Squeeze())
	})
	return p.digest.Load()
}

// crossFieldDigest folds a foreign-field digest value into this side's
// field via the same limb decomposition used throughout the module,
// since the secondary shape's digest is an element of the secondary
// field and cannot be absorbed directly into a primary-field sponge.
func crossFieldDigest(field curve.Field, foreign *big.Int) *big.Int {
	limbs := curve.DecomposeLimbs(foreign)
	return curve.RecomposeLimbs(field, limbs)
}

// NumConstraints reports the constraint count of each side's augmented
// circuit, for diagnostics and tests.
func (p *Params) NumConstraints() (primary, secondary int) {
	return p.CircuitShapePrimary.Shape.NumCons, p.CircuitShapeSecondary.Shape.NumCons
}
