// Package ivc implements the recursive driver: RecursiveSNARK.New
// starts a fold from a base case, ProveStep extends it by one step on
// both sides of the cycle, and Verify checks the hash bindings recorded
// at the final step together with the satisfiability of both sides'
// running state.
//
// Folding happens immediately inside ProveStep rather than being
// deferred one round as a pending plain (u, w) pair per side -- this
// driver folds a side's freshly synthesized plain instance into its
// running relaxed instance in the same call that produced it. What IS
// still carried across calls is
// the bookkeeping each side's *opposite*-side circuit needs to verify
// the most recent fold in-circuit: the pre-fold relaxed instance, the
// plain instance folded into it, and the NIFS proof (cross-term
// commitment and Fiat-Shamir challenge) that did the folding. See
// internal/augcircuit for what the circuit does with these.
package ivc

import (
	"fmt"
	"math/big"

	"github.com/reilabs/nova-ivc/internal/algsponge"
	"github.com/reilabs/nova-ivc/internal/augcircuit"
	"github.com/reilabs/nova-ivc/internal/csbuilder"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/nifs"
	"github.com/reilabs/nova-ivc/internal/pp"
	"github.com/reilabs/nova-ivc/internal/r1cs"
	"github.com/reilabs/nova-ivc/internal/stepcircuit"
	"golang.org/x/sync/errgroup"
)

// RecursiveSNARK is the running state of an in-progress fold: the
// step counter, each side's initial and current output, and each
// side's running relaxed instance/witness.
type RecursiveSNARK struct {
	pp *pp.Params

	stepPrimary   stepcircuit.StepCircuit
	stepSecondary stepcircuit.StepCircuit

	i int

	z0Primary, z0Secondary []*big.Int
	ziPrimary, ziSecondary []*big.Int

	rUPrimary *r1cs.RelaxedInstance
	rWPrimary *r1cs.RelaxedWitness

	rUSecondary *r1cs.RelaxedInstance
	rWSecondary *r1cs.RelaxedWitness

	// lastPreFold/lastPlain/lastProof record the fold that most
	// recently updated rU{Primary,Secondary}: the relaxed instance as
	// it stood before that fold, the plain instance folded into it,
	// and the NIFS proof. The opposite side's next synthesis pass
	// consumes these (reduced into its own field) to re-verify the
	// fold in-circuit.
	lastPreFoldPrimary *r1cs.RelaxedInstance
	lastPlainPrimary   *r1cs.Instance
	lastProofPrimary   *nifs.Proof

	lastPreFoldSecondary *r1cs.RelaxedInstance
	lastPlainSecondary   *r1cs.Instance
	lastProofSecondary   *nifs.Proof

	// lastOtherDigest{Primary,Secondary} is the digest of the opposite
	// side's running instance each side's last synthesis pass bound
	// its hash outputs to -- kept so Verify can recompute and check
	// those outputs against the recorded z0/zi/i without re-running
	// every prior step.
	lastOtherDigestPrimary   *big.Int
	lastOtherDigestSecondary *big.Int

	buf *ResourceBuffer
}

// New starts a fold: it runs the base-case pass of both augmented
// circuits and lifts the resulting plain instances into each side's
// initial running relaxed instance. No folding happens yet -- there is
// nothing to fold against until the first ProveStep call, so the base
// case's implicit "fold" is the degenerate one FromInstance performs
// (pre-fold all-zero, challenge 1, zero cross-term), which is what is
// recorded for the first real ProveStep to consume.
func New(params *pp.Params, stepPrimary, stepSecondary stepcircuit.StepCircuit, z0Primary, z0Secondary []*big.Int) (*RecursiveSNARK, error) {
	if len(z0Primary) != stepPrimary.Arity() || len(z0Secondary) != stepSecondary.Arity() {
		return nil, ivcerr.ErrInvalidInitialInputLength
	}

	digest := params.Digest()

	uPrimary, wPrimary, ziPrimary, err := synthesizeWitness(
		params.Primary.Scalar, params.AugParamsPrimary, stepPrimary, digest,
		augcircuit.Inputs{I: big.NewInt(0), Z0: z0Primary, Zi: z0Primary, OtherPreFold: zeroRelaxedFields(), OtherPlain: zeroPlainFields(), OtherCommT: big.NewInt(0), OtherR: big.NewInt(0)},
		params.CkPrimary,
	)
	if err != nil {
		return nil, err
	}

	uSecondary, wSecondary, ziSecondary, err := synthesizeWitness(
		params.Secondary.Scalar, params.AugParamsSecondary, stepSecondary, digest,
		augcircuit.Inputs{I: big.NewInt(0), Z0: z0Secondary, Zi: z0Secondary, OtherPreFold: zeroRelaxedFields(), OtherPlain: zeroPlainFields(), OtherCommT: big.NewInt(0), OtherR: big.NewInt(0)},
		params.CkSecondary,
	)
	if err != nil {
		return nil, err
	}

	rUPrimary := r1cs.FromInstance(params.CkPrimary, params.CircuitShapePrimary.Shape, uPrimary)
	rWPrimary := r1cs.FromWitness(params.CircuitShapePrimary.Shape, wPrimary)

	rUSecondary := r1cs.FromInstance(params.CkSecondary, params.CircuitShapeSecondary.Shape, uSecondary)
	rWSecondary := r1cs.FromWitness(params.CircuitShapeSecondary.Shape, wSecondary)

	return &RecursiveSNARK{
		pp:            params,
		stepPrimary:   stepPrimary,
		stepSecondary: stepSecondary,
		i:             0,
		z0Primary:     z0Primary,
		z0Secondary:   z0Secondary,
		ziPrimary:     ziPrimary,
		ziSecondary:   ziSecondary,
		rUPrimary:     rUPrimary,
		rWPrimary:     rWPrimary,
		rUSecondary:   rUSecondary,
		rWSecondary:   rWSecondary,

		lastPreFoldPrimary: r1cs.DefaultRelaxedInstance(params.CkPrimary, params.CircuitShapePrimary.Shape),
		lastPlainPrimary:   uPrimary,
		lastProofPrimary:   &nifs.Proof{CommT: big.NewInt(0), R: big.NewInt(1)},

		lastPreFoldSecondary: r1cs.DefaultRelaxedInstance(params.CkSecondary, params.CircuitShapeSecondary.Shape),
		lastPlainSecondary:   uSecondary,
		lastProofSecondary:   &nifs.Proof{CommT: big.NewInt(0), R: big.NewInt(1)},

		lastOtherDigestPrimary:   baseOtherDigest(params.Primary.Scalar, params.AugParamsPrimary.Label),
		lastOtherDigestSecondary: baseOtherDigest(params.Secondary.Scalar, params.AugParamsSecondary.Label),

		buf: NewResourceBuffer(params.CircuitShapePrimary.Shape, params.CircuitShapeSecondary.Shape),
	}, nil
}

func zeroRelaxedFields() augcircuit.RelaxedInstanceFields {
	z := big.NewInt(0)
	return augcircuit.RelaxedInstanceFields{CommW: z, CommE: z, U: z, X0: z, X1: z}
}

func zeroPlainFields() augcircuit.PlainInstanceFields {
	z := big.NewInt(0)
	return augcircuit.PlainInstanceFields{CommW: z, X0: z, X1: z}
}

// reduceRelaxed carries a relaxed instance's public components into
// field via curve.ReduceForeign, for handing to the opposite side's
// circuit as fold-verification witnesses.
func reduceRelaxed(field curve.Field, u *r1cs.RelaxedInstance) augcircuit.RelaxedInstanceFields {
	return augcircuit.RelaxedInstanceFields{
		CommW: curve.ReduceForeign(field, u.CommW),
		CommE: curve.ReduceForeign(field, u.CommE),
		U:     curve.ReduceForeign(field, u.U),
		X0:    curve.ReduceForeign(field, u.X[0]),
		X1:    curve.ReduceForeign(field, u.X[1]),
	}
}

func reducePlain(field curve.Field, u *r1cs.Instance) augcircuit.PlainInstanceFields {
	return augcircuit.PlainInstanceFields{
		CommW: curve.ReduceForeign(field, u.CommW),
		X0:    curve.ReduceForeign(field, u.X[0]),
		X1:    curve.ReduceForeign(field, u.X[1]),
	}
}

func snapshotRelaxed(u *r1cs.RelaxedInstance) *r1cs.RelaxedInstance {
	return &r1cs.RelaxedInstance{
		CommW: new(big.Int).Set(u.CommW),
		CommE: new(big.Int).Set(u.CommE),
		U:     new(big.Int).Set(u.U),
		X:     append([]*big.Int{}, u.X...),
	}
}

// foldedOtherDigest replays, natively, exactly the fold arithmetic the
// augmented circuit performs: reduce the opposite side's pre-fold
// instance, plain instance and NIFS proof into field, then fold in
// field. Reducing the opposite side's already-folded running instance
// instead would diverge whenever the source-field fold wrapped its own
// modulus; replaying the circuit's reduced-field arithmetic keeps the
// recorded digest equal to the one the circuit bound into its hash
// outputs in every case.
func foldedOtherDigest(field curve.Field, label string, pre *r1cs.RelaxedInstance, plain *r1cs.Instance, proof *nifs.Proof) *big.Int {
	p := reduceRelaxed(field, pre)
	q := reducePlain(field, plain)
	t := curve.ReduceForeign(field, proof.CommT)
	rr := curve.ReduceForeign(field, proof.R)
	commW := field.Add(p.CommW, field.Mul(rr, q.CommW))
	commE := field.Add(p.CommE, field.Mul(rr, t))
	u := field.Add(p.U, rr)
	x0 := field.Add(p.X0, field.Mul(rr, q.X0))
	x1 := field.Add(p.X1, field.Mul(rr, q.X1))
	return algsponge.FoldInstanceDigest(field, label+"-fold", commW, commE, u, x0, x1)
}

// baseOtherDigest is the digest the base-case synthesis binds: the
// degenerate all-zero fold (zero pre-fold, zero plain instance, zero
// cross-term and challenge) evaluated by the same construction.
func baseOtherDigest(field curve.Field, label string) *big.Int {
	zero := big.NewInt(0)
	return algsponge.FoldInstanceDigest(field, label+"-fold", zero, zero, zero, zero, zero)
}

func synthesizeWitness(
	field curve.Field,
	augParams augcircuit.Params,
	step stepcircuit.StepCircuit,
	digest *big.Int,
	in augcircuit.Inputs,
	ck curve.CommitmentKey,
) (*r1cs.Instance, *r1cs.Witness, []*big.Int, error) {
	cs := csbuilder.NewWitnessBuilder(field, 2)
	_, _, ziVars, err := augcircuit.Synthesize(cs, augParams, step, digest, in)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: %w", ivcerr.ErrSynthesis, err)
	}
	inst, w := cs.InstanceAndWitness(ck)
	zi := make([]*big.Int, len(ziVars))
	for i, v := range ziVars {
		zi[i] = cs.Value(v)
	}
	return inst, w, zi, nil
}

// ProveStep extends the fold by one step. The very first call (i==0)
// only advances the step counter: New already performed that step's
// synthesis as the base case. Later calls synthesize the next step on
// each side (verifying the opposite side's most recent fold
// in-circuit), then fold the resulting plain instance into that side's
// running relaxed instance.
func (r *RecursiveSNARK) ProveStep() error {
	if r.i == 0 {
		r.i = 1
		return nil
	}

	digest := r.pp.Digest()

	// Everything below computes into locals; the receiver is only
	// written once both syntheses and both folds have succeeded, so a
	// failed step (a step circuit out of advice, say) leaves the fold
	// exactly as it was.
	otherDigestForPrimary := foldedOtherDigest(r.pp.Primary.Scalar, r.pp.AugParamsPrimary.Label, r.lastPreFoldSecondary, r.lastPlainSecondary, r.lastProofSecondary)
	uPrimary, wPrimary, ziPrimaryNext, err := synthesizeWitness(
		r.pp.Primary.Scalar, r.pp.AugParamsPrimary, r.stepPrimary, digest,
		augcircuit.Inputs{
			I: big.NewInt(int64(r.i)), Z0: r.z0Primary, Zi: r.ziPrimary,
			OtherPreFold: reduceRelaxed(r.pp.Primary.Scalar, r.lastPreFoldSecondary),
			OtherPlain:   reducePlain(r.pp.Primary.Scalar, r.lastPlainSecondary),
			OtherCommT:   curve.ReduceForeign(r.pp.Primary.Scalar, r.lastProofSecondary.CommT),
			OtherR:       curve.ReduceForeign(r.pp.Primary.Scalar, r.lastProofSecondary.R),
		},
		r.pp.CkPrimary,
	)
	if err != nil {
		return err
	}
	preFoldPrimary := snapshotRelaxed(r.rUPrimary)
	proofPrimary, foldedUPrimary, foldedWPrimary, err := nifs.Prove(r.pp.Primary, r.pp.CkPrimary, digest, r.pp.CircuitShapePrimary.Shape, r.rUPrimary, r.rWPrimary, uPrimary, wPrimary)
	if err != nil {
		return err
	}

	otherDigestForSecondary := foldedOtherDigest(r.pp.Secondary.Scalar, r.pp.AugParamsSecondary.Label, preFoldPrimary, uPrimary, proofPrimary)
	uSecondary, wSecondary, ziSecondaryNext, err := synthesizeWitness(
		r.pp.Secondary.Scalar, r.pp.AugParamsSecondary, r.stepSecondary, digest,
		augcircuit.Inputs{
			I: big.NewInt(int64(r.i)), Z0: r.z0Secondary, Zi: r.ziSecondary,
			OtherPreFold: reduceRelaxed(r.pp.Secondary.Scalar, preFoldPrimary),
			OtherPlain:   reducePlain(r.pp.Secondary.Scalar, uPrimary),
			OtherCommT:   curve.ReduceForeign(r.pp.Secondary.Scalar, proofPrimary.CommT),
			OtherR:       curve.ReduceForeign(r.pp.Secondary.Scalar, proofPrimary.R),
		},
		r.pp.CkSecondary,
	)
	if err != nil {
		return err
	}
	preFoldSecondary := snapshotRelaxed(r.rUSecondary)
	proofSecondary, foldedUSecondary, foldedWSecondary, err := nifs.Prove(r.pp.Secondary, r.pp.CkSecondary, digest, r.pp.CircuitShapeSecondary.Shape, r.rUSecondary, r.rWSecondary, uSecondary, wSecondary)
	if err != nil {
		return err
	}

	r.rUPrimary, r.rWPrimary = foldedUPrimary, foldedWPrimary
	r.ziPrimary = ziPrimaryNext
	r.lastPreFoldPrimary = preFoldPrimary
	r.lastPlainPrimary = uPrimary
	r.lastProofPrimary = proofPrimary
	r.lastOtherDigestPrimary = otherDigestForPrimary

	r.rUSecondary, r.rWSecondary = foldedUSecondary, foldedWSecondary
	r.ziSecondary = ziSecondaryNext
	r.lastPreFoldSecondary = preFoldSecondary
	r.lastPlainSecondary = uSecondary
	r.lastProofSecondary = proofSecondary
	r.lastOtherDigestSecondary = otherDigestForSecondary

	r.i++
	return nil
}

// NumSteps reports how many steps have completed.
func (r *RecursiveSNARK) NumSteps() int { return r.i }

// RunningPrimary and RunningSecondary expose each side's current
// running relaxed instance/witness, for callers (the compression
// adapter, persistence) that need to act on the fold's state directly
// rather than through ProveStep/Verify.
func (r *RecursiveSNARK) RunningPrimary() (*r1cs.RelaxedInstance, *r1cs.RelaxedWitness) {
	return r.rUPrimary, r.rWPrimary
}

func (r *RecursiveSNARK) RunningSecondary() (*r1cs.RelaxedInstance, *r1cs.RelaxedWitness) {
	return r.rUSecondary, r.rWSecondary
}

// Params returns the public parameters this fold was built from.
func (r *RecursiveSNARK) Params() *pp.Params { return r.pp }

// ZPrimary and ZSecondary report each side's current output, as a copy:
// mutating the returned slice never affects the fold's recorded state.
func (r *RecursiveSNARK) ZPrimary() []*big.Int {
	return append([]*big.Int{}, r.ziPrimary...)
}

func (r *RecursiveSNARK) ZSecondary() []*big.Int {
	return append([]*big.Int{}, r.ziSecondary...)
}

// Z0Primary and Z0Secondary report each side's recorded initial input,
// as a copy.
func (r *RecursiveSNARK) Z0Primary() []*big.Int {
	return append([]*big.Int{}, r.z0Primary...)
}

func (r *RecursiveSNARK) Z0Secondary() []*big.Int {
	return append([]*big.Int{}, r.z0Secondary...)
}

// LastPlainXPrimary and LastPlainXSecondary report the public outputs
// of the plain instance the most recent ProveStep folded into each
// side's running relaxed instance -- the value CheckHashBinding checks
// against.
func (r *RecursiveSNARK) LastPlainXPrimary() []*big.Int {
	return append([]*big.Int{}, r.lastPlainPrimary.X...)
}

func (r *RecursiveSNARK) LastPlainXSecondary() []*big.Int {
	return append([]*big.Int{}, r.lastPlainSecondary.X...)
}

// LastOtherDigestPrimary and LastOtherDigestSecondary report the
// opposite-side running-instance digest each side's last synthesis
// pass bound its hash outputs to, the other value CheckHashBinding
// needs.
func (r *RecursiveSNARK) LastOtherDigestPrimary() *big.Int {
	return r.lastOtherDigestPrimary
}

func (r *RecursiveSNARK) LastOtherDigestSecondary() *big.Int {
	return r.lastOtherDigestSecondary
}

// Verify checks that verifying against numSteps, z0Primary and
// z0Secondary is consistent with this fold's recorded state, that the
// hash bindings recorded by the final step match the recorded z0/zi,
// and that both sides' running relaxed instances satisfy their shape.
// Every failure is wrapped in ivcerr.ErrProofVerifyError (while still
// satisfying errors.Is against the more specific underlying sentinel)
// so callers can treat any verification failure uniformly without
// losing the specific cause.
func (r *RecursiveSNARK) Verify(numSteps int, z0Primary, z0Secondary []*big.Int) error {
	if numSteps == 0 {
		return fmt.Errorf("%w: num_steps must be nonzero", ivcerr.ErrProofVerifyError)
	}
	if numSteps != r.i {
		return fmt.Errorf("%w: num_steps %d does not match %d completed steps", ivcerr.ErrProofVerifyError, numSteps, r.i)
	}
	if !vecEqual(z0Primary, r.z0Primary) {
		return fmt.Errorf("%w: z0_primary does not match recorded initial input", ivcerr.ErrProofVerifyError)
	}
	if !vecEqual(z0Secondary, r.z0Secondary) {
		return fmt.Errorf("%w: z0_secondary does not match recorded initial input", ivcerr.ErrProofVerifyError)
	}

	if err := CheckHashBinding(r.pp.Primary.Scalar, r.pp.AugParamsPrimary, r.pp.Digest(), r.i, r.z0Primary, r.ziPrimary, r.lastOtherDigestPrimary, r.lastPlainPrimary.X); err != nil {
		return err
	}
	if err := CheckHashBinding(r.pp.Secondary.Scalar, r.pp.AugParamsSecondary, r.pp.Digest(), r.i, r.z0Secondary, r.ziSecondary, r.lastOtherDigestSecondary, r.lastPlainSecondary.X); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error {
		return r1cs.IsSatRelaxedWithBuffer(r.pp.CkPrimary, r.pp.CircuitShapePrimary.Shape, r.rUPrimary, r.rWPrimary, r.buf.Primary)
	})
	g.Go(func() error {
		return r1cs.IsSatRelaxedWithBuffer(r.pp.CkSecondary, r.pp.CircuitShapeSecondary.Shape, r.rUSecondary, r.rWSecondary, r.buf.Secondary)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ivcerr.ErrProofVerifyError, err)
	}
	return nil
}

// CheckHashBinding recomputes H(paramsDigest, numSteps, z0, zi,
// otherDigest) under both of the augmented circuit's output labels and
// checks it against plainX, the pair of public outputs the final step's
// plain instance carried -- tampering with the recorded zi (or with
// paramsDigest/z0/otherDigest) after proving changes this recomputed
// value and so is caught here, independent of either side's running
// instance's own satisfiability check. Exported so internal/compress
// can apply the same check against the state it captured when the
// compressed proof was produced.
func CheckHashBinding(field curve.Field, augParams augcircuit.Params, paramsDigest *big.Int, numSteps int, z0, zi []*big.Int, other *big.Int, plainX []*big.Int) error {
	want0 := algsponge.HashBinding(field, augParams.Label, paramsDigest, big.NewInt(int64(numSteps)), z0, zi, other)
	want1 := algsponge.HashBinding(field, augParams.Label+"-x1", paramsDigest, big.NewInt(int64(numSteps)), z0, zi, other)
	if plainX[0].Cmp(want0) != 0 || plainX[1].Cmp(want1) != 0 {
		return fmt.Errorf("%w: hash binding mismatch", ivcerr.ErrProofVerifyError)
	}
	return nil
}

func vecEqual(a, b []*big.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}
