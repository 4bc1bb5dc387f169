// Package nifs implements the Non-Interactive Folding Scheme: folding a
// relaxed instance/witness pair with a plain one via a cross-term
// commitment and a Fiat-Shamir challenge. The challenge is squeezed
// only after every public value of the fold (both instances and the
// cross-term commitment) has been absorbed, which is the ordering
// soundness depends on -- absorbing out of order would let a prover
// choose the cross-term after learning the challenge it is supposed to
// be committed to.
package nifs

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// Proof is the prover's single message: a commitment to the cross term
// plus the Fiat-Shamir challenge it was folded under. R is redundant
// for the native verifier (Verify recomputes it itself from the
// transcript), but the augmented circuit's in-circuit fold check has no
// way to re-run a foreign-field transcript, so it instead takes R as a
// trusted witness -- sound here because R is always squeezed below
// constants.NumHashBits, so it is already a valid element of either
// cycle field with no modular ambiguity.
type Proof struct {
	CommT curve.Commitment
	R     *big.Int
}

// crossTerm computes T = Az1⊙Bz2 + Az2⊙Bz1 - u1*Cz2 - Cz1, the slack
// introduced by folding a relaxed instance against a plain one.
func crossTerm(shape *r1cs.Shape, u1 *big.Int, z1, z2 []*big.Int) []*big.Int {
	mod := shape.Field.Modulus
	r1 := r1cs.NewMulResult(shape)
	shape.MultiplyWitnessInto(z1, r1)
	r2 := r1cs.NewMulResult(shape)
	shape.MultiplyWitnessInto(z2, r2)

	t := make([]*big.Int, shape.NumCons)
	for i := 0; i < shape.NumCons; i++ {
		term := new(big.Int)
		term.Add(term, new(big.Int).Mul(r1.AZ[i], r2.BZ[i]))
		term.Add(term, new(big.Int).Mul(r2.AZ[i], r1.BZ[i]))
		term.Sub(term, new(big.Int).Mul(u1, r2.CZ[i]))
		term.Sub(term, r1.CZ[i])
		t[i] = term.Mod(term, mod)
	}
	return t
}

func absorbInstance(ro *curve.Sponge, inst *r1cs.RelaxedInstance) {
	ro.AbsorbNative(inst.CommW)
	ro.AbsorbNative(inst.CommE)
	ro.AbsorbNative(inst.U)
	for _, x := range inst.X {
		ro.AbsorbNative(x)
	}
}

func absorbPlain(ro *curve.Sponge, inst *r1cs.Instance) {
	ro.AbsorbNative(inst.CommW)
	for _, x := range inst.X {
		ro.AbsorbNative(x)
	}
}

func challenge(engine curve.Engine, ppDigest *big.Int, u1 *r1cs.RelaxedInstance, u2 *r1cs.Instance, commT curve.Commitment) *big.Int {
	ro := engine.RO("nifs-fold")
	ro.AbsorbNative(ppDigest)
	absorbInstance(ro, u1)
	absorbPlain(ro, u2)
	ro.AbsorbNative(commT)
	return ro.DefaultSqueeze()
}

func foldInstance(field curve.Field, u1 *r1cs.RelaxedInstance, u2 *r1cs.Instance, commT curve.Commitment, r *big.Int) *r1cs.RelaxedInstance {
	x := make([]*big.Int, len(u1.X))
	for i := range x {
		x[i] = curve.FoldCommitments(field, u1.X[i], u2.X[i], r)
	}
	return &r1cs.RelaxedInstance{
		CommW: curve.FoldCommitments(field, u1.CommW, u2.CommW, r),
		CommE: curve.FoldCommitments(field, u1.CommE, commT, r),
		U:     field.Add(u1.U, r),
		X:     x,
	}
}

func foldWitness(field curve.Field, w1 *r1cs.RelaxedWitness, w2 *r1cs.Witness, t []*big.Int, r *big.Int) *r1cs.RelaxedWitness {
	w := make([]*big.Int, len(w1.W))
	for i := range w {
		w[i] = field.Add(w1.W[i], field.Mul(r, w2.W[i]))
	}
	e := make([]*big.Int, len(w1.E))
	for i := range e {
		e[i] = field.Add(w1.E[i], field.Mul(r, t[i]))
	}
	return &r1cs.RelaxedWitness{W: w, E: e}
}

// Prove folds (u1,w1) relaxed with (u2,w2) plain, returning the proof
// the verifier needs plus the folded instance and witness.
func Prove(
	engine curve.Engine,
	ck curve.CommitmentKey,
	ppDigest *big.Int,
	shape *r1cs.Shape,
	u1 *r1cs.RelaxedInstance, w1 *r1cs.RelaxedWitness,
	u2 *r1cs.Instance, w2 *r1cs.Witness,
) (*Proof, *r1cs.RelaxedInstance, *r1cs.RelaxedWitness, error) {
	z1 := shape.Z(u1.U, u1.X, w1.W)
	z2 := shape.Z(shape.Field.One(), u2.X, w2.W)

	t := crossTerm(shape, u1.U, z1, z2)
	commT := curve.Commit(ck, t)

	r := challenge(engine, ppDigest, u1, u2, commT)

	foldedU := foldInstance(shape.Field, u1, u2, commT, r)
	foldedW := foldWitness(shape.Field, w1, w2, t, r)

	return &Proof{CommT: commT, R: r}, foldedU, foldedW, nil
}

// ProveMut folds (u2,w2) into (u1,w1) in place, overwriting u1 and w1
// rather than returning a fresh pair. Its public contract is identical
// to Prove's: same proof, same resulting field values, just written
// into the caller's existing allocation instead of a new one -- useful
// across a long chain of prove_step calls where u1/w1 are the
// RecursiveSNARK's running instance and allocating a fresh pair every
// step would otherwise churn the allocator once per step.
func ProveMut(
	engine curve.Engine,
	ck curve.CommitmentKey,
	ppDigest *big.Int,
	shape *r1cs.Shape,
	u1 *r1cs.RelaxedInstance, w1 *r1cs.RelaxedWitness,
	u2 *r1cs.Instance, w2 *r1cs.Witness,
) (*Proof, error) {
	z1 := shape.Z(u1.U, u1.X, w1.W)
	z2 := shape.Z(shape.Field.One(), u2.X, w2.W)

	t := crossTerm(shape, u1.U, z1, z2)
	commT := curve.Commit(ck, t)

	r := challenge(engine, ppDigest, u1, u2, commT)

	folded := foldInstance(shape.Field, u1, u2, commT, r)
	u1.CommW, u1.CommE, u1.U, u1.X = folded.CommW, folded.CommE, folded.U, folded.X

	foldedW := foldWitness(shape.Field, w1, w2, t, r)
	w1.W, w1.E = foldedW.W, foldedW.E

	return &Proof{CommT: commT, R: r}, nil
}

// Verify recomputes the same challenge from the public values of the
// fold and folds u1 and u2's instances, without touching any witness.
func Verify(
	engine curve.Engine,
	ppDigest *big.Int,
	u1 *r1cs.RelaxedInstance,
	u2 *r1cs.Instance,
	proof *Proof,
) (*r1cs.RelaxedInstance, error) {
	if proof == nil || proof.CommT == nil {
		return nil, ivcerr.ErrProofVerifyError
	}
	r := challenge(engine, ppDigest, u1, u2, proof.CommT)
	return foldInstance(engine.Scalar, u1, u2, proof.CommT, r), nil
}
