package nifs_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/nifs"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// mulShape is the single-constraint x*x=y shape, small enough to fold
// by hand and check every field by inspection.
func mulShape(field curve.Field) *r1cs.Shape {
	return &r1cs.Shape{
		Field:   field,
		NumCons: 1,
		NumIO:   1,
		NumVars: 1,
		A: r1cs.SparseMatrix{NumRows: 1, NumCols: 3, RowStart: []int{0, 1}, ColIndices: []int{1}, Values: []*big.Int{big.NewInt(1)}},
		B: r1cs.SparseMatrix{NumRows: 1, NumCols: 3, RowStart: []int{0, 1}, ColIndices: []int{1}, Values: []*big.Int{big.NewInt(1)}},
		C: r1cs.SparseMatrix{NumRows: 1, NumCols: 3, RowStart: []int{0, 1}, ColIndices: []int{2}, Values: []*big.Int{big.NewInt(1)}},
	}
}

func setup(t *testing.T) (curve.Engine, curve.CommitmentKey, *r1cs.Shape) {
	t.Helper()
	field := curve.NewField(big.NewInt(10007))
	engine := curve.NewEngine("test", field, field)
	ck := curve.SetupCommitmentKey(field, "nifs-test", 2)
	return engine, ck, mulShape(field)
}

func plainInstance(ck curve.CommitmentKey, x, y *big.Int) (*r1cs.Instance, *r1cs.Witness) {
	w := &r1cs.Witness{W: []*big.Int{y}}
	return &r1cs.Instance{CommW: curve.Commit(ck, w.W), X: []*big.Int{x}}, w
}

func TestProveVerifyRoundTrip(t *testing.T) {
	engine, ck, shape := setup(t)
	digest := big.NewInt(42)

	u1 := r1cs.DefaultRelaxedInstance(ck, shape)
	w1 := r1cs.DefaultRelaxedWitness(shape)

	u2, w2 := plainInstance(ck, big.NewInt(3), big.NewInt(9))

	proof, foldedU, foldedW, err := nifs.Prove(engine, ck, digest, shape, u1, w1, u2, w2)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if err := r1cs.IsSatRelaxed(ck, shape, foldedU, foldedW); err != nil {
		t.Fatalf("folded instance should satisfy the shape: %v", err)
	}

	verifiedU, err := nifs.Verify(engine, digest, u1, u2, proof)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verifiedU.U.Cmp(foldedU.U) != 0 || verifiedU.CommW.Cmp(foldedU.CommW) != 0 || verifiedU.CommE.Cmp(foldedU.CommE) != 0 {
		t.Fatal("verifier's folded instance does not match prover's")
	}
}

func TestProveMutMatchesProve(t *testing.T) {
	engine, ck, shape := setup(t)
	digest := big.NewInt(42)

	u1 := r1cs.DefaultRelaxedInstance(ck, shape)
	w1 := r1cs.DefaultRelaxedWitness(shape)
	u2, w2 := plainInstance(ck, big.NewInt(3), big.NewInt(9))

	u1Mut := r1cs.DefaultRelaxedInstance(ck, shape)
	w1Mut := r1cs.DefaultRelaxedWitness(shape)

	_, foldedU, foldedW, err := nifs.Prove(engine, ck, digest, shape, u1, w1, u2, w2)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if _, err := nifs.ProveMut(engine, ck, digest, shape, u1Mut, w1Mut, u2, w2); err != nil {
		t.Fatalf("prove_mut: %v", err)
	}

	if u1Mut.U.Cmp(foldedU.U) != 0 || u1Mut.CommW.Cmp(foldedU.CommW) != 0 || u1Mut.CommE.Cmp(foldedU.CommE) != 0 {
		t.Fatal("prove_mut produced a different folded instance than prove")
	}
	for i := range foldedW.W {
		if w1Mut.W[i].Cmp(foldedW.W[i]) != 0 {
			t.Fatalf("prove_mut witness[%d] diverges from prove's", i)
		}
	}
	if err := r1cs.IsSatRelaxed(ck, shape, u1Mut, w1Mut); err != nil {
		t.Fatalf("prove_mut's folded instance should satisfy the shape: %v", err)
	}
}

func TestVerifyRejectsNilProof(t *testing.T) {
	engine, ck, shape := setup(t)
	u1 := r1cs.DefaultRelaxedInstance(ck, shape)
	u2, _ := plainInstance(ck, big.NewInt(3), big.NewInt(9))

	if _, err := nifs.Verify(engine, big.NewInt(1), u1, u2, nil); !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected ErrProofVerifyError, got %v", err)
	}
}

func TestFoldSoundness(t *testing.T) {
	engine, ck, shape := setup(t)
	digest := big.NewInt(42)

	u1 := r1cs.DefaultRelaxedInstance(ck, shape)
	w1 := r1cs.DefaultRelaxedWitness(shape)
	u2, w2 := plainInstance(ck, big.NewInt(3), big.NewInt(9))

	// The honestly-folded witness, produced against the real cross
	// term.
	_, _, honestW, err := nifs.Prove(engine, ck, digest, shape, u1, w1, u2, w2)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	// A proof whose CommT does not correspond to (u1,u2) changes both
	// the Fiat-Shamir challenge (it is absorbed into it) and CommE, so
	// the honestly-folded witness -- produced against the real cross
	// term and the real challenge -- can no longer satisfy the bogus
	// fold's instance.
	bogus := &nifs.Proof{CommT: curve.Commit(ck, []*big.Int{big.NewInt(999), big.NewInt(0)})}
	foldedU, err := nifs.Verify(engine, digest, u1, u2, bogus)
	if err != nil {
		t.Fatalf("verify itself should not fail for a structurally valid bogus proof: %v", err)
	}
	if err := r1cs.IsSatRelaxed(ck, shape, foldedU, honestW); err == nil {
		t.Fatal("expected a mismatched cross-term commitment to break satisfiability")
	}
}
