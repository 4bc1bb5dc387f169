package ivc_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivc"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/pp"
	"github.com/reilabs/nova-ivc/internal/stepcircuit"
)

// TestTrivialTrivialOneStep exercises the recursion machinery on its
// own: arity=0 circuits on both sides, one prove_step call, expect Ok
// with empty output vectors.
func TestTrivialTrivialOneStep(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	params, err := pp.Setup(primary, secondary, stepcircuit.NewTrivialCircuit(0), stepcircuit.NewTrivialCircuit(0), nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	snark, err := ivc.New(params, stepcircuit.NewTrivialCircuit(0), stepcircuit.NewTrivialCircuit(0), nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := snark.ProveStep(); err != nil {
		t.Fatalf("prove_step: %v", err)
	}
	if err := snark.Verify(snark.NumSteps(), nil, nil); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if snark.NumSteps() != 1 {
		t.Fatalf("expected num_steps=1, got %d", snark.NumSteps())
	}
	if len(snark.ZPrimary()) != 0 || len(snark.ZSecondary()) != 0 {
		t.Fatalf("expected empty output vectors, got zp=%v zs=%v", snark.ZPrimary(), snark.ZSecondary())
	}
}

// TestTrivialCubicTrace folds a non-trivial trace: primary is the
// identity on z0=[1], secondary is the cubic step on z0=[0]; after k=3
// prove_step calls the trace is 0 -> 5 -> 135 -> 2,460,515.
func TestTrivialCubicTrace(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	stepP := stepcircuit.NewTrivialCircuit(1)
	stepS := stepcircuit.CubicCircuit{}

	params, err := pp.Setup(primary, secondary, stepP, stepS, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	z0Primary := []*big.Int{big.NewInt(1)}
	z0Secondary := []*big.Int{big.NewInt(0)}
	snark, err := ivc.New(params, stepP, stepS, z0Primary, z0Secondary)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	expected := []int64{5, 135, 2460515}
	for k := 0; k < 3; k++ {
		if err := snark.ProveStep(); err != nil {
			t.Fatalf("prove_step %d: %v", k, err)
		}
		if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
			t.Fatalf("verify after step %d: %v", k, err)
		}
		got := snark.ZSecondary()[0]
		want := big.NewInt(expected[k])
		if got.Cmp(want) != 0 {
			t.Fatalf("after %d prove_step call(s): zn_S = %v, want %v", k+1, got, want)
		}
	}

	if snark.NumSteps() != 3 {
		t.Fatalf("expected num_steps=3, got %d", snark.NumSteps())
	}
	if zp := snark.ZPrimary()[0]; zp.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("expected zn_P=[1], got %v", zp)
	}
}

// TestNonDeterministicFifthRootAdvice drives a step whose witness is
// pure advice: the primary circuit consumes one externally supplied
// fifth root per step and checks it against the previous step's
// output.
func TestNonDeterministicFifthRootAdvice(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	modulus := primary.Scalar.Modulus

	fifthRoot := func(v *big.Int) *big.Int {
		exp := new(big.Int).ModInverse(big.NewInt(5), new(big.Int).Sub(modulus, big.NewInt(1)))
		if exp == nil {
			t.Fatal("5 is not invertible mod p-1 for this field; pick a different test modulus")
		}
		return new(big.Int).Exp(v, exp, modulus)
	}

	x0 := big.NewInt(123456789)
	r1 := fifthRoot(x0)
	r2 := fifthRoot(r1)
	r3 := fifthRoot(r2)

	stepP := stepcircuit.NewFifthRootCircuit([]*big.Int{r1, r2, r3})
	stepS := stepcircuit.NewTrivialCircuit(1)

	params, err := pp.Setup(primary, secondary, stepP, stepS, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	z0Primary := []*big.Int{x0}
	z0Secondary := []*big.Int{big.NewInt(0)}
	snark, err := ivc.New(params, stepP, stepS, z0Primary, z0Secondary)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for k := 0; k < 3; k++ {
		if err := snark.ProveStep(); err != nil {
			t.Fatalf("prove_step %d: %v", k, err)
		}
		if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
			t.Fatalf("verify after step %d: %v", k, err)
		}
	}

	if got := snark.ZPrimary()[0]; got.Cmp(r3) != 0 {
		t.Fatalf("expected zn_P=[r3]=%v, got %v", r3, got)
	}
}

// TestTamperedRunningInstanceFailsVerify: mutating the primary running
// instance's u after proving must make Verify fail.
func TestTamperedRunningInstanceFailsVerify(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	stepP := stepcircuit.NewTrivialCircuit(1)
	stepS := stepcircuit.CubicCircuit{}

	params, err := pp.Setup(primary, secondary, stepP, stepS, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	z0Primary := []*big.Int{big.NewInt(1)}
	z0Secondary := []*big.Int{big.NewInt(0)}
	snark, err := ivc.New(params, stepP, stepS, z0Primary, z0Secondary)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for k := 0; k < 2; k++ {
		if err := snark.ProveStep(); err != nil {
			t.Fatalf("prove_step %d: %v", k, err)
		}
	}
	if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
		t.Fatalf("verify before tampering should succeed: %v", err)
	}

	uPrimary, _ := snark.RunningPrimary()
	uPrimary.U = new(big.Int).Add(uPrimary.U, big.NewInt(1))

	err = snark.Verify(snark.NumSteps(), z0Primary, z0Secondary)
	if !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected ErrProofVerifyError after tampering, got %v", err)
	}
}

// TestVerifyRejectsBadStepCountAndZ0 covers the reject paths ahead of
// satisfiability: wrong step counts and an altered z0 must be caught
// by Verify's explicit checks, before either the hash binding or
// IsSatRelaxed's own check of the running instance's internal
// consistency is reached.
func TestVerifyRejectsBadStepCountAndZ0(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	stepP := stepcircuit.NewTrivialCircuit(1)
	stepS := stepcircuit.CubicCircuit{}

	params, err := pp.Setup(primary, secondary, stepP, stepS, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	z0Primary := []*big.Int{big.NewInt(1)}
	z0Secondary := []*big.Int{big.NewInt(0)}
	snark, err := ivc.New(params, stepP, stepS, z0Primary, z0Secondary)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for k := 0; k < 2; k++ {
		if err := snark.ProveStep(); err != nil {
			t.Fatalf("prove_step %d: %v", k, err)
		}
	}
	if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
		t.Fatalf("verify before tampering should succeed: %v", err)
	}

	if err := snark.Verify(snark.NumSteps()-1, z0Primary, z0Secondary); !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected ErrProofVerifyError for wrong num_steps, got %v", err)
	}
	if err := snark.Verify(0, z0Primary, z0Secondary); !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected ErrProofVerifyError for num_steps=0, got %v", err)
	}
	alteredZ0 := []*big.Int{big.NewInt(2)}
	if err := snark.Verify(snark.NumSteps(), alteredZ0, z0Secondary); !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected ErrProofVerifyError for altered z0_primary, got %v", err)
	}
}

func TestNewRejectsWrongArity(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	stepP := stepcircuit.NewTrivialCircuit(1)
	stepS := stepcircuit.NewTrivialCircuit(1)

	params, err := pp.Setup(primary, secondary, stepP, stepS, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err = ivc.New(params, stepP, stepS, []*big.Int{big.NewInt(1), big.NewInt(2)}, []*big.Int{big.NewInt(0)})
	if !errors.Is(err, ivcerr.ErrInvalidInitialInputLength) {
		t.Fatalf("expected ErrInvalidInitialInputLength, got %v", err)
	}
}
