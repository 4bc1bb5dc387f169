package compress_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/reilabs/nova-ivc/internal/compress"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivc"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/pp"
	"github.com/reilabs/nova-ivc/internal/stepcircuit"
)

// TestCompressAfterFold compresses a completed trivial/cubic fold and
// checks the result against the derived VerifierKey.
func TestCompressAfterFold(t *testing.T) {
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
	for k := 0; k < 3; k++ {
		if err := snark.ProveStep(); err != nil {
			t.Fatalf("prove_step %d: %v", k, err)
		}
	}
	if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
		t.Fatalf("verify: %v", err)
	}

	pk, vk, err := compress.Setup(params)
	if err != nil {
		t.Fatalf("compress setup: %v", err)
	}
	proof, err := compress.Prove(pk, snark)
	if err != nil {
		t.Fatalf("compress prove: %v", err)
	}
	if err := compress.Verify(vk, params, proof); err != nil {
		t.Fatalf("compress verify: %v", err)
	}
}

// TestCompressRejectsCrossSetupProof: setup(Trivial,Trivial) and
// setup(Cubic,Trivial) produce distinct digests, and a proof
// compressed under one does not verify under the other's VerifierKey.
func TestCompressRejectsCrossSetupProof(t *testing.T) {
	primary, secondary := curve.BN254Cycle()

	paramsTT, err := pp.Setup(primary, secondary, stepcircuit.NewTrivialCircuit(1), stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(trivial,trivial): %v", err)
	}
	paramsCT, err := pp.Setup(primary, secondary, stepcircuit.CubicCircuit{}, stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(cubic,trivial): %v", err)
	}
	if paramsTT.Digest().Cmp(paramsCT.Digest()) == 0 {
		t.Fatal("distinct circuit shapes should not share a digest")
	}

	snarkCT, err := ivc.New(paramsCT, stepcircuit.CubicCircuit{}, stepcircuit.NewTrivialCircuit(1), []*big.Int{big.NewInt(0)}, []*big.Int{big.NewInt(0)})
	if err != nil {
		t.Fatalf("new(cubic,trivial): %v", err)
	}
	if err := snarkCT.ProveStep(); err != nil {
		t.Fatalf("prove_step: %v", err)
	}

	pkCT, _, err := compress.Setup(paramsCT)
	if err != nil {
		t.Fatalf("compress setup(cubic,trivial): %v", err)
	}
	proofCT, err := compress.Prove(pkCT, snarkCT)
	if err != nil {
		t.Fatalf("compress prove: %v", err)
	}

	_, vkTT, err := compress.Setup(paramsTT)
	if err != nil {
		t.Fatalf("compress setup(trivial,trivial): %v", err)
	}

	if err := compress.Verify(vkTT, paramsTT, proofCT); !errors.Is(err, ivcerr.ErrProofVerifyError) {
		t.Fatalf("expected a cross-setup proof to fail verification with ErrProofVerifyError, got %v", err)
	}
}
