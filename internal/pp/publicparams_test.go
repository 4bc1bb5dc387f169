package pp_test

import (
	"testing"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/pp"
	"github.com/reilabs/nova-ivc/internal/stepcircuit"
)

func TestDigestDeterminism(t *testing.T) {
	primary, secondary := curve.BN254Cycle()
	c1 := stepcircuit.NewTrivialCircuit(1)
	c2 := stepcircuit.NewTrivialCircuit(1)

	p1, err := pp.Setup(primary, secondary, c1, c2, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	p2, err := pp.Setup(primary, secondary, c1, c2, nil, nil)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}

	if p1.Digest().Cmp(p2.Digest()) != 0 {
		t.Fatal("two setups of identical inputs produced different digests")
	}
}

func TestDigestSeparation(t *testing.T) {
	primary, secondary := curve.BN254Cycle()

	trivialTrivial, err := pp.Setup(primary, secondary, stepcircuit.NewTrivialCircuit(1), stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(trivial,trivial): %v", err)
	}
	cubicTrivial, err := pp.Setup(primary, secondary, stepcircuit.CubicCircuit{}, stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(cubic,trivial): %v", err)
	}

	if trivialTrivial.Digest().Cmp(cubicTrivial.Digest()) == 0 {
		t.Fatal("distinct circuit shapes produced identical digests")
	}
}

func TestDigestSensitivityToArity(t *testing.T) {
	primary, secondary := curve.BN254Cycle()

	arity1, err := pp.Setup(primary, secondary, stepcircuit.NewTrivialCircuit(1), stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(arity=1): %v", err)
	}
	arity2, err := pp.Setup(primary, secondary, stepcircuit.NewTrivialCircuit(2), stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err != nil {
		t.Fatalf("setup(arity=2): %v", err)
	}

	if arity1.Digest().Cmp(arity2.Digest()) == 0 {
		t.Fatal("changing primary arity should change the digest")
	}
}

func TestInvalidCycleRejected(t *testing.T) {
	primary, _ := curve.BN254Cycle()
	// Pairing an engine with itself is not a valid 2-cycle (its own
	// base field does not equal its own scalar field).
	_, err := pp.Setup(primary, primary, stepcircuit.NewTrivialCircuit(1), stepcircuit.NewTrivialCircuit(1), nil, nil)
	if err == nil {
		t.Fatal("expected setup to reject a mismatched curve cycle")
	}
}
