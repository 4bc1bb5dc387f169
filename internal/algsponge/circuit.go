package algsponge

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/csbuilder"
	"github.com/reilabs/nova-ivc/internal/curve"
)

func circuitOps(cs *csbuilder.Builder) Ops[csbuilder.Var] {
	return Ops[csbuilder.Var]{
		Add:   cs.Add,
		Mul:   cs.Mul,
		Const: cs.Constant,
	}
}

// CircuitSponge is the in-circuit evaluator mirroring NativeSponge,
// built from csbuilder wires so its arithmetic is captured as R1CS
// constraints.
type CircuitSponge struct {
	cs    *csbuilder.Builder
	rc    RoundConstants
	state [width]csbuilder.Var
	ops   Ops[csbuilder.Var]
}

// NewCircuitSponge mirrors NewNativeSponge, over the field cs was built
// against.
func NewCircuitSponge(cs *csbuilder.Builder, field curve.Field, label string) *CircuitSponge {
	rc := DeriveRoundConstants(field)
	seed := cs.Constant(deriveSeed(field, label))
	ops := circuitOps(cs)
	return &CircuitSponge{
		cs:    cs,
		rc:    rc,
		state: [width]csbuilder.Var{seed, cs.Constant(big.NewInt(0)), cs.Constant(big.NewInt(0))},
		ops:   ops,
	}
}

// Absorb folds one wire into the sponge state.
func (s *CircuitSponge) Absorb(x csbuilder.Var) {
	s.state[1] = s.ops.Add(s.state[1], x)
	s.state = Permute(s.ops, s.state, s.rc)
}

// Squeeze returns the sponge's current output wire.
func (s *CircuitSponge) Squeeze() csbuilder.Var {
	return s.state[0]
}

// HashBindingCircuit is the in-circuit counterpart of HashBinding,
// enforcing the same absorb order.
func HashBindingCircuit(cs *csbuilder.Builder, field curve.Field, label string, paramsDigest, i csbuilder.Var, z0, zi []csbuilder.Var, u csbuilder.Var) csbuilder.Var {
	sp := NewCircuitSponge(cs, field, label)
	sp.Absorb(paramsDigest)
	sp.Absorb(i)
	for _, v := range z0 {
		sp.Absorb(v)
	}
	for _, v := range zi {
		sp.Absorb(v)
	}
	sp.Absorb(u)
	return sp.Squeeze()
}

// FoldInstanceDigestCircuit is the in-circuit counterpart of
// FoldInstanceDigest, enforcing the same absorb order.
func FoldInstanceDigestCircuit(cs *csbuilder.Builder, field curve.Field, label string, commW, commE, u, x0, x1 csbuilder.Var) csbuilder.Var {
	sp := NewCircuitSponge(cs, field, label)
	sp.Absorb(commW)
	sp.Absorb(commE)
	sp.Absorb(u)
	sp.Absorb(x0)
	sp.Absorb(x1)
	return sp.Squeeze()
}
