package algsponge

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/curve"
)

func nativeOps(field curve.Field) Ops[*big.Int] {
	return Ops[*big.Int]{
		Add:   field.Add,
		Mul:   field.Mul,
		Const: func(c *big.Int) *big.Int { return field.Reduce(c) },
	}
}

// NativeSponge is the out-of-circuit evaluator for the hash-binding
// value H(params, i, z0, zi, U): it absorbs an arbitrary sequence of
// field elements and squeezes a single element, matching the
// CircuitSponge bit for bit so the value a prover embeds as public
// input is exactly the value the augmented circuit recomputes.
type NativeSponge struct {
	field curve.Field
	rc    RoundConstants
	state [width]*big.Int
	ops   Ops[*big.Int]
}

// NewNativeSponge starts a fresh absorb/squeeze sponge over field,
// seeded by label so distinct uses (recursion hash vs. anything else
// built on this primitive) never collide.
func NewNativeSponge(field curve.Field, label string) *NativeSponge {
	rc := DeriveRoundConstants(field)
	seed := deriveSeed(field, label)
	return &NativeSponge{
		field: field,
		rc:    rc,
		state: [width]*big.Int{seed, big.NewInt(0), big.NewInt(0)},
		ops:   nativeOps(field),
	}
}

// Absorb folds one field element into the sponge state.
func (s *NativeSponge) Absorb(x *big.Int) {
	s.state[1] = s.ops.Add(s.state[1], s.field.Reduce(x))
	s.state = Permute(s.ops, s.state, s.rc)
}

// Squeeze returns the sponge's current output word.
func (s *NativeSponge) Squeeze() *big.Int {
	return s.state[0]
}

// HashBinding computes H(paramsDigest, i, z0, zi, u) in one shot, the
// construction NIFS's recursive driver embeds as the public IO of the
// augmented circuit.
func HashBinding(field curve.Field, label string, paramsDigest, i *big.Int, z0, zi []*big.Int, u *big.Int) *big.Int {
	sp := NewNativeSponge(field, label)
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

// FoldInstanceDigest hashes a relaxed instance's public components
// (CommW, CommE, U, and the two IO outputs) into the single scalar the
// opposite side's augmented circuit absorbs as its running digest for
// that side -- the native counterpart of FoldInstanceDigestCircuit,
// evaluated by the driver when it prepares the next step's inputs.
func FoldInstanceDigest(field curve.Field, label string, commW, commE, u, x0, x1 *big.Int) *big.Int {
	sp := NewNativeSponge(field, label)
	sp.Absorb(commW)
	sp.Absorb(commE)
	sp.Absorb(u)
	sp.Absorb(x0)
	sp.Absorb(x1)
	return sp.Squeeze()
}
