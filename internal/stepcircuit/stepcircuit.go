// Package stepcircuit defines the per-step circuit interface the
// folding engine is generic over, plus a handful of reference
// implementations used by this module's own tests: a trivial no-op
// step, a minimal cubic step (y = x^3 + x + 5), and a non-deterministic
// fifth-root step that takes its output as externally supplied advice
// and merely checks it.
package stepcircuit

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/csbuilder"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
)

// StepCircuit is one step of the computation being folded. Synthesize
// is called once per ProveStep (in witness mode, against the current
// concrete z) and once at setup time (in shape-only mode, to derive
// the augmented circuit's R1CS shape) -- the same circuit must behave
// identically in both passes bar the values it computes.
type StepCircuit interface {
	// Arity is the number of field elements a step consumes and
	// produces.
	Arity() int
	// Synthesize advances z by one step, returning the next state.
	Synthesize(cs *csbuilder.Builder, z []csbuilder.Var) ([]csbuilder.Var, error)
}

// TrivialCircuit is the identity step of any arity: z_{i+1} = z_i, with
// no constraints at all (at arity 0, the minimal case used to exercise
// the recursion machinery on its own).
type TrivialCircuit struct {
	arity int
}

// NewTrivialCircuit returns a trivial step circuit of the given arity.
func NewTrivialCircuit(arity int) TrivialCircuit {
	return TrivialCircuit{arity: arity}
}

func (c TrivialCircuit) Arity() int { return c.arity }

func (c TrivialCircuit) Synthesize(cs *csbuilder.Builder, z []csbuilder.Var) ([]csbuilder.Var, error) {
	out := make([]csbuilder.Var, len(z))
	copy(out, z)
	return out, nil
}

// CubicCircuit computes y = x^3 + x + 5, the standard single-variable
// step used to exercise a non-trivial folding trace end to end.
type CubicCircuit struct{}

func (c CubicCircuit) Arity() int { return 1 }

func (c CubicCircuit) Synthesize(cs *csbuilder.Builder, z []csbuilder.Var) ([]csbuilder.Var, error) {
	x := z[0]
	xSq := cs.Mul(x, x)
	xCu := cs.Mul(xSq, x)
	five := cs.Constant(big.NewInt(5))
	sum := cs.Add(cs.Add(xCu, x), five)
	y := cs.NewWitness(valueOrNil(cs, sum))
	cs.AssertIsEqual(sum, y)
	return []csbuilder.Var{y}, nil
}

func valueOrNil(cs *csbuilder.Builder, v csbuilder.Var) *big.Int {
	if !cs.IsWitnessMode() {
		return nil
	}
	return cs.Value(v)
}

// FifthRootCircuit checks y^5 = x for a y supplied as non-deterministic
// advice, one root per step, consumed in order. It models a step whose
// witness cannot be derived purely from prior outputs.
type FifthRootCircuit struct {
	Roots []*big.Int
	next  int
}

// NewFifthRootCircuit builds a fifth-root step circuit that will reveal
// roots in order as advice across successive steps.
func NewFifthRootCircuit(roots []*big.Int) *FifthRootCircuit {
	return &FifthRootCircuit{Roots: roots}
}

func (c *FifthRootCircuit) Arity() int { return 1 }

func (c *FifthRootCircuit) Synthesize(cs *csbuilder.Builder, z []csbuilder.Var) ([]csbuilder.Var, error) {
	x := z[0]
	var rootVal *big.Int
	if cs.IsWitnessMode() {
		if c.next >= len(c.Roots) {
			return nil, ivcerr.ErrNoAdvice
		}
		rootVal = c.Roots[c.next]
		c.next++
	}
	y := cs.NewWitness(rootVal)
	y2 := cs.Mul(y, y)
	y4 := cs.Mul(y2, y2)
	y5 := cs.Mul(y4, y)
	cs.AssertIsEqual(y5, x)
	return []csbuilder.Var{y}, nil
}
