// Package circuitshape packages one side's augmented-circuit R1CS
// shape together with the arity of the user step circuit it wraps, and
// gives it a canonical digest contribution so PublicParams.Digest can
// bind the whole setup without re-hashing every matrix entry by hand
// at each call site.
package circuitshape

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/algsponge"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// CircuitShape is one side's static circuit description.
type CircuitShape struct {
	Arity int
	Shape *r1cs.Shape
}

// New wraps a shape with the arity of the step circuit it was derived
// from.
func New(shape *r1cs.Shape, arity int) *CircuitShape {
	return &CircuitShape{Arity: arity, Shape: shape}
}

// Digest folds every row of A, B and C, plus the shape's dimensions and
// arity, into a single field element via the algebraic sponge also
// used for recursion hash-binding -- reusing it here keeps the module
// to one hash-like primitive instead of inventing a second one purely
// for digesting shapes.
func (c *CircuitShape) Digest(field curve.Field) *big.Int {
	sp := algsponge.NewNativeSponge(field, "circuit-shape-digest")
	sp.Absorb(big.NewInt(int64(c.Arity)))
	sp.Absorb(big.NewInt(int64(c.Shape.NumCons)))
	sp.Absorb(big.NewInt(int64(c.Shape.NumIO)))
	sp.Absorb(big.NewInt(int64(c.Shape.NumVars)))
	absorbMatrix(sp, c.Shape.A)
	absorbMatrix(sp, c.Shape.B)
	absorbMatrix(sp, c.Shape.C)
	return sp.Squeeze()
}

func absorbMatrix(sp *algsponge.NativeSponge, m r1cs.SparseMatrix) {
	sp.Absorb(big.NewInt(int64(len(m.Values))))
	for i, col := range m.ColIndices {
		sp.Absorb(big.NewInt(int64(col)))
		sp.Absorb(m.Values[i])
	}
}
