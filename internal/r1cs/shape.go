package r1cs

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/curve"
)

// Shape is the sparse A, B, C description of an R1CS instance family,
// shared across every step of a recursion: it depends only on the step
// circuit and the augmented-circuit wiring around it, never on the
// concrete witness of any particular step. Column 0 is the affine
// slot (the "one"/u column), columns 1..NumIO are public IO, and the
// remaining NumVars columns are witness variables -- see csbuilder for
// how those columns are populated.
type Shape struct {
	Field   curve.Field
	NumCons int
	NumIO   int
	NumVars int
	A, B, C SparseMatrix
}

// NumCols is the width every row of A, B and C share.
func (s *Shape) NumCols() int { return 1 + s.NumIO + s.NumVars }

// Z assembles the dense z = (one, X, W) vector a plain instance's
// matrices are evaluated against, where one is the affine value (1 for
// a plain instance, u for a relaxed one).
func (s *Shape) Z(one *big.Int, x, w []*big.Int) []*big.Int {
	z := make([]*big.Int, s.NumCols())
	z[0] = one
	copy(z[1:1+len(x)], x)
	copy(z[1+len(x):], w)
	return z
}

// MulResult holds the three dense Az, Bz, Cz vectors produced by
// evaluating a shape's matrices against some z -- a scratch buffer
// callers may reuse across steps instead of reallocating every call.
type MulResult struct {
	AZ, BZ, CZ []*big.Int
}

// NewMulResult allocates a scratch buffer sized for shape.
func NewMulResult(shape *Shape) *MulResult {
	return &MulResult{
		AZ: make([]*big.Int, shape.NumCons),
		BZ: make([]*big.Int, shape.NumCons),
		CZ: make([]*big.Int, shape.NumCons),
	}
}

// MultiplyWitnessInto evaluates A, B, C against z and writes the
// results into out, reusing its backing arrays.
func (s *Shape) MultiplyWitnessInto(z []*big.Int, out *MulResult) {
	mod := s.Field.Modulus
	copy(out.AZ, s.A.MultiplyVec(z, mod))
	copy(out.BZ, s.B.MultiplyVec(z, mod))
	copy(out.CZ, s.C.MultiplyVec(z, mod))
}

// CommitmentKeyFloor is the ck_hint for this module: the commitment key
// backing a shape's witness vector must cover at least NumVars
// generators, and the key backing its error vector must cover at least
// NumCons.
func (s *Shape) CommitmentKeyFloor() (witnessLen, errorLen int) {
	return s.NumVars, s.NumCons
}
