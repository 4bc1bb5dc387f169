// Package r1cs implements the Rank-1 Constraint System algebra the
// folding scheme operates over: sparse matrix storage and
// multiplication, plain and relaxed instance/witness satisfiability
// checks. Matrices are held in compressed-sparse-row form and
// evaluated row at a time, so the product is deterministic for a
// given shape regardless of platform.
package r1cs

import "math/big"

// MatrixCell is a single nonzero entry of one sparse-matrix row,
// addressed by column (its row is the row it is stored under). It is
// the unit sparseBuilder in csbuilder collects per row before
// flattening the rows into a SparseMatrix.
type MatrixCell struct {
	Column int
	Value  *big.Int
}

// SparseMatrix is a sparse matrix in compressed-sparse-row form:
// RowStart has NumRows+1 entries, and row i's nonzero entries are
// ColIndices[RowStart[i]:RowStart[i+1]] / Values[RowStart[i]:RowStart[i+1]].
type SparseMatrix struct {
	NumRows    int
	NumCols    int
	RowStart   []int
	ColIndices []int
	Values     []*big.Int
}

// MultiplyVec computes M*z for a dense vector z of length NumCols,
// reducing each row's sum modulo mod once it is complete.
func (m SparseMatrix) MultiplyVec(z []*big.Int, mod *big.Int) []*big.Int {
	out := make([]*big.Int, m.NumRows)
	for i := 0; i < m.NumRows; i++ {
		acc := big.NewInt(0)
		for k := m.RowStart[i]; k < m.RowStart[i+1]; k++ {
			col := m.ColIndices[k]
			term := new(big.Int).Mul(m.Values[k], z[col])
			acc.Add(acc, term)
		}
		out[i] = new(big.Int).Mod(acc, mod)
	}
	return out
}
