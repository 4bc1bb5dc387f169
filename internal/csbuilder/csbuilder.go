// Package csbuilder is a minimal native constraint-system builder, the
// counterpart of the "constraint-system builder used to express
// circuits" that is assumed available rather than designed here. It
// follows the dual-mode synthesis pattern of a shape-only pass (no
// witness values, used to derive an R1CS shape once per step circuit)
// and a witness pass (same circuit, now fed concrete z values, used to
// produce a satisfying instance/witness every time ProveStep runs).
// The surface deliberately mirrors a gnark-style frontend.API (Add, Mul,
// AssertIsEqual) rather than exposing raw linear combinations, so
// circuits written against it read the way the augmented gadget and
// the example step circuits in this module are written.
package csbuilder

import (
	"math/big"
	"sort"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// Var is a linear combination over wires. Wire 0 is reserved for the
// "one" slot -- the affine constant, which plays the role of the u
// scalar once an instance is relaxed.
type Var struct {
	terms map[int]*big.Int
}

func constVar(field curve.Field, c *big.Int) Var {
	return Var{terms: map[int]*big.Int{0: field.Reduce(c)}}
}

func wireVar(wire int) Var {
	return Var{terms: map[int]*big.Int{wire: big.NewInt(1)}}
}

// Builder accumulates an R1CS shape and, in witness mode, a concrete
// assignment satisfying it. Wire numbering is global: wire 0 is "one",
// wires 1..numIO are the public IO slots, and every later wire is a
// freshly allocated witness variable. That numbering is also the
// column numbering r1cs.Shape uses, so Shape() needs no remapping.
type Builder struct {
	field       curve.Field
	witnessMode bool
	numIO       int
	numWitness  int

	rows []row

	oneVal      *big.Int
	ioVals      []*big.Int
	witnessVals []*big.Int
}

type row struct {
	a, b, c Var
}

// NewShapeBuilder starts a shape-only pass: no concrete values are
// tracked, only the constraint structure.
func NewShapeBuilder(field curve.Field, numIO int) *Builder {
	return &Builder{field: field, numIO: numIO}
}

// NewWitnessBuilder starts a witness pass for a plain (unrelaxed) R1CS
// instance, where the affine slot always carries value 1. IO values are
// not supplied upfront: a circuit that computes its own public outputs
// (rather than merely re-asserting inputs) fills them in via SetIO once
// it has derived them.
func NewWitnessBuilder(field curve.Field, numIO int) *Builder {
	return &Builder{
		field:       field,
		witnessMode: true,
		numIO:       numIO,
		oneVal:      field.One(),
		ioVals:      make([]*big.Int, numIO),
	}
}

func (b *Builder) IsWitnessMode() bool { return b.witnessMode }

// One returns the affine constant wire.
func (b *Builder) One() Var { return wireVar(0) }

// IO returns the i-th public input wire.
func (b *Builder) IO(i int) Var {
	if i < 0 || i >= b.numIO {
		panic("csbuilder: io index out of range")
	}
	return wireVar(1 + i)
}

// Constant returns a wire fixed at value c (c times the affine slot).
func (b *Builder) Constant(c *big.Int) Var {
	return constVar(b.field, c)
}

// NewWitness allocates a fresh witness wire. In witness mode it takes
// the concrete value; in shape mode value is ignored (and may be nil).
func (b *Builder) NewWitness(value *big.Int) Var {
	wire := 1 + b.numIO + b.numWitness
	b.numWitness++
	if b.witnessMode {
		b.witnessVals = append(b.witnessVals, b.field.Reduce(value))
	}
	return wireVar(wire)
}

// Add returns a + b with no new constraint: linear combinations are
// free in R1CS.
func (b *Builder) Add(a, c Var) Var { return combine(a, c, big.NewInt(1)) }

// Sub returns a - c with no new constraint.
func (b *Builder) Sub(a, c Var) Var { return combine(a, c, big.NewInt(-1)) }

// MulConst scales a linear combination by a constant, again free.
func (b *Builder) MulConst(a Var, k *big.Int) Var {
	out := Var{terms: make(map[int]*big.Int, len(a.terms))}
	for w, coeff := range a.terms {
		out.terms[w] = new(big.Int).Mul(coeff, k)
	}
	return out
}

func combine(a, c Var, scaleC *big.Int) Var {
	out := Var{terms: make(map[int]*big.Int, len(a.terms)+len(c.terms))}
	for w, coeff := range a.terms {
		out.terms[w] = new(big.Int).Set(coeff)
	}
	for w, coeff := range c.terms {
		scaled := new(big.Int).Mul(coeff, scaleC)
		if existing, ok := out.terms[w]; ok {
			out.terms[w] = new(big.Int).Add(existing, scaled)
		} else {
			out.terms[w] = scaled
		}
	}
	return out
}

// Mul allocates a new witness wire for a*b and enforces the
// corresponding R1CS row; it is the only arithmetic operation that
// costs a constraint (AssertIsEqual and Enforce also add one row each).
func (b *Builder) Mul(a, c Var) Var {
	var value *big.Int
	if b.witnessMode {
		value = b.field.Mul(b.Value(a), b.Value(c))
	}
	p := b.NewWitness(value)
	b.Enforce(a, c, p)
	return p
}

// Square is shorthand for Mul(a, a).
func (b *Builder) Square(a Var) Var { return b.Mul(a, a) }

// AssertIsEqual enforces a == c via a single A*1=C row.
func (b *Builder) AssertIsEqual(a, c Var) {
	b.Enforce(a, b.One(), c)
}

// Enforce records a raw A*B=C row.
func (b *Builder) Enforce(a, bb, c Var) {
	b.rows = append(b.rows, row{a: a, b: bb, c: c})
}

// Value evaluates a linear combination under the current witness
// assignment. Only meaningful in witness mode.
func (b *Builder) Value(v Var) *big.Int {
	acc := big.NewInt(0)
	for wire, coeff := range v.terms {
		acc.Add(acc, new(big.Int).Mul(coeff, b.wireValue(wire)))
	}
	return b.field.Reduce(acc)
}

func (b *Builder) wireValue(wire int) *big.Int {
	switch {
	case wire == 0:
		return b.oneVal
	case wire <= b.numIO:
		return b.ioVals[wire-1]
	default:
		return b.witnessVals[wire-1-b.numIO]
	}
}

// SetIO assigns the i-th public IO wire's witness value. Only valid in
// witness mode, and only meaningful once, after the circuit has derived
// the value it wants that output wire bound to -- the augmented
// circuit uses this to bind its computed hash outputs as the instance's
// actual public X, rather than merely echoing an externally supplied
// value.
func (b *Builder) SetIO(i int, v *big.Int) {
	if !b.witnessMode {
		panic("csbuilder: SetIO called on a shape-only builder")
	}
	if i < 0 || i >= b.numIO {
		panic("csbuilder: io index out of range")
	}
	b.ioVals[i] = b.field.Reduce(v)
}

// NumConstraints reports the number of rows enforced so far.
func (b *Builder) NumConstraints() int { return len(b.rows) }

// NumWitness reports the number of witness wires allocated so far.
func (b *Builder) NumWitness() int { return b.numWitness }

// Shape converts the accumulated rows into an r1cs.Shape.
func (b *Builder) Shape() *r1cs.Shape {
	numCols := 1 + b.numIO + b.numWitness
	a := newSparseBuilder(len(b.rows), numCols)
	bm := newSparseBuilder(len(b.rows), numCols)
	cm := newSparseBuilder(len(b.rows), numCols)
	for i, rw := range b.rows {
		a.addRow(i, rw.a.terms)
		bm.addRow(i, rw.b.terms)
		cm.addRow(i, rw.c.terms)
	}
	return &r1cs.Shape{
		Field:   b.field,
		NumCons: len(b.rows),
		NumIO:   b.numIO,
		NumVars: b.numWitness,
		A:       a.build(),
		B:       bm.build(),
		C:       cm.build(),
	}
}

// InstanceAndWitness extracts the plain R1CS instance/witness this
// witness-mode pass produced, committing the witness vector under ck.
func (b *Builder) InstanceAndWitness(ck curve.CommitmentKey) (*r1cs.Instance, *r1cs.Witness) {
	if !b.witnessMode {
		panic("csbuilder: InstanceAndWitness called on a shape-only builder")
	}
	w := &r1cs.Witness{W: append([]*big.Int{}, b.witnessVals...)}
	inst := &r1cs.Instance{
		CommW: curve.Commit(ck, w.W),
		X:     append([]*big.Int{}, b.ioVals...),
	}
	return inst, w
}

type sparseBuilder struct {
	numRows, numCols int
	rows             [][]r1cs.MatrixCell
}

func newSparseBuilder(numRows, numCols int) *sparseBuilder {
	return &sparseBuilder{numRows: numRows, numCols: numCols, rows: make([][]r1cs.MatrixCell, numRows)}
}

// addRow records a row's nonzero cells in ascending column order. The
// sort matters: terms is a map, and the emitted column/value order is
// part of the shape digest, which must be identical across runs and
// platforms for the same circuit.
func (s *sparseBuilder) addRow(i int, terms map[int]*big.Int) {
	cols := make([]int, 0, len(terms))
	for col, coeff := range terms {
		if coeff.Sign() == 0 {
			continue
		}
		cols = append(cols, col)
	}
	sort.Ints(cols)
	for _, col := range cols {
		s.rows[i] = append(s.rows[i], r1cs.MatrixCell{Column: col, Value: terms[col]})
	}
}

func (s *sparseBuilder) build() r1cs.SparseMatrix {
	m := r1cs.SparseMatrix{NumRows: s.numRows, NumCols: s.numCols, RowStart: make([]int, s.numRows+1)}
	total := 0
	for i, cells := range s.rows {
		m.RowStart[i] = total
		m.ColIndices = append(m.ColIndices, colsOf(cells)...)
		m.Values = append(m.Values, valsOf(cells)...)
		total += len(cells)
	}
	m.RowStart[s.numRows] = total
	return m
}

func colsOf(cells []r1cs.MatrixCell) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Column
	}
	return out
}

func valsOf(cells []r1cs.MatrixCell) []*big.Int {
	out := make([]*big.Int, len(cells))
	for i, c := range cells {
		out[i] = c.Value
	}
	return out
}
