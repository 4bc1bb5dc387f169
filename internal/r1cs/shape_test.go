package r1cs_test

import (
	"math/big"
	"testing"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// mulShape builds the single-constraint shape x*x=y (one IO column x,
// one witness column y), the smallest non-trivial R1CS this package
// can exercise end to end.
func mulShape(field curve.Field) *r1cs.Shape {
	return &r1cs.Shape{
		Field:   field,
		NumCons: 1,
		NumIO:   1,
		NumVars: 1,
		A: r1cs.SparseMatrix{
			NumRows: 1, NumCols: 3,
			RowStart:   []int{0, 1},
			ColIndices: []int{1},
			Values:     []*big.Int{big.NewInt(1)},
		},
		B: r1cs.SparseMatrix{
			NumRows: 1, NumCols: 3,
			RowStart:   []int{0, 1},
			ColIndices: []int{1},
			Values:     []*big.Int{big.NewInt(1)},
		},
		C: r1cs.SparseMatrix{
			NumRows: 1, NumCols: 3,
			RowStart:   []int{0, 1},
			ColIndices: []int{2},
			Values:     []*big.Int{big.NewInt(1)},
		},
	}
}

func testField() curve.Field {
	return curve.NewField(big.NewInt(101))
}

func TestIsSatPlain(t *testing.T) {
	field := testField()
	shape := mulShape(field)
	ck := curve.SetupCommitmentKey(field, "test", 2)

	x := big.NewInt(7)
	y := big.NewInt(49)
	w := &r1cs.Witness{W: []*big.Int{y}}
	inst := &r1cs.Instance{CommW: curve.Commit(ck, w.W), X: []*big.Int{x}}

	if err := r1cs.IsSat(ck, shape, inst, w); err != nil {
		t.Fatalf("expected satisfying witness to pass, got %v", err)
	}
}

func TestIsSatPlainRejectsWrongWitness(t *testing.T) {
	field := testField()
	shape := mulShape(field)
	ck := curve.SetupCommitmentKey(field, "test", 2)

	x := big.NewInt(7)
	wrongY := big.NewInt(50) // 7*7 = 49, not 50
	w := &r1cs.Witness{W: []*big.Int{wrongY}}
	inst := &r1cs.Instance{CommW: curve.Commit(ck, w.W), X: []*big.Int{x}}

	if err := r1cs.IsSat(ck, shape, inst, w); err == nil {
		t.Fatal("expected unsatisfying witness to fail")
	}
}

func TestRelaxedRoundTrip(t *testing.T) {
	field := testField()
	shape := mulShape(field)
	ck := curve.SetupCommitmentKey(field, "test", 2)

	x := big.NewInt(7)
	y := big.NewInt(49)
	w := &r1cs.Witness{W: []*big.Int{y}}
	inst := &r1cs.Instance{CommW: curve.Commit(ck, w.W), X: []*big.Int{x}}
	if err := r1cs.IsSat(ck, shape, inst, w); err != nil {
		t.Fatalf("plain instance should be satisfying: %v", err)
	}

	rInst := r1cs.FromInstance(ck, shape, inst)
	rW := r1cs.FromWitness(shape, w)
	if err := r1cs.IsSatRelaxed(ck, shape, rInst, rW); err != nil {
		t.Fatalf("lifted relaxed instance should still be satisfying: %v", err)
	}
}

func TestDefaultRelaxedIsSatisfying(t *testing.T) {
	field := testField()
	shape := mulShape(field)
	ck := curve.SetupCommitmentKey(field, "test", 2)

	u := r1cs.DefaultRelaxedInstance(ck, shape)
	w := r1cs.DefaultRelaxedWitness(shape)
	if err := r1cs.IsSatRelaxed(ck, shape, u, w); err != nil {
		t.Fatalf("all-zero relaxed instance should satisfy any homogeneous shape: %v", err)
	}
}
