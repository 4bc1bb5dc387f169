// Package compress wraps the folding engine's compression layer
// around gnark's Groth16 backend: it compiles a generic gnark circuit
// that checks the relaxed R1CS equation Az⊙Bz=u·Cz+E (plus the two
// commitment checks) for a fixed shape, and delegates
// setup/prove/verify to github.com/consensys/gnark/backend/groth16.
//
// Groth16 over BN254 proves statements about fr arithmetic only, and
// only one side of the cycle lives in fr. The primary side's circuit is
// therefore native; the secondary side's (over fp) re-enacts the same
// relation through gnark's std/math/emulated non-native field
// arithmetic, parameterized by emulated.BN254Fp. Both compile to the
// same fr constraint system and go through the same Groth16 calls.
package compress

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	gnarkr1cs "github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/std/math/emulated"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// relaxedCircuit re-enacts one shape's relaxed R1CS satisfiability
// check as gnark constraints: the witness and error vectors are
// private, the commitments, relaxation scalar and public IO are
// public. Its size (NumIO, lengths of W/E) is fixed by the shape it
// was built from, so the same Go type compiles to one fixed CCS per
// shape regardless of which step's witness it is later filled with.
type relaxedCircuit struct {
	shape *r1cs.Shape
	ck    curve.CommitmentKey

	CommW frontend.Variable   `gnark:",public"`
	CommE frontend.Variable   `gnark:",public"`
	U     frontend.Variable   `gnark:",public"`
	X     []frontend.Variable `gnark:",public"`

	W []frontend.Variable
	E []frontend.Variable
}

func newRelaxedCircuit(shape *r1cs.Shape, ck curve.CommitmentKey) *relaxedCircuit {
	return &relaxedCircuit{
		shape: shape,
		ck:    ck,
		X:     make([]frontend.Variable, shape.NumIO),
		W:     make([]frontend.Variable, shape.NumVars),
		E:     make([]frontend.Variable, shape.NumCons),
	}
}

// Define enforces, for every row i of the shape, (Az)_i*(Bz)_i =
// U*(Cz)_i + E_i where z=(U,X,W), and that CommW/CommE really commit
// to W/E under ck -- the in-circuit counterpart of
// r1cs.IsSatRelaxed, generalized from *big.Int arithmetic to gnark's
// frontend.API.
func (c *relaxedCircuit) Define(api frontend.API) error {
	z := make([]frontend.Variable, 1+len(c.X)+len(c.W))
	z[0] = c.U
	copy(z[1:1+len(c.X)], c.X)
	copy(z[1+len(c.X):], c.W)

	for i := 0; i < c.shape.NumCons; i++ {
		az := evalRow(api, c.shape.A, i, z)
		bz := evalRow(api, c.shape.B, i, z)
		cz := evalRow(api, c.shape.C, i, z)
		lhs := api.Mul(az, bz)
		rhs := api.Add(api.Mul(c.U, cz), c.E[i])
		api.AssertIsEqual(lhs, rhs)
	}

	commW := commitInCircuit(api, c.ck, c.W)
	api.AssertIsEqual(commW, c.CommW)
	commE := commitInCircuit(api, c.ck, c.E)
	api.AssertIsEqual(commE, c.CommE)
	return nil
}

func evalRow(api frontend.API, m r1cs.SparseMatrix, row int, z []frontend.Variable) frontend.Variable {
	acc := frontend.Variable(0)
	for k := m.RowStart[row]; k < m.RowStart[row+1]; k++ {
		acc = api.Add(acc, api.Mul(m.Values[k], z[m.ColIndices[k]]))
	}
	return acc
}

func commitInCircuit(api frontend.API, ck curve.CommitmentKey, v []frontend.Variable) frontend.Variable {
	acc := frontend.Variable(0)
	for i, vi := range v {
		acc = api.Add(acc, api.Mul(ck.Generators[i], vi))
	}
	return acc
}

func assignRelaxed(shape *r1cs.Shape, ck curve.CommitmentKey, u *r1cs.RelaxedInstance, w *r1cs.RelaxedWitness) *relaxedCircuit {
	c := newRelaxedCircuit(shape, ck)
	c.CommW = toVar(u.CommW)
	c.CommE = toVar(u.CommE)
	c.U = toVar(u.U)
	for i, x := range u.X {
		c.X[i] = toVar(x)
	}
	for i, wv := range w.W {
		c.W[i] = toVar(wv)
	}
	for i, ev := range w.E {
		c.E[i] = toVar(ev)
	}
	return c
}

func toVar(x *big.Int) frontend.Variable { return frontend.Variable(new(big.Int).Set(x)) }

// fpElement is one non-native BN254 base-field value inside an fr
// circuit, carried as range-checked limbs by gnark's emulated package.
type fpElement = emulated.Element[emulated.BN254Fp]

// emulatedRelaxedCircuit is relaxedCircuit's counterpart for the side
// of the cycle whose field is BN254's base field: the same relation,
// with every field operation routed through emulated.Field so the
// arithmetic is performed modulo fp rather than the circuit's native
// fr.
type emulatedRelaxedCircuit struct {
	shape *r1cs.Shape
	ck    curve.CommitmentKey

	CommW fpElement   `gnark:",public"`
	CommE fpElement   `gnark:",public"`
	U     fpElement   `gnark:",public"`
	X     []fpElement `gnark:",public"`

	W []fpElement
	E []fpElement
}

func newEmulatedRelaxedCircuit(shape *r1cs.Shape, ck curve.CommitmentKey) *emulatedRelaxedCircuit {
	return &emulatedRelaxedCircuit{
		shape: shape,
		ck:    ck,
		X:     make([]fpElement, shape.NumIO),
		W:     make([]fpElement, shape.NumVars),
		E:     make([]fpElement, shape.NumCons),
	}
}

func (c *emulatedRelaxedCircuit) Define(api frontend.API) error {
	f, err := emulated.NewField[emulated.BN254Fp](api)
	if err != nil {
		return err
	}

	z := make([]*fpElement, 1+len(c.X)+len(c.W))
	z[0] = &c.U
	for i := range c.X {
		z[1+i] = &c.X[i]
	}
	for i := range c.W {
		z[1+len(c.X)+i] = &c.W[i]
	}

	for i := 0; i < c.shape.NumCons; i++ {
		az := evalRowEmulated(f, c.shape.A, i, z)
		bz := evalRowEmulated(f, c.shape.B, i, z)
		cz := evalRowEmulated(f, c.shape.C, i, z)
		lhs := f.Mul(az, bz)
		rhs := f.Add(f.Mul(&c.U, cz), &c.E[i])
		f.AssertIsEqual(lhs, rhs)
	}

	commW := commitEmulated(f, c.ck, c.W)
	f.AssertIsEqual(commW, &c.CommW)
	commE := commitEmulated(f, c.ck, c.E)
	f.AssertIsEqual(commE, &c.CommE)
	return nil
}

func evalRowEmulated(f *emulated.Field[emulated.BN254Fp], m r1cs.SparseMatrix, row int, z []*fpElement) *fpElement {
	acc := f.Zero()
	for k := m.RowStart[row]; k < m.RowStart[row+1]; k++ {
		coeff := emulated.ValueOf[emulated.BN254Fp](m.Values[k])
		acc = f.Add(acc, f.Mul(&coeff, z[m.ColIndices[k]]))
	}
	return acc
}

func commitEmulated(f *emulated.Field[emulated.BN254Fp], ck curve.CommitmentKey, v []fpElement) *fpElement {
	acc := f.Zero()
	for i := range v {
		gen := emulated.ValueOf[emulated.BN254Fp](ck.Generators[i])
		acc = f.Add(acc, f.Mul(&gen, &v[i]))
	}
	return acc
}

func assignEmulatedRelaxed(shape *r1cs.Shape, ck curve.CommitmentKey, u *r1cs.RelaxedInstance, w *r1cs.RelaxedWitness) *emulatedRelaxedCircuit {
	c := newEmulatedRelaxedCircuit(shape, ck)
	c.CommW = emulated.ValueOf[emulated.BN254Fp](u.CommW)
	c.CommE = emulated.ValueOf[emulated.BN254Fp](u.CommE)
	c.U = emulated.ValueOf[emulated.BN254Fp](u.U)
	for i, x := range u.X {
		c.X[i] = emulated.ValueOf[emulated.BN254Fp](x)
	}
	for i, wv := range w.W {
		c.W[i] = emulated.ValueOf[emulated.BN254Fp](wv)
	}
	for i, ev := range w.E {
		c.E[i] = emulated.ValueOf[emulated.BN254Fp](ev)
	}
	return c
}

// Groth16Backend is the concrete RelaxedR1CSSNARK this module's
// compression adapter uses: newGroth16Backend compiles and runs
// Groth16's trusted setup for one shape's relaxedCircuit (or
// emulatedRelaxedCircuit), Prove/Verify delegate straight to
// groth16.Prove/groth16.Verify.
type Groth16Backend struct {
	Shape *r1cs.Shape
	Ck    curve.CommitmentKey

	// emulatedField marks a shape whose field is BN254's base field,
	// compiled through emulatedRelaxedCircuit instead of the native one.
	emulatedField bool

	ccs constraint.ConstraintSystem
}

// ProvingKey and VerifyingKey alias gnark's Groth16 key types, kept
// exported under this package's own names so callers need not import
// gnark directly.
type ProvingKey = groth16.ProvingKey
type VerifyingKey = groth16.VerifyingKey

// Proof wraps a Groth16 proof over one side's compression circuit.
type Proof struct {
	inner groth16.Proof
}

// CkFloor is this backend's ck_hint: the compression circuit commits
// to the same W/E vectors the folding shape does, so it needs no more
// generators than the shape already requires.
func CkFloor(shape *r1cs.Shape) (witnessLen, errorLen int) {
	return shape.CommitmentKeyFloor()
}

// newGroth16Backend compiles shape's circuit and runs Groth16's
// (unsafe, non-ceremony) setup over it. Good enough for tests and
// development; a deployment would load keys produced by a ceremony
// instead.
func newGroth16Backend(shape *r1cs.Shape, ck curve.CommitmentKey) (*Groth16Backend, ProvingKey, VerifyingKey, error) {
	b := &Groth16Backend{Shape: shape, Ck: ck}
	var placeholder frontend.Circuit
	switch {
	case shape.Field.Modulus.Cmp(ecc.BN254.ScalarField()) == 0:
		placeholder = newRelaxedCircuit(shape, ck)
	case shape.Field.Modulus.Cmp(ecc.BN254.BaseField()) == 0:
		b.emulatedField = true
		placeholder = newEmulatedRelaxedCircuit(shape, ck)
	default:
		return nil, nil, nil, fmt.Errorf("compress: shape field %s is neither the BN254 scalar nor base field", shape.Field.Modulus)
	}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), gnarkr1cs.NewBuilder, placeholder)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compress: compile relaxed-r1cs circuit: %w", err)
	}
	b.ccs = ccs
	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compress: groth16 setup: %w", err)
	}
	return b, pk, vk, nil
}

// Prove produces a Groth16 proof that (u, w) satisfies b.Shape's
// relaxed equation under b.Ck.
func (b *Groth16Backend) Prove(pk ProvingKey, u *r1cs.RelaxedInstance, w *r1cs.RelaxedWitness) (*Proof, error) {
	var assignment frontend.Circuit
	if b.emulatedField {
		assignment = assignEmulatedRelaxed(b.Shape, b.Ck, u, w)
	} else {
		assignment = assignRelaxed(b.Shape, b.Ck, u, w)
	}
	witness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("compress: build witness: %w", err)
	}
	proof, err := groth16.Prove(b.ccs, pk, witness, backend.WithIcicleAcceleration())
	if err != nil {
		return nil, fmt.Errorf("compress: groth16 prove: %w", err)
	}
	return &Proof{inner: proof}, nil
}

// Verify checks proof against u's public fields only -- W and E never
// appear.
func (b *Groth16Backend) Verify(vk VerifyingKey, u *r1cs.RelaxedInstance, proof *Proof) error {
	// The private W/E slots are filled with zeros purely so the schema
	// walker sees fully assigned slices; witness.Public() drops them
	// before they reach groth16.Verify.
	zeroW := &r1cs.RelaxedWitness{
		W: make([]*big.Int, b.Shape.NumVars),
		E: make([]*big.Int, b.Shape.NumCons),
	}
	for i := range zeroW.W {
		zeroW.W[i] = big.NewInt(0)
	}
	for i := range zeroW.E {
		zeroW.E[i] = big.NewInt(0)
	}
	var pub frontend.Circuit
	if b.emulatedField {
		pub = assignEmulatedRelaxed(b.Shape, b.Ck, u, zeroW)
	} else {
		pub = assignRelaxed(b.Shape, b.Ck, u, zeroW)
	}
	witness, err := frontend.NewWitness(pub, ecc.BN254.ScalarField())
	if err != nil {
		return fmt.Errorf("compress: build witness: %w", err)
	}
	publicWitness, err := witness.Public()
	if err != nil {
		return fmt.Errorf("compress: derive public witness: %w", err)
	}
	if err := groth16.Verify(proof.inner, vk, publicWitness); err != nil {
		return fmt.Errorf("compress: groth16 verify: %w", err)
	}
	return nil
}
