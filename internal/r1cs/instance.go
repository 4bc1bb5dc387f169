package r1cs

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
)

// Instance is a plain (unrelaxed) R1CS instance: a commitment to the
// witness, and the public IO values. The affine slot is implicitly 1.
type Instance struct {
	CommW curve.Commitment
	X     []*big.Int
}

// Witness is the plain witness vector committed to by an Instance.
type Witness struct {
	W []*big.Int
}

// IsSat checks Az ⊙ Bz = Cz for z=(1,X,W), and that CommW really
// commits to W under ck.
func IsSat(ck curve.CommitmentKey, shape *Shape, inst *Instance, w *Witness) error {
	return IsSatWithBuffer(ck, shape, inst, w, NewMulResult(shape))
}

// IsSatWithBuffer is IsSat reusing a caller-supplied scratch buffer
// instead of allocating one, for callers that run this check
// repeatedly.
func IsSatWithBuffer(ck curve.CommitmentKey, shape *Shape, inst *Instance, w *Witness, buf *MulResult) error {
	if got := curve.Commit(ck, w.W); got.Cmp(inst.CommW) != 0 {
		return ivcerr.ErrInvalidCommitment
	}
	z := shape.Z(shape.Field.One(), inst.X, w.W)
	shape.MultiplyWitnessInto(z, buf)
	mod := shape.Field.Modulus
	for i := 0; i < shape.NumCons; i++ {
		lhs := new(big.Int).Mod(new(big.Int).Mul(buf.AZ[i], buf.BZ[i]), mod)
		if lhs.Cmp(buf.CZ[i]) != 0 {
			return ivcerr.ErrUnSat
		}
	}
	return nil
}

// RelaxedInstance is a relaxed R1CS instance: commitments to witness
// and error vectors, the relaxation scalar u, and the public IO.
type RelaxedInstance struct {
	CommW curve.Commitment
	CommE curve.Commitment
	U     *big.Int
	X     []*big.Int
}

// RelaxedWitness is the witness and slack-term vectors a RelaxedInstance
// commits to.
type RelaxedWitness struct {
	W []*big.Int
	E []*big.Int
}

// DefaultRelaxedInstance returns the all-zero relaxed instance for a
// shape with the given IO width, committing to an all-zero witness and
// error vector.
func DefaultRelaxedInstance(ck curve.CommitmentKey, shape *Shape) *RelaxedInstance {
	zeroW := zeroVec(shape.NumVars)
	zeroE := zeroVec(shape.NumCons)
	return &RelaxedInstance{
		CommW: curve.Commit(ck, zeroW),
		CommE: curve.Commit(ck, zeroE),
		U:     big.NewInt(0),
		X:     zeroVec(shape.NumIO),
	}
}

// DefaultRelaxedWitness returns the all-zero relaxed witness for shape.
func DefaultRelaxedWitness(shape *Shape) *RelaxedWitness {
	return &RelaxedWitness{W: zeroVec(shape.NumVars), E: zeroVec(shape.NumCons)}
}

func zeroVec(n int) []*big.Int {
	v := make([]*big.Int, n)
	for i := range v {
		v[i] = big.NewInt(0)
	}
	return v
}

// FromInstance lifts a plain instance into a relaxed one with u=1 and a
// zero error vector/commitment.
func FromInstance(ck curve.CommitmentKey, shape *Shape, inst *Instance) *RelaxedInstance {
	return &RelaxedInstance{
		CommW: inst.CommW,
		CommE: curve.Commit(ck, zeroVec(shape.NumCons)),
		U:     big.NewInt(1),
		X:     append([]*big.Int{}, inst.X...),
	}
}

// FromWitness lifts a plain witness into a relaxed one with a zero
// error vector.
func FromWitness(shape *Shape, w *Witness) *RelaxedWitness {
	return &RelaxedWitness{W: append([]*big.Int{}, w.W...), E: zeroVec(shape.NumCons)}
}

// IsSatRelaxed checks Az ⊙ Bz = u*Cz + E for z=(u,X,W), and that CommW,
// CommE really commit to W, E under ck.
func IsSatRelaxed(ck curve.CommitmentKey, shape *Shape, inst *RelaxedInstance, w *RelaxedWitness) error {
	return IsSatRelaxedWithBuffer(ck, shape, inst, w, NewMulResult(shape))
}

// IsSatRelaxedWithBuffer is IsSatRelaxed reusing a caller-supplied
// scratch buffer.
func IsSatRelaxedWithBuffer(ck curve.CommitmentKey, shape *Shape, inst *RelaxedInstance, w *RelaxedWitness, buf *MulResult) error {
	if got := curve.Commit(ck, w.W); got.Cmp(inst.CommW) != 0 {
		return ivcerr.ErrInvalidCommitment
	}
	if got := curve.Commit(ck, w.E); got.Cmp(inst.CommE) != 0 {
		return ivcerr.ErrInvalidCommitment
	}
	z := shape.Z(inst.U, inst.X, w.W)
	shape.MultiplyWitnessInto(z, buf)
	mod := shape.Field.Modulus
	for i := 0; i < shape.NumCons; i++ {
		lhs := new(big.Int).Mod(new(big.Int).Mul(buf.AZ[i], buf.BZ[i]), mod)
		rhs := new(big.Int).Mod(new(big.Int).Add(new(big.Int).Mul(inst.U, buf.CZ[i]), w.E[i]), mod)
		if lhs.Cmp(rhs) != 0 {
			return ivcerr.ErrUnSat
		}
	}
	return nil
}
