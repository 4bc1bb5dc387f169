// Package ioutil persists a RecursiveSNARK's per-side state as raw
// little-endian dumps under a configurable directory. These are
// informational artifacts for resuming or inspecting a fold offline,
// never part of the security boundary: the driver always re-derives
// everything it needs to verify from the in-memory
// RecursiveSNARK/PublicParams values.
//
// Field elements go to disk as fixed-width 64-bit limb arrays through
// go-ark-serialize's canonical (de)serialization, rather than a
// bespoke byte layout.
package ioutil

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	arkSerialize "github.com/reilabs/go-ark-serialize"

	"github.com/reilabs/nova-ivc/internal/constants"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// limbWidth is the number of uint64 limbs a field element is encoded
// with -- four 64-bit limbs comfortably cover the ~254-bit moduli this
// module's curve cycle uses, matching constants.BNNLimbs at 64-bit
// width.
const limbWidth = constants.BNNLimbs

// fp256 is the wire format of one field element: a fixed-width
// little-endian limb encoding, the shape go-ark-serialize's canonical
// (de)serialization already knows how to round-trip.
type fp256 struct {
	Limbs [limbWidth]uint64
}

func toFp256(x *big.Int) fp256 {
	var out fp256
	words := x.Bits()
	for i := 0; i < len(words) && i < limbWidth; i++ {
		out.Limbs[i] = uint64(words[i])
	}
	return out
}

func fromFp256(f fp256) *big.Int {
	acc := new(big.Int)
	for i := limbWidth - 1; i >= 0; i-- {
		acc.Lsh(acc, 64)
		acc.Or(acc, new(big.Int).SetUint64(f.Limbs[i]))
	}
	return acc
}

func encodeVec(v []*big.Int) []fp256 {
	out := make([]fp256, len(v))
	for i, x := range v {
		out[i] = toFp256(x)
	}
	return out
}

func decodeVec(v []fp256) []*big.Int {
	out := make([]*big.Int, len(v))
	for i, f := range v {
		out[i] = fromFp256(f)
	}
	return out
}

// SideState is the persisted running state for one side of the cycle:
// the relaxed instance (commitments, u, X) and witness (W, E), encoded
// as fixed-limb field elements.
type SideState struct {
	CommW fp256
	CommE fp256
	U     fp256
	X     []fp256
	W     []fp256
	E     []fp256
}

func toSideState(inst *r1cs.RelaxedInstance, w *r1cs.RelaxedWitness) SideState {
	return SideState{
		CommW: toFp256(inst.CommW),
		CommE: toFp256(inst.CommE),
		U:     toFp256(inst.U),
		X:     encodeVec(inst.X),
		W:     encodeVec(w.W),
		E:     encodeVec(w.E),
	}
}

func (s SideState) toInstanceAndWitness() (*r1cs.RelaxedInstance, *r1cs.RelaxedWitness) {
	inst := &r1cs.RelaxedInstance{
		CommW: fromFp256(s.CommW),
		CommE: fromFp256(s.CommE),
		U:     fromFp256(s.U),
		X:     decodeVec(s.X),
	}
	w := &r1cs.RelaxedWitness{W: decodeVec(s.W), E: decodeVec(s.E)}
	return inst, w
}

// Dump is one persisted snapshot of a RecursiveSNARK's running state,
// tagged with a run id so repeated dumps under the same directory
// never collide. RunID is a fixed 16-byte array (uuid.UUID's own
// representation) rather than a string, since go-ark-serialize's
// canonical encoding is built around fixed-size numeric/array fields
// rather than variable-length strings.
type Dump struct {
	RunID     uuid.UUID
	NumSteps  int
	Primary   SideState
	Secondary SideState
}

// NewDump packages a snapshot of both sides' running relaxed
// instance/witness pairs under a fresh run id.
func NewDump(numSteps int, uP *r1cs.RelaxedInstance, wP *r1cs.RelaxedWitness, uS *r1cs.RelaxedInstance, wS *r1cs.RelaxedWitness) *Dump {
	return &Dump{
		RunID:     uuid.New(),
		NumSteps:  numSteps,
		Primary:   toSideState(uP, wP),
		Secondary: toSideState(uS, wS),
	}
}

// RelaxedPair returns the primary and secondary relaxed
// instance/witness pairs this dump carries.
func (d *Dump) RelaxedPair() (uP *r1cs.RelaxedInstance, wP *r1cs.RelaxedWitness, uS *r1cs.RelaxedInstance, wS *r1cs.RelaxedWitness) {
	uP, wP = d.Primary.toInstanceAndWitness()
	uS, wS = d.Secondary.toInstanceAndWitness()
	return uP, wP, uS, wS
}

// Write serializes d and stores it under dir/<run-id>.state, creating
// dir if necessary. It returns the path written to.
func Write(dir string, d *Dump) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ioutil: create state dir: %w", err)
	}
	var buf bytes.Buffer
	if _, err := arkSerialize.CanonicalSerializeWithMode(&buf, d, false, false); err != nil {
		return "", fmt.Errorf("ioutil: serialize dump: %w", err)
	}
	path := filepath.Join(dir, d.RunID.String()+".state")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("ioutil: write state file %s: %w", path, err)
	}
	return path, nil
}

// Read loads a Dump previously written by Write.
func Read(path string) (*Dump, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ioutil: read state file %s: %w", path, err)
	}
	var d Dump
	if _, err := arkSerialize.CanonicalDeserializeWithMode(bytes.NewReader(raw), &d, false, false); err != nil {
		return nil, fmt.Errorf("ioutil: deserialize state file %s: %w", path, err)
	}
	return &d, nil
}
