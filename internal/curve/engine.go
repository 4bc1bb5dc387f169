package curve

import (
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Engine bundles one side of a 2-cycle: its own scalar field (the field
// witnesses and public IO of this side's R1CS live in), the opposite
// side's scalar field (this side's "base" field, needed only to check
// the cycle invariant and to size cross-field absorption), a
// commitment engine, and a human-readable name used to namespace
// transcripts and commitment-key derivation.
type Engine struct {
	Name   string
	Scalar Field
	Base   Field
}

// NewEngine constructs an Engine from explicit scalar/base moduli.
func NewEngine(name string, scalar, base Field) Engine {
	return Engine{Name: name, Scalar: scalar, Base: base}
}

// RO starts a fresh native transcript for this engine, namespaced by
// purpose so that, e.g., a NIFS fold transcript never collides with a
// commitment-key derivation or a recursion hash-binding transcript.
func (e Engine) RO(purpose string) *Sponge {
	return NewSponge(e.Scalar, e.Name+"/"+purpose)
}

// BN254Cycle returns the pair of engines this module uses by default: a
// primary engine whose scalar field is the BN254 scalar field (fr) and
// whose base field is the BN254 base field (fp), and a secondary engine
// with the two swapped. The two fields are real, distinct BN254 moduli
// pulled from gnark-crypto, so the pairing is a genuine 2-cycle at the
// field level: primary.Base == secondary.Scalar and vice versa. (A true
// elliptic-curve cycle, e.g. BN254/Grumpkin, additionally needs a group
// law over each field; that layer is replaced here by the additive
// commitment scheme in commitment.go, per the explicit out-of-scope
// note on concrete EC groups and MSM backends.)
func BN254Cycle() (primary Engine, secondary Engine) {
	scalarField := NewField(fr.Modulus())
	baseField := NewField(fp.Modulus())
	primary = NewEngine("primary", scalarField, baseField)
	secondary = NewEngine("secondary", baseField, scalarField)
	return primary, secondary
}

// IsValidCycle reports whether two engines form a 2-cycle: each side's
// base field modulus must equal the other side's scalar field modulus.
func IsValidCycle(e1, e2 Engine) bool {
	return e1.Base.Modulus.Cmp(e2.Scalar.Modulus) == 0 &&
		e2.Base.Modulus.Cmp(e1.Scalar.Modulus) == 0
}
