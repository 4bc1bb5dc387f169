package curve

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"

	"github.com/reilabs/nova-ivc/internal/constants"
)

// Sponge is the native (out-of-circuit) Fiat-Shamir transcript NIFS
// squeezes its folding challenges from. It never needs an in-circuit
// counterpart (the augmented circuit takes the challenge as a trusted
// witness rather than replaying a foreign-field transcript; the hash
// values it does recompute go through internal/algsponge instead), so
// it can be a plain SHA-256 based duplex: state is folded forward by
// hashing the previous state together with each absorbed element, and
// challenges are derived by hashing state together with a squeeze
// counter and reducing into the field. The shape of a sponge is kept
// (absorb-then-squeeze, with all of a fold's public values absorbed
// before any challenge is drawn).
type Sponge struct {
	field   Field
	state   [32]byte
	squeeze uint64
}

// NewSponge starts a fresh transcript over the given field, seeded with
// a domain label so that primary- and secondary-side transcripts (and
// transcripts for distinct protocols) never collide.
func NewSponge(field Field, label string) *Sponge {
	s := &Sponge{field: field}
	h := sha256.Sum256([]byte("nova-ivc/ro/" + label))
	s.state = h
	return s
}

// AbsorbNative folds a field element already living in this sponge's
// own field into the transcript.
func (s *Sponge) AbsorbNative(x *big.Int) {
	s.absorbBytes(s.field.Reduce(x).Bytes())
}

// AbsorbForeign folds a field element native to the *other* side of the
// curve cycle into this transcript, via little-endian limb
// decomposition. Each limb is small enough (BNLimbWidth bits) to be a
// valid element of either field regardless of which side is foreign,
// which is exactly the property cross-field absorption needs.
func (s *Sponge) AbsorbForeign(x *big.Int) {
	limbs := DecomposeLimbs(x)
	for _, limb := range limbs {
		s.absorbBytes(limb.Bytes())
	}
}

// AbsorbUint64 folds a small integer (a step counter, a length) into
// the transcript.
func (s *Sponge) AbsorbUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	s.absorbBytes(buf[:])
}

func (s *Sponge) absorbBytes(b []byte) {
	h := sha256.New()
	h.Write(s.state[:])
	h.Write(b)
	copy(s.state[:], h.Sum(nil))
}

// Squeeze draws a challenge, truncated to numBits, and ratchets the
// internal state so that a second call never repeats the first.
func (s *Sponge) Squeeze(numBits int) *big.Int {
	h := sha256.New()
	h.Write(s.state[:])
	h.Write([]byte("squeeze"))
	var ctr [8]byte
	binary.LittleEndian.PutUint64(ctr[:], s.squeeze)
	h.Write(ctr[:])
	digest := h.Sum(nil)
	copy(s.state[:], digest)
	s.squeeze++

	out := new(big.Int).SetBytes(digest)
	out.Mod(out, new(big.Int).Lsh(big.NewInt(1), uint(numBits)))
	return s.field.Reduce(out)
}

// DefaultSqueeze draws a challenge truncated to constants.NumHashBits.
func (s *Sponge) DefaultSqueeze() *big.Int {
	return s.Squeeze(constants.NumHashBits)
}

// DecomposeLimbs splits x into constants.BNNLimbs little-endian limbs
// of constants.BNLimbWidth bits each.
func DecomposeLimbs(x *big.Int) []*big.Int {
	limbs := make([]*big.Int, constants.BNNLimbs)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), constants.BNLimbWidth), big.NewInt(1))
	rem := new(big.Int).Set(x)
	for i := 0; i < constants.BNNLimbs; i++ {
		limbs[i] = new(big.Int).And(rem, mask)
		rem.Rsh(rem, constants.BNLimbWidth)
	}
	return limbs
}

// RecomposeLimbs is the inverse of DecomposeLimbs, folding limbs back
// into a single integer modulo field.
func RecomposeLimbs(field Field, limbs []*big.Int) *big.Int {
	acc := new(big.Int)
	for i := len(limbs) - 1; i >= 0; i-- {
		acc.Lsh(acc, constants.BNLimbWidth)
		acc.Or(acc, limbs[i])
	}
	return field.Reduce(acc)
}

// ReduceForeign carries a field element native to the *other* side of
// the curve cycle into field, via the same limb decomposition
// AbsorbForeign uses: split into constants.BNNLimbs small limbs, then
// recompose them as an element of field. Used by the recursive driver
// to prepare the opposite side's running-instance fields as in-circuit
// witnesses for fold verification.
func ReduceForeign(field Field, x *big.Int) *big.Int {
	return RecomposeLimbs(field, DecomposeLimbs(x))
}
