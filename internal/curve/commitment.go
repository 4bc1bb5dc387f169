package curve

import (
	"crypto/sha256"
	"encoding/binary"
	"math/big"
)

// CommitmentKey is a vector of generators over a Field. Commitments are
// a weighted sum of a vector against these generators, taken modulo the
// field's modulus -- the additive analogue of a Pedersen vector
// commitment, chosen because concrete elliptic-curve groups and MSM
// backends are explicitly out of scope. The construction still gives
// the one property folding needs:
//
//	Commit(ck, v1 + r*v2) == Commit(ck, v1) + r*Commit(ck, v2)  (mod p)
type CommitmentKey struct {
	Field      Field
	Generators []*big.Int
}

// Commitment is the result of committing to a vector: a single field
// element. Both sides of the curve cycle use the same representation,
// which is what lets the augmented circuit gadget treat a commitment as
// a plain wire instead of a pair of non-native curve-point coordinates.
type Commitment = *big.Int

// SetupCommitmentKey deterministically derives n generators from a
// textual label by hashing the label together with an index counter
// and reducing into the field. The derivation only needs to be
// unpredictable before setup, not hiding afterwards, so a plain hash
// expansion (rather than a dedicated hash-to-field routine, which nothing
// in the available toolchain exposes for an arbitrary prime field) is
// sufficient.
func SetupCommitmentKey(field Field, label string, n int) CommitmentKey {
	gens := make([]*big.Int, n)
	for i := 0; i < n; i++ {
		gens[i] = DeriveFieldElement(field, label, uint64(i))
	}
	return CommitmentKey{Field: field, Generators: gens}
}

// Extend grows ck to at least n generators, deriving any missing
// entries under the same label. Used when a ck_hint requires more
// generators than the shape's witness length alone would.
func (ck CommitmentKey) Extend(label string, n int) CommitmentKey {
	if len(ck.Generators) >= n {
		return ck
	}
	gens := make([]*big.Int, n)
	copy(gens, ck.Generators)
	for i := len(ck.Generators); i < n; i++ {
		gens[i] = DeriveFieldElement(ck.Field, label, uint64(i))
	}
	return CommitmentKey{Field: ck.Field, Generators: gens}
}

// DeriveFieldElement deterministically derives a field element from a
// label and an index by hash expansion. Used both for commitment-key
// generators and for the round constants of the algebraic sponge in
// internal/algsponge.
func DeriveFieldElement(field Field, label string, index uint64) *big.Int {
	h := sha256.New()
	h.Write([]byte("nova-ivc/commitment-key/"))
	h.Write([]byte(label))
	var idxBuf [8]byte
	binary.LittleEndian.PutUint64(idxBuf[:], index)
	h.Write(idxBuf[:])
	digest := h.Sum(nil)
	return field.Reduce(new(big.Int).SetBytes(digest))
}

// Commit computes Sum(ck.Generators[i] * v[i]) mod p. len(v) must not
// exceed len(ck.Generators).
func Commit(ck CommitmentKey, v []*big.Int) Commitment {
	acc := big.NewInt(0)
	for i, vi := range v {
		term := new(big.Int).Mul(ck.Generators[i], vi)
		acc.Add(acc, term)
	}
	return ck.Field.Reduce(acc)
}

// FoldCommitments computes c1 + r*c2 mod p, the homomorphic combination
// NIFS folding performs on committed instance fields.
func FoldCommitments(field Field, c1, c2 Commitment, r *big.Int) Commitment {
	return field.Add(c1, field.Mul(r, c2))
}
