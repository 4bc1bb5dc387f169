// Package curve supplies the Engine abstraction the folding engine is
// generic over: a scalar field, the "base" field of the opposite side
// of the curve cycle, a homomorphic commitment scheme, and a
// Fiat-Shamir random oracle. Rather than wiring a full elliptic-curve
// MSM backend, commitments here are additive combinations over a
// prime field, which already carries the homomorphism folding depends
// on and lets every downstream package reason about commitments as
// plain field elements.
package curve

import (
	"crypto/rand"
	"math/big"
)

// Field is a prime field Z/pZ, represented through math/big. All
// exported operations reduce their result modulo Modulus.
type Field struct {
	Modulus *big.Int
}

// NewField wraps a modulus. The modulus is not copied; callers must not
// mutate it afterwards.
func NewField(modulus *big.Int) Field {
	return Field{Modulus: modulus}
}

func (f Field) Reduce(x *big.Int) *big.Int {
	return new(big.Int).Mod(x, f.Modulus)
}

func (f Field) Add(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Add(a, b))
}

func (f Field) Sub(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Sub(a, b))
}

func (f Field) Mul(a, b *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Mul(a, b))
}

func (f Field) Neg(a *big.Int) *big.Int {
	return f.Reduce(new(big.Int).Neg(a))
}

func (f Field) Zero() *big.Int { return big.NewInt(0) }

func (f Field) One() *big.Int { return big.NewInt(1) }

func (f Field) FromUint64(v uint64) *big.Int {
	return f.Reduce(new(big.Int).SetUint64(v))
}

func (f Field) FromInt(v int) *big.Int {
	return f.Reduce(big.NewInt(int64(v)))
}

func (f Field) Equal(a, b *big.Int) bool {
	return f.Reduce(a).Cmp(f.Reduce(b)) == 0
}

// Random returns a uniformly random element of the field.
func (f Field) Random() (*big.Int, error) {
	return rand.Int(rand.Reader, f.Modulus)
}

// BitLen returns the bit length of the modulus.
func (f Field) BitLen() int {
	return f.Modulus.BitLen()
}
