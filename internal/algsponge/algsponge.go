// Package algsponge implements a small fixed-round algebraic
// compression function, usable both natively (over math/big values)
// and inside the augmented circuit (over csbuilder wires), with the
// same round function and round constants on both sides so the two
// evaluations agree bit for bit. This is the in-circuit hash-binding
// primitive the augmented circuit's H(params, i, z0, zi, U) uses:
// circuit-friendly algebraic permutations (Poseidon, Skyscraper) exist
// for exactly this role, but gnark-skyscraper's surface is driven by a
// frontend.API and has no native (out-of-circuit) entry point, so it
// cannot serve both evaluation modes at once here. This package fills
// both with one construction of the same shape (low-degree S-box,
// linear diffusion layer), generic over the arithmetic ops so exactly
// one round function is written and shared by both evaluation modes.
package algsponge

import "math/big"

const (
	width  = 3
	rounds = 8
)

// Ops supplies the arithmetic a round function needs, so Permute can be
// written once and instantiated over *big.Int (native) or csbuilder.Var
// (in-circuit).
type Ops[T any] struct {
	Add   func(a, b T) T
	Mul   func(a, b T) T
	Const func(c *big.Int) T
}

// RoundConstants is populated once by each concrete instantiation
// (native or circuit) from the same derivation, see constants.go.
type RoundConstants [rounds][width]*big.Int

// mdsEntries is a small fixed circulant mixing matrix: cheap, and
// sufficient diffusion for the toy security level this module targets.
var mdsEntries = [width][width]int64{
	{2, 1, 1},
	{1, 2, 1},
	{1, 1, 2},
}

// sBox raises a word to the 5th power, the same low-degree map the
// fifth-root step circuit elsewhere in this module checks, kept
// consistent for a uniform in-circuit texture.
func sBox[T any](ops Ops[T], x T) T {
	x2 := ops.Mul(x, x)
	x4 := ops.Mul(x2, x2)
	return ops.Mul(x4, x)
}

func mix[T any](ops Ops[T], state [width]T) [width]T {
	var out [width]T
	for i := 0; i < width; i++ {
		acc := ops.Const(big.NewInt(0))
		for j := 0; j < width; j++ {
			coeff := ops.Const(big.NewInt(mdsEntries[i][j]))
			acc = ops.Add(acc, ops.Mul(coeff, state[j]))
		}
		out[i] = acc
	}
	return out
}

// Permute runs the fixed-round permutation over state, using rc as
// round constants.
func Permute[T any](ops Ops[T], state [width]T, rc RoundConstants) [width]T {
	for r := 0; r < rounds; r++ {
		for i := 0; i < width; i++ {
			state[i] = ops.Add(state[i], ops.Const(rc[r][i]))
			state[i] = sBox(ops, state[i])
		}
		state = mix(ops, state)
	}
	return state
}

// Compress2 absorbs a, b into a fresh state seeded with seed and
// returns the first word of the permuted state, a two-to-one
// compression function in the same shape as gnark-skyscraper's
// CompressV2.
func Compress2[T any](ops Ops[T], rc RoundConstants, seed T, a, b T) T {
	state := [width]T{ops.Add(seed, a), b, ops.Const(big.NewInt(0))}
	state = Permute(ops, state, rc)
	return state[0]
}
