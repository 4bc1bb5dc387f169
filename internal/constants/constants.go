// Package constants collects the numeric parameters shared across the
// folding engine: limb decomposition widths for cross-field absorption,
// hash truncation width, and the small fixed-size overhead of the
// augmented circuit's random-oracle input.
package constants

const (
	// BNLimbWidth is the width, in bits, of each limb used when a field
	// element native to one side of the curve cycle is decomposed for
	// absorption into a sponge running over the other side's field.
	BNLimbWidth = 64

	// BNNLimbs is the number of limbs produced by that decomposition.
	// 4 limbs of 64 bits comfortably cover both the BN254 scalar and
	// base field moduli (each a little under 254 bits).
	BNNLimbs = 4

	// NumFEWithoutIOForCRHF is the number of field elements the
	// augmented circuit's hash absorbs besides the step counter and the
	// public IO values themselves: the parameters digest, z0 and zi.
	NumFEWithoutIOForCRHF = 1

	// NumHashBits is the number of low-order bits kept from a squeezed
	// NIFS challenge (curve.Sponge.DefaultSqueeze). The recursion's
	// binding hash and the public-parameters digest are full field
	// elements and are not truncated to this width. Kept comfortably under
	// either field's bit length so the value can be re-absorbed on the
	// other side of the cycle without reduction ambiguity.
	NumHashBits = 250
)
