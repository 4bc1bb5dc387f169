package algsponge

import (
	"math/big"

	"github.com/reilabs/nova-ivc/internal/curve"
)

// deriveSeed derives the initial capacity word a sponge seeds its state
// with, namespaced by label so distinct uses of the permutation never
// collide.
func deriveSeed(field curve.Field, label string) *big.Int {
	return curve.DeriveFieldElement(field, "algsponge-seed/"+label, 0)
}

// DeriveRoundConstants derives this permutation's round constants for a
// given field, so primary- and secondary-side sponges (distinct
// moduli) never share constants.
func DeriveRoundConstants(field curve.Field) RoundConstants {
	var rc RoundConstants
	for r := 0; r < rounds; r++ {
		for i := 0; i < width; i++ {
			rc[r][i] = curve.DeriveFieldElement(field, "algsponge-round-constant", uint64(r*width+i))
		}
	}
	return rc
}
