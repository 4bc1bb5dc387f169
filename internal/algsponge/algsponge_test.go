package algsponge_test

import (
	"math/big"
	"testing"

	"github.com/reilabs/nova-ivc/internal/algsponge"
	"github.com/reilabs/nova-ivc/internal/curve"
)

func testField() curve.Field {
	return curve.NewField(big.NewInt(2305843009213693951)) // a Mersenne prime, plenty of room for small test values
}

func TestHashBindingDeterministic(t *testing.T) {
	field := testField()
	z0 := []*big.Int{big.NewInt(1), big.NewInt(2)}
	zi := []*big.Int{big.NewInt(3), big.NewInt(4)}

	h1 := algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), z0, zi, big.NewInt(7))
	h2 := algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), z0, zi, big.NewInt(7))
	if h1.Cmp(h2) != 0 {
		t.Fatal("hash binding is not deterministic across identical calls")
	}
}

func TestHashBindingSensitiveToEachInput(t *testing.T) {
	field := testField()
	z0 := []*big.Int{big.NewInt(1), big.NewInt(2)}
	zi := []*big.Int{big.NewInt(3), big.NewInt(4)}
	base := algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), z0, zi, big.NewInt(7))

	variants := []*big.Int{
		algsponge.HashBinding(field, "test", big.NewInt(43), big.NewInt(1), z0, zi, big.NewInt(7)),
		algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(2), z0, zi, big.NewInt(7)),
		algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), []*big.Int{big.NewInt(9), big.NewInt(2)}, zi, big.NewInt(7)),
		algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), z0, []*big.Int{big.NewInt(9), big.NewInt(4)}, big.NewInt(7)),
		algsponge.HashBinding(field, "test", big.NewInt(42), big.NewInt(1), z0, zi, big.NewInt(8)),
		algsponge.HashBinding(field, "other-label", big.NewInt(42), big.NewInt(1), z0, zi, big.NewInt(7)),
	}
	for i, v := range variants {
		if v.Cmp(base) == 0 {
			t.Fatalf("variant %d should differ from the base hash but didn't", i)
		}
	}
}
