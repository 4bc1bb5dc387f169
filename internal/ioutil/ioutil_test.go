package ioutil_test

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/reilabs/nova-ivc/internal/ioutil"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

func sampleRelaxed() (*r1cs.RelaxedInstance, *r1cs.RelaxedWitness) {
	inst := &r1cs.RelaxedInstance{
		CommW: big.NewInt(12345),
		CommE: big.NewInt(67890),
		U:     big.NewInt(1),
		X:     []*big.Int{big.NewInt(7), big.NewInt(8)},
	}
	w := &r1cs.RelaxedWitness{
		W: []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)},
		E: []*big.Int{big.NewInt(0), big.NewInt(0)},
	}
	return inst, w
}

func TestWriteReadRoundTrip(t *testing.T) {
	uP, wP := sampleRelaxed()
	uS, wS := sampleRelaxed()
	dump := ioutil.NewDump(3, uP, wP, uS, wS)

	dir := t.TempDir()
	path, err := ioutil.Write(dir, dump)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("expected path under %s, got %s", dir, path)
	}

	loaded, err := ioutil.Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if loaded.NumSteps != 3 {
		t.Fatalf("expected num_steps=3, got %d", loaded.NumSteps)
	}
	if loaded.RunID != dump.RunID {
		t.Fatalf("run id mismatch: got %s, want %s", loaded.RunID, dump.RunID)
	}

	gotUP, gotWP, gotUS, gotWS := loaded.RelaxedPair()
	if gotUP.CommW.Cmp(uP.CommW) != 0 || gotUP.CommE.Cmp(uP.CommE) != 0 || gotUP.U.Cmp(uP.U) != 0 {
		t.Fatal("primary relaxed instance did not round-trip")
	}
	for i := range uP.X {
		if gotUP.X[i].Cmp(uP.X[i]) != 0 {
			t.Fatalf("primary X[%d] did not round-trip", i)
		}
	}
	for i := range wP.W {
		if gotWP.W[i].Cmp(wP.W[i]) != 0 {
			t.Fatalf("primary W[%d] did not round-trip", i)
		}
	}
	if gotUS.CommW.Cmp(uS.CommW) != 0 {
		t.Fatal("secondary relaxed instance did not round-trip")
	}
	for i := range wS.E {
		if gotWS.E[i].Cmp(wS.E[i]) != 0 {
			t.Fatalf("secondary E[%d] did not round-trip", i)
		}
	}
}
