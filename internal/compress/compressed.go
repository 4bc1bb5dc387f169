// compressed.go assembles two Groth16Backend instances (one per side
// of the cycle) into the compressed proof layer: a proving key, a
// verifying key, and Prove/Verify entry points that turn a
// RecursiveSNARK's final running state into two constant-size Groth16
// proofs, produced and verified in parallel.
//
// This module's RecursiveSNARK folds every step's plain instance into
// the running relaxed instance immediately (see internal/ivc's package
// doc), so by the time Prove is called there is no separate pending
// plain instance left to fold first -- both running instances are
// already fully folded. Prove therefore compresses them directly.
package compress

import (
	"fmt"
	"math/big"

	"golang.org/x/sync/errgroup"

	"github.com/reilabs/nova-ivc/internal/ivc"
	"github.com/reilabs/nova-ivc/internal/ivcerr"
	"github.com/reilabs/nova-ivc/internal/pp"
	"github.com/reilabs/nova-ivc/internal/r1cs"
)

// ProverKey bundles both sides' Groth16 proving material.
type ProverKey struct {
	Primary     *Groth16Backend
	Secondary   *Groth16Backend
	PkPrimary   ProvingKey
	PkSecondary ProvingKey
}

// VerifierKey bundles both sides' Groth16 verifying material plus the
// public-parameters digest the stored VerifierKey must agree with.
type VerifierKey struct {
	Digest      string
	Primary     *Groth16Backend
	Secondary   *Groth16Backend
	VkPrimary   VerifyingKey
	VkSecondary VerifyingKey
}

// Setup compiles and runs Groth16 setup for both sides' compression
// circuits, sized from params' augmented-circuit shapes and commitment
// keys: one prover/verifier key pair per side.
func Setup(params *pp.Params) (*ProverKey, *VerifierKey, error) {
	backendPrimary, pkPrimary, vkPrimary, err := newGroth16Backend(params.CircuitShapePrimary.Shape, params.CkPrimary)
	if err != nil {
		return nil, nil, fmt.Errorf("compress: setup primary: %w", err)
	}
	backendSecondary, pkSecondary, vkSecondary, err := newGroth16Backend(params.CircuitShapeSecondary.Shape, params.CkSecondary)
	if err != nil {
		return nil, nil, fmt.Errorf("compress: setup secondary: %w", err)
	}

	digest := params.Digest().String()
	pk := &ProverKey{Primary: backendPrimary, Secondary: backendSecondary, PkPrimary: pkPrimary, PkSecondary: pkSecondary}
	vk := &VerifierKey{Digest: digest, Primary: backendPrimary, Secondary: backendSecondary, VkPrimary: vkPrimary, VkSecondary: vkSecondary}
	return pk, vk, nil
}

// SNARK is a compressed proof: one Groth16 proof per side, the running
// relaxed instances the verifier checks them against, and the
// bookkeeping (step count, recorded initial/final state, and the last
// fold's hash binding) Verify needs to perform the same hash-equality
// checks the recursive verify performs, so that tampering with a
// compressed proof's recorded z0/zi is caught here exactly as it would
// be by ivc.RecursiveSNARK.Verify.
type SNARK struct {
	ProofPrimary   *Proof
	ProofSecondary *Proof
	UPrimary       *r1cs.RelaxedInstance
	USecondary     *r1cs.RelaxedInstance

	NumSteps int

	Z0Primary, Z0Secondary []*big.Int
	ZiPrimary, ZiSecondary []*big.Int

	LastPlainXPrimary, LastPlainXSecondary   []*big.Int
	OtherDigestPrimary, OtherDigestSecondary *big.Int
}

// Prove compresses a completed RecursiveSNARK's running state into a
// constant-size SNARK, producing both sides' Groth16 proofs
// concurrently.
func Prove(pk *ProverKey, snark *ivc.RecursiveSNARK) (*SNARK, error) {
	uP, wP := snark.RunningPrimary()
	uS, wS := snark.RunningSecondary()

	var proofP, proofS *Proof
	var g errgroup.Group
	g.Go(func() error {
		p, err := pk.Primary.Prove(pk.PkPrimary, uP, wP)
		if err != nil {
			return err
		}
		proofP = p
		return nil
	})
	g.Go(func() error {
		p, err := pk.Secondary.Prove(pk.PkSecondary, uS, wS)
		if err != nil {
			return err
		}
		proofS = p
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("compress: prove: %w", err)
	}

	return &SNARK{
		ProofPrimary:   proofP,
		ProofSecondary: proofS,
		UPrimary:       uP,
		USecondary:     uS,

		NumSteps: snark.NumSteps(),

		Z0Primary:   snark.Z0Primary(),
		Z0Secondary: snark.Z0Secondary(),
		ZiPrimary:   snark.ZPrimary(),
		ZiSecondary: snark.ZSecondary(),

		LastPlainXPrimary:   snark.LastPlainXPrimary(),
		LastPlainXSecondary: snark.LastPlainXSecondary(),

		OtherDigestPrimary:   snark.LastOtherDigestPrimary(),
		OtherDigestSecondary: snark.LastOtherDigestSecondary(),
	}, nil
}

// Verify checks both sides' Groth16 proofs against the running
// instances the SNARK carries, concurrently, and -- the same
// hash-equality checks ivc.RecursiveSNARK.Verify performs -- that the
// recorded step count and hash binding actually match the recorded
// z0/zi, so a compressed proof with a tampered zi fails here just as it
// would against the uncompressed recursive proof.
func Verify(vk *VerifierKey, params *pp.Params, snark *SNARK) error {
	if vk.Digest != params.Digest().String() {
		return ivcerr.ErrDigestMismatch
	}
	if snark.NumSteps == 0 {
		return fmt.Errorf("%w: num_steps must be nonzero", ivcerr.ErrProofVerifyError)
	}

	digest := params.Digest()
	if err := ivc.CheckHashBinding(params.Primary.Scalar, params.AugParamsPrimary, digest, snark.NumSteps, snark.Z0Primary, snark.ZiPrimary, snark.OtherDigestPrimary, snark.LastPlainXPrimary); err != nil {
		return err
	}
	if err := ivc.CheckHashBinding(params.Secondary.Scalar, params.AugParamsSecondary, digest, snark.NumSteps, snark.Z0Secondary, snark.ZiSecondary, snark.OtherDigestSecondary, snark.LastPlainXSecondary); err != nil {
		return err
	}

	var g errgroup.Group
	g.Go(func() error { return vk.Primary.Verify(vk.VkPrimary, snark.UPrimary, snark.ProofPrimary) })
	g.Go(func() error { return vk.Secondary.Verify(vk.VkSecondary, snark.USecondary, snark.ProofSecondary) })
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: %w", ivcerr.ErrProofVerifyError, err)
	}
	return nil
}
