// Package ivcerr defines the sentinel errors surfaced by the folding
// engine. Callers should compare against these with errors.Is rather
// than matching on message text.
package ivcerr

import "errors"

var (
	// ErrInvalidInitialInputLength is returned when z0 does not match
	// the arity a step circuit declares.
	ErrInvalidInitialInputLength = errors.New("ivc: initial input length does not match step circuit arity")

	// ErrSynthesis is returned when a step circuit fails to synthesize,
	// for example when non-deterministic advice runs out or is invalid.
	ErrSynthesis = errors.New("ivc: step circuit synthesis failed")

	// ErrUnSat is returned when an R1CS or relaxed R1CS instance/witness
	// pair fails its satisfiability check.
	ErrUnSat = errors.New("ivc: constraint system is not satisfied")

	// ErrInvalidCommitment is returned when a commitment recomputed from
	// a witness does not match the commitment carried by an instance.
	ErrInvalidCommitment = errors.New("ivc: commitment does not match witness")

	// ErrProofVerifyError is returned when a recursive or compressed
	// proof fails verification: hash binding, step count mismatch, and
	// similar structural checks return it directly, and the verifiers
	// also wrap satisfiability, commitment and Groth16 failures in it
	// alongside the more specific cause.
	ErrProofVerifyError = errors.New("ivc: proof verification failed")

	// ErrDigestMismatch is returned when the public parameters digest
	// recorded in a compression VerifierKey does not match the digest of
	// the public parameters it is verified against.
	ErrDigestMismatch = errors.New("ivc: public parameters digest mismatch")

	// ErrCurveCycleMismatch is returned by pp.Setup when the two engines
	// passed in do not form a 2-cycle (each side's base field must equal
	// the other side's scalar field).
	ErrCurveCycleMismatch = errors.New("ivc: engines do not form a valid curve cycle")

	// ErrNoAdvice is returned by step circuits that consume
	// non-deterministic advice once that advice is exhausted.
	ErrNoAdvice = errors.New("ivc: no advice remaining for non-deterministic step")
)
