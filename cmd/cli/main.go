// Command nova-ivc-cli drives the recursive folding engine from the
// command line: it sets up public parameters for a chosen pair of step
// circuits, runs a fold of N steps, verifies the result, and optionally
// compresses and persists it.
package main

import (
	"fmt"
	"log"
	"math/big"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reilabs/nova-ivc/app/common"
	"github.com/reilabs/nova-ivc/internal/compress"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ioutil"
	"github.com/reilabs/nova-ivc/internal/ivc"
	"github.com/reilabs/nova-ivc/internal/pp"
)

func main() {
	app := &cli.App{
		Name:  "nova-ivc",
		Usage: "run and verify a recursive folding session",
		Commands: []*cli.Command{
			runCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runCommand() *cli.Command {
	flags := append(append([]cli.Flag{}, common.CommonFlags...),
		&cli.IntFlag{Name: "steps", Usage: "number of prove_step calls to run", Value: 1},
		&cli.StringFlag{Name: "z0-primary", Usage: "comma-separated initial primary state", Value: "0"},
		&cli.StringFlag{Name: "z0-secondary", Usage: "comma-separated initial secondary state", Value: ""},
		&cli.BoolFlag{Name: "compress", Usage: "produce a compressed (Groth16) proof after folding", Value: false},
	)

	return &cli.Command{
		Name:  "run",
		Usage: "setup, fold, verify (and optionally compress) a session",
		Flags: flags,
		Action: func(c *cli.Context) error {
			ops := common.NewEngineOpsFromContext(c)
			return runSession(ops, c.Bool("compress"))
		},
	}
}

func runSession(ops *common.EngineOps, doCompress bool) error {
	stepPrimary, err := common.StepCircuitByName(ops.StepPrimary)
	if err != nil {
		return err
	}
	stepSecondary, err := common.StepCircuitByName(ops.StepSecondary)
	if err != nil {
		return err
	}

	primaryEngine, secondaryEngine := curve.BN254Cycle()
	params, err := pp.Setup(primaryEngine, secondaryEngine, stepPrimary, stepSecondary, nil, nil)
	if err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	log.Printf("public parameters digest: %s", params.Digest().String())

	z0Primary, err := parseVec(ops.Z0Primary, stepPrimary.Arity())
	if err != nil {
		return fmt.Errorf("z0-primary: %w", err)
	}
	z0Secondary, err := parseVec(ops.Z0Secondary, stepSecondary.Arity())
	if err != nil {
		return fmt.Errorf("z0-secondary: %w", err)
	}

	snark, err := ivc.New(params, stepPrimary, stepSecondary, z0Primary, z0Secondary)
	if err != nil {
		return fmt.Errorf("new: %w", err)
	}

	numSteps := ops.NumSteps
	if numSteps < 1 {
		numSteps = 1
	}
	for step := 0; step < numSteps; step++ {
		if err := snark.ProveStep(); err != nil {
			return fmt.Errorf("prove_step %d: %w", step, err)
		}
	}

	if err := snark.Verify(snark.NumSteps(), z0Primary, z0Secondary); err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	log.Printf("fold verified after %d step(s): zi_primary=%v zi_secondary=%v",
		snark.NumSteps(), snark.ZPrimary(), snark.ZSecondary())

	if ops.HasStateDir() {
		uP, wP := snark.RunningPrimary()
		uS, wS := snark.RunningSecondary()
		dump := ioutil.NewDump(snark.NumSteps(), uP, wP, uS, wS)
		path, err := ioutil.Write(ops.StateDir, dump)
		if err != nil {
			return fmt.Errorf("persist state: %w", err)
		}
		log.Printf("state dumped to %s", path)
	}

	if doCompress {
		pk, vk, err := compress.Setup(params)
		if err != nil {
			return fmt.Errorf("compress setup: %w", err)
		}
		proof, err := compress.Prove(pk, snark)
		if err != nil {
			return fmt.Errorf("compress prove: %w", err)
		}
		if err := compress.Verify(vk, params, proof); err != nil {
			return fmt.Errorf("compress verify: %w", err)
		}
		log.Printf("compressed proof verified")
	}

	return nil
}

func parseVec(s string, arity int) ([]*big.Int, error) {
	out := make([]*big.Int, 0, arity)
	if strings.TrimSpace(s) != "" {
		for _, part := range strings.Split(s, ",") {
			v, ok := new(big.Int).SetString(strings.TrimSpace(part), 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer %q", part)
			}
			out = append(out, v)
		}
	}
	for len(out) < arity {
		out = append(out, big.NewInt(0))
	}
	if len(out) != arity {
		return nil, fmt.Errorf("expected %d values, got %d", arity, len(out))
	}
	return out, nil
}
