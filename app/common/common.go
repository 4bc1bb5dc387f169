// Package common bundles the CLI/HTTP option surface the folding
// engine's entrypoints share: flags are parsed once into a single
// struct that the real work is handed, instead of every entrypoint
// re-reading its own flag set.
package common

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/reilabs/nova-ivc/internal/stepcircuit"
)

// EngineOps is the option bag cmd/cli's run command builds from its
// flags before calling into the engine. cmd/server does not use it; its
// handlers read their own JSON request bodies.
type EngineOps struct {
	StepPrimary   string
	StepSecondary string
	NumSteps      int
	Z0Primary     string
	Z0Secondary   string
	StateDir      string
	PPPath        string
	OutPath       string
}

// NewEngineOpsFromContext builds an EngineOps from a urfave/cli
// context.
func NewEngineOpsFromContext(c *cli.Context) *EngineOps {
	return &EngineOps{
		StepPrimary:   c.String("primary-circuit"),
		StepSecondary: c.String("secondary-circuit"),
		NumSteps:      c.Int("steps"),
		Z0Primary:     c.String("z0-primary"),
		Z0Secondary:   c.String("z0-secondary"),
		StateDir:      c.String("state-dir"),
		PPPath:        c.String("pp"),
		OutPath:       c.String("out"),
	}
}

func (o *EngineOps) HasStateDir() bool { return o.StateDir != "" }

// StepCircuitByName resolves a circuit name (as accepted by the
// --primary-circuit/--secondary-circuit flags) into a
// stepcircuit.StepCircuit instance.
func StepCircuitByName(name string) (stepcircuit.StepCircuit, error) {
	switch strings.ToLower(name) {
	case "", "trivial":
		return stepcircuit.NewTrivialCircuit(1), nil
	case "cubic":
		return stepcircuit.CubicCircuit{}, nil
	default:
		return nil, fmt.Errorf("common: unknown step circuit %q (want trivial|cubic)", name)
	}
}

// CommonFlags are the flags every subcommand that drives a fold
// shares.
var CommonFlags = []cli.Flag{
	&cli.StringFlag{Name: "primary-circuit", Usage: "primary-side step circuit (trivial|cubic)", Value: "cubic"},
	&cli.StringFlag{Name: "secondary-circuit", Usage: "secondary-side step circuit (trivial|cubic)", Value: "trivial"},
	&cli.StringFlag{Name: "state-dir", Usage: "directory for persisted fold state dumps", Value: ""},
	&cli.StringFlag{Name: "pp", Usage: "path to a persisted PublicParams digest file", Value: ""},
}
