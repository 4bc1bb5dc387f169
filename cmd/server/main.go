// Command nova-ivc-server exposes the recursive folding engine over
// HTTP as a small session-oriented API under /api/v1: create a fold,
// extend it, verify it, compress it. Timeouts and body limits are
// sized for long-running proving work.
package main

import (
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"

	"github.com/reilabs/nova-ivc/app/common"
	"github.com/reilabs/nova-ivc/internal/compress"
	"github.com/reilabs/nova-ivc/internal/curve"
	"github.com/reilabs/nova-ivc/internal/ivc"
	"github.com/reilabs/nova-ivc/internal/pp"
)

// session is one in-flight fold, addressed by a uuid the way
// ioutil.Dump tags a persisted state with a run id. Sessions live only
// in server memory; clients that need durability dump state through
// the CLI's --state-dir path instead.
type session struct {
	mu          sync.Mutex
	params      *pp.Params
	snark       *ivc.RecursiveSNARK
	z0Primary   []*big.Int
	z0Secondary []*big.Int
}

var (
	sessionsMu sync.Mutex
	sessions   = map[string]*session{}
)

func main() {
	fiberConfig := fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  90 * time.Minute,
		BodyLimit:    2 * 1024 * 1024 * 1024,
		Prefork:      false,
		ServerHeader: "Nova-IVC",
		AppName:      "Recursive Folding Engine",
	}

	app := fiber.New(fiberConfig)

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Content-Length, Authorization, Cookie",
		AllowMethods: "GET, POST, PUT, DELETE, PATCH",
		MaxAge:       12 * 3600,
	}))

	v1 := app.Group("/api/v1")
	v1.Get("/ping", ping)
	v1.Post("/setup", setupSession)
	v1.Post("/prove-step", proveStep)
	v1.Post("/verify", verifySession)
	v1.Post("/compress", compressSession)

	log.Fatal(app.Listen(":3000"))
}

func ping(c *fiber.Ctx) error {
	return c.SendString("pong")
}

type setupRequest struct {
	PrimaryCircuit   string `json:"primary_circuit"`
	SecondaryCircuit string `json:"secondary_circuit"`
	Z0Primary        []int64 `json:"z0_primary"`
	Z0Secondary      []int64 `json:"z0_secondary"`
}

func setupSession(c *fiber.Ctx) error {
	var req setupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid request body", "details": err.Error()})
	}

	stepPrimary, err := common.StepCircuitByName(req.PrimaryCircuit)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	stepSecondary, err := common.StepCircuitByName(req.SecondaryCircuit)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}

	primaryEngine, secondaryEngine := curve.BN254Cycle()
	params, err := pp.Setup(primaryEngine, secondaryEngine, stepPrimary, stepSecondary, nil, nil)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "setup failed", "details": err.Error()})
	}

	z0Primary := toBigInts(req.Z0Primary, stepPrimary.Arity())
	z0Secondary := toBigInts(req.Z0Secondary, stepSecondary.Arity())

	snark, err := ivc.New(params, stepPrimary, stepSecondary, z0Primary, z0Secondary)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "new failed", "details": err.Error()})
	}

	id := uuid.NewString()
	sessionsMu.Lock()
	sessions[id] = &session{params: params, snark: snark, z0Primary: z0Primary, z0Secondary: z0Secondary}
	sessionsMu.Unlock()

	return c.JSON(fiber.Map{
		"session_id": id,
		"digest":     params.Digest().String(),
	})
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
}

func lookup(c *fiber.Ctx) (*session, string, error) {
	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, "", fmt.Errorf("invalid request body: %w", err)
	}
	sessionsMu.Lock()
	s, ok := sessions[req.SessionID]
	sessionsMu.Unlock()
	if !ok {
		return nil, req.SessionID, fmt.Errorf("unknown session %q", req.SessionID)
	}
	return s, req.SessionID, nil
}

func proveStep(c *fiber.Ctx) error {
	s, id, err := lookup(c)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snark.ProveStep(); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "prove_step failed", "details": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session_id":   id,
		"num_steps":    s.snark.NumSteps(),
		"zi_primary":   s.snark.ZPrimary(),
		"zi_secondary": s.snark.ZSecondary(),
	})
}

func verifySession(c *fiber.Ctx) error {
	s, id, err := lookup(c)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.snark.Verify(s.snark.NumSteps(), s.z0Primary, s.z0Secondary); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "verification failed", "details": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session_id": id,
		"status":     "success",
		"num_steps":  s.snark.NumSteps(),
	})
}

func compressSession(c *fiber.Ctx) error {
	s, id, err := lookup(c)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pk, vk, err := compress.Setup(s.params)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "compress setup failed", "details": err.Error()})
	}
	proof, err := compress.Prove(pk, s.snark)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "compress prove failed", "details": err.Error()})
	}
	if err := compress.Verify(vk, s.params, proof); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "compress verify failed", "details": err.Error()})
	}

	return c.JSON(fiber.Map{
		"session_id": id,
		"status":     "success",
	})
}

func toBigInts(vals []int64, arity int) []*big.Int {
	out := make([]*big.Int, arity)
	for i := range out {
		if i < len(vals) {
			out[i] = big.NewInt(vals[i])
		} else {
			out[i] = big.NewInt(0)
		}
	}
	return out
}
