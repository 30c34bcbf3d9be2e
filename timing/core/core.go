// Package core provides the clocked front-end model.
// It wraps the pipeline with the clock and reset sequencing a testbench
// would otherwise drive by hand.
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/timing/config"
	"github.com/sarchlab/rvfront/timing/pipeline"
)

// ErrFetchFault is returned by Run when the PC leaves the instruction store.
var ErrFetchFault = errors.New("fetch address outside instruction store")

// Stats holds statistics for the core.
type Stats struct {
	// Cycles is the total number of clock edges simulated.
	Cycles uint64
	// ResetCycles is the number of edges spent with reset asserted.
	ResetCycles uint64
	// Fetches is the number of instructions fetched.
	Fetches uint64
	// Jumps is the number of edges with the jump select asserted.
	Jumps uint64
	// UndefinedOpcodes is the number of fetched words with no control entry.
	UndefinedOpcodes uint64
	// RegWrites is the number of register writes performed.
	RegWrites uint64
	// SuppressedWrites is the number of writes dropped during reset.
	SuppressedWrites uint64
	// FetchFaults is the number of edges whose fetch left the store.
	FetchFaults uint64
	// FetchLatency is the accumulated I-cache latency, when modelled.
	FetchLatency uint64
}

// Core represents the clocked front end.
type Core struct {
	// Pipeline is the underlying front-end pipeline.
	Pipeline *pipeline.Pipeline

	regFile *emu.RegFile
	store   *emu.InstructionStore
	logger  logrus.FieldLogger
	onTick  func()

	// edges counts every Tick since creation; Reset leaves it alone.
	edges uint64
}

// NewCore creates a new Core with the given register file and instruction
// store. The core starts with reset asserted.
func NewCore(
	regFile *emu.RegFile,
	store *emu.InstructionStore,
	logger logrus.FieldLogger,
	opts ...pipeline.PipelineOption,
) *Core {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts = append([]pipeline.PipelineOption{pipeline.WithLogger(logger)}, opts...)

	return &Core{
		Pipeline: pipeline.NewPipeline(regFile, store, opts...),
		regFile:  regFile,
		store:    store,
		logger:   logger,
	}
}

// NewCoreFromConfig builds the store, register file and pipeline described
// by cfg and loads program into the store.
func NewCoreFromConfig(
	cfg *config.SimConfig,
	program []uint32,
	logger logrus.FieldLogger,
) (*Core, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	store, err := emu.NewInstructionStore(program, cfg.StoreSize)
	if err != nil {
		return nil, err
	}

	regFile := emu.NewRegFile()
	if cfg.SeedRegisters {
		regFile.Seed()
	}

	var opts []pipeline.PipelineOption
	if cfg.ICache != nil {
		opts = append(opts, pipeline.WithICache(*cfg.ICache))
	}

	return NewCore(regFile, store, logger, opts...), nil
}

// RegFile returns the register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.regFile
}

// Store returns the instruction store.
func (c *Core) Store() *emu.InstructionStore {
	return c.store
}

// PowerOn clocks resetCycles edges with reset asserted and then releases
// it. The first instruction is fetched on the next Tick.
func (c *Core) PowerOn(resetCycles uint64) {
	c.Pipeline.AssertReset()
	for i := uint64(0); i < resetCycles; i++ {
		c.Tick()
	}
	c.Pipeline.ReleaseReset()
	c.logger.WithField("reset_cycles", resetCycles).Debug("power-on reset done")
}

// OnTick registers fn to run after every clock edge, including the edges
// of PowerOn and Run.
func (c *Core) OnTick(fn func()) {
	c.onTick = fn
}

// Tick executes one clock edge.
func (c *Core) Tick() {
	c.Pipeline.Tick()
	c.edges++
	if c.onTick != nil {
		c.onTick()
	}
}

// Edges returns the number of clock edges since the core was created.
// Unlike Stats().Cycles it keeps counting across Reset, so it is a
// monotonic timestamp for waveform sinks.
func (c *Core) Edges() uint64 {
	return c.edges
}

// Faulted returns true once a fetch has fallen outside the store.
func (c *Core) Faulted() bool {
	return c.Pipeline.Faulted()
}

// Stats returns statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Pipeline.Stats()
	return Stats{
		Cycles:           s.Cycles,
		ResetCycles:      s.ResetCycles,
		Fetches:          s.Fetches,
		Jumps:            s.Jumps,
		UndefinedOpcodes: s.UndefinedOpcodes,
		RegWrites:        s.RegWrites,
		SuppressedWrites: s.SuppressedWrites,
		FetchFaults:      s.FetchFaults,
		FetchLatency:     s.FetchLatency,
	}
}

// RunCycles executes the core for the specified number of cycles.
// Returns false if a fetch fault stopped it early.
func (c *Core) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !c.Pipeline.Faulted(); i++ {
		c.Tick()
	}
	return !c.Pipeline.Faulted()
}

// Run executes up to maxCycles edges. It returns ctx.Err() if ctx is done
// between cycles and ErrFetchFault if the PC leaves the store.
func (c *Core) Run(ctx context.Context, maxCycles uint64) error {
	for i := uint64(0); i < maxCycles; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.Tick()

		if c.Pipeline.Faulted() {
			return fmt.Errorf("cycle %d, pc %d: %w",
				c.Pipeline.Stats().Cycles, c.Pipeline.PC(), ErrFetchFault)
		}
	}
	return nil
}

// Reset returns the pipeline to its power-on state. When reseed is true the
// register file is reloaded with its seed values.
func (c *Core) Reset(reseed bool) {
	c.Pipeline.Reset()
	if reseed {
		c.regFile.Seed()
	}
}
