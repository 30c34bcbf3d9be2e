package pipeline

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/insts"
	"github.com/sarchlab/rvfront/timing/cache"
	"github.com/sarchlab/rvfront/timing/signal"
)

// Statistics holds front-end statistics.
type Statistics struct {
	// Cycles is the total number of clock edges simulated.
	Cycles uint64
	// ResetCycles is the number of edges that occurred with reset asserted.
	ResetCycles uint64
	// Fetches is the number of cycles that fetched an instruction.
	Fetches uint64
	// FetchFaults is the number of cycles whose fetch address was outside
	// the instruction store.
	FetchFaults uint64
	// Jumps is the number of cycles with the jump select asserted.
	Jumps uint64
	// UndefinedOpcodes is the number of cycles that decoded an opcode
	// outside the control table.
	UndefinedOpcodes uint64
	// RegWrites is the number of register writes performed.
	RegWrites uint64
	// SuppressedWrites is the number of writes dropped while in reset.
	SuppressedWrites uint64
	// FetchLatency is the accumulated I-cache latency, when modelled.
	FetchLatency uint64
}

// Outputs are the values the front end exposes to the next stage.
type Outputs struct {
	// Valid is false while reset is asserted or before the first settle.
	Valid bool

	IFID        uint64
	PC          uint32
	PCAddr      uint32
	Instruction uint32
	Format      insts.Format
	Immediate   uint32
	Control     insts.ControlSignals
	RDA         uint32
	RDB         uint32

	// Undefined is raised when the opcode is outside the control table and
	// Control holds the previous cycle's vector.
	Undefined bool
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger used for cycle and fault reporting.
func WithLogger(logger logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithICache enables the instruction cache model with the given
// configuration.
func WithICache(config cache.Config) PipelineOption {
	return func(p *Pipeline) {
		icache := cache.New(config, cache.NewStoreBacking(p.store))
		p.cachedFetchStage = NewCachedFetchStage(icache)
		p.useICache = true
	}
}

// Pipeline implements the fetch/decode front end.
//
// Each Tick is one active clock edge. Synchronous blocks (PC adder, register
// write) sample pre-edge values and then commit together; the reset machine
// advances; then combinational blocks settle in a single pass in dependency
// order: PC mux, fetch, immediate, control, register reads, IF/ID.
type Pipeline struct {
	ifid IFIDRegister

	reset *signal.ResetLine

	pcUnit        *PCUnit
	fetchStage    *FetchStage
	immGen        *ImmGen
	controlUnit   *ControlUnit
	registerPorts *RegisterPorts

	cachedFetchStage *CachedFetchStage
	useICache        bool

	regFile *emu.RegFile
	store   *emu.InstructionStore

	logger logrus.FieldLogger

	stats   Statistics
	faulted bool
}

// NewPipeline creates a front end over regFile and store. It starts with
// reset asserted.
func NewPipeline(
	regFile *emu.RegFile,
	store *emu.InstructionStore,
	opts ...PipelineOption,
) *Pipeline {
	reset := signal.NewResetLine()
	p := &Pipeline{
		reset:         reset,
		pcUnit:        NewPCUnit(reset),
		fetchStage:    NewFetchStage(reset, store),
		immGen:        NewImmGen(reset),
		controlUnit:   NewControlUnit(reset),
		registerPorts: NewRegisterPorts(reset, regFile),
		regFile:       regFile,
		store:         store,
		logger:        logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Phase returns the reset phase.
func (p *Pipeline) Phase() signal.Phase {
	return p.reset.Phase()
}

// AssertReset drives reset low. It takes effect immediately: outputs hold
// and no write or PC update happens until reset is released.
func (p *Pipeline) AssertReset() {
	p.reset.Assert()
	p.logger.Debug("reset asserted")
}

// ReleaseReset drives reset high. The front end runs from the next edge.
func (p *Pipeline) ReleaseReset() {
	p.reset.Release()
}

// SetJump drives the jump target with the select asserted.
func (p *Pipeline) SetJump(target uint32) {
	p.pcUnit.SetJump(target)
	p.settle(false)
}

// ClearJump deasserts the jump select.
func (p *Pipeline) ClearJump() {
	p.pcUnit.ClearJump()
	p.settle(false)
}

// SetWriteBack drives the register file write port. The write happens on
// the next edge.
func (p *Pipeline) SetWriteBack(wa uint8, wda uint32, regWrite bool) {
	p.registerPorts.SetWrite(wa, wda, regWrite)
}

// PC returns the current program counter.
func (p *Pipeline) PC() uint32 {
	return p.pcUnit.PC()
}

// PCAddr returns the sequential fetch address.
func (p *Pipeline) PCAddr() uint32 {
	return p.pcUnit.PCAddr()
}

// GetIFID returns the IF/ID pipeline register.
func (p *Pipeline) GetIFID() *IFIDRegister {
	return &p.ifid
}

// RegFile returns the register file.
func (p *Pipeline) RegFile() *emu.RegFile {
	return p.regFile
}

// Outputs returns the downstream interface values.
func (p *Pipeline) Outputs() Outputs {
	return Outputs{
		Valid:       p.reset.Running() && p.ifid.Valid,
		IFID:        p.ifid.Value(),
		PC:          p.pcUnit.PC(),
		PCAddr:      p.pcUnit.PCAddr(),
		Instruction: p.fetchStage.Instruction(),
		Format:      p.immGen.Format(),
		Immediate:   p.immGen.Immediate(),
		Control:     p.controlUnit.Signals(),
		RDA:         p.registerPorts.RDA(),
		RDB:         p.registerPorts.RDB(),
		Undefined:   p.controlUnit.Undefined(),
	}
}

// Stats returns front-end statistics.
func (p *Pipeline) Stats() Statistics {
	s := p.stats
	if p.useICache {
		s.FetchLatency = p.cachedFetchStage.Latency()
	}
	return s
}

// Faulted returns true once a fetch address has fallen outside the store.
func (p *Pipeline) Faulted() bool {
	return p.faulted
}

// Tick executes one clock edge.
func (p *Pipeline) Tick() {
	p.stats.Cycles++
	if !p.reset.Running() {
		p.stats.ResetCycles++
	}

	p.pcUnit.Sample()
	if p.registerPorts.Sample() {
		p.stats.SuppressedWrites++
	}

	p.pcUnit.Commit()
	if p.registerPorts.Commit() {
		p.stats.RegWrites++
	}

	if p.reset.Edge() {
		p.logger.WithField("cycle", p.stats.Cycles).Debug("reset released")
	}

	if p.useICache {
		p.cachedFetchStage.NewCycle()
	}
	p.settle(true)

	if p.reset.Running() {
		p.logger.WithFields(logrus.Fields{
			"cycle":       p.stats.Cycles,
			"pc":          p.pcUnit.PC(),
			"instruction": p.fetchStage.Instruction(),
			"immediate":   p.immGen.Immediate(),
		}).Debug("cycle")
	}
}

// RunCycles executes the front end for the specified number of cycles.
// Returns true if no fetch fault occurred.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.faulted; i++ {
		p.Tick()
	}
	return !p.faulted
}

// settle evaluates the combinational blocks once in dependency order. edge
// is true when called for a clock edge rather than an input change.
func (p *Pipeline) settle(edge bool) {
	if !p.reset.Running() {
		return
	}

	p.pcUnit.Evaluate()
	pc := p.pcUnit.PC()

	word, ok := p.fetchStage.Fetch(pc)
	if !ok {
		// An input change between edges may pass through an out-of-range
		// address; only an edge samples the settled fetch.
		if edge {
			p.faulted = true
			p.stats.FetchFaults++
			p.logger.WithFields(logrus.Fields{
				"pc":         pc,
				"store_size": p.store.Size(),
			}).Warn("fetch address outside instruction store")
		}
	} else {
		if edge {
			p.stats.Fetches++
			if p.useICache {
				p.cachedFetchStage.Access(pc)
			}
		}
	}
	if _, sel := p.pcUnit.Jump(); sel && edge {
		p.stats.Jumps++
	}

	p.immGen.Evaluate(word)

	op := insts.OpcodeOf(word)
	if !p.controlUnit.Evaluate(op) && edge {
		p.stats.UndefinedOpcodes++
		p.logger.WithFields(logrus.Fields{
			"pc":     pc,
			"word":   word,
			"opcode": uint8(op),
		}).Warn("undefined opcode, control signals hold previous values")
	}

	p.registerPorts.Read(rs1(word), rs2(word))

	p.ifid.Latch(word, pc)
}

func rs1(word uint32) uint8 {
	return uint8((word >> 15) & 0x1F)
}

func rs2(word uint32) uint8 {
	return uint8((word >> 20) & 0x1F)
}

// Reset returns the front end to its power-on state with reset asserted.
// The register file and instruction store are left untouched.
func (p *Pipeline) Reset() {
	p.reset.Assert()
	p.ifid.Clear()
	p.pcUnit.Clear()
	p.fetchStage.Clear()
	p.immGen.Clear()
	p.controlUnit.Clear()
	p.registerPorts.Clear()
	p.stats = Statistics{}
	p.faulted = false
	if p.cachedFetchStage != nil {
		p.cachedFetchStage.Reset()
	}
}

// ICacheStats returns I-cache statistics, or empty if I-cache not enabled.
func (p *Pipeline) ICacheStats() cache.Statistics {
	if p.cachedFetchStage != nil {
		return p.cachedFetchStage.CacheStats()
	}
	return cache.Statistics{}
}

// UseICache returns true if I-cache is enabled.
func (p *Pipeline) UseICache() bool {
	return p.useICache
}
