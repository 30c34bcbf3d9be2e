package pipeline

import (
	"github.com/sarchlab/rvfront/emu"
	"github.com/sarchlab/rvfront/insts"
	"github.com/sarchlab/rvfront/timing/signal"
)

// FetchStage reads instruction words from the instruction store.
type FetchStage struct {
	reset *signal.ResetLine
	store *emu.InstructionStore

	instruction uint32
}

// NewFetchStage creates a new fetch stage.
func NewFetchStage(reset *signal.ResetLine, store *emu.InstructionStore) *FetchStage {
	return &FetchStage{
		reset: reset,
		store: store,
	}
}

// Fetch reads the instruction at the given word address. For an address
// outside the store the previous instruction is held and ok is false.
func (s *FetchStage) Fetch(addr uint32) (uint32, bool) {
	if !s.reset.Running() {
		return s.instruction, true
	}
	word, ok := s.store.Read(addr)
	if !ok {
		return s.instruction, false
	}
	s.instruction = word
	return word, true
}

// Instruction returns the last fetched word.
func (s *FetchStage) Instruction() uint32 {
	return s.instruction
}

// Clear drops the fetched word.
func (s *FetchStage) Clear() {
	s.instruction = 0
}

// ImmGen extracts and sign-extends the immediate of the fetched instruction.
//
// Opcodes without an immediate mapping only refresh the sign-extension bits;
// the bits below keep their previous value.
type ImmGen struct {
	reset *signal.ResetLine

	imm    signal.Signal
	format insts.Format
}

// NewImmGen creates an immediate generator with a zero output.
func NewImmGen(reset *signal.ResetLine) *ImmGen {
	return &ImmGen{
		reset: reset,
		imm:   signal.New(insts.CPUBits, 0),
	}
}

// Evaluate recomputes the immediate from word.
func (g *ImmGen) Evaluate(word uint32) {
	if !g.reset.Running() {
		return
	}
	imm, f := insts.Immediate(word, uint32(g.imm.Value()))
	g.imm.Set(uint64(imm))
	g.format = f
}

// Immediate returns the generator output.
func (g *ImmGen) Immediate() uint32 {
	return uint32(g.imm.Value())
}

// Format returns the format applied by the last evaluation.
func (g *ImmGen) Format() insts.Format {
	return g.format
}

// Clear zeroes the output.
func (g *ImmGen) Clear() {
	g.imm.Set(0)
	g.format = insts.FormatUnknown
}

// ControlUnit maps the opcode to the control vector.
//
// An opcode outside the table leaves the vector at its previous value and
// raises Undefined.
type ControlUnit struct {
	reset *signal.ResetLine

	signals   insts.ControlSignals
	undefined bool
}

// NewControlUnit creates a control unit with every signal deasserted.
func NewControlUnit(reset *signal.ResetLine) *ControlUnit {
	return &ControlUnit{reset: reset}
}

// Evaluate recomputes the control vector for op. It returns false when op
// is not recognised.
func (c *ControlUnit) Evaluate(op insts.Opcode) bool {
	if !c.reset.Running() {
		return true
	}
	signals, ok := insts.Control(op)
	c.undefined = !ok
	if ok {
		c.signals = signals
	}
	return ok
}

// Signals returns the control vector.
func (c *ControlUnit) Signals() insts.ControlSignals {
	return c.signals
}

// Undefined reports whether the last evaluated opcode was not recognised.
func (c *ControlUnit) Undefined() bool {
	return c.undefined
}

// Clear deasserts every signal.
func (c *ControlUnit) Clear() {
	c.signals = insts.ControlSignals{}
	c.undefined = false
}

// RegisterPorts are the two read ports and the write port of the register
// file.
//
// Reads are combinational and skip index 0, so a read of register 0 leaves
// the port at its previous value. The write is sampled before the clock
// edge and applied on it, only with RegWrite asserted and a non-zero
// address.
type RegisterPorts struct {
	reset   *signal.ResetLine
	regFile *emu.RegFile

	rda, rdb uint32

	wa       uint8
	wda      uint32
	regWrite bool

	staged     bool
	stagedAddr uint8
	stagedData uint32
}

// NewRegisterPorts creates the ports of regFile.
func NewRegisterPorts(reset *signal.ResetLine, regFile *emu.RegFile) *RegisterPorts {
	return &RegisterPorts{
		reset:   reset,
		regFile: regFile,
	}
}

// Read refreshes rda and rdb from registers ra and rb.
func (p *RegisterPorts) Read(ra, rb uint8) {
	if !p.reset.Running() {
		return
	}
	if ra != 0 {
		p.rda = p.regFile.ReadReg(ra)
	}
	if rb != 0 {
		p.rdb = p.regFile.ReadReg(rb)
	}
}

// RDA returns read port A.
func (p *RegisterPorts) RDA() uint32 {
	return p.rda
}

// RDB returns read port B.
func (p *RegisterPorts) RDB() uint32 {
	return p.rdb
}

// SetWrite drives the write port inputs. They hold until driven again.
func (p *RegisterPorts) SetWrite(wa uint8, wda uint32, regWrite bool) {
	p.wa = wa
	p.wda = wda
	p.regWrite = regWrite
}

// Sample stages the write for the coming edge. It returns true when a
// requested write was suppressed because reset is asserted.
func (p *RegisterPorts) Sample() (suppressed bool) {
	requested := p.regWrite && p.wa > 0
	if !p.reset.Running() {
		return requested
	}
	if requested {
		p.staged = true
		p.stagedAddr = p.wa
		p.stagedData = p.wda
	}
	return false
}

// Commit applies the staged write and reports whether a register changed.
func (p *RegisterPorts) Commit() bool {
	if !p.staged {
		return false
	}
	p.staged = false
	return p.regFile.WriteReg(p.stagedAddr, p.stagedData)
}

// Clear zeroes the read ports and deasserts the write port.
func (p *RegisterPorts) Clear() {
	p.rda, p.rdb = 0, 0
	p.wa, p.wda, p.regWrite = 0, 0, false
	p.staged = false
}
