package pipeline

import (
	"github.com/sarchlab/rvfront/insts"
	"github.com/sarchlab/rvfront/timing/signal"
)

// PCUnit sequences the program counter.
//
// The adder is registered: pc_addr = pc + 1 is sampled from the pre-edge PC
// and becomes visible on the clock edge. The mux is combinational:
// pc = jump target when the select is asserted, else pc_addr.
type PCUnit struct {
	reset *signal.ResetLine

	pcAddr *signal.Register
	pc     signal.Signal

	jumpAddr uint32
	jumpSel  bool
}

// NewPCUnit creates a PC unit with pc and pc_addr at 0.
func NewPCUnit(reset *signal.ResetLine) *PCUnit {
	return &PCUnit{
		reset:  reset,
		pcAddr: signal.NewRegister(insts.CPUBits, 0),
		pc:     signal.New(insts.CPUBits, 0),
	}
}

// PC returns the mux output.
func (u *PCUnit) PC() uint32 {
	return uint32(u.pc.Value())
}

// PCAddr returns the registered sequential address.
func (u *PCUnit) PCAddr() uint32 {
	return uint32(u.pcAddr.Value())
}

// SetJump drives the jump target and asserts the select.
func (u *PCUnit) SetJump(target uint32) {
	u.jumpAddr = target
	u.jumpSel = true
}

// ClearJump deasserts the select.
func (u *PCUnit) ClearJump() {
	u.jumpSel = false
}

// Jump returns the jump target and whether the select is asserted.
func (u *PCUnit) Jump() (uint32, bool) {
	return u.jumpAddr, u.jumpSel
}

// Sample stages pc + 1 for the coming edge.
func (u *PCUnit) Sample() {
	if !u.reset.Running() {
		return
	}
	u.pcAddr.SetNext(u.pc.Value() + 1)
}

// Commit applies the staged adder output.
func (u *PCUnit) Commit() {
	u.pcAddr.Commit()
}

// Evaluate recomputes the mux output.
func (u *PCUnit) Evaluate() {
	if !u.reset.Running() {
		return
	}
	if u.jumpSel {
		u.pc.Set(uint64(u.jumpAddr))
	} else {
		u.pc.Set(u.pcAddr.Value())
	}
}

// Clear returns pc and pc_addr to 0 and deasserts the select.
func (u *PCUnit) Clear() {
	u.pcAddr.Force(0)
	u.pc.Set(0)
	u.jumpAddr = 0
	u.jumpSel = false
}
