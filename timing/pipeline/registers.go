// Package pipeline provides the fetch/decode front end for cycle-accurate
// simulation.
package pipeline

import (
	"github.com/sarchlab/rvfront/insts"
	"github.com/sarchlab/rvfront/timing/signal"
)

// IFIDRegBits is the width of the combined IF/ID value.
const IFIDRegBits = 2 * insts.CPUBits

// IFIDRegister holds state between Fetch and Decode stages.
//
// It follows the reference timing: the value is refreshed every time the
// front end settles rather than on a clock edge, so it always mirrors the
// current instruction and PC.
type IFIDRegister struct {
	// Valid indicates if this pipeline register has been driven since reset.
	Valid bool

	// PC is the program counter of the fetched instruction.
	PC uint32

	// InstructionWord is the raw 32-bit instruction word.
	InstructionWord uint32
}

// Latch drives the register from the fetched instruction and current PC.
func (r *IFIDRegister) Latch(word, pc uint32) {
	r.Valid = true
	r.InstructionWord = word
	r.PC = pc
}

// Value returns the combined value: the instruction in bits [31:0] and the
// PC in bits [63:32].
func (r *IFIDRegister) Value() uint64 {
	s := signal.New(IFIDRegBits, 0)
	s.SetSlice(insts.CPUBits-1, 0, uint64(r.InstructionWord))
	s.SetSlice(IFIDRegBits-1, insts.CPUBits, uint64(r.PC))
	return s.Value()
}

// Clear resets the IF/ID register to empty state.
func (r *IFIDRegister) Clear() {
	r.Valid = false
	r.PC = 0
	r.InstructionWord = 0
}
