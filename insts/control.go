package insts

import "strconv"

// ControlSignals is the control vector consumed by the later stages.
type ControlSignals struct {
	ALUSrc   bool  // second ALU operand is the immediate
	MemToReg bool  // write-back value comes from memory
	RegWrite bool  // instruction writes rd
	MemRead  bool  // load
	MemWrite bool  // store
	Branch   bool  // conditional branch
	ALUOp    uint8 // ALU operation class
}

var controlTable = map[Opcode]ControlSignals{
	OpcodeRType:  {RegWrite: true, ALUOp: 2},
	OpcodeIType:  {ALUSrc: true, MemToReg: true, RegWrite: true, MemRead: true},
	OpcodeSType:  {ALUSrc: true, MemWrite: true},
	OpcodeSBType: {Branch: true, ALUOp: 7},
}

// Control returns the control vector for an opcode. The boolean is false for
// opcodes outside the table.
func Control(op Opcode) (ControlSignals, bool) {
	c, ok := controlTable[op]
	return c, ok
}

// String renders the vector as its flag bits followed by ALUOp, in the order
// ALUSrc MemToReg RegWrite MemRead MemWrite Branch.
func (c ControlSignals) String() string {
	bits := []bool{c.ALUSrc, c.MemToReg, c.RegWrite, c.MemRead, c.MemWrite, c.Branch}
	buf := make([]byte, 0, len(bits)+4)
	for _, b := range bits {
		if b {
			buf = append(buf, '1')
		} else {
			buf = append(buf, '0')
		}
	}
	buf = append(buf, '/')
	buf = strconv.AppendUint(buf, uint64(c.ALUOp), 10)
	return string(buf)
}
