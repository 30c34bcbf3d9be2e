// Package emu provides the architectural state owned by the front end: the
// general-purpose register file and the instruction store.
package emu

// NumRegs is the number of general-purpose registers.
const NumRegs = 32

// SeedBase is the value register 1 is seeded with; register i holds
// SeedBase+i.
const SeedBase = 10

// RegFile represents the RISC-V integer register file.
// Register 0 is hard-wired to zero: it always reads as 0 and ignores writes.
type RegFile struct {
	// X holds registers x0-x31. X[0] is never written.
	X [NumRegs]uint32
}

// NewRegFile creates a zero-initialised register file.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// NewSeededRegFile creates a register file where register i holds
// SeedBase+i for i >= 1.
func NewSeededRegFile() *RegFile {
	r := &RegFile{}
	r.Seed()
	return r
}

// Seed loads the simulation seed values into x1-x31.
func (r *RegFile) Seed() {
	for i := 1; i < NumRegs; i++ {
		r.X[i] = uint32(SeedBase + i)
	}
}

// Clear zeroes every register.
func (r *RegFile) Clear() {
	r.X = [NumRegs]uint32{}
}

// ReadReg reads a register value. Register 0 and indices >= 32 return 0.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	if reg == 0 || reg >= NumRegs {
		return 0
	}
	return r.X[reg]
}

// WriteReg writes a value to a register and reports whether the write took
// effect. Writes to register 0 or indices >= 32 are ignored.
func (r *RegFile) WriteReg(reg uint8, value uint32) bool {
	if reg == 0 || reg >= NumRegs {
		return false
	}
	r.X[reg] = value
	return true
}

// Snapshot returns a copy of all registers.
func (r *RegFile) Snapshot() [NumRegs]uint32 {
	return r.X
}
