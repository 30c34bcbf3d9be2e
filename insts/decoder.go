package insts

// CPUBits is the word width shared by addresses, instructions and registers.
const CPUBits = 32

// OpcodeMask selects the major opcode field, bits [6:0].
const OpcodeMask = 0x7F

// Opcode is the major opcode field of an instruction word.
type Opcode uint8

// Major opcodes recognised by the front end.
const (
	OpcodeRType  Opcode = 0b0110011 // register-register ALU
	OpcodeIType  Opcode = 0b0000011 // load
	OpcodeSType  Opcode = 0b0100011 // store
	OpcodeSBType Opcode = 0b1100011 // conditional branch
)

// Format represents an instruction encoding format.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatR
	FormatI
	FormatS
	FormatSB
)

var formatNames = [...]string{
	FormatUnknown: "UNKNOWN",
	FormatR:       "RTYPE",
	FormatI:       "ITYPE",
	FormatS:       "STYPE",
	FormatSB:      "SBTYPE",
}

// String returns the format name.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return formatNames[FormatUnknown]
}

// OpcodeOf returns the major opcode of an instruction word.
func OpcodeOf(word uint32) Opcode {
	return Opcode(word & OpcodeMask)
}

// Format returns the encoding format selected by the opcode.
func (o Opcode) Format() Format {
	switch o {
	case OpcodeRType:
		return FormatR
	case OpcodeIType:
		return FormatI
	case OpcodeSType:
		return FormatS
	case OpcodeSBType:
		return FormatSB
	default:
		return FormatUnknown
	}
}

// Instruction represents a decoded instruction word.
type Instruction struct {
	Word   uint32 // Raw instruction word
	Opcode Opcode // Major opcode, bits [6:0]
	Format Format // Encoding format

	Rd  uint8 // Destination register, bits [11:7]
	Rs1 uint8 // First source register, bits [19:15]
	Rs2 uint8 // Second source register, bits [24:20]

	// Imm is the sign-extended immediate. It is only meaningful for the I, S
	// and SB formats.
	Imm uint32
}

// Decoder decodes instruction words.
type Decoder struct{}

// NewDecoder creates a new decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit instruction word.
func (d *Decoder) Decode(word uint32) *Instruction {
	op := OpcodeOf(word)
	inst := &Instruction{
		Word:   word,
		Opcode: op,
		Format: op.Format(),
		Rd:     uint8((word >> 7) & 0x1F),  // bits [11:7]
		Rs1:    uint8((word >> 15) & 0x1F), // bits [19:15]
		Rs2:    uint8((word >> 20) & 0x1F), // bits [24:20]
	}
	inst.Imm, _ = Immediate(word, 0)
	return inst
}
