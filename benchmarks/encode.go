package benchmarks

import "github.com/sarchlab/rvfront/insts"

// Helper functions for building programs

// EncodeRType encodes an R-format instruction with funct3 = funct7 = 0.
func EncodeRType(rd, rs1, rs2 uint8) uint32 {
	inst := uint32(insts.OpcodeRType)
	inst |= uint32(rd&0x1F) << 7
	inst |= uint32(rs1&0x1F) << 15
	inst |= uint32(rs2&0x1F) << 20
	return inst
}

// EncodeLoad encodes a word load rd = mem[rs1 + imm] (I-format).
func EncodeLoad(rd, rs1 uint8, imm int32) uint32 {
	inst := uint32(insts.OpcodeIType)
	inst |= uint32(rd&0x1F) << 7
	inst |= 2 << 12 // funct3: word
	inst |= uint32(rs1&0x1F) << 15
	inst |= (uint32(imm) & 0xFFF) << 20
	return inst
}

// EncodeStore encodes a word store mem[rs1 + imm] = rs2 (S-format).
func EncodeStore(rs1, rs2 uint8, imm int32) uint32 {
	u := uint32(imm)
	inst := uint32(insts.OpcodeSType)
	inst |= (u & 0x1F) << 7
	inst |= 2 << 12 // funct3: word
	inst |= uint32(rs1&0x1F) << 15
	inst |= uint32(rs2&0x1F) << 20
	inst |= ((u >> 5) & 0x7F) << 25
	return inst
}

// EncodeBranch encodes a beq rs1, rs2, offset (SB-format). offset is in
// bytes and must be even.
func EncodeBranch(rs1, rs2 uint8, offset int32) uint32 {
	u := uint32(offset)
	inst := uint32(insts.OpcodeSBType)
	inst |= ((u >> 11) & 0x1) << 7
	inst |= ((u >> 1) & 0xF) << 8
	inst |= uint32(rs1&0x1F) << 15
	inst |= uint32(rs2&0x1F) << 20
	inst |= ((u >> 5) & 0x3F) << 25
	inst |= ((u >> 12) & 0x1) << 31
	return inst
}
