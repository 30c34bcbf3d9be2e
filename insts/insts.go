// Package insts provides RISC-V instruction format definitions and decoding
// for the fetch/decode front end.
//
// This package implements the pure decode logic used by the pipeline:
//   - Opcode classification into the R, I, S and SB formats
//   - Register-field extraction (rd, rs1, rs2)
//   - Format-dependent immediate assembly with sign extension
//   - The opcode to control-signal table
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xABC00003) // I-format, imm = 0xABC
//	fmt.Printf("Format: %v, Imm: %#x\n", inst.Format, inst.Imm)
package insts
