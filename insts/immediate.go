package insts

// fillStart returns the lowest immediate bit covered by sign extension for a
// format. Bits below it are the format's own field.
func fillStart(f Format) uint {
	switch f {
	case FormatI, FormatS:
		return 12
	case FormatSB:
		return 13
	default:
		// Generic fill of the reference design: bits [31:11].
		return 11
	}
}

// Immediate assembles the immediate of word on top of prev, the generator's
// previous output, and returns it with the format that was applied.
//
// Formats without an immediate mapping (R and unknown opcodes) only run the
// sign-extension fill, so the bits below the fill keep their value from
// prev.
func Immediate(word uint32, prev uint32) (uint32, Format) {
	f := OpcodeOf(word).Format()
	imm := prev

	switch f {
	case FormatI:
		// [31:20] -> imm[11:0]
		imm = setField(imm, 11, 0, word>>20)
	case FormatS:
		// [31:25] -> imm[11:5], [11:7] -> imm[4:0]
		imm = setField(imm, 11, 5, word>>25)
		imm = setField(imm, 4, 0, word>>7)
	case FormatSB:
		// 31 -> imm[12], [30:25] -> imm[10:5], 7 -> imm[11], [11:8] -> imm[4:1]
		imm = setField(imm, 12, 12, word>>31)
		imm = setField(imm, 10, 5, word>>25)
		imm = setField(imm, 11, 11, word>>7)
		imm = setField(imm, 4, 1, word>>8)
		imm = setField(imm, 0, 0, 0)
	}

	lo := fillStart(f)
	if word>>31 == 0 {
		imm = setField(imm, 31, int(lo), 0)
	} else {
		imm = setField(imm, 31, int(lo), ^uint32(0))
	}

	return imm, f
}

// setField writes the low bits of v into [hi:lo] of x.
func setField(x uint32, hi, lo int, v uint32) uint32 {
	width := uint(hi - lo + 1)
	m := uint32((uint64(1)<<width)-1) << uint(lo)
	return (x &^ m) | ((v << uint(lo)) & m)
}
