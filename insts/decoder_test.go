package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rvfront/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("Opcode classification", func() {
		It("should classify the four major opcodes", func() {
			Expect(insts.OpcodeRType.Format()).To(Equal(insts.FormatR))
			Expect(insts.OpcodeIType.Format()).To(Equal(insts.FormatI))
			Expect(insts.OpcodeSType.Format()).To(Equal(insts.FormatS))
			Expect(insts.OpcodeSBType.Format()).To(Equal(insts.FormatSB))
		})

		It("should classify anything else as unknown", func() {
			Expect(insts.Opcode(0).Format()).To(Equal(insts.FormatUnknown))
			Expect(insts.Opcode(0x13).Format()).To(Equal(insts.FormatUnknown))
		})

		It("should ignore bit 7 when extracting the opcode", func() {
			Expect(insts.OpcodeOf(0x000000E3)).To(Equal(insts.OpcodeSBType))
		})

		It("should name formats", func() {
			Expect(insts.FormatSB.String()).To(Equal("SBTYPE"))
			Expect(insts.Format(99).String()).To(Equal("UNKNOWN"))
		})
	})

	Describe("Decode", func() {
		It("should decode register fields of an R-format word", func() {
			// add x3, x1, x2
			inst := decoder.Decode(0x002081B3)

			Expect(inst.Format).To(Equal(insts.FormatR))
			Expect(inst.Rd).To(Equal(uint8(3)))
			Expect(inst.Rs1).To(Equal(uint8(1)))
			Expect(inst.Rs2).To(Equal(uint8(2)))
		})

		It("should decode a load", func() {
			// lw x5, 12(x10)
			inst := decoder.Decode(0x00C52283)

			Expect(inst.Format).To(Equal(insts.FormatI))
			Expect(inst.Opcode).To(Equal(insts.OpcodeIType))
			Expect(inst.Rd).To(Equal(uint8(5)))
			Expect(inst.Rs1).To(Equal(uint8(10)))
			Expect(inst.Imm).To(Equal(uint32(12)))
		})
	})

	Describe("Immediate", func() {
		Context("I format", func() {
			It("should map [31:20] to imm[11:0] with zero fill", func() {
				imm, f := insts.Immediate(0x2BC00003, 0)
				Expect(f).To(Equal(insts.FormatI))
				Expect(imm).To(Equal(uint32(0x000002BC)))
			})

			It("should sign-extend when bit 31 is set", func() {
				imm, _ := insts.Immediate(0xABC00003, 0)
				Expect(imm).To(Equal(uint32(0xFFFFFABC)))
			})
		})

		Context("S format", func() {
			It("should join [31:25] and [11:7] with zero fill", func() {
				imm, f := insts.Immediate(0x54000AA3, 0xFFFFFFFF)
				Expect(f).To(Equal(insts.FormatS))
				Expect(imm).To(Equal(uint32(0x00000555)))
				Expect(imm >> 12).To(BeZero())
			})

			It("should fill everything above bit 11 with ones", func() {
				imm, _ := insts.Immediate(0xD4000AA3, 0)
				Expect(imm).To(Equal(uint32(0xFFFFFD55)))
				Expect(imm >> 12).To(Equal(uint32(0xFFFFF)))
			})
		})

		Context("SB format", func() {
			It("should scatter the branch offset and fill above bit 12", func() {
				// bit31=1, [30:25]=000001, bit7=1, [11:8]=0001
				imm, f := insts.Immediate(0x820001E3, 0)
				Expect(f).To(Equal(insts.FormatSB))
				Expect(imm).To(Equal(uint32(0xFFFFF822)))
				Expect(int32(imm)).To(Equal(int32(-2014)))
			})

			It("should keep imm[11] from bit 7", func() {
				imm, _ := insts.Immediate(0x000000E3, 0)
				Expect(imm).To(Equal(uint32(0x800)))
			})

			It("should always produce an even offset", func() {
				imm, _ := insts.Immediate(0xFFFFFFE3, 0xFFFFFFFF)
				Expect(imm & 1).To(BeZero())
				Expect(imm).To(Equal(uint32(0xFFFFFFFE)))
			})
		})

		Context("formats without a mapping", func() {
			It("should only run the sign fill and keep the low bits stale", func() {
				imm, f := insts.Immediate(0x80000000, 0x123)
				Expect(f).To(Equal(insts.FormatUnknown))
				Expect(imm).To(Equal(uint32(0xFFFFF923)))
			})

			It("should clear the fill for a positive R-format word", func() {
				imm, f := insts.Immediate(0x002081B3, 0xFFFFFFFF)
				Expect(f).To(Equal(insts.FormatR))
				Expect(imm).To(Equal(uint32(0x000007FF)))
			})
		})
	})
})

var _ = Describe("Control", func() {
	It("should produce the R-format vector", func() {
		c, ok := insts.Control(insts.OpcodeRType)
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(insts.ControlSignals{
			ALUSrc: false, MemToReg: false, RegWrite: true,
			MemRead: false, MemWrite: false, Branch: false, ALUOp: 2,
		}))
	})

	It("should produce the I-format vector", func() {
		c, ok := insts.Control(insts.OpcodeIType)
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(insts.ControlSignals{
			ALUSrc: true, MemToReg: true, RegWrite: true,
			MemRead: true, MemWrite: false, Branch: false, ALUOp: 0,
		}))
	})

	It("should produce the S-format vector", func() {
		c, ok := insts.Control(insts.OpcodeSType)
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(insts.ControlSignals{
			ALUSrc: true, MemToReg: false, RegWrite: false,
			MemRead: false, MemWrite: true, Branch: false, ALUOp: 0,
		}))
	})

	It("should produce the SB-format vector", func() {
		c, ok := insts.Control(insts.OpcodeSBType)
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(insts.ControlSignals{
			ALUSrc: false, MemToReg: false, RegWrite: false,
			MemRead: false, MemWrite: false, Branch: true, ALUOp: 7,
		}))
	})

	It("should report unknown opcodes", func() {
		_, ok := insts.Control(0x13)
		Expect(ok).To(BeFalse())
	})

	It("should render flags and ALUOp", func() {
		c, _ := insts.Control(insts.OpcodeIType)
		Expect(c.String()).To(Equal("111100/0"))
		c, _ = insts.Control(insts.OpcodeSBType)
		Expect(c.String()).To(Equal("000001/7"))
	})
})
