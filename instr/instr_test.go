package instr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/quinevm/instr"
)

var _ = Describe("Decode", func() {
	It("should decode opcode and operand pairs", func() {
		p, err := instr.Decode([]uint8{0, 1, 5, 4, 3, 0})

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Len()).To(Equal(3))
		Expect(p.At(0)).To(Equal(instr.Inst{
			Opcode: instr.ShiftRightA, Operand: instr.Imm(1)}))
		Expect(p.At(1)).To(Equal(instr.Inst{
			Opcode: instr.Emit, Operand: instr.Ref(instr.RegA)}))
		Expect(p.At(2)).To(Equal(instr.Inst{
			Opcode: instr.JumpIfANonZero, Operand: instr.Imm(0)}))
	})

	It("should decode the empty stream", func() {
		p, err := instr.Decode(nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Len()).To(BeZero())
	})

	DescribeTable("combo operands",
		func(raw uint8, want instr.Operand) {
			for _, op := range []instr.Opcode{
				instr.ShiftRightA, instr.TruncateIntoB, instr.Emit,
				instr.ShiftRightB, instr.ShiftRightC,
			} {
				p, err := instr.Decode([]uint8{uint8(op), raw})
				Expect(err).NotTo(HaveOccurred())
				Expect(p.At(0).Operand).To(Equal(want))
			}
		},
		Entry("0 is a literal", uint8(0), instr.Imm(0)),
		Entry("3 is a literal", uint8(3), instr.Imm(3)),
		Entry("4 is register A", uint8(4), instr.Ref(instr.RegA)),
		Entry("5 is register B", uint8(5), instr.Ref(instr.RegB)),
		Entry("6 is register C", uint8(6), instr.Ref(instr.RegC)),
	)

	It("should keep literal operands for bxl, jnz and bxc", func() {
		for _, op := range []instr.Opcode{
			instr.XorImmediateIntoB, instr.JumpIfANonZero, instr.XorBWithC,
		} {
			for raw := uint8(0); raw <= 7; raw++ {
				p, err := instr.Decode([]uint8{uint8(op), raw})
				Expect(err).NotTo(HaveOccurred())
				Expect(p.At(0).Operand).To(Equal(instr.Imm(raw)))
			}
		}
	})

	It("should reject an odd number of words", func() {
		_, err := instr.Decode([]uint8{0, 1, 5})

		Expect(err).To(MatchError(instr.ErrMalformedProgram))
	})

	It("should reject combo operand 7", func() {
		_, err := instr.Decode([]uint8{2, 7})

		Expect(err).To(MatchError(instr.ErrInvalidOperand))
	})

	It("should reject operands above 7", func() {
		_, err := instr.Decode([]uint8{1, 8})

		Expect(err).To(MatchError(instr.ErrInvalidOperand))
	})

	It("should reject opcodes above 7", func() {
		_, err := instr.Decode([]uint8{8, 0})

		Expect(err).To(MatchError(instr.ErrInvalidOpcode))
	})

	It("should be pure", func() {
		raw := []uint8{2, 4, 1, 1, 7, 5, 4, 0, 0, 3, 1, 6, 5, 5, 3, 0}

		p1, err1 := instr.Decode(raw)
		p2, err2 := instr.Decode(raw)

		Expect(err1).NotTo(HaveOccurred())
		Expect(err2).NotTo(HaveOccurred())
		Expect(p1.Equal(p2)).To(BeTrue())
		Expect(p1).To(Equal(p2))
		Expect(raw).To(Equal([]uint8{2, 4, 1, 1, 7, 5, 4, 0, 0, 3, 1, 6, 5, 5, 3, 0}))
	})

	It("should not share the raw stream with the caller", func() {
		raw := []uint8{0, 3, 5, 4, 3, 0}
		p := instr.MustDecode(raw...)

		raw[0] = 7
		Expect(p.Raw()).To(Equal([]uint8{0, 3, 5, 4, 3, 0}))

		out := p.Raw()
		out[1] = 1
		Expect(p.Raw()[1]).To(Equal(uint8(3)))
	})
})

var _ = Describe("Disassembly", func() {
	It("should render mnemonics and operands", func() {
		p := instr.MustDecode(2, 4, 1, 1, 7, 5, 4, 0, 5, 5, 3, 0)

		Expect(p.String()).To(Equal(
			"00: bst A\n" +
				"01: bxl 1\n" +
				"02: cdv B\n" +
				"03: bxc 0\n" +
				"04: out B\n" +
				"05: jnz 0\n"))
	})

	It("should round trip operands to raw words", func() {
		p := instr.MustDecode(0, 3, 5, 6, 1, 7)

		Expect(p.At(0).Operand.Raw()).To(Equal(uint8(3)))
		Expect(p.At(1).Operand.Raw()).To(Equal(uint8(6)))
		Expect(p.At(2).Operand.Raw()).To(Equal(uint8(7)))
	})

	It("should format raw words with commas", func() {
		Expect(instr.FormatRaw([]uint8{0, 3, 5, 4, 3, 0})).To(Equal("0,3,5,4,3,0"))
		Expect(instr.FormatRaw(nil)).To(Equal(""))
	})

	It("should name unknown opcodes", func() {
		Expect(instr.Opcode(9).String()).To(Equal("op(9)"))
		Expect(instr.Emit.String()).To(Equal("out"))
	})
})
