package core

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/quinevm/instr"
)

var _ = Describe("InstEmulator", func() {
	var (
		ie instEmulator
		s  coreState
	)

	inst := func(op instr.Opcode, raw uint8) instr.Inst {
		return instr.MustDecode(uint8(op), raw).At(0)
	}

	BeforeEach(func() {
		ie = instEmulator{}
		s = coreState{
			Code: instr.MustDecode(0, 0, 0, 0, 0, 0, 0, 0),
		}
	})

	Context("Shift Instructions", func() {
		Describe("adv", func() {
			It("should divide A by a power of two", func() {
				s.Registers.A = 729
				Expect(ie.RunInst(inst(instr.ShiftRightA, 3), &s)).To(Succeed())
				Expect(s.Registers.A).To(Equal(int64(91)))
				Expect(s.PC).To(Equal(1))
				Expect(s.Steps).To(Equal(uint64(1)))
			})

			It("should read the shift amount from a register", func() {
				s.Registers.A = 100
				s.Registers.B = 2
				Expect(ie.RunInst(inst(instr.ShiftRightA, 5), &s)).To(Succeed())
				Expect(s.Registers.A).To(Equal(int64(25)))
			})

			It("should truncate toward zero", func() {
				s.Registers.A = -7
				Expect(ie.RunInst(inst(instr.ShiftRightA, 1), &s)).To(Succeed())
				Expect(s.Registers.A).To(Equal(int64(-3)))
			})

			It("should handle huge shift amounts", func() {
				s.Registers.A = math.MaxInt64
				s.Registers.C = 200
				Expect(ie.RunInst(inst(instr.ShiftRightA, 6), &s)).To(Succeed())
				Expect(s.Registers.A).To(BeZero())
			})

			It("should reject negative shift amounts", func() {
				s.Registers.A = 8
				s.Registers.B = -1
				err := ie.RunInst(inst(instr.ShiftRightA, 5), &s)
				Expect(err).To(MatchError(ErrInvalidShift))
			})
		})

		Describe("bdv and cdv", func() {
			It("should store the quotient of A in B", func() {
				s.Registers.A = 64
				Expect(ie.RunInst(inst(instr.ShiftRightB, 2), &s)).To(Succeed())
				Expect(s.Registers.B).To(Equal(int64(16)))
				Expect(s.Registers.A).To(Equal(int64(64)))
			})

			It("should store the quotient of A in C", func() {
				s.Registers.A = 64
				s.Registers.B = 3
				Expect(ie.RunInst(inst(instr.ShiftRightC, 5), &s)).To(Succeed())
				Expect(s.Registers.C).To(Equal(int64(8)))
			})
		})
	})

	Context("Bitwise Instructions", func() {
		It("bxl should xor B with a literal", func() {
			s.Registers.B = 29
			Expect(ie.RunInst(inst(instr.XorImmediateIntoB, 7), &s)).To(Succeed())
			Expect(s.Registers.B).To(Equal(int64(26)))
		})

		It("bst should keep the low three bits", func() {
			s.Registers.C = 9
			Expect(ie.RunInst(inst(instr.TruncateIntoB, 6), &s)).To(Succeed())
			Expect(s.Registers.B).To(Equal(int64(1)))
		})

		It("bxc should xor B with C and ignore its operand", func() {
			s.Registers.B = 2024
			s.Registers.C = 43690
			Expect(ie.RunInst(inst(instr.XorBWithC, 0), &s)).To(Succeed())
			Expect(s.Registers.B).To(Equal(int64(44354)))
		})
	})

	Context("Control Instructions", func() {
		It("jnz should jump to half the operand", func() {
			s.Registers.A = 1
			Expect(ie.RunInst(inst(instr.JumpIfANonZero, 6), &s)).To(Succeed())
			Expect(s.PC).To(Equal(3))
		})

		It("jnz should fall through when A is zero", func() {
			s.PC = 2
			Expect(ie.RunInst(inst(instr.JumpIfANonZero, 0), &s)).To(Succeed())
			Expect(s.PC).To(Equal(3))
		})

		It("jnz should reject an odd target", func() {
			s.Registers.A = 1
			err := ie.RunInst(inst(instr.JumpIfANonZero, 3), &s)
			Expect(err).To(MatchError(ErrInvalidJumpTarget))
		})

		It("jnz should not check the target when it does not jump", func() {
			Expect(ie.RunInst(inst(instr.JumpIfANonZero, 3), &s)).To(Succeed())
			Expect(s.PC).To(Equal(1))
		})
	})

	Context("Output Instructions", func() {
		It("out should append the low three bits of its operand", func() {
			s.Registers.B = 13
			Expect(ie.RunInst(inst(instr.Emit, 5), &s)).To(Succeed())
			Expect(ie.RunInst(inst(instr.Emit, 2), &s)).To(Succeed())
			Expect(s.Output).To(Equal([]uint8{5, 2}))
		})
	})

	Context("Step", func() {
		It("should report a halted program", func() {
			s.PC = s.Code.Len()
			done, err := ie.Step(&s, 0)
			Expect(done).To(BeTrue())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Steps).To(BeZero())
		})

		It("should stop at the step limit", func() {
			s.Steps = 10
			done, err := ie.Step(&s, 10)
			Expect(done).To(BeTrue())
			Expect(err).To(MatchError(ErrStepLimitExceeded))
		})

		It("should panic on an unknown opcode", func() {
			Expect(func() {
				_ = ie.RunInst(instr.Inst{Opcode: 8}, &s)
			}).To(Panic())
		})
	})
})

var _ = Describe("shiftDiv", func() {
	It("should divide exactly at the int64 edge", func() {
		v, err := shiftDiv(math.MinInt64, 63)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(int64(-1)))

		v, err = shiftDiv(math.MaxInt64, 62)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(int64(1)))
	})
})
