package instr

import "fmt"

// Opcode is one of the eight operations understood by the machine.
type Opcode uint8

const (
	// ShiftRightA divides A by 2^operand and stores the result in A.
	ShiftRightA Opcode = iota
	// XorImmediateIntoB XORs B with a literal operand.
	XorImmediateIntoB
	// TruncateIntoB stores the low three bits of the operand in B.
	TruncateIntoB
	// JumpIfANonZero jumps to operand/2 when A is not zero.
	JumpIfANonZero
	// XorBWithC XORs B with C. The operand is read but ignored.
	XorBWithC
	// Emit appends the low three bits of the operand to the output.
	Emit
	// ShiftRightB divides A by 2^operand and stores the result in B.
	ShiftRightB
	// ShiftRightC divides A by 2^operand and stores the result in C.
	ShiftRightC
)

// NumOpcodes is the size of the instruction set.
const NumOpcodes = 8

var mnemonics = [NumOpcodes]string{
	ShiftRightA:       "adv",
	XorImmediateIntoB: "bxl",
	TruncateIntoB:     "bst",
	JumpIfANonZero:    "jnz",
	XorBWithC:         "bxc",
	Emit:              "out",
	ShiftRightB:       "bdv",
	ShiftRightC:       "cdv",
}

// Valid reports whether the opcode is part of the instruction set.
func (o Opcode) Valid() bool {
	return o < NumOpcodes
}

// UsesComboOperand reports whether the raw operand of the opcode may name a
// register. bxl, jnz and bxc always take a literal.
func (o Opcode) UsesComboOperand() bool {
	switch o {
	case XorImmediateIntoB, JumpIfANonZero, XorBWithC:
		return false
	default:
		return true
	}
}

func (o Opcode) String() string {
	if !o.Valid() {
		return fmt.Sprintf("op(%d)", uint8(o))
	}

	return mnemonics[o]
}
