package instr

import "fmt"

// Register names one of the three machine registers.
type Register uint8

// The machine registers.
const (
	RegA Register = iota
	RegB
	RegC
)

func (r Register) String() string {
	switch r {
	case RegA:
		return "A"
	case RegB:
		return "B"
	case RegC:
		return "C"
	default:
		return fmt.Sprintf("R%d", uint8(r))
	}
}

// OperandKind tells whether an operand is a literal or a register reference.
type OperandKind uint8

// The operand kinds.
const (
	Immediate OperandKind = iota
	RegisterRef
)

// Operand is a decoded operand. Value is meaningful for Immediate operands,
// Reg for RegisterRef operands.
type Operand struct {
	Kind  OperandKind
	Value uint8
	Reg   Register
}

// Imm returns a literal operand.
func Imm(v uint8) Operand {
	return Operand{Kind: Immediate, Value: v}
}

// Ref returns an operand that reads a register.
func Ref(r Register) Operand {
	return Operand{Kind: RegisterRef, Reg: r}
}

// IsRegister reports whether the operand reads a register.
func (o Operand) IsRegister() bool {
	return o.Kind == RegisterRef
}

// Raw returns the operand in its encoded form.
func (o Operand) Raw() uint8 {
	if o.Kind == RegisterRef {
		return uint8(o.Reg) + 4
	}

	return o.Value
}

func (o Operand) String() string {
	if o.Kind == RegisterRef {
		return o.Reg.String()
	}

	return fmt.Sprintf("%d", o.Value)
}

// decodeOperand resolves a raw operand for the given opcode.
func decodeOperand(op Opcode, raw uint8) (Operand, error) {
	if raw > MaxRaw {
		return Operand{}, fmt.Errorf("%w: %d for %s", ErrInvalidOperand, raw, op)
	}

	if !op.UsesComboOperand() {
		return Imm(raw), nil
	}

	switch {
	case raw <= 3:
		return Imm(raw), nil
	case raw <= 6:
		return Ref(Register(raw - 4)), nil
	default:
		return Operand{}, fmt.Errorf(
			"%w: combo operand %d is reserved (%s)", ErrInvalidOperand, raw, op)
	}
}
