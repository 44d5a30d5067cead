// Package instr defines the instruction set of the 3-bit register machine and
// decodes raw instruction streams into programs.
package instr

import (
	"errors"
	"fmt"
	"strings"
)

// MaxRaw is the largest value a raw program word may hold.
const MaxRaw = 7

// Decoding errors.
var (
	ErrMalformedProgram = errors.New("malformed program")
	ErrInvalidOpcode    = errors.New("invalid opcode")
	ErrInvalidOperand   = errors.New("invalid operand")
)

// Inst is a single decoded instruction.
type Inst struct {
	Opcode  Opcode
	Operand Operand
}

func (i Inst) String() string {
	return fmt.Sprintf("%s %s", i.Opcode, i.Operand)
}

// Program is an immutable sequence of decoded instructions together with the
// raw stream it was decoded from. The zero value is an empty program.
//
// A Program can be shared between goroutines; nothing mutates it after
// Decode returns.
type Program struct {
	insts []Inst
	raw   []uint8
}

// Decode turns a flat stream of (opcode, operand) pairs into a program.
func Decode(raw []uint8) (Program, error) {
	if len(raw)%2 != 0 {
		return Program{}, fmt.Errorf(
			"%w: odd number of words (%d)", ErrMalformedProgram, len(raw))
	}

	insts := make([]Inst, 0, len(raw)/2)
	for pc := 0; pc < len(raw); pc += 2 {
		op := Opcode(raw[pc])
		if !op.Valid() {
			return Program{}, fmt.Errorf(
				"%w: %d at word %d", ErrInvalidOpcode, raw[pc], pc)
		}

		operand, err := decodeOperand(op, raw[pc+1])
		if err != nil {
			return Program{}, fmt.Errorf("word %d: %w", pc+1, err)
		}

		insts = append(insts, Inst{Opcode: op, Operand: operand})
	}

	return Program{
		insts: insts,
		raw:   append([]uint8(nil), raw...),
	}, nil
}

// MustDecode is like Decode but panics on error. It is meant for programs
// embedded in code.
func MustDecode(raw ...uint8) Program {
	p, err := Decode(raw)
	if err != nil {
		panic(err)
	}

	return p
}

// Len returns the number of instructions.
func (p Program) Len() int {
	return len(p.insts)
}

// At returns the instruction at index pc.
func (p Program) At(pc int) Inst {
	return p.insts[pc]
}

// Insts returns a copy of the instructions.
func (p Program) Insts() []Inst {
	return append([]Inst(nil), p.insts...)
}

// Raw returns a copy of the raw stream the program was decoded from.
func (p Program) Raw() []uint8 {
	return append([]uint8(nil), p.raw...)
}

// Equal reports whether two programs have the same instructions.
func (p Program) Equal(o Program) bool {
	if len(p.insts) != len(o.insts) {
		return false
	}

	for i := range p.insts {
		if p.insts[i] != o.insts[i] {
			return false
		}
	}

	return true
}

// String disassembles the program, one instruction per line.
func (p Program) String() string {
	var b strings.Builder
	for pc, inst := range p.insts {
		fmt.Fprintf(&b, "%02d: %s\n", pc, inst)
	}

	return b.String()
}

// FormatRaw renders words the way programs are written in input files.
func FormatRaw(words []uint8) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = fmt.Sprintf("%d", w)
	}

	return strings.Join(parts, ",")
}
