package core

import (
	"fmt"

	"github.com/sarchlab/quinevm/instr"
)

// Registers holds the three machine registers.
type Registers struct {
	A, B, C int64
}

// Get returns the value of a register.
func (r Registers) Get(reg instr.Register) int64 {
	switch reg {
	case instr.RegA:
		return r.A
	case instr.RegB:
		return r.B
	case instr.RegC:
		return r.C
	default:
		panic(fmt.Sprintf("invalid register %d", reg))
	}
}

// Set updates a register.
func (r *Registers) Set(reg instr.Register, v int64) {
	switch reg {
	case instr.RegA:
		r.A = v
	case instr.RegB:
		r.B = v
	case instr.RegC:
		r.C = v
	default:
		panic(fmt.Sprintf("invalid register %d", reg))
	}
}

func (r Registers) String() string {
	return fmt.Sprintf("A=%d B=%d C=%d", r.A, r.B, r.C)
}
