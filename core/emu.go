package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/quinevm/instr"
)

// Execution errors.
var (
	ErrInvalidJumpTarget = errors.New("invalid jump target")
	ErrInvalidShift      = errors.New("invalid shift amount")
	ErrStepLimitExceeded = errors.New("step limit exceeded")
)

type coreState struct {
	PC        int
	Registers Registers
	Output    []uint8
	Steps     uint64
	Code      instr.Program
}

func (s *coreState) halted() bool {
	return s.PC >= s.Code.Len()
}

type instFunc func(i instEmulator, operand int64, state *coreState) error

var instFuncs = [instr.NumOpcodes]instFunc{
	instr.ShiftRightA:       instEmulator.runAdv,
	instr.XorImmediateIntoB: instEmulator.runBxl,
	instr.TruncateIntoB:     instEmulator.runBst,
	instr.JumpIfANonZero:    instEmulator.runJnz,
	instr.XorBWithC:         instEmulator.runBxc,
	instr.Emit:              instEmulator.runOut,
	instr.ShiftRightB:       instEmulator.runBdv,
	instr.ShiftRightC:       instEmulator.runCdv,
}

type instEmulator struct {
}

// RunInst executes one instruction. The operand is resolved against the
// registers as they are before the instruction, and the PC is advanced before
// the instruction takes effect so that jumps overwrite it.
func (i instEmulator) RunInst(inst instr.Inst, state *coreState) error {
	if !inst.Opcode.Valid() {
		panic(fmt.Sprintf("unknown opcode %d at PC %d", inst.Opcode, state.PC))
	}

	operand := i.resolve(inst.Operand, state)

	if TraceEnabled() {
		Trace("Inst",
			"PC", state.PC,
			"Inst", inst.String(),
			"Operand", operand,
			"A", state.Registers.A,
			"B", state.Registers.B,
			"C", state.Registers.C,
		)
	}

	state.PC++
	state.Steps++

	return instFuncs[inst.Opcode](i, operand, state)
}

// Step runs the instruction at the PC unless the program has halted or the
// step limit is used up. A stepLimit of zero means no limit.
func (i instEmulator) Step(state *coreState, stepLimit uint64) (done bool, err error) {
	if state.halted() {
		return true, nil
	}

	if stepLimit > 0 && state.Steps >= stepLimit {
		return true, fmt.Errorf("%w: %d steps at PC %d",
			ErrStepLimitExceeded, state.Steps, state.PC)
	}

	err = i.RunInst(state.Code.At(state.PC), state)
	if err != nil {
		return true, err
	}

	return false, nil
}

func (i instEmulator) resolve(o instr.Operand, state *coreState) int64 {
	if o.IsRegister() {
		return state.Registers.Get(o.Reg)
	}

	return int64(o.Value)
}

func (i instEmulator) runAdv(operand int64, state *coreState) error {
	v, err := shiftDiv(state.Registers.A, operand)
	if err != nil {
		return err
	}

	state.Registers.A = v

	return nil
}

func (i instEmulator) runBdv(operand int64, state *coreState) error {
	v, err := shiftDiv(state.Registers.A, operand)
	if err != nil {
		return err
	}

	state.Registers.B = v

	return nil
}

func (i instEmulator) runCdv(operand int64, state *coreState) error {
	v, err := shiftDiv(state.Registers.A, operand)
	if err != nil {
		return err
	}

	state.Registers.C = v

	return nil
}

func (i instEmulator) runBxl(operand int64, state *coreState) error {
	state.Registers.B ^= operand
	return nil
}

func (i instEmulator) runBst(operand int64, state *coreState) error {
	state.Registers.B = operand & 0b111
	return nil
}

func (i instEmulator) runJnz(operand int64, state *coreState) error {
	if state.Registers.A == 0 {
		return nil
	}

	if operand%2 != 0 {
		return fmt.Errorf("%w: %d at PC %d", ErrInvalidJumpTarget, operand, state.PC-1)
	}

	state.PC = int(operand / 2)

	return nil
}

func (i instEmulator) runBxc(_ int64, state *coreState) error {
	state.Registers.B ^= state.Registers.C
	return nil
}

func (i instEmulator) runOut(operand int64, state *coreState) error {
	state.Output = append(state.Output, uint8(operand&0b111))
	return nil
}

// shiftDiv computes v / 2^k, truncating toward zero.
func shiftDiv(v, k int64) (int64, error) {
	if k < 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidShift, k)
	}

	if k >= 63 {
		if k == 63 && v == math.MinInt64 {
			return -1, nil
		}

		return 0, nil
	}

	return v / (int64(1) << k), nil
}
