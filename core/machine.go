package core

import (
	"context"
	"io"

	"github.com/sarchlab/quinevm/instr"
)

// ctxCheckInterval is how many steps run between context checks.
const ctxCheckInterval = 1 << 12

// Result is the observable outcome of one execution.
type Result struct {
	Output    []uint8
	Registers Registers
	Steps     uint64
}

// Machine runs programs to completion. It keeps no state between runs, so a
// single Machine can serve concurrent callers.
type Machine struct {
	emu       instEmulator
	stepLimit uint64
	dump      io.Writer
}

// StepLimit returns the maximum number of instructions per run, or zero if
// runs are unbounded.
func (m *Machine) StepLimit() uint64 {
	return m.stepLimit
}

// Run executes prog from PC 0 with the given initial registers until the PC
// leaves the program. On error the partial result is returned alongside it.
func (m *Machine) Run(
	ctx context.Context,
	prog instr.Program,
	regs Registers,
) (Result, error) {
	state := coreState{
		Registers: regs,
		Code:      prog,
	}

	for {
		if state.Steps%ctxCheckInterval == ctxCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return resultOf(&state), err
			}
		}

		if m.dump != nil {
			PrintState(m.dump, &state)
		}

		done, err := m.emu.Step(&state, m.stepLimit)
		if err != nil {
			LogState(&state)
			return resultOf(&state), err
		}

		if done {
			break
		}
	}

	LogState(&state)

	return resultOf(&state), nil
}

// Execute runs prog without a step limit and returns its output.
func Execute(prog instr.Program, regs Registers) ([]uint8, error) {
	m := MachineBuilder{}.Build()

	res, err := m.Run(context.Background(), prog, regs)

	return res.Output, err
}

func resultOf(state *coreState) Result {
	return Result{
		Output:    state.Output,
		Registers: state.Registers,
		Steps:     state.Steps,
	}
}
