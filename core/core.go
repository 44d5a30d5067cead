package core

import (
	"context"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/quinevm/instr"
)

// Core runs a program on an akita engine, retiring one instruction per
// cycle.
type Core struct {
	*sim.TickingComponent

	state     coreState
	emu       instEmulator
	stepLimit uint64
	ctx       context.Context

	finished bool
	err      error
}

// MapProgram sets the program that the core needs to run and the registers it
// starts from, and schedules the first tick.
func (c *Core) MapProgram(prog instr.Program, regs Registers) {
	c.MapProgramContext(context.Background(), prog, regs)
}

// MapProgramContext is like MapProgram, but the run stops with the context's
// error once ctx is done.
func (c *Core) MapProgramContext(ctx context.Context, prog instr.Program, regs Registers) {
	c.ctx = ctx
	c.state = coreState{
		Registers: regs,
		Code:      prog,
	}
	c.finished = false
	c.err = nil

	Trace("MapProgram",
		"Name", c.Name(),
		"Len", prog.Len(),
		"A", regs.A,
		"B", regs.B,
		"C", regs.C,
	)

	c.TickLater()
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.finished {
		return false
	}

	if c.ctx != nil && c.state.Steps%ctxCheckInterval == 0 {
		if err := c.ctx.Err(); err != nil {
			c.finished = true
			c.err = err
			LogState(&c.state)

			return false
		}
	}

	done, err := c.emu.Step(&c.state, c.stepLimit)
	if done {
		c.finished = true
		c.err = err
		LogState(&c.state)

		return false
	}

	return true
}

// Finished reports whether the program has halted or failed.
func (c *Core) Finished() bool {
	return c.finished
}

// Err returns the error that stopped the program, if any.
func (c *Core) Err() error {
	return c.err
}

// Output returns a copy of the values emitted so far.
func (c *Core) Output() []uint8 {
	return append([]uint8(nil), c.state.Output...)
}

// Registers returns the current register values.
func (c *Core) Registers() Registers {
	return c.state.Registers
}

// PC returns the index of the next instruction.
func (c *Core) PC() int {
	return c.state.PC
}

// Cycles returns the number of instructions retired.
func (c *Core) Cycles() uint64 {
	return c.state.Steps
}
