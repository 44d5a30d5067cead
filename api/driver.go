// Package api defines the driver API for running programs in cycle mode.
package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
	"github.com/sarchlab/quinevm/verify"
)

// ErrNoProgram is returned by Run when nothing has been mapped.
var ErrNoProgram = errors.New("no program mapped")

// Result is the outcome of a cycle-mode run.
type Result struct {
	Output    []uint8
	Registers core.Registers
	Cycles    uint64
	// TimeNs is the simulated time at which the engine went idle.
	TimeNs float64
}

// Driver provides the interface to control a simulated core.
type Driver interface {
	// MapProgram maps the provided program to the core and sets the registers
	// it starts from. The core starts on the next cycle.
	MapProgram(prog instr.Program, regs core.Registers)

	// Run runs the engine until the mapped program halts or fails.
	Run() (Result, error)

	// Execute maps and runs a program, stopping with the context's error once
	// ctx is done. Use AsRunner where a functional machine is expected.
	Execute(ctx context.Context, prog instr.Program, regs core.Registers) (core.Result, error)
}

type driverImpl struct {
	engine sim.Engine
	core   *core.Core
	mapped bool
}

func (d *driverImpl) MapProgram(prog instr.Program, regs core.Registers) {
	d.core.MapProgram(prog, regs)
	d.mapped = true
}

func (d *driverImpl) Run() (Result, error) {
	if !d.mapped {
		return Result{}, ErrNoProgram
	}

	d.mapped = false

	if err := d.engine.Run(); err != nil {
		return Result{}, err
	}

	res := Result{
		Output:    d.core.Output(),
		Registers: d.core.Registers(),
		Cycles:    d.core.Cycles(),
		TimeNs:    float64(d.engine.CurrentTime() * 1e9),
	}

	slog.Debug("DriverRunFinished",
		"Name", d.core.Name(),
		"Cycles", res.Cycles,
		"TimeNs", res.TimeNs,
	)

	return res, d.core.Err()
}

func (d *driverImpl) Execute(
	ctx context.Context,
	prog instr.Program,
	regs core.Registers,
) (core.Result, error) {
	d.core.MapProgramContext(ctx, prog, regs)
	d.mapped = true

	res, err := d.Run()

	return core.Result{
		Output:    res.Output,
		Registers: res.Registers,
		Steps:     res.Cycles,
	}, err
}

type runner struct {
	driver Driver
}

func (r runner) Run(
	ctx context.Context,
	prog instr.Program,
	regs core.Registers,
) (core.Result, error) {
	return r.driver.Execute(ctx, prog, regs)
}

// AsRunner lets a driver run verification reports in cycle mode. The driver
// owns one engine, so the runner must not be used concurrently.
func AsRunner(d Driver) verify.Runner {
	return runner{driver: d}
}
