package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/quinevm/api"
	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
	"github.com/sarchlab/quinevm/program"
	"github.com/sarchlab/quinevm/verify"
)

type runOptions struct {
	cycles     bool
	trace      bool
	monitor    bool
	stepLimit  uint64
	reportPath string
}

func newRunCmd(opts *globalOptions) *cobra.Command {
	ro := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a program and print its output",
		Long: `Run executes the program in FILE from the registers given in the file and
prints the output values joined by commas. Final registers are logged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("step-limit") {
				opts.cfg.Machine.StepLimit = ro.stepLimit
			}

			if ro.trace && ro.cycles {
				return errors.New("--trace is not available with --cycles, use --log-level trace")
			}

			if ro.monitor && !ro.cycles {
				return errors.New("--monitor needs --cycles")
			}

			in, prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := interruptible(cmd)
			defer cancel()

			return ro.run(ctx, cmd, opts, in, prog)
		},
	}

	cmd.Flags().BoolVar(&ro.cycles, "cycles", false,
		"Run on the akita engine, one instruction per cycle")
	cmd.Flags().BoolVar(&ro.trace, "trace", false,
		"Print the machine state before every instruction to stderr")
	cmd.Flags().BoolVar(&ro.monitor, "monitor", false,
		"Serve the akita web monitor during a cycle-mode run")
	cmd.Flags().Uint64Var(&ro.stepLimit, "step-limit", 0,
		"Maximum instructions to execute, 0 for no limit (default from config)")
	cmd.Flags().StringVar(&ro.reportPath, "report", "",
		"Write a verification report to this file")

	return cmd
}

func (ro *runOptions) run(
	ctx context.Context,
	cmd *cobra.Command,
	opts *globalOptions,
	in program.Input,
	prog instr.Program,
) error {
	stepLimit := opts.cfg.Machine.StepLimit

	var (
		res    core.Result
		runErr error
	)

	if ro.cycles {
		res, runErr = ro.runCycles(ctx, opts, in, prog)
	} else {
		mb := core.MachineBuilder{}.WithStepLimit(stepLimit)
		if ro.trace {
			mb = mb.WithStateDump(cmd.ErrOrStderr())
		}

		res, runErr = mb.Build().Run(ctx, prog, in.Registers)
	}

	fmt.Fprintln(cmd.OutOrStdout(), instr.FormatRaw(res.Output))

	slog.Info("RunFinished",
		"Steps", res.Steps,
		"A", res.Registers.A,
		"B", res.Registers.B,
		"C", res.Registers.C,
	)

	if ro.reportPath != "" {
		machine := core.MachineBuilder{}.WithStepLimit(stepLimit).Build()
		report := verify.GenerateReport(ctx, prog, in.Registers, machine)

		if err := report.SaveReportToFile(ro.reportPath); err != nil {
			return err
		}
	}

	return runErr
}

func (ro *runOptions) runCycles(
	ctx context.Context,
	opts *globalOptions,
	in program.Input,
	prog instr.Program,
) (core.Result, error) {
	builder := api.DriverBuilder{}.
		WithEngine(sim.NewSerialEngine()).
		WithFreq(sim.Freq(opts.cfg.Machine.FreqGHz) * sim.GHz).
		WithStepLimit(opts.cfg.Machine.StepLimit)

	var monitor *monitoring.Monitor
	if ro.monitor {
		monitor = monitoring.NewMonitor()
		builder = builder.WithMonitor(monitor)
	}

	driver := builder.Build("Driver")

	if monitor != nil {
		monitor.StartServer()
	}

	driver.MapProgram(prog, in.Registers)

	res, err := driver.Run()

	slog.Info("CycleRunFinished",
		"Cycles", res.Cycles,
		"TimeNs", res.TimeNs,
	)

	if monitor != nil {
		slog.Info("MonitorRunning", "Hint", "press Ctrl-C to exit")
		<-ctx.Done()
	}

	return core.Result{
		Output:    res.Output,
		Registers: res.Registers,
		Steps:     res.Cycles,
	}, err
}
