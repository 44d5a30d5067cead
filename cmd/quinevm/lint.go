package main

import (
	"errors"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/spf13/cobra"

	"github.com/sarchlab/quinevm/api"
	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/verify"
)

func newLintCmd(opts *globalOptions) *cobra.Command {
	var noRun, cycles bool

	cmd := &cobra.Command{
		Use:   "lint FILE",
		Short: "Check a program and print a verification report",
		Long: `Lint checks the program in FILE for malformed jumps and for the loop shape
the seed search relies on, runs it once from the registers in FILE, and
prints a report. Exits with status 1 if any issue is found or the run fails.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if noRun && cycles {
				return errors.New("--cycles needs a run, drop --no-run")
			}

			in, prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := interruptible(cmd)
			defer cancel()

			var runner verify.Runner
			switch {
			case cycles:
				runner = api.AsRunner(api.DriverBuilder{}.
					WithEngine(sim.NewSerialEngine()).
					WithFreq(sim.Freq(opts.cfg.Machine.FreqGHz) * sim.GHz).
					WithStepLimit(opts.cfg.Machine.StepLimit).
					Build("Driver"))
			case !noRun:
				runner = core.MachineBuilder{}.
					WithStepLimit(opts.cfg.Machine.StepLimit).
					Build()
			}

			report := verify.GenerateReport(ctx, prog, in.Registers, runner)
			report.WriteReport(cmd.OutOrStdout())

			if !report.Clean() {
				return errReported
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noRun, "no-run", false, "Only run the static checks")
	cmd.Flags().BoolVar(&cycles, "cycles", false,
		"Run on the akita engine, one instruction per cycle")

	return cmd
}
