package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sarchlab/quinevm/instr"
	"github.com/sarchlab/quinevm/search"
	"github.com/sarchlab/quinevm/verify"
)

type searchOptions struct {
	workers      int
	attemptLimit uint64
	stepLimit    uint64
	skipLint     bool
	stats        bool
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	so := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search FILE",
		Short: "Find the smallest A that makes a program print itself",
		Long: `Search looks for the smallest non-negative initial A that, with B and C set
to zero, makes the program in FILE output its own instruction stream. The
registers in FILE are ignored. The program is linted first and refused if it
does not have the single-loop shape the search relies on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &opts.cfg

			if cmd.Flags().Changed("workers") {
				cfg.Search.Workers = so.workers
			}

			if cmd.Flags().Changed("attempt-limit") {
				cfg.Search.AttemptLimit = so.attemptLimit
			}

			if cmd.Flags().Changed("step-limit") {
				cfg.Machine.StepLimit = so.stepLimit
			}

			if so.skipLint {
				cfg.Search.Lint = false
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			_, prog, err := loadProgram(args[0])
			if err != nil {
				return err
			}

			if cfg.Search.Lint {
				issues := verify.RunLint(prog)
				for _, issue := range issues {
					slog.Warn("LintIssue", "Issue", issue.String())
				}

				if verify.HasQuineIssues(issues) {
					return fmt.Errorf("%s cannot be searched (%d lint issues), use --skip-lint to try anyway",
						args[0], len(issues))
				}
			}

			ctx, cancel := interruptible(cmd)
			defer cancel()

			searcher := search.NewBuilder().
				WithStepLimit(cfg.Machine.StepLimit).
				WithAttemptLimit(cfg.Search.AttemptLimit).
				WithWorkers(cfg.Search.Workers).
				Build()

			res, err := searcher.FindQuineSeed(ctx, prog)

			if so.stats {
				res.Stats.WriteTable(cmd.OutOrStdout())
			}

			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "A=%d\n", res.Seed)
			fmt.Fprintln(out, instr.FormatRaw(res.Output))

			return nil
		},
	}

	cmd.Flags().IntVar(&so.workers, "workers", 1,
		"Search leading digits on this many goroutines (default from config)")
	cmd.Flags().Uint64Var(&so.attemptLimit, "attempt-limit", 0,
		"Give up after this many machine runs, 0 for no limit (default from config)")
	cmd.Flags().Uint64Var(&so.stepLimit, "step-limit", search.DefaultStepLimit,
		"Maximum instructions per machine run (default from config)")
	cmd.Flags().BoolVar(&so.skipLint, "skip-lint", false,
		"Search even if the program does not have the expected loop shape")
	cmd.Flags().BoolVar(&so.stats, "stats", false,
		"Print search statistics")

	return cmd
}
