// Command quinevm runs programs for the three-bit machine and searches for
// the register A value that makes a program print itself.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/quinevm/config"
	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
	"github.com/sarchlab/quinevm/program"
)

// errReported is returned by commands that have already explained the
// failure on stdout and only need a non-zero exit code.
var errReported = errors.New("reported")

type globalOptions struct {
	configPath string
	logLevel   string

	cfg config.Config
}

func main() {
	start := time.Now()
	atexit.Register(func() {
		slog.Debug("Exit", "Elapsed", time.Since(start))
	})

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}

		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "quinevm",
		Short: "Three-bit machine emulator and quine seed search",
		Long: `quinevm executes programs for a machine with three integer registers and
eight three-bit instructions, and finds the smallest initial value of
register A that makes a program output its own instruction stream.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a quinevm.toml file (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"Log level: trace, debug, info, warn or error")

	rootCmd.AddCommand(newRunCmd(opts))
	rootCmd.AddCommand(newSearchCmd(opts))
	rootCmd.AddCommand(newLintCmd(opts))

	return rootCmd
}

// setup loads the configuration and installs the process logger.
func (o *globalOptions) setup(cmd *cobra.Command) error {
	var err error

	if o.configPath != "" {
		o.cfg, err = config.Load(o.configPath)
	} else {
		o.cfg, err = config.FindAndLoad(".")
	}

	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") {
		o.cfg.Log.Level = o.logLevel
	}

	level, err := config.ParseLevel(o.cfg.Log.Level)
	if err != nil {
		return err
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey && a.Value.Any() == core.LevelTrace {
				a.Value = slog.StringValue("TRACE")
			}

			return a
		},
	})
	slog.SetDefault(slog.New(handler))

	if o.cfg.Path != "" {
		slog.Debug("ConfigLoaded", "Path", o.cfg.Path)
	}

	return nil
}

// loadProgram reads an input file and decodes its program.
func loadProgram(path string) (program.Input, instr.Program, error) {
	in, err := program.LoadFile(path)
	if err != nil {
		return program.Input{}, instr.Program{}, err
	}

	prog, err := in.Decode()
	if err != nil {
		return program.Input{}, instr.Program{}, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("ProgramLoaded",
		"Path", path,
		"Len", prog.Len(),
		"A", in.Registers.A,
		"B", in.Registers.B,
		"C", in.Registers.C,
	)

	return in, prog, nil
}

// interruptible returns a context that is cancelled on the first interrupt.
func interruptible(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}
