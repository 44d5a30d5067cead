package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/quinevm/instr"
)

const (
	LevelTrace slog.Level = slog.LevelDebug - 4
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// TraceEnabled reports whether the default logger emits trace records.
func TraceEnabled() bool {
	return slog.Default().Enabled(context.Background(), LevelTrace)
}

// PrintState renders the registers, the next instruction and the output so
// far as a table.
func PrintState(w io.Writer, state *coreState) {
	next := "halt"
	if !state.halted() {
		next = state.Code.At(state.PC).String()
	}

	regTable := table.NewWriter()
	regTable.SetTitle(fmt.Sprintf("State@step %d", state.Steps))
	regTable.AppendHeader(table.Row{"PC", "Next", "A", "B", "C", "Output"})
	regTable.AppendRow(table.Row{
		state.PC,
		next,
		state.Registers.A,
		state.Registers.B,
		state.Registers.C,
		instr.FormatRaw(state.Output),
	})

	fmt.Fprintln(w, regTable.Render())
}

func LogState(state *coreState) {
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}

	slog.Debug("StateCheckpoint",
		"PC", state.PC,
		"Steps", state.Steps,
		"A", state.Registers.A,
		"B", state.Registers.B,
		"C", state.Registers.C,
		"Output", instr.FormatRaw(state.Output),
	)
}
