package verify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
)

// Runner executes a program once. core.Machine satisfies it.
type Runner interface {
	Run(ctx context.Context, prog instr.Program, regs core.Registers) (core.Result, error)
}

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Program      instr.Program
	Registers    core.Registers
	LintIssues   []Issue
	StructIssues []Issue
	QuineIssues  []Issue
	Run          core.Result
	RunErr       error
	RunOK        bool
}

// GenerateReport runs lint and one execution of the program, returns a
// report. A nil runner skips the execution stage.
func GenerateReport(
	ctx context.Context,
	prog instr.Program,
	regs core.Registers,
	runner Runner,
) *VerificationReport {
	report := &VerificationReport{
		Program:   prog,
		Registers: regs,
	}

	report.LintIssues = RunLint(prog)
	report.StructIssues = FilterIssues(report.LintIssues, IssueStruct)
	report.QuineIssues = FilterIssues(report.LintIssues, IssueQuine)

	if runner == nil {
		return report
	}

	report.Run, report.RunErr = runner.Run(ctx, prog, regs)
	report.RunOK = report.RunErr == nil

	return report
}

// Clean reports whether lint found nothing and the run, if any, succeeded.
func (r *VerificationReport) Clean() bool {
	return len(r.LintIssues) == 0 && r.RunErr == nil
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	progTable := table.NewWriter()
	progTable.SetTitle(fmt.Sprintf("Program (%d instructions)", r.Program.Len()))
	progTable.AppendHeader(table.Row{"PC", "Raw", "Instruction"})

	for pc, inst := range r.Program.Insts() {
		progTable.AppendRow(table.Row{
			pc,
			fmt.Sprintf("%d,%d", uint8(inst.Opcode), inst.Operand.Raw()),
			inst.String(),
		})
	}

	fmt.Fprintln(w, progTable.Render())

	lintTable := table.NewWriter()
	lintTable.SetTitle(fmt.Sprintf("Lint: %d struct, %d quine",
		len(r.StructIssues), len(r.QuineIssues)))
	lintTable.AppendHeader(table.Row{"Type", "PC", "Message"})

	for _, issue := range r.LintIssues {
		pc := "-"
		if issue.PC >= 0 {
			pc = fmt.Sprint(issue.PC)
		}

		lintTable.AppendRow(table.Row{issue.Type, pc, issue.Message})
	}

	if len(r.LintIssues) == 0 {
		lintTable.AppendRow(table.Row{"-", "-", "No lint issues found"})
	}

	fmt.Fprintln(w, lintTable.Render())

	// No runner was given.
	if !r.RunOK && r.RunErr == nil {
		return
	}

	status := "OK"
	if r.RunErr != nil {
		status = r.RunErr.Error()
	}

	runTable := table.NewWriter()
	runTable.SetTitle(fmt.Sprintf("Run from %s", r.Registers))
	runTable.AppendHeader(table.Row{"Status", "Steps", "Final", "Output"})
	runTable.AppendRow(table.Row{
		status,
		r.Run.Steps,
		r.Run.Registers.String(),
		instr.FormatRaw(r.Run.Output),
	})

	fmt.Fprintln(w, runTable.Render())
}

// SaveReportToFile writes the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	r.WriteReport(f)

	return nil
}
