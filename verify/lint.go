package verify

import (
	"fmt"

	"github.com/sarchlab/quinevm/instr"
)

// RunLint performs static lint checks on a program.
// It validates control flow (STRUCT) and the loop shape that the seed search
// relies on (QUINE). Returns a list of issues found, or empty list if no
// issues.
func RunLint(prog instr.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkJumps(prog)...)
	issues = append(issues, checkQuineShape(prog)...)

	return issues
}

// checkJumps flags jnz targets that cannot land on an instruction boundary.
// A target equal to the program length is an explicit halt and is allowed.
func checkJumps(prog instr.Program) []Issue {
	var issues []Issue

	for pc, inst := range prog.Insts() {
		if inst.Opcode != instr.JumpIfANonZero {
			continue
		}

		target := int(inst.Operand.Value)

		if target%2 != 0 {
			issues = append(issues, Issue{
				Type:    IssueStruct,
				PC:      pc,
				Message: fmt.Sprintf("Jump target %d is odd and would fault when taken", target),
				Details: map[string]interface{}{"target": target},
			})

			continue
		}

		if target/2 > prog.Len() {
			issues = append(issues, Issue{
				Type: IssueStruct,
				PC:   pc,
				Message: fmt.Sprintf("Jump target %d lands past the end of a %d-instruction program",
					target, prog.Len()),
				Details: map[string]interface{}{
					"target": target,
					"len":    prog.Len(),
				},
			})
		}
	}

	return issues
}

func checkQuineShape(prog instr.Program) []Issue {
	if prog.Len() == 0 {
		return []Issue{{
			Type:    IssueQuine,
			PC:      -1,
			Message: "Program is empty",
		}}
	}

	var (
		issues []Issue
		outs   []int
		advs   []int
		jumps  []int
	)

	for pc, inst := range prog.Insts() {
		switch inst.Opcode {
		case instr.Emit:
			outs = append(outs, pc)
		case instr.ShiftRightA:
			advs = append(advs, pc)

			if inst.Operand != instr.Imm(3) {
				issues = append(issues, Issue{
					Type:    IssueQuine,
					PC:      pc,
					Message: fmt.Sprintf("A is shifted by %s instead of 3 bits", inst.Operand),
					Details: map[string]interface{}{"operand": inst.Operand.String()},
				})
			}
		case instr.JumpIfANonZero:
			jumps = append(jumps, pc)
		}
	}

	if len(outs) != 1 {
		issues = append(issues, countIssue("out", outs))
	}

	if len(advs) != 1 {
		issues = append(issues, countIssue("adv", advs))
	}

	last := prog.Len() - 1
	if tail := prog.At(last); tail.Opcode != instr.JumpIfANonZero || tail.Operand.Value != 0 {
		issues = append(issues, Issue{
			Type:    IssueQuine,
			PC:      last,
			Message: fmt.Sprintf("Program ends with %s instead of jnz 0", tail),
		})
	}

	for _, pc := range jumps {
		if pc == last {
			continue
		}

		issues = append(issues, Issue{
			Type:    IssueQuine,
			PC:      pc,
			Message: "Jump inside the loop body",
		})
	}

	issues = append(issues, checkCarriedState(prog)...)

	return issues
}

func countIssue(mnemonic string, pcs []int) Issue {
	return Issue{
		Type:    IssueQuine,
		PC:      -1,
		Message: fmt.Sprintf("Found %d %s instructions, expected exactly 1", len(pcs), mnemonic),
		Details: map[string]interface{}{
			"mnemonic": mnemonic,
			"pcs":      pcs,
		},
	}
}

// checkCarriedState flags B or C being read in an iteration before the
// iteration writes it. Such a value is carried over from the previous
// iteration, so the output digits are no longer independent.
func checkCarriedState(prog instr.Program) []Issue {
	var issues []Issue

	written := map[instr.Register]bool{}
	reported := map[instr.Register]bool{}

	for pc, inst := range prog.Insts() {
		reads, writes := registerEffects(inst)

		for _, r := range reads {
			if r == instr.RegA || written[r] || reported[r] {
				continue
			}

			reported[r] = true
			issues = append(issues, Issue{
				Type:    IssueQuine,
				PC:      pc,
				Message: fmt.Sprintf("%s reads %s before the loop body sets it", inst, r),
				Details: map[string]interface{}{"register": r.String()},
			})
		}

		for _, r := range writes {
			written[r] = true
		}
	}

	return issues
}

// registerEffects lists the registers an instruction reads and writes.
func registerEffects(inst instr.Inst) (reads, writes []instr.Register) {
	if inst.Operand.IsRegister() {
		reads = append(reads, inst.Operand.Reg)
	}

	switch inst.Opcode {
	case instr.ShiftRightA:
		reads = append(reads, instr.RegA)
		writes = append(writes, instr.RegA)
	case instr.ShiftRightB:
		reads = append(reads, instr.RegA)
		writes = append(writes, instr.RegB)
	case instr.ShiftRightC:
		reads = append(reads, instr.RegA)
		writes = append(writes, instr.RegC)
	case instr.XorImmediateIntoB:
		reads = append(reads, instr.RegB)
		writes = append(writes, instr.RegB)
	case instr.TruncateIntoB:
		writes = append(writes, instr.RegB)
	case instr.XorBWithC:
		reads = append(reads, instr.RegB, instr.RegC)
		writes = append(writes, instr.RegB)
	case instr.JumpIfANonZero:
		reads = append(reads, instr.RegA)
	}

	return reads, writes
}
