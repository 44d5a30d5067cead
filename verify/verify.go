// Package verify provides debugging tools for checking programs before they
// are handed to the seed search.
//
// Two stages are available:
//
// 1. Static Lint (lint.go): fast checks that need no execution
//   - STRUCT checks: jump targets that are odd or land past the end
//   - QUINE checks: the loop shape the seed search depends on
//
// 2. Report (report.go): lint results combined with one run of the program
//   - Output, final registers and step count, or the error that stopped it
//
// # Quine Shape
//
// The seed search assumes a single loop that
//   - emits exactly one value per iteration (one out),
//   - drops exactly one octal digit of A per iteration (one adv 3),
//   - loops back with a single trailing jnz 0,
//   - derives B and C from A inside the iteration instead of carrying them
//     over from the previous one.
//
// Programs that break any of these may still run, but the search is not
// guaranteed to find their smallest seed.
package verify

import (
	"fmt"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Control flow error (odd or out-of-range jump)
	IssueQuine  IssueType = "QUINE"  // Program does not have the searchable loop shape
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or QUINE
	PC      int                    // Instruction index (-1 if program-wide)
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

func (i Issue) String() string {
	if i.PC < 0 {
		return fmt.Sprintf("[%s] %s", i.Type, i.Message)
	}

	return fmt.Sprintf("[%s pc=%d] %s", i.Type, i.PC, i.Message)
}

// FilterIssues returns the issues of the given type, keeping their order.
func FilterIssues(issues []Issue, t IssueType) []Issue {
	var out []Issue

	for _, issue := range issues {
		if issue.Type == t {
			out = append(out, issue)
		}
	}

	return out
}

// HasQuineIssues reports whether any issue says the program cannot be
// searched.
func HasQuineIssues(issues []Issue) bool {
	return len(FilterIssues(issues, IssueQuine)) > 0
}
