// Package search finds the smallest initial value of register A that makes a
// program print itself.
//
// The search assumes the program is a single loop that emits one value per
// iteration and shifts A right by three bits before looping. Under that
// assumption each octal digit of A, from the most significant down, fixes one
// more trailing output value, so digits can be chosen one at a time with
// backtracking instead of enumerating every candidate.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/sarchlab/quinevm/core"
	"github.com/sarchlab/quinevm/instr"
)

// MaxTargetLen is the longest target whose seed still fits in an int64.
const MaxTargetLen = 21

// DefaultStepLimit bounds every machine run made by the search.
const DefaultStepLimit = 1 << 20

// Search errors.
var (
	ErrNoSolution           = errors.New("no solution")
	ErrSeedOverflow         = errors.New("seed does not fit in 64 bits")
	ErrAttemptLimitExceeded = errors.New("attempt limit exceeded")
	ErrVerificationFailed   = errors.New("seed does not reproduce the target")
)

// Executor runs a program once. Implementations must be safe for concurrent
// use when the searcher has more than one worker.
type Executor interface {
	Run(ctx context.Context, prog instr.Program, regs core.Registers) (core.Result, error)
}

// Result is the outcome of a successful search.
type Result struct {
	Seed   int64
	Output []uint8
	Stats  Stats
}

// Searcher looks for quine seeds.
type Searcher struct {
	exec         Executor
	attemptLimit uint64
	workers      int
}

type walkState struct {
	attempts   *atomic.Uint64
	backtracks uint64
	maxDepth   int
}

// FindQuineSeed searches for the seed that makes prog print its own raw
// stream.
func (s *Searcher) FindQuineSeed(ctx context.Context, prog instr.Program) (Result, error) {
	return s.FindMinimalSeed(ctx, prog, prog.Raw())
}

// FindMinimalSeed returns the smallest non-negative A that, with B and C
// zero, makes prog output exactly target.
func (s *Searcher) FindMinimalSeed(
	ctx context.Context,
	prog instr.Program,
	target []uint8,
) (Result, error) {
	if len(target) > MaxTargetLen {
		return Result{}, fmt.Errorf("%w: target has %d values, at most %d supported",
			ErrSeedOverflow, len(target), MaxTargetLen)
	}

	var (
		seed  int64
		stats Stats
		err   error
	)

	switch {
	case len(target) == 0:
		seed, stats, err = s.searchEmpty(ctx, prog)
	case s.workers > 1:
		seed, stats, err = s.searchParallel(ctx, prog, target)
	default:
		seed, stats, err = s.searchSequential(ctx, prog, target)
	}

	if err != nil {
		return Result{Stats: stats}, err
	}

	res, err := s.exec.Run(ctx, prog, core.Registers{A: seed})
	if err != nil {
		return Result{Seed: seed, Stats: stats}, err
	}

	if !suffixMatches(res.Output, target, len(target)) {
		return Result{Seed: seed, Stats: stats}, fmt.Errorf(
			"%w: A=%d printed %s", ErrVerificationFailed, seed, instr.FormatRaw(res.Output))
	}

	slog.Info("QuineSeedFound",
		"Seed", seed,
		"Attempts", stats.Attempts,
		"Backtracks", stats.Backtracks,
	)

	return Result{Seed: seed, Output: res.Output, Stats: stats}, nil
}

func (s *Searcher) searchEmpty(ctx context.Context, prog instr.Program) (int64, Stats, error) {
	res, err := s.exec.Run(ctx, prog, core.Registers{})
	stats := Stats{Attempts: 1, Workers: 1}

	if err != nil {
		return 0, stats, err
	}

	if len(res.Output) != 0 {
		return 0, stats, fmt.Errorf("%w: A=0 already prints %s",
			ErrNoSolution, instr.FormatRaw(res.Output))
	}

	return 0, stats, nil
}

func (s *Searcher) searchSequential(
	ctx context.Context,
	prog instr.Program,
	target []uint8,
) (int64, Stats, error) {
	ws := walkState{attempts: new(atomic.Uint64)}

	seed, found, err := s.walk(ctx, prog, target, 0, 7, &ws)
	stats := ws.stats(1)

	if err != nil {
		return 0, stats, err
	}

	if !found {
		return 0, stats, ErrNoSolution
	}

	return seed, stats, nil
}

// walk runs the digit-by-digit backtracking search with the leading digit
// restricted to [lo, hi]. The candidate carries one octal digit per matched
// output value; the lowest digit is the one being tried.
func (s *Searcher) walk(
	ctx context.Context,
	prog instr.Program,
	target []uint8,
	lo, hi int64,
	ws *walkState,
) (int64, bool, error) {
	candidate := lo
	matched := 1

	if ws.maxDepth < matched {
		ws.maxDepth = matched
	}

	exhausted := func() bool {
		if matched == 1 {
			return candidate >= hi
		}

		return candidate&0b111 == 0b111
	}

	for {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}

		n := ws.attempts.Add(1)
		if s.attemptLimit > 0 && n > s.attemptLimit {
			return 0, false, fmt.Errorf("%w: %d", ErrAttemptLimitExceeded, s.attemptLimit)
		}

		res, err := s.exec.Run(ctx, prog, core.Registers{A: candidate})
		if err != nil {
			return 0, false, fmt.Errorf("A=%d: %w", candidate, err)
		}

		if suffixMatches(res.Output, target, matched) {
			if matched == len(target) {
				return candidate, true, nil
			}

			candidate <<= 3
			matched++

			if matched > ws.maxDepth {
				ws.maxDepth = matched
			}

			slog.Debug("DigitCommitted", "Depth", matched, "Candidate", candidate)

			continue
		}

		for exhausted() {
			if matched == 1 {
				return 0, false, nil
			}

			candidate >>= 3
			matched--
			ws.backtracks++

			core.Trace("Backtrack", "Depth", matched, "Candidate", candidate)
		}

		candidate++
	}
}

// suffixMatches reports whether out has exactly n values and they equal the
// last n values of target.
func suffixMatches(out, target []uint8, n int) bool {
	if len(out) != n || n > len(target) {
		return false
	}

	tail := target[len(target)-n:]
	for i := range out {
		if out[i] != tail[i] {
			return false
		}
	}

	return true
}

func (ws *walkState) stats(workers int) Stats {
	return Stats{
		Attempts:   ws.attempts.Load(),
		Backtracks: ws.backtracks,
		MaxDepth:   ws.maxDepth,
		Workers:    workers,
	}
}
