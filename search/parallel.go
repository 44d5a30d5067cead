package search

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/quinevm/instr"
)

const numLeadingDigits = 8

type leadOutcome struct {
	seed  int64
	found bool
	err   error
	ws    walkState
}

// searchParallel gives each leading digit its own walk. Walks share nothing
// but the program and the attempt counter. Once a digit succeeds, walks on
// larger digits are cancelled since they cannot produce a smaller seed.
func (s *Searcher) searchParallel(
	ctx context.Context,
	prog instr.Program,
	target []uint8,
) (int64, Stats, error) {
	attempts := new(atomic.Uint64)
	outcomes := make([]leadOutcome, numLeadingDigits)

	ctxs := make([]context.Context, numLeadingDigits)
	cancels := make([]context.CancelFunc, numLeadingDigits)
	for d := range ctxs {
		ctxs[d], cancels[d] = context.WithCancel(ctx)
	}

	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	var (
		mu   sync.Mutex
		best = numLeadingDigits
		g    errgroup.Group
	)

	g.SetLimit(s.workers)

	for d := 0; d < numLeadingDigits; d++ {
		g.Go(func() error {
			o := leadOutcome{ws: walkState{attempts: attempts}}
			if err := ctxs[d].Err(); err != nil {
				o.err = err
				outcomes[d] = o

				return nil
			}

			o.seed, o.found, o.err = s.walk(
				ctxs[d], prog, target, int64(d), int64(d), &o.ws)
			outcomes[d] = o

			if !o.found {
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			if d < best {
				best = d
				for e := d + 1; e < numLeadingDigits; e++ {
					cancels[e]()
				}
			}

			return nil
		})
	}

	// Walk errors are kept per digit so that they resolve in digit order.
	_ = g.Wait()

	stats := Stats{Workers: s.workers, Attempts: attempts.Load()}
	for _, o := range outcomes {
		stats.Backtracks += o.ws.backtracks
		if o.ws.maxDepth > stats.MaxDepth {
			stats.MaxDepth = o.ws.maxDepth
		}
	}

	for _, o := range outcomes {
		if o.found {
			return o.seed, stats, nil
		}

		if o.err != nil {
			return 0, stats, o.err
		}
	}

	return 0, stats, ErrNoSolution
}
