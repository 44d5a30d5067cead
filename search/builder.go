package search

import (
	"github.com/sarchlab/quinevm/core"
)

// Builder can create searchers.
type Builder struct {
	exec         Executor
	stepLimit    uint64
	attemptLimit uint64
	workers      int
}

// NewBuilder returns a builder for a sequential searcher that bounds every
// run by DefaultStepLimit.
func NewBuilder() Builder {
	return Builder{
		stepLimit: DefaultStepLimit,
		workers:   1,
	}
}

// WithExecutor sets what runs candidate programs. By default a core.Machine
// limited to the configured step limit is used.
func (b Builder) WithExecutor(exec Executor) Builder {
	b.exec = exec
	return b
}

// WithStepLimit sets the step limit of the default executor. Zero removes
// the limit, which lets programs that never halt hang the search.
func (b Builder) WithStepLimit(n uint64) Builder {
	b.stepLimit = n
	return b
}

// WithAttemptLimit caps the total number of candidate runs. Zero means no
// cap.
func (b Builder) WithAttemptLimit(n uint64) Builder {
	b.attemptLimit = n
	return b
}

// WithWorkers sets how many leading digits are explored at once.
func (b Builder) WithWorkers(n int) Builder {
	if n < 1 {
		panic("search needs at least one worker")
	}

	b.workers = n

	return b
}

// Build creates a searcher.
func (b Builder) Build() *Searcher {
	exec := b.exec
	if exec == nil {
		exec = core.MachineBuilder{}.WithStepLimit(b.stepLimit).Build()
	}

	return &Searcher{
		exec:         exec,
		attemptLimit: b.attemptLimit,
		workers:      b.workers,
	}
}
