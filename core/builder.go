package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new cores.
type Builder struct {
	engine    sim.Engine
	freq      sim.Freq
	stepLimit uint64
}

// NewBuilder returns a builder with a 1 GHz clock and no step limit.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithStepLimit caps the number of instructions a mapped program may retire.
func (b Builder) WithStepLimit(n uint64) Builder {
	b.stepLimit = n
	return b
}

// Build creates a core.
func (b Builder) Build(name string) *Core {
	if b.engine == nil {
		panic("core builder needs an engine")
	}

	c := &Core{
		stepLimit: b.stepLimit,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}

// MachineBuilder creates functional machines.
type MachineBuilder struct {
	stepLimit uint64
	dump      io.Writer
}

// WithStepLimit caps the number of instructions per run. Zero disables the
// cap.
func (b MachineBuilder) WithStepLimit(n uint64) MachineBuilder {
	b.stepLimit = n
	return b
}

// WithStateDump makes the machine print a state table to w before every
// instruction.
func (b MachineBuilder) WithStateDump(w io.Writer) MachineBuilder {
	b.dump = w
	return b
}

// Build creates a machine.
func (b MachineBuilder) Build() *Machine {
	return &Machine{
		stepLimit: b.stepLimit,
		dump:      b.dump,
	}
}
