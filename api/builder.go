package api

import (
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/quinevm/core"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine    sim.Engine
	freq      sim.Freq
	stepLimit uint64
	monitor   *monitoring.Monitor
}

// WithEngine sets the engine. Without one, Build creates a serial engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core the driver runs programs on.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithStepLimit caps the number of cycles a program may run.
func (b DriverBuilder) WithStepLimit(n uint64) DriverBuilder {
	b.stepLimit = n
	return b
}

// WithMonitor makes Build register the engine and the core with an akita
// monitor so that they show up in the web interface.
func (b DriverBuilder) WithMonitor(monitor *monitoring.Monitor) DriverBuilder {
	b.monitor = monitor
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	freq := b.freq
	if freq == 0 {
		freq = 1 * sim.GHz
	}

	d := &driverImpl{
		engine: engine,
	}
	d.core = core.NewBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithStepLimit(b.stepLimit).
		Build(name + ".Core")

	if b.monitor != nil {
		b.monitor.RegisterEngine(engine)
		b.monitor.RegisterComponent(d.core)
	}

	return d
}
