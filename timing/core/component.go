package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Component drives a Core from an akita engine, one tick per cycle.
type Component struct {
	*sim.TickingComponent

	core *Core
}

// NewComponent wraps c as a ticking component clocked at freq.
func NewComponent(name string, engine sim.Engine, freq sim.Freq, c *Core) *Component {
	comp := &Component{core: c}
	comp.TickingComponent = sim.NewTickingComponent(name, engine, freq, comp)
	return comp
}

// Tick advances the core by one cycle. The component stops ticking once
// the core halts.
func (comp *Component) Tick() bool {
	return comp.core.Tick()
}

// Core returns the wrapped core.
func (comp *Component) Core() *Core {
	return comp.core
}

// RunOnEngine runs c to completion on a serial akita engine at freqMHz.
func RunOnEngine(c *Core, freqMHz float64) error {
	engine := sim.NewSerialEngine()
	comp := NewComponent("Core", engine, sim.Freq(freqMHz)*sim.MHz, c)
	comp.TickLater()

	if err := engine.Run(); err != nil {
		return err
	}
	return c.Err()
}
