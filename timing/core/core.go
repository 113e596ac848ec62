// Package core provides the cycle-accurate idli core model.
// It wraps the execution controller to provide a high-level interface.
package core

import (
	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/pipeline"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions retired.
	Instructions uint64
	// Stalls is the number of beats that did not execute.
	Stalls uint64
	// Redirects is the number of memory engine restarts.
	Redirects uint64
}

// CPI returns the cycles per instruction.
func (s Stats) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// Core represents a cycle-accurate idli core.
type Core struct {
	// Pipeline is the underlying execution controller.
	Pipeline *pipeline.Pipeline
}

// NewCore creates a new Core.
func NewCore(opts ...pipeline.PipelineOption) *Core {
	return &Core{
		Pipeline: pipeline.NewPipeline(opts...),
	}
}

// LoadProgram writes a program into memory and starts fetching at entry.
func (c *Core) LoadProgram(entry uint16, words []uint16) {
	c.Pipeline.LoadProgram(entry, words)
}

// SetPC restarts fetch at pc.
func (c *Core) SetPC(pc uint16) {
	c.Pipeline.SetPC(pc)
}

// Tick executes one cycle. It returns false once the core has halted.
func (c *Core) Tick() bool {
	c.Pipeline.Tick()
	return !c.Pipeline.Halted()
}

// Halted returns true if the core has stopped.
func (c *Core) Halted() bool {
	return c.Pipeline.Halted()
}

// Err returns the error that stopped the core, if any.
func (c *Core) Err() error {
	return c.Pipeline.Err()
}

// State returns the architectural state between beats.
func (c *Core) State() emu.RegFile {
	return c.Pipeline.ArchState()
}

// Registers returns r0..r15.
func (c *Core) Registers() [insts.NumRegs]uint16 {
	return c.Pipeline.ArchState().R
}

// PC returns the address of the next instruction word.
func (c *Core) PC() uint16 {
	return c.Pipeline.PC()
}

// Predicate returns the predicate bit.
func (c *Core) Predicate() bool {
	return c.Pipeline.ArchState().Pred
}

// Pins returns the general purpose pins. Inputs may be driven between
// ticks.
func (c *Core) Pins() *pipeline.Pins {
	return c.Pipeline.Pins()
}

// Send queues words for the host to transmit to the core.
func (c *Core) Send(words ...uint16) {
	c.Pipeline.Sender().Send(words...)
}

// Output returns the words the core has sent over the UART.
func (c *Core) Output() []uint16 {
	return c.Pipeline.Output()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Pipeline.Stats()
	return Stats{
		Cycles:       s.Cycles,
		Instructions: s.Instructions,
		Stalls:       s.FetchStalls + s.ImmediateStalls + s.MemStalls + s.UARTStalls,
		Redirects:    s.Redirects,
	}
}

// Run executes the core until it halts.
func (c *Core) Run() error {
	return c.Pipeline.Run()
}

// RunCycles executes the core for the specified number of cycles.
// Returns true if still running, false if halted.
func (c *Core) RunCycles(cycles uint64) bool {
	return c.Pipeline.RunCycles(cycles)
}

// Reset clears the control state and restarts at address 0.
func (c *Core) Reset() {
	c.Pipeline.Reset()
}
