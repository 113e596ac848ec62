// Package latency provides the beat cost model of the idli core and the
// run-time configuration of the cycle-level simulator.
//
// Costs are for a core streaming without interference: every executed
// instruction takes one beat, plus one for a trailing immediate, plus the
// refill after a redirect. UART waits are not modelled.
package latency

import (
	"github.com/sarchlab/idlisim/insts"
)

// Structural timing of the core.
const (
	// CyclesPerBeat is the number of cycles one 16-bit word takes through
	// the 4-bit datapath.
	CyclesPerBeat = 4

	// ReadSetupBeats covers the command, address and dummy periods of a
	// read transaction.
	ReadSetupBeats = 4

	// WriteSetupBeats covers the command and address periods of a write
	// transaction.
	WriteSetupBeats = 3

	// RedirectBeats is the gap between a redirect and the first word of
	// the new stream reaching the instruction register.
	RedirectBeats = ReadSetupBeats + 1
)

// Table provides instruction cost lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new cost table with the default configuration.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new cost table with a custom configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetBeats returns the beats from the instruction entering the
// instruction register to the next one doing so. A skipped instruction
// only spends its own beats.
func (t *Table) GetBeats(inst *insts.Instruction, skipped bool) uint64 {
	if inst == nil {
		return 1
	}

	beats := uint64(inst.Size())
	if skipped {
		return beats
	}

	n := uint64(inst.RangeLen())
	switch {
	case t.IsLoadOp(inst):
		// Setup, first word, one beat per word, final beat, refill.
		beats += RedirectBeats + n + 1 + RedirectBeats
	case t.IsStoreOp(inst):
		beats += WriteSetupBeats + n + 1 + RedirectBeats
	case t.IsBranchOp(inst):
		beats += RedirectBeats
	}

	return beats
}

// GetLatency returns GetBeats in cycles.
func (t *Table) GetLatency(inst *insts.Instruction) uint64 {
	return t.GetBeats(inst, false) * CyclesPerBeat
}

// GetMinLatency returns the latency when conditional execution skips the
// instruction.
func (t *Table) GetMinLatency(inst *insts.Instruction) uint64 {
	return t.GetBeats(inst, true) * CyclesPerBeat
}

// GetMaxLatency returns the latency when the instruction executes.
func (t *Table) GetMaxLatency(inst *insts.Instruction) uint64 {
	return t.GetLatency(inst)
}

// IsMemoryOp returns true if the instruction accesses memory.
func (t *Table) IsMemoryOp(inst *insts.Instruction) bool {
	return inst != nil && inst.IsMemory()
}

// IsLoadOp returns true if the instruction is a load operation.
func (t *Table) IsLoadOp(inst *insts.Instruction) bool {
	if inst == nil {
		return false
	}
	switch inst.Op {
	case insts.OpLD, insts.OpLDM,
		insts.OpLDPostInc, insts.OpLDPreInc, insts.OpLDPostDec, insts.OpLDPreDec:
		return true
	}
	return false
}

// IsStoreOp returns true if the instruction is a store operation.
func (t *Table) IsStoreOp(inst *insts.Instruction) bool {
	return t.IsMemoryOp(inst) && !t.IsLoadOp(inst)
}

// IsBranchOp returns true if the instruction redirects the PC.
func (t *Table) IsBranchOp(inst *insts.Instruction) bool {
	return inst != nil && inst.IsBranch()
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
