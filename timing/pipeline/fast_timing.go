package pipeline

import (
	"fmt"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/latency"
)

// FastTiming estimates cycle counts by running the functional emulator and
// charging each instruction its cost from the latency table.
//
// The estimate matches the cycle-level core for programs that never wait on
// the UART. UART stalls are not modelled.
type FastTiming struct {
	emulator     *emu.Emulator
	decoder      *insts.Decoder
	latencyTable *latency.Table

	halted     bool
	cycleCount uint64
	instrCount uint64
	skipped    uint64

	maxInstructions uint64 // 0 means no limit
}

// FastTimingOption configures fast timing simulation.
type FastTimingOption func(*FastTiming)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) FastTimingOption {
	return func(ft *FastTiming) {
		ft.maxInstructions = max
	}
}

// NewFastTiming creates a fast timing simulation around an emulator whose
// program is already loaded.
func NewFastTiming(emulator *emu.Emulator, latencyTable *latency.Table, opts ...FastTimingOption) *FastTiming {
	ft := &FastTiming{
		emulator:     emulator,
		decoder:      insts.NewDecoder(),
		latencyTable: latencyTable,
		cycleCount:   latency.RedirectBeats * latency.CyclesPerBeat,
	}

	for _, opt := range opts {
		opt(ft)
	}

	return ft
}

// Run executes until the program halts.
func (ft *FastTiming) Run() error {
	for !ft.halted {
		if err := ft.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// Tick executes one instruction and charges its cost.
func (ft *FastTiming) Tick() error {
	if ft.halted {
		return nil
	}

	if ft.maxInstructions > 0 && ft.instrCount >= ft.maxInstructions {
		ft.halted = true
		return emu.ErrMaxInstructions
	}

	pc := ft.emulator.RegFile().PC
	inst, _ := ft.decoder.Decode(ft.emulator.Memory().Read(pc))

	result := ft.emulator.Step()
	switch {
	case result.Err != nil:
		ft.halted = true
		return result.Err
	case result.Stalled:
		ft.halted = true
		return fmt.Errorf("pc 0x%04x: %w", pc, emu.ErrInputExhausted)
	}

	beats := ft.latencyTable.GetBeats(inst, result.Skipped)
	if result.Halted {
		// The halting branch never refills.
		beats = uint64(inst.Size())
		ft.halted = true
	}

	ft.cycleCount += beats * latency.CyclesPerBeat
	ft.instrCount++
	if result.Skipped {
		ft.skipped++
	}

	return nil
}

// Halted reports whether the program has stopped.
func (ft *FastTiming) Halted() bool {
	return ft.halted
}

// Stats returns the estimated statistics.
func (ft *FastTiming) Stats() Statistics {
	return Statistics{
		Cycles:       ft.cycleCount,
		Beats:        ft.cycleCount / latency.CyclesPerBeat,
		Instructions: ft.instrCount,
		Skipped:      ft.skipped,
	}
}
