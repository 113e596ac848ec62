// Package emu provides functional idli emulation.
//
// The emulator executes one whole instruction per step with word-wide
// arithmetic. It defines the architectural result every cycle-accurate model
// in this module must reproduce.
package emu

import "github.com/sarchlab/idlisim/insts"

// RegFile represents the idli architectural state.
type RegFile struct {
	// R holds the sixteen general-purpose registers. R[0] is never
	// written and always reads as zero.
	R [insts.NumRegs]uint16

	// PC is the address of the next instruction word.
	PC uint16

	// Pred is the predicate bit written by comparisons.
	Pred bool

	// Cond is the conditional-execution shift register.
	Cond uint8

	// Chain is the outstanding counter chain.
	Chain Chain

	// Carry is the carry-out of the last carry-producing instruction.
	Carry bool
}

// Chain records a carry or predicate chain started by a counter
// instruction.
type Chain struct {
	Kind  insts.CountKind
	Count uint8
}

// Active reports whether the chain applies to the next instruction.
func (c Chain) Active(kind insts.CountKind) bool {
	return c.Kind == kind && c.Count > 0
}

// Tick consumes one instruction from the chain.
func (c *Chain) Tick() {
	if c.Count == 0 {
		return
	}
	c.Count--
	if c.Count == 0 {
		c.Kind = insts.CountNone
	}
}

// ReadReg reads a register value. Register 0 returns 0.
func (r *RegFile) ReadReg(reg uint8) uint16 {
	if reg == insts.RegZero {
		return 0
	}
	return r.R[reg&0xF]
}

// WriteReg writes a register value. Writes to register 0 are discarded.
func (r *RegFile) WriteReg(reg uint8, value uint16) {
	if reg == insts.RegZero {
		return
	}
	r.R[reg&0xF] = value
}

// CondActive reports whether the next instruction is predicated.
func (r *RegFile) CondActive() bool {
	return r.Cond > 1
}

// CondAllows reports whether the next instruction runs under the current
// conditional-execution state and predicate.
func (r *RegFile) CondAllows() bool {
	if !r.CondActive() {
		return true
	}
	return (r.Cond&1 == 1) == r.Pred
}

// NextCond returns the conditional-execution state after an instruction
// retires. written and data describe a reload by the instruction itself.
func NextCond(cond uint8, written bool, data uint8) uint8 {
	next := cond
	if written {
		next = data
	} else if cond > 1 {
		next = cond >> 1
	}
	if next <= 1 {
		return 0
	}
	return next
}
