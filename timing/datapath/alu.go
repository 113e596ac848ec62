// Package datapath provides the 4-bit slice datapath of the idli core: the
// arithmetic unit, the shift unit, the rotating register file and the
// program counter unit.
//
// Every unit processes one slice per cycle. Slice 0 is the least
// significant nibble and is active in phase 0.
package datapath

import "github.com/sarchlab/idlisim/insts"

// Flags are the arithmetic unit outputs for the current slice. N, C and V
// describe the full word only after slice 3.
type Flags struct {
	Z bool
	N bool
	C bool
	V bool
}

// ALU is the 4-bit arithmetic unit. Its only state is the carry between
// slices and the zero-so-far latch.
type ALU struct {
	carry uint8
	zero  bool
}

// NewALU creates a new arithmetic unit.
func NewALU() *ALU {
	return &ALU{}
}

// Slice computes one result slice. carryIn is used in phase 0; later phases
// continue from the carry of the previous slice.
func (a *ALU) Slice(phase uint8, op insts.ALUOp, left, right uint8, invert, carryIn bool) (uint8, Flags) {
	if phase == 0 {
		a.carry = 0
		if carryIn {
			a.carry = 1
		}
		a.zero = true
	}

	left &= 0xF
	right &= 0xF
	if invert {
		right = ^right & 0xF
	}

	var out uint8
	var f Flags

	switch op {
	case insts.ALUAdd:
		c := a.carry
		var c3 uint8
		for i := uint(0); i < 4; i++ {
			x := (left >> i) & 1
			y := (right >> i) & 1
			out |= (x ^ y ^ c) << i
			if i == 3 {
				c3 = c
			}
			c = (x & y) | (c & (x ^ y))
		}
		a.carry = c
		f.C = c == 1
		f.V = c3 != c
	case insts.ALUAnd:
		out = left & right
	case insts.ALUOr:
		out = left | right
	case insts.ALUXor:
		out = left ^ right
	}

	a.zero = a.zero && out == 0
	f.Z = a.zero
	f.N = out&0x8 != 0

	return out, f
}
