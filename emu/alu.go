package emu

import "github.com/sarchlab/idlisim/insts"

// Flags holds the condition flags of a 16-bit ALU result.
type Flags struct {
	N bool
	Z bool
	C bool
	V bool
}

// ALU computes 16-bit results with the same conventions as the sliced
// arithmetic unit: subtraction is an inverted add with carry-in, and the
// logical functions clear C and V.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Compute applies op to left and right. When invert is set the right
// operand is complemented first.
func (a *ALU) Compute(op insts.ALUOp, left, right uint16, invert, carryIn bool) (uint16, Flags) {
	if invert {
		right = ^right
	}

	var result uint16
	var flags Flags

	switch op {
	case insts.ALUAdd:
		cin := uint32(0)
		if carryIn {
			cin = 1
		}
		sum := uint32(left) + uint32(right) + cin
		result = uint16(sum)
		flags.C = sum > 0xFFFF
		c15 := (uint32(left&0x7FFF)+uint32(right&0x7FFF)+cin)>>15 == 1
		flags.V = c15 != flags.C
	case insts.ALUAnd:
		result = left & right
	case insts.ALUOr:
		result = left | right
	case insts.ALUXor:
		result = left ^ right
	}

	flags.Z = result == 0
	flags.N = result&0x8000 != 0

	return result, flags
}

// Shift shifts value by one bit. For right shifts the bit shifted out
// becomes the carry and, when chained, the previous carry is shifted in at
// the top. Rotate left leaves the carry unchanged.
func (a *ALU) Shift(kind insts.ShiftKind, value uint16, chained, carry bool) (uint16, bool) {
	if kind == insts.ShiftROL {
		return value<<1 | value>>15, carry
	}

	var top uint16
	switch kind {
	case insts.ShiftSRA:
		top = value >> 15
	case insts.ShiftROR:
		top = value & 1
	}
	if chained {
		top = 0
		if carry {
			top = 1
		}
	}

	return value>>1 | top<<15, value&1 == 1
}

// Predicate evaluates a comparison from the flags of left - right.
func Predicate(cmp insts.CmpKind, f Flags) bool {
	switch cmp {
	case insts.CmpEQ:
		return f.Z
	case insts.CmpNE:
		return !f.Z
	case insts.CmpLT:
		return f.N != f.V
	case insts.CmpLTU:
		return !f.C
	case insts.CmpGE:
		return f.N == f.V
	case insts.CmpGEU:
		return f.C
	}
	return false
}
