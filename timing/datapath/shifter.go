package datapath

import "github.com/sarchlab/idlisim/insts"

// Shifter is the one-bit shift unit. It keeps one stashed bit between
// slices and the carry-out of a right shift, captured in phase 0.
type Shifter struct {
	stash uint8
	carry bool
}

// NewShifter creates a new shift unit.
func NewShifter() *Shifter {
	return &Shifter{}
}

// Slice shifts the active slice cur. above and below are the neighbouring
// slices from the register read port. When chained, the previous carry
// enters at the top of a right shift.
func (s *Shifter) Slice(phase uint8, kind insts.ShiftKind, cur, above, below uint8, chained, carry bool) uint8 {
	cur &= 0xF

	if kind == insts.ShiftROL {
		in := s.stash
		if phase == 0 {
			in = (below >> 3) & 1
		}
		s.stash = cur >> 3
		return (cur<<1)&0xF | in
	}

	if phase == 0 {
		s.stash = cur & 1
		s.carry = s.stash == 1
	}

	in := above & 1
	if phase == 3 {
		switch kind {
		case insts.ShiftSRL:
			in = 0
		case insts.ShiftSRA:
			in = cur >> 3
		case insts.ShiftROR:
			in = s.stash
		}
		if chained {
			in = 0
			if carry {
				in = 1
			}
		}
	}

	return cur>>1 | in<<3
}

// Carry returns the bit shifted out by the last right shift.
func (s *Shifter) Carry() bool {
	return s.carry
}
