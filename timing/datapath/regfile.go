package datapath

import "github.com/sarchlab/idlisim/insts"

// Port is one register read port output.
type Port struct {
	Cur   uint8
	Above uint8
	Below uint8
}

// RegFile holds sixteen registers as rotating 4-bit shift registers. The
// active slice sits in the low nibble; each cycle every register rotates by
// one slice and a staged write replaces the slice leaving the low end.
type RegFile struct {
	regs   [insts.NumRegs]uint16
	staged [insts.NumRegs]bool
	slices [insts.NumRegs]uint8
}

// NewRegFile creates a register file. Contents start at zero.
func NewRegFile() *RegFile {
	return &RegFile{}
}

// Read returns the active slice of r and its neighbours. r0 reads zero.
func (rf *RegFile) Read(r uint8) Port {
	if r == insts.RegZero {
		return Port{}
	}
	v := rf.regs[r&0xF]
	return Port{
		Cur:   uint8(v) & 0xF,
		Above: uint8(v>>4) & 0xF,
		Below: uint8(v>>12) & 0xF,
	}
}

// Stage schedules slice to be written to r at the next rotation. Writes to
// r0 are dropped.
func (rf *RegFile) Stage(r uint8, slice uint8) {
	if r == insts.RegZero {
		return
	}
	rf.staged[r&0xF] = true
	rf.slices[r&0xF] = slice & 0xF
}

// Rotate advances every register by one slice.
func (rf *RegFile) Rotate() {
	for r := 1; r < insts.NumRegs; r++ {
		v := rf.regs[r]
		in := uint16(v & 0xF)
		if rf.staged[r] {
			in = uint16(rf.slices[r])
			rf.staged[r] = false
		}
		rf.regs[r] = v>>4 | in<<12
	}
}

// Word returns the value of r. It is only meaningful at a phase 0
// boundary, when every register is aligned.
func (rf *RegFile) Word(r uint8) uint16 {
	if r == insts.RegZero {
		return 0
	}
	return rf.regs[r&0xF]
}

// Set overwrites r at a phase 0 boundary.
func (rf *RegFile) Set(r uint8, v uint16) {
	if r == insts.RegZero {
		return
	}
	rf.regs[r&0xF] = v
}
