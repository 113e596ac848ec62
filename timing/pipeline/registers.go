// Package pipeline provides the execution controller of the idli core: the
// per-cycle loop that sequences the slice datapath, the memory engine and
// the UART around one instruction register.
package pipeline

import (
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/datapath"
)

// FetchBuffer holds the last word completed by the memory engine, already
// in slice order. It supplies immediates and load data.
type FetchBuffer struct {
	// Valid indicates the buffer holds a word.
	Valid bool

	// Addr is the address the word was read from.
	Addr uint16

	// Word is the buffered word.
	Word uint16
}

// Clear empties the fetch buffer.
func (r *FetchBuffer) Clear() {
	*r = FetchBuffer{}
}

// InstructionRegister holds the instruction being executed.
type InstructionRegister struct {
	// Valid indicates the register holds an instruction.
	Valid bool

	// Addr is the address of the instruction word.
	Addr uint16

	// Inst is the decoded instruction.
	Inst *insts.Instruction

	// Op is the control word for the instruction's first beat.
	Op insts.MicroOp
}

// Clear empties the instruction register.
func (r *InstructionRegister) Clear() {
	*r = InstructionRegister{}
}

// MemSequencer walks the registers of a load or store after its address
// beat. Data beats run while Active; the Final beat follows the last one.
type MemSequencer struct {
	Active bool
	Final  bool

	Kind insts.MemKind
	Cur  uint8
	Last uint8
	Down bool

	// Addr is the memory address of the current word.
	Addr uint16
}

// Start arms the sequencer for the range described by u at addr.
func (m *MemSequencer) Start(u *insts.MicroOp, addr uint16) {
	*m = MemSequencer{
		Active: true,
		Kind:   u.Mem,
		Cur:    u.MemFirst,
		Last:   u.MemLast,
		Down:   u.MemDown,
		Addr:   addr,
	}
}

// Advance moves to the next register, or to the final beat after the last.
func (m *MemSequencer) Advance() {
	if m.Cur == m.Last {
		m.Active = false
		m.Final = true
		return
	}
	if m.Down {
		m.Cur = (m.Cur - 1) & 0xF
	} else {
		m.Cur = (m.Cur + 1) & 0xF
	}
	m.Addr++
}

// Busy reports whether a memory instruction still owns the controller.
func (m *MemSequencer) Busy() bool {
	return m.Active || m.Final
}

// beatKind is what the controller does over one beat.
type beatKind uint8

const (
	beatStall beatKind = iota
	beatSkip
	beatExec
	beatFinal
)

// beat is the control decided at phase 0 and held for the beat.
type beat struct {
	kind    beatKind
	op      insts.MicroOp
	chained bool
	data    bool // a memory data beat
}

// beatLatch accumulates per-slice outputs into words for the wrap.
type beatLatch struct {
	result uint16
	left   uint16
	link   uint16

	flags datapath.Flags

	bitIndex uint8
	bit      bool
}
