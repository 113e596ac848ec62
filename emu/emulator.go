package emu

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/insts"
)

var (
	// ErrMaxInstructions is returned once the instruction limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
	// ErrInputExhausted is returned by Run when the program waits for UART
	// input that will never arrive.
	ErrInputExhausted = errors.New("uart input exhausted")
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Halted is true once the program branched to itself or faulted.
	Halted bool

	// Stalled is true if the instruction waits for UART input. No state
	// changed.
	Stalled bool

	// Skipped is true if conditional execution suppressed the instruction.
	Skipped bool

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator executes idli instructions functionally.
type Emulator struct {
	regFile *RegFile
	memory  *Memory
	decoder *insts.Decoder

	// Execution units
	alu        *ALU
	lsu        *LoadStoreUnit
	branchUnit *BranchUnit

	// I/O
	uart *UART
	pins *Pins

	log *logrus.Logger

	// Execution state
	halted           bool
	haltOnSelfBranch bool
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMemory makes the emulator execute from the given memory.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithHaltOnSelfBranch controls whether a branch to itself halts the
// emulator. It is on by default.
func WithHaltOnSelfBranch(halt bool) EmulatorOption {
	return func(e *Emulator) {
		e.haltOnSelfBranch = halt
	}
}

// WithUARTInput queues words for the program to receive.
func WithUARTInput(words ...uint16) EmulatorOption {
	return func(e *Emulator) {
		e.uart.Send(words...)
	}
}

// WithLogger sets the logger used for execution tracing.
func WithLogger(log *logrus.Logger) EmulatorOption {
	return func(e *Emulator) {
		e.log = log
	}
}

// NewEmulator creates a new idli emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:          &RegFile{},
		memory:           NewMemory(),
		decoder:          insts.NewDecoder(),
		alu:              NewALU(),
		uart:             &UART{},
		pins:             &Pins{},
		log:              logrus.StandardLogger(),
		haltOnSelfBranch: true,
	}

	for _, opt := range opts {
		opt(e)
	}

	e.lsu = NewLoadStoreUnit(e.regFile, e.memory)
	e.branchUnit = NewBranchUnit(e.regFile)

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// UART returns the host side of the UART.
func (e *Emulator) UART() *UART {
	return e.uart
}

// Pins returns the pin state.
func (e *Emulator) Pins() *Pins {
	return e.pins
}

// InstructionCount returns the number of instructions retired, including
// skipped ones.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Halted reports whether execution has stopped.
func (e *Emulator) Halted() bool {
	return e.halted
}

// LoadProgram copies a program into memory and points the PC at it.
func (e *Emulator) LoadProgram(entry uint16, program []uint16) {
	e.memory.LoadProgram(entry, program)
	e.regFile.PC = entry
}

// Reset returns the control state to its power-on values. Registers and
// memory keep their contents.
func (e *Emulator) Reset() {
	e.regFile.PC = 0
	e.regFile.Pred = false
	e.regFile.Cond = 0
	e.regFile.Chain = Chain{}
	e.regFile.Carry = false
	e.halted = false
	e.instructionCount = 0
}

// Step executes a single instruction.
func (e *Emulator) Step() StepResult {
	if e.halted {
		return StepResult{Halted: true}
	}

	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: ErrMaxInstructions}
	}

	rf := e.regFile
	addr := rf.PC

	inst, err := e.decoder.Decode(e.memory.Read(addr))
	if err != nil {
		e.halted = true
		return StepResult{
			Halted: true,
			Err:    fmt.Errorf("pc 0x%04x: %w", addr, err),
		}
	}

	next := addr + 1
	if inst.HasImm {
		inst.Imm = e.memory.Read(next)
		next++
	}

	u := inst.MicroOp()
	run := rf.CondAllows()

	if run && u.Right.Kind == insts.SrcUART && !e.uart.Ready() {
		return StepResult{Stalled: true}
	}

	rf.PC = next
	if run {
		e.execute(inst, &u, addr, next)
	}

	e.retire(&u, run)
	e.instructionCount++

	e.log.WithFields(logrus.Fields{
		"pc":   fmt.Sprintf("%04x", addr),
		"inst": inst.String(),
		"run":  run,
	}).Debug("emu step")

	return StepResult{Halted: e.halted, Skipped: !run}
}

// Run executes instructions until the program halts or an error occurs.
func (e *Emulator) Run() error {
	for {
		result := e.Step()
		switch {
		case result.Err != nil:
			return result.Err
		case result.Halted:
			return nil
		case result.Stalled:
			return fmt.Errorf("pc 0x%04x: %w", e.regFile.PC, ErrInputExhausted)
		}
	}
}

func (e *Emulator) retire(u *insts.MicroOp, run bool) {
	rf := e.regFile
	rf.Cond = NextCond(rf.Cond, run && u.CondWrite, u.CondData)

	if !run {
		return
	}

	if u.Count != insts.CountNone {
		rf.Chain = Chain{Kind: u.Count, Count: u.CountImm}
		if u.CountImm == 0 {
			rf.Chain = Chain{}
		}
		return
	}
	rf.Chain.Tick()
}

func (e *Emulator) operand(op insts.Operand, inst *insts.Instruction, u *insts.MicroOp, addr uint16) uint16 {
	switch op.Kind {
	case insts.SrcReg:
		return e.regFile.ReadReg(op.Reg)
	case insts.SrcPC:
		return addr + 1
	case insts.SrcMem:
		return inst.Imm
	case insts.SrcUART:
		return e.uart.Receive()
	case insts.SrcPin:
		return bit(e.pins.In[u.PinIndex])
	case insts.SrcPred:
		return bit(e.regFile.Pred)
	}
	return 0
}

func (e *Emulator) execute(inst *insts.Instruction, u *insts.MicroOp, addr, next uint16) {
	rf := e.regFile

	left := e.operand(u.Left, inst, u, addr)
	right := e.operand(u.Right, inst, u, addr)

	chained := rf.Chain.Active(insts.CountCarry) && u.SetsCarry

	var result uint16
	var flags Flags
	if u.Shift != insts.ShiftNone {
		result, flags.C = e.alu.Shift(u.Shift, left, chained, rf.Carry)
	} else {
		cin := u.CarryIn
		if chained {
			cin = rf.Carry
		}
		result, flags = e.alu.Compute(u.ALU, left, right, u.Invert, cin)
	}

	if u.SetsCarry {
		rf.Carry = flags.C
	}

	switch u.Pin {
	case insts.PinOut:
		e.pins.Out[u.PinIndex] = result&1 == 1
	case insts.PinOutInv:
		e.pins.Out[u.PinIndex] = result&1 == 0
	case insts.PinOutPred:
		e.pins.Out[u.PinIndex] = rf.Pred
	}

	switch u.Dest {
	case insts.DestReg:
		rf.WriteReg(u.DestReg, result)
		e.log.WithFields(logrus.Fields{
			"reg":   insts.RegName(u.DestReg),
			"value": fmt.Sprintf("%04x", result),
		}).Trace("emu write")
	case insts.DestPC:
		e.branchUnit.Jump(result, u.Aux == insts.AuxLink, next)
		if e.haltOnSelfBranch && (inst.Op == insts.OpB || inst.Op == insts.OpJ) &&
			IsSelfLoop(addr, result) {
			e.halted = true
		}
	case insts.DestUART:
		e.uart.Transmit(result)
	case insts.DestPred:
		rf.Pred = e.predicate(u, flags, left, right)
	}

	if u.Mem != insts.MemNone {
		base := left
		if u.Aux == insts.AuxMemFromDest {
			base = result
		}
		if u.Mem == insts.MemLoad {
			e.lsu.Load(u.MemFirst, u.MemLast, base)
		} else {
			e.lsu.Store(u.MemFirst, u.MemLast, base)
		}
	}
}

func (e *Emulator) predicate(u *insts.MicroOp, flags Flags, left, right uint16) bool {
	rf := e.regFile

	var p bool
	switch u.Cmp {
	case insts.CmpBit:
		p = (left>>(right&0xF))&1 == 1
	case insts.CmpPin:
		p = e.pins.In[u.PinIndex]
	case insts.CmpPut:
		return right&1 == 1
	default:
		p = Predicate(u.Cmp, flags)
	}

	switch {
	case rf.Chain.Active(insts.CountAndP):
		p = p && rf.Pred
	case rf.Chain.Active(insts.CountOrP):
		p = p || rf.Pred
	}
	return p
}

func bit(b bool) uint16 {
	if b {
		return 1
	}
	return 0
}
