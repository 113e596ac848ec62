package pipeline

import (
	"errors"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
	"github.com/sarchlab/idlisim/timing/datapath"
	"github.com/sarchlab/idlisim/timing/latency"
	"github.com/sarchlab/idlisim/timing/sqi"
	"github.com/sarchlab/idlisim/timing/uart"
)

var (
	// ErrMaxCycles is returned once the cycle limit is reached.
	ErrMaxCycles = errors.New("max cycles reached")
	// ErrStallTimeout is returned when no instruction retires for longer
	// than the stall timeout.
	ErrStallTimeout = errors.New("stall timeout")
)

// Statistics holds controller performance statistics. Stall counters are
// in beats.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Beats is the number of completed phase rotations.
	Beats uint64
	// Instructions is the number of instructions retired, including
	// skipped ones.
	Instructions uint64
	// Skipped is the number of instructions suppressed by conditional
	// execution.
	Skipped uint64
	// FetchStalls counts beats with an empty instruction register.
	FetchStalls uint64
	// ImmediateStalls counts beats waiting for a trailing immediate.
	ImmediateStalls uint64
	// MemStalls counts beats waiting for load data or write space.
	MemStalls uint64
	// UARTStalls counts beats waiting for the transmitter or receiver.
	UARTStalls uint64
	// Redirects is the number of engine restarts.
	Redirects uint64
	// Branches is the number of executed PC writes.
	Branches uint64
	// LoadWords and StoreWords count memory data beats.
	LoadWords  uint64
	StoreWords uint64
	// Transmitted and Received count UART words.
	Transmitted uint64
	Received    uint64
	// BusReads and BusWrites count bytes clocked through the memory chips.
	BusReads  uint64
	BusWrites uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}

// PipelineOption is a functional option for configuring the Pipeline.
type PipelineOption func(*Pipeline)

// WithTimingConfig applies a timing configuration.
func WithTimingConfig(config *latency.TimingConfig) PipelineOption {
	return func(p *Pipeline) {
		p.config = config.Clone()
	}
}

// WithBank makes the core run from the given memory chips.
func WithBank(bank *sqi.Bank) PipelineOption {
	return func(p *Pipeline) {
		p.bank = bank
	}
}

// WithUARTInput queues words for the host to send to the core.
func WithUARTInput(words ...uint16) PipelineOption {
	return func(p *Pipeline) {
		p.sender.Send(words...)
	}
}

// WithFailOnInputExhausted ends the run with emu.ErrInputExhausted when a
// urx waits on a UART that has nothing left to deliver. Without it the
// core stalls until more words are sent or the stall watchdog fires.
func WithFailOnInputExhausted() PipelineOption {
	return func(p *Pipeline) {
		p.failOnInputExhausted = true
	}
}

// WithLogger sets the logger used for retirement tracing.
func WithLogger(log *logrus.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

// Pipeline is the cycle-level idli core: a 4-bit datapath sequenced in
// beats of four phases, fed by a serial memory engine.
type Pipeline struct {
	*sim.HookableBase

	config *latency.TimingConfig
	log    *logrus.Logger

	// Datapath
	alu     *datapath.ALU
	shifter *datapath.Shifter
	regs    *datapath.RegFile
	pc      *datapath.PCUnit
	decoder *insts.Decoder

	// Memory
	bank       *sqi.Bank
	engine     *sqi.Engine
	streamAddr uint16

	// I/O
	tx       *uart.TX
	rx       *uart.RX
	sender   *uart.Sender
	receiver *uart.Receiver
	pins     *Pins

	// Controller registers
	fbuf FetchBuffer
	ir   InstructionRegister
	mem  MemSequencer

	// Architectural control state
	pred  bool
	cond  uint8
	chain emu.Chain
	carry bool

	// Per-beat state
	phase uint8
	beat  beat
	latch beatLatch

	halted               bool
	haltOnSelfBranch     bool
	failOnInputExhausted bool
	err                  error
	sinceRetire          uint64

	stats                 Statistics
	busReads0, busWrites0 uint64
}

// NewPipeline creates a core at address 0 with zeroed registers.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		HookableBase: sim.NewHookableBase(),
		config:       latency.DefaultTimingConfig(),
		log:          logrus.StandardLogger(),
		alu:          datapath.NewALU(),
		shifter:      datapath.NewShifter(),
		regs:         datapath.NewRegFile(),
		pc:           datapath.NewPCUnit(),
		decoder:      insts.NewDecoder(),
		tx:           uart.NewTX(),
		sender:       uart.NewSender(),
		receiver:     uart.NewReceiver(),
		pins:         &Pins{},
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.bank == nil {
		p.bank = sqi.NewBank()
	}
	p.engine = sqi.NewBankEngine(p.bank)
	p.rx = uart.NewRX(p.config.RXQueueDepth)
	p.haltOnSelfBranch = p.config.HaltOnSelfBranch

	p.Reset()

	return p
}

// Bank returns the memory chips.
func (p *Pipeline) Bank() *sqi.Bank {
	return p.bank
}

// Engine returns the memory engine.
func (p *Pipeline) Engine() *sqi.Engine {
	return p.engine
}

// RegFile returns the rotating register file.
func (p *Pipeline) RegFile() *datapath.RegFile {
	return p.regs
}

// Pins returns the pin state.
func (p *Pipeline) Pins() *Pins {
	return p.pins
}

// Sender returns the host side of the receive line.
func (p *Pipeline) Sender() *uart.Sender {
	return p.sender
}

// Output returns every word the core has transmitted.
func (p *Pipeline) Output() []uint16 {
	return p.receiver.Words()
}

// Overruns returns the number of received words dropped on a full queue.
func (p *Pipeline) Overruns() uint64 {
	return p.rx.Overruns()
}

// Phase returns the phase of the next cycle.
func (p *Pipeline) Phase() uint8 {
	return p.phase
}

// PC returns the address of the next instruction stream word. It is only
// meaningful between beats.
func (p *Pipeline) PC() uint16 {
	return p.pc.Value() + uint16(p.pc.Pending())
}

// SetPC restarts instruction fetch at addr.
func (p *Pipeline) SetPC(addr uint16) {
	p.pc.Set(addr)
	p.fbuf.Clear()
	p.ir.Clear()
	p.mem = MemSequencer{}
	p.phase = 0
	p.engine.Redirect(addr, sqi.ModeRead)
	p.streamAddr = addr
}

// LoadProgram writes words into memory at entry and starts fetching there.
func (p *Pipeline) LoadProgram(entry uint16, words []uint16) {
	p.bank.LoadWords(entry, words)
	p.SetPC(entry)
}

// ArchState returns the architectural state in the functional emulator's
// form. It is only meaningful between beats.
func (p *Pipeline) ArchState() emu.RegFile {
	rf := emu.RegFile{
		PC:    p.PC(),
		Pred:  p.pred,
		Cond:  p.cond,
		Chain: p.chain,
		Carry: p.carry,
	}
	for r := range rf.R {
		rf.R[r] = p.regs.Word(uint8(r))
	}
	return rf
}

// Stats returns the controller statistics.
func (p *Pipeline) Stats() Statistics {
	s := p.stats
	reads, writes := p.bank.Transfers()
	s.BusReads = reads - p.busReads0
	s.BusWrites = writes - p.busWrites0
	return s
}

// Halted reports whether the core has stopped.
func (p *Pipeline) Halted() bool {
	return p.halted
}

// Err returns the error that stopped the core, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Run ticks the core until it halts.
func (p *Pipeline) Run() error {
	for !p.halted {
		p.Tick()
	}
	return p.err
}

// RunCycles ticks the core for the given number of cycles.
// Returns true if still running, false if halted.
func (p *Pipeline) RunCycles(cycles uint64) bool {
	for i := uint64(0); i < cycles && !p.halted; i++ {
		p.Tick()
	}
	return !p.halted
}

// Reset returns the control state to its power-on values and restarts at
// address 0. Registers and memory keep their contents.
func (p *Pipeline) Reset() {
	p.pred = false
	p.cond = 0
	p.chain = emu.Chain{}
	p.carry = false
	p.halted = false
	p.err = nil
	p.sinceRetire = 0
	p.stats = Statistics{}
	p.busReads0, p.busWrites0 = p.bank.Transfers()
	p.rx.Reset()
	p.SetPC(0)
}

// Tick advances the core by one cycle.
//
// Phase 0 samples the inputs and decides whether the beat executes, stalls
// or skips. Every phase moves one slice through the datapath and rotates
// the register file and PC. After phase 3 the beat's results are committed,
// the memory engine may be redirected, and the instruction register is
// refilled from the fetch buffer.
func (p *Pipeline) Tick() {
	if p.halted {
		return
	}

	if p.phase == 0 {
		p.beginBeat()
		if p.halted {
			return
		}
	}

	p.cycle()
	p.stats.Cycles++

	if p.phase == 3 {
		p.wrap()
	}
	p.phase = (p.phase + 1) & 3
}

func (p *Pipeline) beginBeat() {
	p.engine.BeginBeat()
	p.pins.sample()
	p.latch = beatLatch{}

	var reason StallReason
	p.beat, reason = p.admit()
	p.countStall(reason)
}

func (p *Pipeline) cycle() {
	phase := p.phase

	p.engine.Tick(phase)

	p.sender.Tick(p.rx.Free() || !p.config.UARTFlowControl)
	p.rx.Tick(p.sender.Line())
	p.tx.Tick()
	p.receiver.Sample(p.tx.Line())

	load, slice := false, uint8(0)
	if p.beat.kind == beatExec {
		load, slice = p.executeSlice(phase)
	}

	p.regs.Rotate()
	p.pc.Tick(phase, load, slice)
}

func (p *Pipeline) wrap() {
	p.stats.Beats++

	var consumed uint8
	switch p.beat.kind {
	case beatSkip:
		if p.ir.Op.Imm {
			p.ir.Inst.Imm = p.fbuf.Word
			p.fbuf.Clear()
			consumed++
		}
		p.retire(false)
	case beatExec:
		if p.beat.data {
			p.dataBeat()
		} else {
			consumed += p.commit()
		}
	case beatFinal:
		p.finalBeat()
	}

	consumed += p.fill()
	p.pc.Begin(consumed)

	p.sinceRetire += 4
	switch {
	case p.halted:
	case p.config.MaxCycles > 0 && p.stats.Cycles >= p.config.MaxCycles:
		p.fail(ErrMaxCycles)
	case p.config.StallTimeoutCycles > 0 && p.sinceRetire >= p.config.StallTimeoutCycles:
		p.fail(ErrStallTimeout)
	}
}

func (p *Pipeline) halt() {
	p.halted = true

	// Let the last frame reach the host.
	for !p.tx.Ready() {
		p.tx.Tick()
		p.receiver.Sample(p.tx.Line())
	}
	p.tx.Tick()
	p.receiver.Sample(p.tx.Line())
}

func (p *Pipeline) fail(err error) {
	p.err = err
	p.halt()
}
