package sqi

// Mode is the direction of an engine transaction.
type Mode uint8

// Engine modes.
const (
	ModeRead Mode = iota
	ModeWrite
)

// Setup lengths in SCK periods: two command, four address and, for reads,
// two dummy periods.
const (
	readSetup  = 8
	writeSetup = 6
)

// Device is the pin interface of one memory chip.
type Device interface {
	Clock(sio uint8) uint8
	Deselect()
}

// Statistics holds engine counters.
type Statistics struct {
	Transactions uint64
	Periods      uint64
	HeldBeats    uint64
	WordsRead    uint64
	WordsWritten uint64
}

// Engine drives both chips in lockstep. SCK rises in phases 0 and 2, so one
// word moves every beat once the setup periods have passed.
//
// Read data is reassembled in a reversal buffer, since each chip sends the
// high nibble of its byte first. A completed word waits there until the core
// takes it, and SCK is held while it waits.
type Engine struct {
	even, odd Device

	mode   Mode
	addr   uint16
	period int
	held   bool

	// read side
	shift uint16
	full  bool

	// write side
	out       uint16
	wbuf      uint16
	wbufValid bool

	stats Statistics
}

// NewEngine creates an engine for the given chip pair. It starts idle in
// read mode at address 0 once Redirect is called.
func NewEngine(even, odd Device) *Engine {
	return &Engine{even: even, odd: odd}
}

// NewBankEngine creates an engine driving a Bank.
func NewBankEngine(b *Bank) *Engine {
	return NewEngine(b.Even, b.Odd)
}

// Redirect ends the current transaction and starts a new one at addr.
// Partial words are dropped.
func (e *Engine) Redirect(addr uint16, mode Mode) {
	e.even.Deselect()
	e.odd.Deselect()

	e.mode = mode
	e.addr = addr
	e.period = 0
	e.held = false
	e.shift = 0
	e.full = false
	e.wbufValid = false

	e.stats.Transactions++
}

// BeginBeat decides at phase 0 whether SCK runs for the coming beat.
func (e *Engine) BeginBeat() {
	e.held = false

	switch e.mode {
	case ModeRead:
		if e.period >= readSetup && e.full {
			e.held = true
		}
	case ModeWrite:
		if e.period < writeSetup {
			break
		}
		if e.wbufValid {
			e.out = e.wbuf
			e.wbufValid = false
		} else {
			e.held = true
		}
	}

	if e.held {
		e.stats.HeldBeats++
	}
}

// Tick advances one cycle. Only phases 0 and 2 clock the chips.
func (e *Engine) Tick(phase uint8) {
	if phase&1 == 1 || e.held {
		return
	}

	n := e.period
	cmd := CmdRead
	if e.mode == ModeWrite {
		cmd = CmdWrite
	}

	switch {
	case n < 2:
		nib := cmd >> 4
		if n == 1 {
			nib = cmd & 0xF
		}
		e.clockBoth(nib, nib)
	case n < 6:
		nib := uint8(e.addr>>(4*(5-n))) & 0xF
		e.clockBoth(nib, nib)
	case e.mode == ModeRead && n < readSetup:
		e.clockBoth(0, 0)
	case e.mode == ModeRead:
		e.readPeriod((n - readSetup) & 1)
	default:
		e.writePeriod((n - writeSetup) & 1)
	}

	e.period++
	e.stats.Periods++
}

func (e *Engine) clockBoth(even, odd uint8) (uint8, uint8) {
	return e.even.Clock(even), e.odd.Clock(odd)
}

func (e *Engine) readPeriod(k int) {
	lo, hi := e.clockBoth(0, 0)
	if k == 0 {
		e.shift = uint16(lo)<<4 | uint16(hi)<<12
		return
	}
	e.shift |= uint16(lo) | uint16(hi)<<8
	e.full = true
	e.stats.WordsRead++
}

func (e *Engine) writePeriod(k int) {
	if k == 0 {
		e.clockBoth(uint8(e.out>>4)&0xF, uint8(e.out>>12)&0xF)
		return
	}
	e.clockBoth(uint8(e.out)&0xF, uint8(e.out>>8)&0xF)
	e.stats.WordsWritten++
}

// TakeWord removes a completed read word, if there is one.
func (e *Engine) TakeWord() (uint16, bool) {
	if !e.full {
		return 0, false
	}
	e.full = false
	return e.shift, true
}

// Accepting reports whether Push would be taken this beat.
func (e *Engine) Accepting() bool {
	return e.mode == ModeWrite && e.period >= writeSetup && !e.wbufValid
}

// Push queues the next word of a write transaction.
func (e *Engine) Push(w uint16) {
	e.wbuf = w
	e.wbufValid = true
}

// Stats returns the engine counters.
func (e *Engine) Stats() Statistics {
	return e.stats
}
