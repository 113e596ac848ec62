// Package uart models idli's bit-serial UART: one start bit followed by
// sixteen data bits, least significant first, one bit per cycle. The line
// idles high.
package uart

// FrameBits is the length of one frame including the start bit.
const FrameBits = 17

// DefaultDepth is the receive queue depth of the core.
const DefaultDepth = 2

// TX serializes words onto a line.
type TX struct {
	frame uint32
	bits  int
	line  bool
}

// NewTX creates an idle transmitter.
func NewTX() *TX {
	return &TX{line: true}
}

// Ready reports whether a new word can be started.
func (t *TX) Ready() bool {
	return t.bits == 0
}

// Start begins sending w. The start bit goes out on the next Tick.
func (t *TX) Start(w uint16) {
	t.frame = uint32(w) << 1
	t.bits = FrameBits
}

// Tick drives the next bit.
func (t *TX) Tick() {
	if t.bits == 0 {
		t.line = true
		return
	}
	t.line = t.frame&1 == 1
	t.frame >>= 1
	t.bits--
}

// Line returns the current line level.
func (t *TX) Line() bool {
	return t.line
}

// RX deserializes frames from a line into a bounded queue. A word that
// arrives while the queue is full is dropped and counted.
type RX struct {
	receiving bool
	shift     uint16
	count     int

	queue    []uint16
	depth    int
	overruns uint64
}

// NewRX creates a receiver with a queue of the given depth. A depth of 0
// makes the queue unbounded.
func NewRX(depth int) *RX {
	return &RX{depth: depth}
}

// Tick samples the line.
func (r *RX) Tick(line bool) {
	if !r.receiving {
		if !line {
			r.receiving = true
			r.shift = 0
			r.count = 0
		}
		return
	}

	if line {
		r.shift |= 1 << r.count
	}
	r.count++
	if r.count < FrameBits-1 {
		return
	}

	r.receiving = false
	if r.depth > 0 && len(r.queue) >= r.depth {
		r.overruns++
		return
	}
	r.queue = append(r.queue, r.shift)
}

// Busy reports whether a frame is being received.
func (r *RX) Busy() bool {
	return r.receiving
}

// Free reports whether the queue can take another word.
func (r *RX) Free() bool {
	return r.depth == 0 || len(r.queue) < r.depth
}

// Ready reports whether a word is waiting.
func (r *RX) Ready() bool {
	return len(r.queue) > 0
}

// Peek returns the oldest waiting word.
func (r *RX) Peek() uint16 {
	if len(r.queue) == 0 {
		return 0
	}
	return r.queue[0]
}

// Pop removes the oldest waiting word.
func (r *RX) Pop() uint16 {
	w := r.Peek()
	if len(r.queue) > 0 {
		r.queue = r.queue[1:]
	}
	return w
}

// Drain removes and returns every waiting word.
func (r *RX) Drain() []uint16 {
	words := r.queue
	r.queue = nil
	return words
}

// Overruns returns the number of dropped words.
func (r *RX) Overruns() uint64 {
	return r.overruns
}

// Reset returns the receiver to idle with an empty queue.
func (r *RX) Reset() {
	r.receiving = false
	r.queue = nil
}
