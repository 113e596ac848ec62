package uart

// Sender is the host side of the core's receive line. It sends queued
// words back to back.
type Sender struct {
	tx    *TX
	queue []uint16
}

// NewSender creates a sender with the given words queued.
func NewSender(words ...uint16) *Sender {
	return &Sender{tx: NewTX(), queue: words}
}

// Send queues more words.
func (s *Sender) Send(words ...uint16) {
	s.queue = append(s.queue, words...)
}

// Tick drives the next bit onto the line. A new frame only starts when
// clear is set, which models hardware flow control.
func (s *Sender) Tick(clear bool) {
	if clear && s.tx.Ready() && len(s.queue) > 0 {
		s.tx.Start(s.queue[0])
		s.queue = s.queue[1:]
	}
	s.tx.Tick()
}

// Line returns the current line level.
func (s *Sender) Line() bool {
	return s.tx.Line()
}

// Idle reports whether every queued word has been sent.
func (s *Sender) Idle() bool {
	return s.tx.Ready() && len(s.queue) == 0
}

// Pending returns the number of words not yet started.
func (s *Sender) Pending() int {
	return len(s.queue)
}

// Receiver is the host side of the core's transmit line. It keeps every
// word it receives.
type Receiver struct {
	rx *RX
}

// NewReceiver creates a receiver with an unbounded queue.
func NewReceiver() *Receiver {
	return &Receiver{rx: NewRX(0)}
}

// Sample reads the line for one cycle.
func (r *Receiver) Sample(line bool) {
	r.rx.Tick(line)
}

// Words returns every word received so far.
func (r *Receiver) Words() []uint16 {
	return append([]uint16(nil), r.rx.queue...)
}
