package emu

import "github.com/sarchlab/idlisim/insts"

// UART is the host side of the functional UART: a queue of words waiting
// to be received and the words transmitted so far.
type UART struct {
	input  []uint16
	output []uint16
}

// Send queues words for the core to receive.
func (u *UART) Send(words ...uint16) {
	u.input = append(u.input, words...)
}

// Ready reports whether a received word is available.
func (u *UART) Ready() bool {
	return len(u.input) > 0
}

// Receive pops the next input word.
func (u *UART) Receive() uint16 {
	w := u.input[0]
	u.input = u.input[1:]
	return w
}

// Transmit records a word sent by the core.
func (u *UART) Transmit(w uint16) {
	u.output = append(u.output, w)
}

// Output returns the transmitted words.
func (u *UART) Output() []uint16 {
	return u.output
}

// Pins holds the four input and four output pins.
type Pins struct {
	In  [insts.NumPins]bool
	Out [insts.NumPins]bool
}
