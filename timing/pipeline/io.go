package pipeline

import "github.com/sarchlab/idlisim/insts"

// Pins are the core's general purpose pins. Inputs are sampled at the
// start of each beat; outputs change at the end of the beat that drives
// them.
type Pins struct {
	In  [insts.NumPins]bool
	Out [insts.NumPins]bool

	sampled [insts.NumPins]bool
}

func (p *Pins) sample() {
	p.sampled = p.In
}
