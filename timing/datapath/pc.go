package datapath

// PCUnit holds the program counter in the rotating representation with
// two per-slice adders. The first adds the number of words consumed at the
// last phase wrap; the second adds one more, giving the next sequential PC.
type PCUnit struct {
	reg       uint16
	addend    uint8
	carry     uint8
	nextCarry uint8
}

// NewPCUnit creates a PC unit at address 0.
func NewPCUnit() *PCUnit {
	return &PCUnit{}
}

// Begin arms the increment applied over the coming beat. It is called at
// the phase wrap.
func (p *PCUnit) Begin(addend uint8) {
	p.addend = addend
}

func (p *PCUnit) sums(phase uint8) (cur, cc, next, nc uint8) {
	cin := p.carry
	if phase == 0 {
		cin = p.addend
	}
	s := uint8(p.reg&0xF) + cin
	cur, cc = s&0xF, s>>4

	nin := p.nextCarry
	if phase == 0 {
		nin = 1
	}
	n := cur + nin
	next, nc = n&0xF, n>>4
	return cur, cc, next, nc
}

// Slice returns the active slice of the current PC and of the next
// sequential PC.
func (p *PCUnit) Slice(phase uint8) (cur, next uint8) {
	cur, _, next, _ = p.sums(phase)
	return cur, next
}

// Tick stores the active slice and rotates. With load set the slice comes
// from outside, otherwise the incremented slice is kept.
func (p *PCUnit) Tick(phase uint8, load bool, slice uint8) {
	cur, cc, _, nc := p.sums(phase)
	p.carry, p.nextCarry = cc, nc

	store := cur
	if load {
		store = slice & 0xF
	}
	p.reg = p.reg>>4 | uint16(store)<<12
}

// Value returns the stored PC at a phase 0 boundary, before the pending
// increment.
func (p *PCUnit) Value() uint16 {
	return p.reg
}

// Pending returns the increment armed for the current beat.
func (p *PCUnit) Pending() uint8 {
	return p.addend
}

// Set loads the PC at a phase 0 boundary and clears the pending increment.
func (p *PCUnit) Set(v uint16) {
	p.reg = v
	p.addend = 0
	p.carry = 0
	p.nextCarry = 0
}
