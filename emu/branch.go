package emu

// BranchUnit implements idli control transfers.
type BranchUnit struct {
	regFile *RegFile
}

// NewBranchUnit creates a new BranchUnit connected to the given register file.
func NewBranchUnit(regFile *RegFile) *BranchUnit {
	return &BranchUnit{regFile: regFile}
}

// Jump sets the PC to target. When link is set the return address is
// written to the link register first.
func (b *BranchUnit) Jump(target uint16, link bool, ret uint16) {
	if link {
		b.regFile.WriteReg(14, ret)
	}
	b.regFile.PC = target
}

// IsSelfLoop reports whether a transfer from the instruction at addr to
// target can never make progress.
func IsSelfLoop(addr, target uint16) bool {
	return addr == target
}
