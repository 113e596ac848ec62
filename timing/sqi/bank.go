package sqi

// Bank is the even/odd chip pair that forms the word-addressed memory.
type Bank struct {
	Even *Chip
	Odd  *Chip
}

// NewBank creates a zeroed chip pair.
func NewBank() *Bank {
	return &Bank{Even: NewChip(), Odd: NewChip()}
}

// ReadWord returns the word at addr.
func (b *Bank) ReadWord(addr uint16) uint16 {
	return uint16(b.Even.ByteAt(addr)) | uint16(b.Odd.ByteAt(addr))<<8
}

// WriteWord stores w at addr.
func (b *Bank) WriteWord(addr uint16, w uint16) {
	b.Even.SetByte(addr, byte(w))
	b.Odd.SetByte(addr, byte(w>>8))
}

// LoadWords writes words starting at base, wrapping at the top of memory.
func (b *Bank) LoadWords(base uint16, words []uint16) {
	for i, w := range words {
		b.WriteWord(base+uint16(i), w)
	}
}

// Transfers returns the bytes both chips have moved over the bus.
func (b *Bank) Transfers() (reads, writes uint64) {
	er, ew := b.Even.Transfers()
	or, ow := b.Odd.Transfers()
	return er + or, ew + ow
}

// Words returns the whole memory as words.
func (b *Bank) Words() []uint16 {
	lo, hi := b.Even.Bytes(), b.Odd.Bytes()
	words := make([]uint16, Size)
	for i := range words {
		words[i] = uint16(lo[i]) | uint16(hi[i])<<8
	}
	return words
}
