package emu

// MemorySize is the number of 16-bit words addressable by the core.
const MemorySize = 1 << 16

// Memory is the word-addressed backing store of the functional emulator.
type Memory struct {
	words []uint16
}

// NewMemory creates a zeroed memory.
func NewMemory() *Memory {
	return &Memory{words: make([]uint16, MemorySize)}
}

// Read returns the word at addr.
func (m *Memory) Read(addr uint16) uint16 {
	return m.words[addr]
}

// Write stores a word at addr.
func (m *Memory) Write(addr uint16, value uint16) {
	m.words[addr] = value
}

// LoadProgram copies words into memory starting at base. Addresses wrap.
func (m *Memory) LoadProgram(base uint16, program []uint16) {
	for i, w := range program {
		m.words[base+uint16(i)] = w
	}
}

// Words returns the memory contents. The slice aliases the memory.
func (m *Memory) Words() []uint16 {
	return m.words
}

// LoadStoreUnit implements idli single and range transfers.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
	}
}

// Registers lists the registers a range transfer visits, in order.
func Registers(first, last uint8) []uint8 {
	var regs []uint8
	step := uint8(1)
	if first > last {
		step = 0xFF
	}
	for r := first; ; r += step {
		regs = append(regs, r&0xF)
		if r == last {
			break
		}
	}
	return regs
}

// Load fills registers first..last from consecutive words at addr.
func (lsu *LoadStoreUnit) Load(first, last uint8, addr uint16) {
	for _, r := range Registers(first, last) {
		lsu.regFile.WriteReg(r, lsu.memory.Read(addr))
		addr++
	}
}

// Store writes registers first..last to consecutive words at addr.
func (lsu *LoadStoreUnit) Store(first, last uint8, addr uint16) {
	for _, r := range Registers(first, last) {
		lsu.memory.Write(addr, lsu.regFile.ReadReg(r))
		addr++
	}
}
