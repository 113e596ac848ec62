package insts

// Opcode describes one row of the opcode table. A word w encodes the opcode
// when w&Mask == Match. Rows never overlap; the decoder and the assembler
// both work from this table.
type Opcode struct {
	Op       Op
	Mnemonic string
	Format   Format
	Mask     uint16
	Match    uint16
}

var opcodes = []Opcode{
	{OpADD, "add", FormatRRR, 0xF000, 0x0000},
	{OpSUB, "sub", FormatRRR, 0xF000, 0x1000},
	{OpAND, "and", FormatRRR, 0xF000, 0x2000},
	{OpANDN, "andn", FormatRRR, 0xF000, 0x3000},
	{OpOR, "or", FormatRRR, 0xF000, 0x4000},
	{OpXOR, "xor", FormatRRR, 0xF000, 0x5000},
	{OpLD, "ld", FormatRRR, 0xF000, 0x6000},
	{OpST, "st", FormatRRR, 0xF000, 0x7000},
	{OpLDM, "ldm", FormatRange, 0xF000, 0x8000},
	{OpSTM, "stm", FormatRange, 0xF000, 0x9000},

	{OpLDPostInc, "ld+", FormatRR, 0xF00F, 0xA000},
	{OpSTPostInc, "st+", FormatRR, 0xF00F, 0xA001},
	{OpLDPreInc, "+ld", FormatRR, 0xF00F, 0xA002},
	{OpSTPreInc, "+st", FormatRR, 0xF00F, 0xA003},
	{OpLDPostDec, "ld-", FormatRR, 0xF00F, 0xA004},
	{OpSTPostDec, "st-", FormatRR, 0xF00F, 0xA005},
	{OpLDPreDec, "-ld", FormatRR, 0xF00F, 0xA006},
	{OpSTPreDec, "-st", FormatRR, 0xF00F, 0xA007},
	{OpINC, "inc", FormatRR, 0xF00F, 0xA008},
	{OpDEC, "dec", FormatRR, 0xF00F, 0xA009},
	{OpSRL, "srl", FormatRR, 0xF00F, 0xA00A},
	{OpSRA, "sra", FormatRR, 0xF00F, 0xA00B},
	{OpROR, "ror", FormatRR, 0xF00F, 0xA00C},
	{OpROL, "rol", FormatRR, 0xF00F, 0xA00D},
	{OpNOT, "not", FormatRR, 0xF00F, 0xA00E},
	{OpURX, "urx", FormatR, 0xF0FF, 0xA00F},
	{OpGETP, "getp", FormatR, 0xF0FF, 0xA01F},

	// Bit 11 selects the x variant and is decoded separately.
	{OpEQ, "eq", FormatCmp, 0xF700, 0xB000},
	{OpNE, "ne", FormatCmp, 0xF700, 0xB100},
	{OpLT, "lt", FormatCmp, 0xF700, 0xB200},
	{OpLTU, "ltu", FormatCmp, 0xF700, 0xB300},
	{OpGE, "ge", FormatCmp, 0xF700, 0xB400},
	{OpGEU, "geu", FormatCmp, 0xF700, 0xB500},
	{OpBIT, "bit", FormatCmp, 0xF700, 0xB600},
	{OpINP, "inp", FormatPinCmp, 0xF700, 0xB700},

	{OpADDPC, "addpc", FormatRC, 0xF0F0, 0xC000},
	{OpB, "b", FormatC, 0xFFF0, 0xC0F0},
	{OpJ, "j", FormatC, 0xFFF0, 0xC1F0},
	{OpBL, "bl", FormatC, 0xFFF0, 0xC2F0},
	{OpJL, "jl", FormatC, 0xFFF0, 0xC3F0},
	{OpJR, "jr", FormatC, 0xFFF0, 0xC4F0},

	{OpIN, "in", FormatRPin, 0xF0C0, 0xD000},
	{OpOUT, "out", FormatPinC, 0xFFC0, 0xD040},
	{OpOUTN, "outn", FormatPinC, 0xFFC0, 0xD140},
	{OpOUTP, "outp", FormatPin, 0xFFC0, 0xD280},
	{OpUTX, "utx", FormatC, 0xFFC0, 0xD0C0},
	{OpCARRY, "carry", FormatCount, 0xFFC0, 0xD1C0},
	{OpPUTP, "putp", FormatC, 0xFFC0, 0xD2C0},
	{OpANDP, "andp", FormatCount, 0xFFC0, 0xD3C0},
	{OpORP, "orp", FormatCount, 0xFFC0, 0xD4C0},

	{OpCEX, "cex", FormatMask, 0xFF00, 0xE000},
}

// condXBit marks the x variant of a comparison.
const condXBit uint16 = 0x0800

var (
	opcodeByOp       = map[Op]*Opcode{}
	opcodeByMnemonic = map[string]*Opcode{}
)

func init() {
	for i := range opcodes {
		opc := &opcodes[i]
		opcodeByOp[opc.Op] = opc
		opcodeByMnemonic[opc.Mnemonic] = opc
	}
}

// Opcodes returns a copy of the opcode table.
func Opcodes() []Opcode {
	out := make([]Opcode, len(opcodes))
	copy(out, opcodes)
	return out
}

// LookupMnemonic finds the opcode for an assembler mnemonic. The x
// compare variants ("eqx", "inpx", ...) resolve to their base opcode with
// condX set.
func LookupMnemonic(name string) (opc Opcode, condX bool, ok bool) {
	if p, found := opcodeByMnemonic[name]; found {
		return *p, false, true
	}
	if n := len(name); n > 1 && name[n-1] == 'x' {
		if p, found := opcodeByMnemonic[name[:n-1]]; found && p.Mask == 0xF700 {
			return *p, true, true
		}
	}
	return Opcode{}, false, false
}

// Mnemonic returns the assembler name of an opcode.
func (op Op) Mnemonic() string {
	if p, ok := opcodeByOp[op]; ok {
		return p.Mnemonic
	}
	return "???"
}

// String implements fmt.Stringer.
func (op Op) String() string {
	return op.Mnemonic()
}

// immField reports whether the final c field of a format is an operand that
// may select an immediate.
func immField(f Format) bool {
	switch f {
	case FormatRRR, FormatCmp, FormatRC, FormatC, FormatPinC:
		return true
	}
	return false
}
