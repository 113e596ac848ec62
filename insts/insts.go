// Package insts provides the idli instruction set definition, decoding and
// encoding.
//
// Every instruction is one 16-bit word split into four 4-bit fields,
// op:a:b:c from the most significant end. When the final operand field of a
// suitable instruction holds 15 (the stack pointer index), the operand is an
// immediate word that follows the instruction in the fetch stream.
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst, err := decoder.Decode(0x0123) // add r1, r2, r3
//	fmt.Println(inst)
package insts

// Op represents an idli opcode.
type Op uint8

// idli opcodes.
const (
	OpUnknown Op = iota

	// Three-register arithmetic and logic.
	OpADD
	OpSUB
	OpAND
	OpANDN
	OpOR
	OpXOR

	// Single and range loads and stores.
	OpLD
	OpST
	OpLDM
	OpSTM

	// Load/store with base register update.
	OpLDPostInc
	OpSTPostInc
	OpLDPreInc
	OpSTPreInc
	OpLDPostDec
	OpSTPostDec
	OpLDPreDec
	OpSTPreDec

	// Two-register forms.
	OpINC
	OpDEC
	OpSRL
	OpSRA
	OpROR
	OpROL
	OpNOT
	OpURX
	OpGETP

	// Predicate-setting comparisons.
	OpEQ
	OpNE
	OpLT
	OpLTU
	OpGE
	OpGEU
	OpBIT
	OpINP

	// PC-relative and absolute control flow.
	OpADDPC
	OpB
	OpJ
	OpBL
	OpJL
	OpJR

	// Pins, UART and chain counters.
	OpIN
	OpOUT
	OpOUTN
	OpOUTP
	OpUTX
	OpCARRY
	OpPUTP
	OpANDP
	OpORP

	OpCEX
)

// Format represents the operand shape of an instruction.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatRRR            // a, b, (c)
	FormatRange          // r, s, b
	FormatRR             // a, b
	FormatR              // a
	FormatCmp            // b, (c)
	FormatPinCmp         // n
	FormatRC             // a, (c)
	FormatC              // (c)
	FormatRPin           // a, n
	FormatPinC           // n, (c)
	FormatPin            // n
	FormatCount          // j
	FormatMask           // m
)

// Register indices with an architectural role.
const (
	RegZero  uint8 = 0
	RegLink  uint8 = 14
	RegSP    uint8 = 15
	RegImm   uint8 = 15 // final operand field value selecting an immediate
	NumRegs        = 16
	NumPins        = 4
	MaxCount       = 15
)

// CondRunX is the conditional-execution value loaded by the x compare
// variants: run the next instruction only if the predicate is true.
const CondRunX uint8 = 0b11

// Instruction represents a decoded idli instruction.
type Instruction struct {
	Op     Op     // Operation code
	Format Format // Operand shape
	Word   uint16 // Raw instruction word

	// Register fields. For range operations Rd is the first register,
	// Rm the last and Rn the base.
	Rd uint8
	Rn uint8
	Rm uint8

	Pin   uint8 // Pin index for pin operations
	Count uint8 // Chain length for carry/andp/orp
	Mask  uint8 // cex mask, highest set bit is the sentinel

	// CondX marks the compare variants that also load the
	// conditional-execution state.
	CondX bool

	// HasImm is set when the final operand is an immediate word.
	HasImm bool
	// Imm holds the immediate once the following word is known.
	Imm uint16
}

// Size returns the number of words the instruction occupies.
func (i *Instruction) Size() int {
	if i.HasImm {
		return 2
	}
	return 1
}

// IsMemory reports whether the instruction performs a memory transfer.
func (i *Instruction) IsMemory() bool {
	switch i.Op {
	case OpLD, OpST, OpLDM, OpSTM,
		OpLDPostInc, OpSTPostInc, OpLDPreInc, OpSTPreInc,
		OpLDPostDec, OpSTPostDec, OpLDPreDec, OpSTPreDec:
		return true
	}
	return false
}

// IsBranch reports whether the instruction writes the PC.
func (i *Instruction) IsBranch() bool {
	switch i.Op {
	case OpB, OpJ, OpBL, OpJL, OpJR:
		return true
	}
	return false
}

// IsCompare reports whether the instruction writes the predicate from a
// comparison or an input pin.
func (i *Instruction) IsCompare() bool {
	switch i.Op {
	case OpEQ, OpNE, OpLT, OpLTU, OpGE, OpGEU, OpBIT, OpINP:
		return true
	}
	return false
}

// RangeLen returns the number of registers a memory operation transfers.
func (i *Instruction) RangeLen() int {
	switch i.Op {
	case OpLDM, OpSTM:
		if i.Rd <= i.Rm {
			return int(i.Rm-i.Rd) + 1
		}
		return int(i.Rd-i.Rm) + 1
	}
	if i.IsMemory() {
		return 1
	}
	return 0
}
