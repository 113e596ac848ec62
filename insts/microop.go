package insts

// DestKind selects where a micro-operation's result slices go.
type DestKind uint8

// Destination kinds.
const (
	DestNone DestKind = iota
	DestReg
	DestPC
	DestUART
	DestPred
	DestMem
)

// SrcKind selects where an operand's slices come from.
type SrcKind uint8

// Operand source kinds. SrcMem reads the fetch buffer, which holds either
// the trailing immediate or load data.
const (
	SrcZero SrcKind = iota
	SrcReg
	SrcPC
	SrcMem
	SrcUART
	SrcPin
	SrcPred
)

// Operand is one ALU input.
type Operand struct {
	Kind SrcKind
	Reg  uint8
}

// ALUOp is the arithmetic unit function.
type ALUOp uint8

// ALU functions.
const (
	ALUAdd ALUOp = iota
	ALUAnd
	ALUOr
	ALUXor
)

// CmpKind selects how the predicate is derived at the end of a beat.
type CmpKind uint8

// Comparison kinds.
const (
	CmpNone CmpKind = iota
	CmpEQ
	CmpNE
	CmpLT
	CmpLTU
	CmpGE
	CmpGEU
	CmpBit
	CmpPin
	CmpPut
)

// ShiftKind selects a shift unit function.
type ShiftKind uint8

// Shift kinds.
const (
	ShiftNone ShiftKind = iota
	ShiftSRL
	ShiftSRA
	ShiftROR
	ShiftROL
)

// IsRight reports whether the shift moves bits towards bit 0.
func (s ShiftKind) IsRight() bool {
	return s == ShiftSRL || s == ShiftSRA || s == ShiftROR
}

// AuxKind is a secondary write performed alongside the destination.
type AuxKind uint8

// Auxiliary writes.
const (
	AuxNone AuxKind = iota
	AuxLink
	AuxMemFromDest
	AuxMemFromLeft
)

// MemKind is the transfer direction of a memory micro-sequence.
type MemKind uint8

// Memory kinds.
const (
	MemNone MemKind = iota
	MemLoad
	MemStore
)

// CountKind is the chain started by a counter instruction.
type CountKind uint8

// Counter kinds.
const (
	CountNone CountKind = iota
	CountCarry
	CountAndP
	CountOrP
)

// PinOp is an output pin update.
type PinOp uint8

// Pin operations.
const (
	PinNone PinOp = iota
	PinOut
	PinOutInv
	PinOutPred
)

// MicroOp is the control word that drives one beat of the datapath.
type MicroOp struct {
	Dest    DestKind
	DestReg uint8

	Left  Operand
	Right Operand

	ALU     ALUOp
	Invert  bool
	CarryIn bool

	Cmp   CmpKind
	Shift ShiftKind
	Aux   AuxKind

	CondWrite bool
	CondData  uint8

	Mem      MemKind
	MemFirst uint8
	MemLast  uint8
	MemDown  bool

	Count    CountKind
	CountImm uint8

	Pin      PinOp
	PinIndex uint8

	// SetsCarry marks micro-operations whose carry-out becomes the carry
	// seen by a following carry chain.
	SetsCarry bool
	// Imm is set when the right operand is the trailing immediate.
	Imm bool
}

func reg(r uint8) Operand {
	return Operand{Kind: SrcReg, Reg: r}
}

var zero = Operand{Kind: SrcZero}

// MicroOp lowers the instruction to the control word for its first beat.
// Memory instructions describe their address beat here; the data beats are
// sequenced by the execution controller.
func (i *Instruction) MicroOp() MicroOp {
	u := MicroOp{}

	right := reg(i.Rm)
	if i.HasImm {
		right = Operand{Kind: SrcMem}
		u.Imm = true
	}

	switch i.Op {
	case OpADD, OpSUB, OpAND, OpANDN, OpOR, OpXOR:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = reg(i.Rn), right
		switch i.Op {
		case OpADD:
			u.SetsCarry = true
		case OpSUB:
			u.Invert, u.CarryIn, u.SetsCarry = true, true, true
		case OpAND:
			u.ALU = ALUAnd
		case OpANDN:
			u.ALU, u.Invert = ALUAnd, true
		case OpOR:
			u.ALU = ALUOr
		case OpXOR:
			u.ALU = ALUXor
		}

	case OpLD, OpST:
		u.Left, u.Right = reg(i.Rn), right
		u.Aux = AuxMemFromDest
		u.MemFirst, u.MemLast = i.Rd, i.Rd
		u.Mem = memKind(i.Op == OpLD)

	case OpLDM, OpSTM:
		u.Left, u.Right = reg(i.Rn), zero
		u.Aux = AuxMemFromLeft
		u.MemFirst, u.MemLast = i.Rd, i.Rm
		u.MemDown = i.Rd > i.Rm
		u.Mem = memKind(i.Op == OpLDM)

	case OpLDPostInc, OpSTPostInc, OpLDPreInc, OpSTPreInc,
		OpLDPostDec, OpSTPostDec, OpLDPreDec, OpSTPreDec:
		u.Dest, u.DestReg = DestReg, i.Rn
		u.Left, u.Right = reg(i.Rn), zero
		u.MemFirst, u.MemLast = i.Rd, i.Rd
		switch i.Op {
		case OpLDPostInc, OpSTPostInc, OpLDPreInc, OpSTPreInc:
			u.CarryIn = true
		default:
			u.Invert = true
		}
		switch i.Op {
		case OpLDPostInc, OpSTPostInc, OpLDPostDec, OpSTPostDec:
			u.Aux = AuxMemFromLeft
		default:
			u.Aux = AuxMemFromDest
		}
		switch i.Op {
		case OpLDPostInc, OpLDPreInc, OpLDPostDec, OpLDPreDec:
			u.Mem = MemLoad
		default:
			u.Mem = MemStore
		}

	case OpINC, OpDEC:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = reg(i.Rn), zero
		u.SetsCarry = true
		if i.Op == OpINC {
			u.CarryIn = true
		} else {
			u.Invert = true
		}

	case OpSRL, OpSRA, OpROR, OpROL:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = reg(i.Rn), zero
		u.Shift = map[Op]ShiftKind{
			OpSRL: ShiftSRL, OpSRA: ShiftSRA, OpROR: ShiftROR, OpROL: ShiftROL,
		}[i.Op]
		u.SetsCarry = u.Shift.IsRight()

	case OpNOT:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = reg(i.Rn), zero
		u.ALU, u.Invert = ALUXor, true

	case OpURX:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = zero, Operand{Kind: SrcUART}

	case OpGETP:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = zero, Operand{Kind: SrcPred}

	case OpEQ, OpNE, OpLT, OpLTU, OpGE, OpGEU, OpBIT:
		u.Dest = DestPred
		u.Left, u.Right = reg(i.Rn), right
		u.Invert, u.CarryIn, u.SetsCarry = true, true, true
		u.Cmp = map[Op]CmpKind{
			OpEQ: CmpEQ, OpNE: CmpNE, OpLT: CmpLT, OpLTU: CmpLTU,
			OpGE: CmpGE, OpGEU: CmpGEU, OpBIT: CmpBit,
		}[i.Op]
		if i.CondX {
			u.CondWrite, u.CondData = true, CondRunX
		}

	case OpINP:
		u.Dest = DestPred
		u.Left, u.Right = zero, zero
		u.Cmp, u.PinIndex = CmpPin, i.Pin
		if i.CondX {
			u.CondWrite, u.CondData = true, CondRunX
		}

	case OpADDPC:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = Operand{Kind: SrcPC}, right
		u.SetsCarry = true

	case OpB, OpBL:
		u.Dest = DestPC
		u.Left, u.Right = Operand{Kind: SrcPC}, right
		if i.Op == OpBL {
			u.Aux = AuxLink
		}

	case OpJ, OpJL:
		u.Dest = DestPC
		u.Left, u.Right = zero, right
		if i.Op == OpJL {
			u.Aux = AuxLink
		}

	case OpJR:
		u.Dest = DestPC
		u.Left, u.Right = reg(RegLink), right

	case OpIN:
		u.Dest, u.DestReg = DestReg, i.Rd
		u.Left, u.Right = zero, Operand{Kind: SrcPin}
		u.PinIndex = i.Pin

	case OpOUT, OpOUTN:
		u.Left, u.Right = zero, right
		u.PinIndex = i.Pin
		u.Pin = PinOut
		if i.Op == OpOUTN {
			u.Pin = PinOutInv
		}

	case OpOUTP:
		u.Pin, u.PinIndex = PinOutPred, i.Pin

	case OpUTX:
		u.Dest = DestUART
		u.Left, u.Right = zero, right

	case OpPUTP:
		u.Dest, u.Cmp = DestPred, CmpPut
		u.Left, u.Right = zero, right

	case OpCARRY:
		u.Count, u.CountImm = CountCarry, i.Count
	case OpANDP:
		u.Count, u.CountImm = CountAndP, i.Count
	case OpORP:
		u.Count, u.CountImm = CountOrP, i.Count

	case OpCEX:
		u.CondWrite, u.CondData = true, i.Mask
	}

	return u
}

func memKind(load bool) MemKind {
	if load {
		return MemLoad
	}
	return MemStore
}

// LoadStep is the control word for one data beat of a load into reg: the
// register receives the word in the fetch buffer.
func LoadStep(r uint8) MicroOp {
	return MicroOp{
		Dest: DestReg, DestReg: r,
		Left: zero, Right: Operand{Kind: SrcMem},
	}
}

// StoreStep is the control word for one data beat of a store from reg: the
// register's slices go to the memory write buffer.
func StoreStep(r uint8) MicroOp {
	return MicroOp{
		Dest: DestMem,
		Left: reg(r), Right: zero,
	}
}
