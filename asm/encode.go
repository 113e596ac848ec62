package asm

import (
	"github.com/sarchlab/idlisim/insts"
)

// encode is the second pass for one statement.
func (asm *Assembler) encode(st *Statement) ([]uint16, error) {
	switch st.Mnemonic {
	case ".space":
		return make([]uint16, st.size), nil
	case ".word":
		words := make([]uint16, len(st.Args))
		for i, arg := range st.Args {
			w, err := asm.syms.word(arg)
			if err != nil {
				return nil, err
			}
			words[i] = w
		}
		return words, nil
	}

	opc, condX, _ := insts.LookupMnemonic(st.Mnemonic)
	inst := &insts.Instruction{Op: opc.Op, Format: opc.Format, CondX: condX}
	args := st.Args

	want := operandCount(opc.Format)
	if len(args) != want {
		return nil, ErrOperandCount
	}

	var err error
	switch opc.Format {
	case insts.FormatRRR:
		if inst.Rd, err = reg(args[0]); err != nil {
			return nil, err
		}
		if inst.Rn, err = reg(args[1]); err != nil {
			return nil, err
		}
		err = asm.final(inst, st, args[2])
	case insts.FormatRange:
		if inst.Rd, err = reg(args[0]); err != nil {
			return nil, err
		}
		if inst.Rm, err = reg(args[1]); err != nil {
			return nil, err
		}
		inst.Rn, err = reg(args[2])
	case insts.FormatRR:
		if inst.Rd, err = reg(args[0]); err != nil {
			return nil, err
		}
		inst.Rn, err = reg(args[1])
	case insts.FormatR:
		inst.Rd, err = reg(args[0])
	case insts.FormatCmp:
		if inst.Rn, err = reg(args[0]); err != nil {
			return nil, err
		}
		err = asm.final(inst, st, args[1])
	case insts.FormatPinCmp, insts.FormatPin:
		inst.Pin, err = asm.pin(args[0])
	case insts.FormatRC:
		if inst.Rd, err = reg(args[0]); err != nil {
			return nil, err
		}
		err = asm.final(inst, st, args[1])
	case insts.FormatC:
		err = asm.final(inst, st, args[0])
	case insts.FormatRPin:
		if inst.Rd, err = reg(args[0]); err != nil {
			return nil, err
		}
		inst.Pin, err = asm.pin(args[1])
	case insts.FormatPinC:
		if inst.Pin, err = asm.pin(args[0]); err != nil {
			return nil, err
		}
		err = asm.final(inst, st, args[1])
	case insts.FormatCount:
		var v int64
		if v, err = asm.syms.eval(args[0]); err == nil {
			if v < 0 || v > insts.MaxCount {
				return nil, ErrCountInvalid
			}
			inst.Count = uint8(v)
		}
	case insts.FormatMask:
		inst.Mask, err = insts.ParseCondMask(args[0])
	}
	if err != nil {
		return nil, err
	}

	return insts.Encode(inst)
}

func operandCount(f insts.Format) int {
	switch f {
	case insts.FormatRRR, insts.FormatRange:
		return 3
	case insts.FormatRR, insts.FormatCmp, insts.FormatRC, insts.FormatRPin, insts.FormatPinC:
		return 2
	}
	return 1
}

func reg(s string) (uint8, error) {
	r, ok := register(s)
	if !ok {
		return 0, ErrRegisterInvalid
	}
	return r, nil
}

// final fills the c field from a register or an immediate expression.
func (asm *Assembler) final(inst *insts.Instruction, st *Statement, arg string) error {
	if r, ok := register(arg); ok {
		if r == insts.RegImm {
			return ErrImmediateSP
		}
		inst.Rm = r
		return nil
	}

	v, err := asm.syms.word(arg)
	if err != nil {
		return err
	}

	switch inst.Op {
	case insts.OpB, insts.OpBL, insts.OpADDPC:
		v -= st.Addr + 1
	}

	inst.Rm, inst.HasImm, inst.Imm = insts.RegImm, true, v
	return nil
}

func (asm *Assembler) pin(arg string) (uint8, error) {
	v, err := asm.syms.eval(arg)
	if err != nil {
		return 0, err
	}
	if v < 0 || v >= insts.NumPins {
		return 0, ErrPinInvalid
	}
	return uint8(v), nil
}
