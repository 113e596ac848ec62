package insts

import (
	"errors"
	"fmt"
)

// ErrDecodeFault is returned for instruction words that match no opcode.
var ErrDecodeFault = errors.New("decode fault")

// ErrEncode is returned when instruction fields do not fit their encoding.
var ErrEncode = errors.New("encode")

// DecodeError describes an undecodable instruction word.
type DecodeError struct {
	Word uint16
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode fault: undefined instruction 0x%04x", e.Word)
}

// Unwrap allows errors.Is(err, ErrDecodeFault).
func (e *DecodeError) Unwrap() error {
	return ErrDecodeFault
}

// Decoder decodes idli instruction words.
type Decoder struct{}

// NewDecoder creates a new idli instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 16-bit instruction word. The immediate, when the
// instruction has one, is not part of the word; callers set Imm once the
// following word has been fetched.
func (d *Decoder) Decode(word uint16) (*Instruction, error) {
	opc := match(word)
	if opc == nil {
		return nil, &DecodeError{Word: word}
	}

	inst := &Instruction{
		Op:     opc.Op,
		Format: opc.Format,
		Word:   word,
	}

	a := uint8(word>>8) & 0xF
	b := uint8(word>>4) & 0xF
	c := uint8(word) & 0xF

	switch opc.Format {
	case FormatRRR:
		inst.Rd, inst.Rn, inst.Rm = a, b, c
	case FormatRange:
		inst.Rd, inst.Rn, inst.Rm = a, b, c
	case FormatRR:
		inst.Rd, inst.Rn = a, b
	case FormatR:
		inst.Rd = a
	case FormatCmp:
		inst.Rn, inst.Rm = b, c
		inst.CondX = word&condXBit != 0
	case FormatPinCmp:
		inst.Pin = b & 0x3
		inst.CondX = word&condXBit != 0
	case FormatRC:
		inst.Rd, inst.Rm = a, c
	case FormatC:
		inst.Rm = c
	case FormatRPin:
		inst.Rd = a
		inst.Pin = b & 0x3
	case FormatPinC:
		inst.Pin = b & 0x3
		inst.Rm = c
	case FormatPin:
		inst.Pin = b & 0x3
	case FormatCount:
		inst.Count = c
	case FormatMask:
		inst.Mask = uint8(word)
		if inst.Mask == 0 {
			return nil, &DecodeError{Word: word}
		}
	}

	inst.HasImm = immField(opc.Format) && inst.Rm == RegImm

	return inst, nil
}

func match(word uint16) *Opcode {
	for i := range opcodes {
		if word&opcodes[i].Mask == opcodes[i].Match {
			return &opcodes[i]
		}
	}
	return nil
}

// Encode produces the instruction word followed by the immediate word, if
// any.
func Encode(inst *Instruction) ([]uint16, error) {
	opc, ok := opcodeByOp[inst.Op]
	if !ok {
		return nil, fmt.Errorf("%w: unknown opcode %d", ErrEncode, inst.Op)
	}

	if err := checkFields(inst, opc.Format); err != nil {
		return nil, err
	}

	word := opc.Match
	field := func(v uint8, shift uint) { word |= uint16(v&0xF) << shift }

	switch opc.Format {
	case FormatRRR, FormatRange:
		field(inst.Rd, 8)
		field(inst.Rn, 4)
		field(inst.Rm, 0)
	case FormatRR:
		field(inst.Rd, 8)
		field(inst.Rn, 4)
	case FormatR:
		field(inst.Rd, 8)
	case FormatCmp:
		field(inst.Rn, 4)
		field(inst.Rm, 0)
	case FormatPinCmp:
		field(inst.Pin, 4)
	case FormatRC:
		field(inst.Rd, 8)
		field(inst.Rm, 0)
	case FormatC:
		field(inst.Rm, 0)
	case FormatRPin:
		field(inst.Rd, 8)
		field(inst.Pin, 4)
	case FormatPinC:
		field(inst.Pin, 4)
		field(inst.Rm, 0)
	case FormatPin:
		field(inst.Pin, 4)
	case FormatCount:
		field(inst.Count, 0)
	case FormatMask:
		word |= uint16(inst.Mask)
	}

	if inst.CondX {
		word |= condXBit
	}

	if inst.HasImm {
		return []uint16{word, inst.Imm}, nil
	}
	return []uint16{word}, nil
}

func checkFields(inst *Instruction, f Format) error {
	if inst.Rd >= NumRegs || inst.Rn >= NumRegs || inst.Rm >= NumRegs {
		return fmt.Errorf("%w: register index out of range", ErrEncode)
	}
	if inst.Pin >= NumPins {
		return fmt.Errorf("%w: pin %d out of range", ErrEncode, inst.Pin)
	}
	if inst.Count > MaxCount {
		return fmt.Errorf("%w: count %d out of range", ErrEncode, inst.Count)
	}
	if inst.CondX && f != FormatCmp && f != FormatPinCmp {
		return fmt.Errorf("%w: %s has no x variant", ErrEncode, inst.Op)
	}
	if f == FormatMask && inst.Mask == 0 {
		return fmt.Errorf("%w: empty cex mask", ErrEncode)
	}
	if inst.HasImm && (!immField(f) || inst.Rm != RegImm) {
		return fmt.Errorf("%w: %s cannot take an immediate here", ErrEncode, inst.Op)
	}
	if !inst.HasImm && immField(f) && inst.Rm == RegImm {
		return fmt.Errorf("%w: operand r15 selects an immediate", ErrEncode)
	}
	return nil
}
