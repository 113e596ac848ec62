package insts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCondMask is returned for malformed cex masks.
var ErrCondMask = errors.New("bad cex mask")

// RegName returns the assembler name of a register.
func RegName(r uint8) string {
	switch r {
	case RegZero:
		return "zr"
	case RegLink:
		return "lr"
	case RegSP:
		return "sp"
	}
	return fmt.Sprintf("r%d", r)
}

// ParseCondMask converts a string of 't' and 'f' flags, one per upcoming
// instruction starting with the next, into a cex mask.
func ParseCondMask(s string) (uint8, error) {
	if len(s) == 0 || len(s) > 7 {
		return 0, fmt.Errorf("%w: %q must hold 1 to 7 flags", ErrCondMask, s)
	}

	mask := uint8(1) << len(s)
	for i, ch := range s {
		switch ch {
		case 't':
			mask |= 1 << i
		case 'f':
		default:
			return 0, fmt.Errorf("%w: %q", ErrCondMask, s)
		}
	}
	return mask, nil
}

// FormatCondMask is the inverse of ParseCondMask.
func FormatCondMask(mask uint8) string {
	var sb strings.Builder
	for mask > 1 {
		if mask&1 != 0 {
			sb.WriteByte('t')
		} else {
			sb.WriteByte('f')
		}
		mask >>= 1
	}
	return sb.String()
}

// String renders the instruction in assembler syntax. Immediates and
// pc-relative offsets are printed as numbers.
func (i *Instruction) String() string {
	name := i.Op.Mnemonic()
	if i.CondX {
		name += "x"
	}

	c := RegName(i.Rm)
	if i.HasImm {
		c = fmt.Sprintf("%#x", i.Imm)
	}

	var ops []string
	switch i.Format {
	case FormatRRR:
		ops = []string{RegName(i.Rd), RegName(i.Rn), c}
	case FormatRange:
		ops = []string{RegName(i.Rd), RegName(i.Rm), RegName(i.Rn)}
	case FormatRR:
		ops = []string{RegName(i.Rd), RegName(i.Rn)}
	case FormatR:
		ops = []string{RegName(i.Rd)}
	case FormatCmp:
		ops = []string{RegName(i.Rn), c}
	case FormatPinCmp, FormatPin:
		ops = []string{fmt.Sprint(i.Pin)}
	case FormatRC:
		ops = []string{RegName(i.Rd), c}
	case FormatC:
		ops = []string{c}
	case FormatRPin:
		ops = []string{RegName(i.Rd), fmt.Sprint(i.Pin)}
	case FormatPinC:
		ops = []string{fmt.Sprint(i.Pin), c}
	case FormatCount:
		ops = []string{fmt.Sprint(i.Count)}
	case FormatMask:
		ops = []string{FormatCondMask(i.Mask)}
	}

	if len(ops) == 0 {
		return name
	}
	return name + " " + strings.Join(ops, ", ")
}

// Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Words []uint16
	Inst  *Instruction
	Err   error

	// Cond is 't' or 'f' when the instruction sits inside a cex window
	// and 0 otherwise.
	Cond byte
}

// String renders the line as address, raw words, text and cex annotation.
func (l Line) String() string {
	raw := make([]string, len(l.Words))
	for i, w := range l.Words {
		raw[i] = fmt.Sprintf("%04x", w)
	}

	text := ".word"
	if l.Inst != nil {
		text = l.Inst.String()
	} else if len(l.Words) > 0 {
		text = fmt.Sprintf(".word 0x%04x", l.Words[0])
	}

	s := fmt.Sprintf("%04x:  %-10s %s", l.Addr, strings.Join(raw, " "), text)
	if l.Cond != 0 {
		s += "  [" + string(l.Cond) + "]"
	}
	return s
}

// Disassemble walks a word image starting at base. Undecodable words are
// emitted as data lines carrying their decode error.
func Disassemble(words []uint16, base uint16) []Line {
	d := NewDecoder()
	var lines []Line
	var cond uint8

	for pc := 0; pc < len(words); {
		line := Line{Addr: base + uint16(pc), Words: words[pc : pc+1]}

		inst, err := d.Decode(words[pc])
		if err != nil {
			line.Err = err
			lines = append(lines, line)
			pc++
			continue
		}

		if inst.HasImm && pc+1 < len(words) {
			inst.Imm = words[pc+1]
			line.Words = words[pc : pc+2]
		}
		line.Inst = inst

		if cond > 1 {
			line.Cond = 'f'
			if cond&1 != 0 {
				line.Cond = 't'
			}
			cond >>= 1
		}

		u := inst.MicroOp()
		if u.CondWrite {
			cond = u.CondData
		}

		lines = append(lines, line)
		pc += len(line.Words)
	}

	return lines
}
