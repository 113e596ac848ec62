// Package asm implements a two-pass assembler for idli programs.
//
// Source lines hold optional "label:" prefixes, a mnemonic or directive
// and comma-separated operands. Text after ';' is a comment. Operands are
// registers (r0..r15, zr, lr, sp) or Starlark integer expressions over
// labels and equates. For b, bl and addpc an expression operand is the
// target address and is encoded relative to the following word.
//
// Directives:
//
//	.org EXPR          continue assembling at EXPR (forward only)
//	.equ NAME, EXPR    define a constant
//	.word EXPR, ...    emit data words
//	.space EXPR        emit EXPR zero words
package asm

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/idlisim/emu"
	"github.com/sarchlab/idlisim/insts"
)

var labelRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Statement is one source line that produces words.
type Statement struct {
	LineNo int
	Line   string
	Addr   uint16

	Mnemonic string
	Args     []string

	// Words holds the encoded output after the second pass.
	Words []uint16

	size int
}

// Program is the result of assembling a source file.
type Program struct {
	// Words is the image from address zero up to the last emitted word.
	Words []uint16
	// Labels maps every label to its address.
	Labels map[string]uint16
	// Statements lists the word-producing lines in address order.
	Statements []*Statement
}

// Assembler translates idli assembly into a word image.
type Assembler struct {
	Verbose bool // If set, logs each statement at debug level.

	predefine symbols
	syms      symbols
	labels    map[string]uint16
}

// Predefine defines an equate visible to every source assembled
// afterwards.
func (asm *Assembler) Predefine(name string, value int64) {
	if asm.predefine == nil {
		asm.predefine = symbols{}
	}
	asm.predefine[name] = value
}

// Assemble is a convenience wrapper assembling src with a fresh Assembler.
func Assemble(src string) ([]uint16, error) {
	prog, err := (&Assembler{}).Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return prog.Words, nil
}

// Parse assembles an input stream.
func (asm *Assembler) Parse(input io.Reader) (*Program, error) {
	asm.syms = symbols{}
	for k, v := range asm.predefine {
		asm.syms[k] = v
	}
	asm.labels = map[string]uint16{}

	stmts, err := asm.layout(input)
	if err != nil {
		return nil, err
	}

	prog := &Program{Labels: asm.labels, Statements: stmts}
	for _, st := range stmts {
		st.Words, err = asm.encode(st)
		if err != nil {
			return nil, &ErrSyntax{LineNo: st.LineNo, Line: st.Line, Err: err}
		}

		end := int(st.Addr) + len(st.Words)
		if end > emu.MemorySize {
			return nil, &ErrSyntax{LineNo: st.LineNo, Line: st.Line, Err: ErrImageFull}
		}
		if end > len(prog.Words) {
			prog.Words = append(prog.Words, make([]uint16, end-len(prog.Words))...)
		}
		copy(prog.Words[st.Addr:], st.Words)

		if asm.Verbose {
			logrus.WithFields(logrus.Fields{
				"line":  st.LineNo,
				"addr":  fmt.Sprintf("%04x", st.Addr),
				"words": fmt.Sprintf("%04x", st.Words),
			}).Debug(st.Line)
		}
	}

	return prog, nil
}

// layout is the first pass. It records labels, evaluates directives and
// sizes every statement.
func (asm *Assembler) layout(input io.Reader) ([]*Statement, error) {
	scanner := bufio.NewScanner(input)

	var stmts []*Statement
	addr := 0
	lineno := 0

	for scanner.Scan() {
		lineno++
		text := scanner.Text()
		line := strings.TrimSpace(strings.SplitN(text, ";", 2)[0])
		line = strings.ReplaceAll(line, "\t", " ")

		st, next, err := asm.layoutLine(line, lineno, addr)
		if err != nil {
			return nil, &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
		if next > emu.MemorySize {
			return nil, &ErrSyntax{LineNo: lineno, Line: line, Err: ErrImageFull}
		}
		if st != nil {
			stmts = append(stmts, st)
		}
		addr = next
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return stmts, nil
}

func (asm *Assembler) layoutLine(line string, lineno, addr int) (*Statement, int, error) {
	for {
		colon := strings.Index(line, ":")
		if colon < 0 {
			break
		}
		label := strings.TrimSpace(line[:colon])
		if !labelRe.MatchString(label) {
			break
		}
		if _, ok := asm.syms[label]; ok {
			return nil, addr, ErrLabelDuplicate
		}
		asm.syms[label] = int64(addr)
		asm.labels[label] = uint16(addr)
		line = strings.TrimSpace(line[colon+1:])
	}

	if line == "" {
		return nil, addr, nil
	}

	mnemonic, rest, _ := strings.Cut(line, " ")
	mnemonic = strings.ToLower(mnemonic)
	args := splitArgs(rest)

	st := &Statement{LineNo: lineno, Line: line, Addr: uint16(addr), Mnemonic: mnemonic, Args: args}

	switch mnemonic {
	case ".org":
		if len(args) != 1 {
			return nil, addr, ErrOperandCount
		}
		v, err := asm.syms.eval(args[0])
		if err != nil {
			return nil, addr, err
		}
		if v < int64(addr) {
			return nil, addr, ErrOrgBackwards
		}
		return nil, int(v), nil

	case ".equ":
		name, expr, err := equate(rest)
		if err != nil {
			return nil, addr, err
		}
		if _, ok := asm.syms[name]; ok {
			return nil, addr, ErrEquateDuplicate
		}
		v, err := asm.syms.eval(expr)
		if err != nil {
			return nil, addr, err
		}
		asm.syms[name] = v
		return nil, addr, nil

	case ".space":
		if len(args) != 1 {
			return nil, addr, ErrOperandCount
		}
		v, err := asm.syms.eval(args[0])
		if err != nil {
			return nil, addr, err
		}
		if v < 0 || v > emu.MemorySize {
			return nil, addr, ErrValueRange
		}
		st.size = int(v)

	case ".word":
		if len(args) == 0 {
			return nil, addr, ErrOperandCount
		}
		st.size = len(args)

	default:
		if strings.HasPrefix(mnemonic, ".") {
			return nil, addr, ErrDirective
		}
		opc, _, ok := insts.LookupMnemonic(mnemonic)
		if !ok {
			return nil, addr, ErrOpcodeInvalid
		}
		st.size = 1
		if n := len(args); n > 0 && finalIsOperand(opc.Format) {
			if _, isReg := register(args[n-1]); !isReg {
				st.size = 2
			}
		}
	}

	return st, addr + st.size, nil
}

func equate(rest string) (string, string, error) {
	rest = strings.TrimSpace(rest)
	idx := strings.IndexAny(rest, " \t,")
	if idx < 0 {
		return "", "", ErrEquateSyntax
	}
	name := rest[:idx]
	expr := strings.TrimSpace(strings.TrimLeft(rest[idx:], " \t,"))
	if !labelRe.MatchString(name) || expr == "" {
		return "", "", ErrEquateSyntax
	}
	return name, expr, nil
}

func splitArgs(rest string) []string {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// finalIsOperand reports whether the last operand of a format is the c
// field, which may hold an immediate.
func finalIsOperand(f insts.Format) bool {
	switch f {
	case insts.FormatRRR, insts.FormatCmp, insts.FormatRC, insts.FormatC, insts.FormatPinC:
		return true
	}
	return false
}

// register parses a register name.
func register(s string) (uint8, bool) {
	switch strings.ToLower(s) {
	case "zr":
		return insts.RegZero, true
	case "lr":
		return insts.RegLink, true
	case "sp":
		return insts.RegSP, true
	}
	var r uint8
	if n, err := fmt.Sscanf(strings.ToLower(s), "r%d", &r); n == 1 && err == nil &&
		r < insts.NumRegs && fmt.Sprintf("r%d", r) == strings.ToLower(s) {
		return r, true
	}
	return 0, false
}
