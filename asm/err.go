package asm

import (
	"errors"

	"github.com/sarchlab/idlisim/internal/translate"
)

var f = translate.From

var (
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrOrgBackwards    = errors.New(f(".org moves backwards"))
	ErrDirective       = errors.New(f("directive unknown"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOperandCount    = errors.New(f("wrong number of operands"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrImmediateSP     = errors.New(f("sp cannot be the final operand"))
	ErrPinInvalid      = errors.New(f("pin out of range"))
	ErrCountInvalid    = errors.New(f("count out of range"))
	ErrValueRange      = errors.New(f("value out of range"))
	ErrImageFull       = errors.New(f("program exceeds memory"))
)

// ErrLabelMissing names an undefined symbol.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrParseExpression wraps an expression that did not evaluate to an
// integer.
type ErrParseExpression struct {
	Expr string
	Err  error
}

func (err ErrParseExpression) Error() string {
	if err.Err != nil {
		return f("'%v' is not a valid expression: %v", err.Expr, err.Err)
	}
	return f("'%v' is not a valid expression", err.Expr)
}

func (err ErrParseExpression) Unwrap() error {
	return err.Err
}

// ErrSyntax locates an error in the source.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}
