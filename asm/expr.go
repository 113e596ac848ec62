package asm

import (
	"regexp"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var identRe = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*\b`)

var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "if": true, "else": true,
	"in": true, "for": true, "lambda": true,
}

// symbols maps label and equate names to their values.
type symbols map[string]int64

// missing returns the first identifier in expr that is neither a symbol
// nor a Starlark builtin.
func (syms symbols) missing(expr string) (string, bool) {
	for _, name := range identRe.FindAllString(expr, -1) {
		if keywords[name] {
			continue
		}
		if _, ok := syms[name]; ok {
			continue
		}
		if _, ok := starlark.Universe[name]; ok {
			continue
		}
		return name, true
	}
	return "", false
}

// eval evaluates expr as a Starlark integer expression with every symbol
// predeclared.
func (syms symbols) eval(expr string) (int64, error) {
	if name, ok := syms.missing(expr); ok {
		return 0, ErrLabelMissing(name)
	}

	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := make(starlark.StringDict, len(syms))
	for key, value := range syms {
		pred[key] = starlark.MakeInt64(value)
	}

	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", "rc = "+expr+"\n", pred)
	if err != nil {
		return 0, ErrParseExpression{Expr: expr, Err: err}
	}

	rc, ok := dict["rc"].(starlark.Int)
	if !ok {
		return 0, ErrParseExpression{Expr: expr}
	}
	value, ok := rc.Int64()
	if !ok {
		return 0, ErrParseExpression{Expr: expr}
	}
	return value, nil
}

// word evaluates expr and checks that it fits a 16-bit word, signed or
// unsigned.
func (syms symbols) word(expr string) (uint16, error) {
	v, err := syms.eval(expr)
	if err != nil {
		return 0, err
	}
	if v < -0x8000 || v > 0xFFFF {
		return 0, ErrValueRange
	}
	return uint16(v), nil
}
