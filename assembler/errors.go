package assembler

import (
	"fmt"

	"github.com/lc3toolchain/lc3/parser"
)

// ErrorKind categorizes an assembler (semantic) error, kept distinct from
// parser.ErrorKind: these are errors in meaning, not in syntax, and are
// collected during Pass 2 rather than during parsing.
type ErrorKind int

const (
	ErrorUndefinedSymbol ErrorKind = iota
	ErrorOffsetOutOfRange
	ErrorImmediateOutOfRange
	ErrorInvalidFillOperand
	ErrorTrapVectorOutOfRange
)

// Error is a semantic error produced while encoding a program.
type Error struct {
	Span    parser.Span
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorList collects every semantic error found during Pass 2. Assembly
// never stops at the first error: each failing instruction or directive
// still contributes a best-effort (zero-filled) word so the segment list
// stays addressable; the presence of any error signals overall failure.
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) add(span parser.Span, kind ErrorKind, message string) {
	el.Errors = append(el.Errors, &Error{Span: span, Kind: kind, Message: message})
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Error() string {
	s := ""
	for _, e := range el.Errors {
		s += e.Error() + "\n"
	}
	return s
}

func rangeMessage(op string, value int32, width uint) string {
	minV, maxV := signedRange(width)
	return fmt.Sprintf("%s offset out of range (%d to %d): got %d", op, minV, maxV, value)
}

func signedRange(width uint) (int32, int32) {
	minV := -(int32(1) << (width - 1))
	maxV := (int32(1) << (width - 1)) - 1
	return minV, maxV
}
