package cpu

import (
	"errors"

	"github.com/ezrec/lmsm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrBadStack       = errors.New(f("bad stack"))
	ErrDivisionByZero = errors.New(f("division by zero"))
	ErrBadAddress     = errors.New(f("bad address"))
	ErrInput          = errors.New(f("input failed"))
	ErrMemorySize     = errors.New(f("memory size invalid"))
	ErrProgramSize    = errors.New(f("program exceeds memory"))

	// Shared by the assembler and instruction decode.
	ErrUnknownInstruction = errors.New(f("unknown instruction"))

	// Assembler errors
	ErrArgRequired     = errors.New(f("argument required"))
	ErrOutOfRange      = errors.New(f("number is out of range"))
	ErrBadLabel        = errors.New(f("bad label"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrExpressionValue = errors.New(f("expression is not an integer"))
)

// ErrLabelMissing is a reference to a label that is never defined.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

func (el ErrLabelMissing) Is(err error) bool {
	return err == ErrBadLabel
}

// ErrNumberRange is a numeric literal outside of [-999, 999].
type ErrNumberRange string

func (err ErrNumberRange) Error() string {
	return f("'%v' is out of range", string(err))
}

func (err ErrNumberRange) Is(target error) bool {
	return target == ErrOutOfRange
}

// ErrOperandRange is a value that does not fit in the two operand digits of an instruction.
type ErrOperandRange int

func (err ErrOperandRange) Error() string {
	return f("operand %v does not fit in an instruction", int(err))
}

func (err ErrOperandRange) Is(target error) bool {
	return target == ErrOutOfRange
}

// ErrOpcode is a word that decodes to no operation.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("bad opcode %v", int(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	if err == ErrUnknownInstruction {
		return true
	}
	_, ok = err.(ErrOpcode)
	return
}

// ErrSyntax locates an assembly error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseExpression is an assembly time expression that failed to evaluate.
type ErrParseExpression struct {
	Expr string
	Err  error
}

func (err *ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression: %v", err.Expr, err.Err)
}

func (err *ErrParseExpression) Unwrap() error {
	return err.Err
}

// ErrFault is a runtime fault, raised by the instruction at Ip.
type ErrFault struct {
	Ip   int
	Code Code
	Err  error
}

func (err *ErrFault) Error() string {
	return f("fault at %v (%v): %v", err.Ip, err.Code, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}
