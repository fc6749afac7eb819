package cpu

import (
	"fmt"
)

// Code is a single word of machine memory. Instructions are three decimal
// digits; data words hold any value in [-999, 999].
type Code int

// Op is a decoded machine operation.
type Op int

const (
	OP_HALT  = Op(0)  // HLT
	OP_ADD   = Op(1)  // ADD
	OP_SUB   = Op(2)  // SUB
	OP_STA   = Op(3)  // STA
	OP_LDI   = Op(4)  // LDI
	OP_LDA   = Op(5)  // LDA
	OP_BRA   = Op(6)  // BRA
	OP_BRZ   = Op(7)  // BRZ
	OP_BRP   = Op(8)  // BRP
	OP_INP   = Op(9)  // INP
	OP_OUT   = Op(10) // OUT
	OP_JAL   = Op(11) // JAL
	OP_RET   = Op(12) // RET
	OP_SPUSH = Op(13) // SPUSH
	OP_SPOP  = Op(14) // SPOP
	OP_SDUP  = Op(15) // SDUP
	OP_SDROP = Op(16) // SDROP
	OP_SSWAP = Op(17) // SSWAP
	OP_SADD  = Op(18) // SADD
	OP_SSUB  = Op(19) // SSUB
	OP_SMUL  = Op(20) // SMUL
	OP_SDIV  = Op(21) // SDIV
	OP_SMAX  = Op(22) // SMAX
	OP_SMIN  = Op(23) // SMIN
)

// opInfo is the encoding of a single operation.
type opInfo struct {
	name    string
	base    Code
	operand bool // Low two digits carry an address or immediate.
}

var opTable = [...]opInfo{
	OP_HALT:  {"HLT", 0, false},
	OP_ADD:   {"ADD", 100, true},
	OP_SUB:   {"SUB", 200, true},
	OP_STA:   {"STA", 300, true},
	OP_LDI:   {"LDI", 400, true},
	OP_LDA:   {"LDA", 500, true},
	OP_BRA:   {"BRA", 600, true},
	OP_BRZ:   {"BRZ", 700, true},
	OP_BRP:   {"BRP", 800, true},
	OP_INP:   {"INP", 901, false},
	OP_OUT:   {"OUT", 902, false},
	OP_JAL:   {"JAL", 910, false},
	OP_RET:   {"RET", 911, false},
	OP_SPUSH: {"SPUSH", 920, false},
	OP_SPOP:  {"SPOP", 921, false},
	OP_SDUP:  {"SDUP", 922, false},
	OP_SDROP: {"SDROP", 923, false},
	OP_SSWAP: {"SSWAP", 924, false},
	OP_SADD:  {"SADD", 930, false},
	OP_SSUB:  {"SSUB", 931, false},
	OP_SMUL:  {"SMUL", 932, false},
	OP_SDIV:  {"SDIV", 933, false},
	OP_SMAX:  {"SMAX", 934, false},
	OP_SMIN:  {"SMIN", 935, false},
}

// String returns the mnemonic of the operation.
func (op Op) String() string {
	if op < 0 || int(op) >= len(opTable) {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opTable[op].name
}

// Operand returns true if the operation carries an operand in its low two digits.
func (op Op) Operand() bool {
	if op < 0 || int(op) >= len(opTable) {
		return false
	}
	return opTable[op].operand
}

// Base returns the encoding of the operation with a zero operand.
func (op Op) Base() Code {
	return opTable[op].base
}

// MakeCode encodes an operation and its operand into a single word.
// Operations without an operand ignore arg.
func MakeCode(op Op, arg int) (code Code, err error) {
	if op < 0 || int(op) >= len(opTable) {
		err = ErrUnknownInstruction
		return
	}

	info := opTable[op]
	if !info.operand {
		code = info.base
		return
	}

	if arg < 0 || arg > 99 {
		err = ErrOperandRange(arg)
		return
	}

	code = info.base + Code(arg)
	return
}

// Decode decodes a word by its numeric range into an operation and operand.
func (code Code) Decode() (op Op, arg int, err error) {
	switch {
	case code == 0:
		op = OP_HALT
	case code >= 100 && code <= 899:
		// Family is the hundreds digit.
		op = Op(code / 100)
		arg = int(code % 100)
	case code == 901:
		op = OP_INP
	case code == 902:
		op = OP_OUT
	case code == 910:
		op = OP_JAL
	case code == 911:
		op = OP_RET
	case code >= 920 && code <= 924:
		op = OP_SPUSH + Op(code-920)
	case code >= 930 && code <= 935:
		op = OP_SADD + Op(code-930)
	default:
		err = ErrOpcode(code)
	}

	return
}

// String disassembles the word.
func (code Code) String() string {
	op, arg, err := code.Decode()
	if err != nil {
		return fmt.Sprintf("DAT %d", int(code))
	}
	if op.Operand() {
		return fmt.Sprintf("%v %d", op, arg)
	}
	return op.String()
}
