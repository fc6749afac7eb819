package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		op   Op
		arg  int
	}){
		{0, OP_HALT, 0},
		{100, OP_ADD, 0},
		{199, OP_ADD, 99},
		{250, OP_SUB, 50},
		{312, OP_STA, 12},
		{407, OP_LDI, 7},
		{599, OP_LDA, 99},
		{601, OP_BRA, 1},
		{742, OP_BRZ, 42},
		{899, OP_BRP, 99},
		{901, OP_INP, 0},
		{902, OP_OUT, 0},
		{910, OP_JAL, 0},
		{911, OP_RET, 0},
		{920, OP_SPUSH, 0},
		{921, OP_SPOP, 0},
		{922, OP_SDUP, 0},
		{923, OP_SDROP, 0},
		{924, OP_SSWAP, 0},
		{930, OP_SADD, 0},
		{931, OP_SSUB, 0},
		{932, OP_SMUL, 0},
		{933, OP_SDIV, 0},
		{934, OP_SMAX, 0},
		{935, OP_SMIN, 0},
	}

	for _, entry := range table {
		op, arg, err := entry.code.Decode()
		assert.NoError(err, entry.code)
		assert.Equal(entry.op, op, int(entry.code))
		assert.Equal(entry.arg, arg, int(entry.code))
	}
}

func TestDecode_Unknown(t *testing.T) {
	assert := assert.New(t)

	for _, code := range []Code{1, 50, 99, 900, 903, 909, 912, 919, 925, 929, 936, 999, 1000, -1, -400} {
		_, _, err := code.Decode()
		assert.ErrorIs(err, ErrUnknownInstruction, int(code))
		assert.Equal(ErrOpcode(code), err)
	}
}

func TestMakeCode(t *testing.T) {
	assert := assert.New(t)

	// Every operation round trips through its encoding.
	for op := OP_HALT; op <= OP_SMIN; op++ {
		arg := 0
		if op.Operand() {
			arg = 37
		}
		code, err := MakeCode(op, arg)
		assert.NoError(err, op)

		dop, darg, err := code.Decode()
		assert.NoError(err, op)
		assert.Equal(op, dop)
		assert.Equal(arg, darg)
	}

	code, err := MakeCode(OP_OUT, 55)
	assert.NoError(err)
	assert.Equal(Code(902), code)
}

func TestMakeCode_Range(t *testing.T) {
	assert := assert.New(t)

	for _, arg := range []int{-1, 100, 999, -999} {
		_, err := MakeCode(OP_LDI, arg)
		assert.ErrorIs(err, ErrOutOfRange, arg)
		assert.Equal(ErrOperandRange(arg), err)
	}

	_, err := MakeCode(Op(99), 0)
	assert.True(errors.Is(err, ErrUnknownInstruction))
}

func TestCodeString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("HLT", Code(0).String())
	assert.Equal("ADD 12", Code(112).String())
	assert.Equal("SPUSH", Code(920).String())
	assert.Equal("DAT 950", Code(950).String())
	assert.Equal("DAT -3", Code(-3).String())
	assert.Equal("Op(-1)", Op(-1).String())
}

func TestMnemonic(t *testing.T) {
	assert := assert.New(t)

	for _, mn := range []Mnemonic{
		ASM_ADD, ASM_SUB, ASM_LDA, ASM_STA, ASM_BRA, ASM_BRZ, ASM_BRP,
		ASM_INP, ASM_OUT, ASM_HLT, ASM_COB, ASM_DAT, ASM_LDI, ASM_JAL,
		ASM_CALL, ASM_RET, ASM_SPUSH, ASM_SPUSHI, ASM_SPOP, ASM_SDUP,
		ASM_SDROP, ASM_SSWAP, ASM_SADD, ASM_SSUB, ASM_SMAX, ASM_SMIN,
		ASM_SMUL, ASM_SDIV,
	} {
		assert.True(mn.Valid(), mn)
	}

	for _, mn := range []Mnemonic{"", "add", "HALT", "FOO", "5", "SPUSHI5"} {
		assert.False(mn.Valid(), mn)
	}

	assert.Equal(3, ASM_CALL.Slots())
	assert.Equal(2, ASM_SPUSHI.Slots())
	assert.Equal(1, ASM_SPUSH.Slots())
	assert.Equal(1, ASM_DAT.Slots())

	assert.True(ASM_DAT.ArgRequired())
	assert.True(ASM_SPUSHI.ArgRequired())
	assert.False(ASM_JAL.ArgRequired())
	assert.False(ASM_HLT.ArgRequired())
}

func TestMnemonicExpand(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mn    Mnemonic
		value int
		codes []Code
	}){
		{ASM_ADD, 5, []Code{105}},
		{ASM_HLT, 0, []Code{0}},
		{ASM_COB, 0, []Code{0}},
		{ASM_DAT, -999, []Code{-999}},
		{ASM_DAT, 999, []Code{999}},
		{ASM_JAL, 0, []Code{910}},
		{ASM_SPUSHI, 1, []Code{401, 920}},
		{ASM_SPUSHI, 42, []Code{442, 920}},
		{ASM_CALL, 1, []Code{401, 920, 910}},
		{ASM_CALL, 17, []Code{417, 920, 910}},
	}

	for _, entry := range table {
		codes, err := entry.mn.Expand(entry.value)
		assert.NoError(err, entry.mn)
		assert.Equal(entry.codes, codes, entry.mn)
		assert.Equal(entry.mn.Slots(), len(codes), entry.mn)
	}

	_, err := ASM_CALL.Expand(150)
	assert.ErrorIs(err, ErrOutOfRange)

	_, err = ASM_BRA.Expand(-1)
	assert.ErrorIs(err, ErrOutOfRange)

	_, err = Mnemonic("NOP").Expand(0)
	assert.ErrorIs(err, ErrUnknownInstruction)
}
