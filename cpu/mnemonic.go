package cpu

// Mnemonic is an assembly language instruction name.
type Mnemonic string

const (
	ASM_ADD    = Mnemonic("ADD")
	ASM_SUB    = Mnemonic("SUB")
	ASM_LDA    = Mnemonic("LDA")
	ASM_STA    = Mnemonic("STA")
	ASM_BRA    = Mnemonic("BRA")
	ASM_BRZ    = Mnemonic("BRZ")
	ASM_BRP    = Mnemonic("BRP")
	ASM_INP    = Mnemonic("INP")
	ASM_OUT    = Mnemonic("OUT")
	ASM_HLT    = Mnemonic("HLT")
	ASM_COB    = Mnemonic("COB") // Coffee break; alias of HLT.
	ASM_DAT    = Mnemonic("DAT")
	ASM_LDI    = Mnemonic("LDI")
	ASM_JAL    = Mnemonic("JAL")
	ASM_CALL   = Mnemonic("CALL") // LDI, SPUSH, JAL
	ASM_RET    = Mnemonic("RET")
	ASM_SPUSH  = Mnemonic("SPUSH")
	ASM_SPUSHI = Mnemonic("SPUSHI") // LDI, SPUSH
	ASM_SPOP   = Mnemonic("SPOP")
	ASM_SDUP   = Mnemonic("SDUP")
	ASM_SDROP  = Mnemonic("SDROP")
	ASM_SSWAP  = Mnemonic("SSWAP")
	ASM_SADD   = Mnemonic("SADD")
	ASM_SSUB   = Mnemonic("SSUB")
	ASM_SMAX   = Mnemonic("SMAX")
	ASM_SMIN   = Mnemonic("SMIN")
	ASM_SMUL   = Mnemonic("SMUL")
	ASM_SDIV   = Mnemonic("SDIV")
)

// mnemonicOp maps the single word mnemonics to their operation.
var mnemonicOp = map[Mnemonic]Op{
	ASM_ADD:   OP_ADD,
	ASM_SUB:   OP_SUB,
	ASM_LDA:   OP_LDA,
	ASM_STA:   OP_STA,
	ASM_BRA:   OP_BRA,
	ASM_BRZ:   OP_BRZ,
	ASM_BRP:   OP_BRP,
	ASM_INP:   OP_INP,
	ASM_OUT:   OP_OUT,
	ASM_HLT:   OP_HALT,
	ASM_COB:   OP_HALT,
	ASM_LDI:   OP_LDI,
	ASM_JAL:   OP_JAL,
	ASM_RET:   OP_RET,
	ASM_SPUSH: OP_SPUSH,
	ASM_SPOP:  OP_SPOP,
	ASM_SDUP:  OP_SDUP,
	ASM_SDROP: OP_SDROP,
	ASM_SSWAP: OP_SSWAP,
	ASM_SADD:  OP_SADD,
	ASM_SSUB:  OP_SSUB,
	ASM_SMAX:  OP_SMAX,
	ASM_SMIN:  OP_SMIN,
	ASM_SMUL:  OP_SMUL,
	ASM_SDIV:  OP_SDIV,
}

// Valid returns true if the mnemonic is part of the instruction set.
func (mn Mnemonic) Valid() bool {
	switch mn {
	case ASM_DAT, ASM_CALL, ASM_SPUSHI:
		return true
	}
	_, ok := mnemonicOp[mn]
	return ok
}

// ArgRequired returns true if the mnemonic must be followed by an argument.
func (mn Mnemonic) ArgRequired() bool {
	switch mn {
	case ASM_ADD, ASM_SUB, ASM_LDA, ASM_STA, ASM_BRA, ASM_BRZ, ASM_BRP,
		ASM_DAT, ASM_LDI, ASM_CALL, ASM_SPUSHI:
		return true
	}
	return false
}

// Slots returns the number of memory words the mnemonic assembles into.
func (mn Mnemonic) Slots() int {
	switch mn {
	case ASM_CALL:
		return 3
	case ASM_SPUSHI:
		return 2
	}
	return 1
}

// Expand encodes the mnemonic with its resolved value.
func (mn Mnemonic) Expand(value int) (codes []Code, err error) {
	switch mn {
	case ASM_DAT:
		codes = []Code{Code(value)}
		return
	case ASM_SPUSHI, ASM_CALL:
		var ldi Code
		ldi, err = MakeCode(OP_LDI, value)
		if err != nil {
			return
		}
		codes = []Code{ldi, OP_SPUSH.Base()}
		if mn == ASM_CALL {
			codes = append(codes, OP_JAL.Base())
		}
		return
	}

	op, ok := mnemonicOp[mn]
	if !ok {
		err = ErrUnknownInstruction
		return
	}

	code, err := MakeCode(op, value)
	if err != nil {
		return
	}

	codes = []Code{code}
	return
}
