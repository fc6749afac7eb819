package cpu

import (
	"iter"
)

// Opcode is a single assembled instruction with its source location.
type Opcode struct {
	LineNo    int      // Source line of the mnemonic.
	Ip        int      // Memory offset of the first word.
	Mnemonic  Mnemonic // Instruction name.
	Label     string   // Label defined by this instruction, if any.
	LinkLabel string   // Label whose offset is the operand, if any.
	Value     int      // Literal operand, when there is no LinkLabel.
	Codes     []Code   // Generated words; Mnemonic.Slots() of them.
}

// Program is the result of an assembly.
type Program struct {
	Opcodes []Opcode
	Size    int // Address space the binary is laid out in.
}

type Debug struct {
	*Opcode
	Index int
}

// Debug finds the opcode that generated the word at ip.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+len(op.Codes) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  ip - op.Ip,
			}
			break
		}
	}

	return
}

// Len returns the number of words used by the program.
func (prog *Program) Len() int {
	if len(prog.Opcodes) == 0 {
		return 0
	}

	last := prog.Opcodes[len(prog.Opcodes)-1]
	return last.Ip + len(last.Codes)
}

// Binary returns the word array of the program, sized to the full address space.
func (prog *Program) Binary() (bins []Code) {
	size := prog.Size
	if size == 0 {
		size = MEMORY_SIZE
	}

	bins = make([]Code, max(size, prog.Len()))
	for ip, code := range prog.Codes() {
		bins[ip] = code
	}

	return
}

// Codes iterates over the generated words by address.
func (prog *Program) Codes() iter.Seq2[int, Code] {
	return func(yield func(ip int, code Code) bool) {
		for _, op := range prog.Opcodes {
			for n, code := range op.Codes {
				if !yield(op.Ip+n, code) {
					return
				}
			}
		}
	}
}
