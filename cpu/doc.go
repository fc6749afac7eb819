// Package cpu implements the machine and assembler for the little machine.
//
// The machine has a single accumulator, a program counter, and 1000 words of
// decimal memory by default. Instructions are three decimal digits; the
// hundreds digit selects the opcode family, and for the addressed families
// the low two digits are the operand. The top of memory holds a data stack
// growing down, and 100 words below it a return address stack growing up,
// both driven entirely through the accumulator.
//
// The assembler accepts `[LABEL] MNEMONIC [ARGUMENT]` source, with the
// pseudo instructions SPUSHI (LDI, SPUSH) and CALL (LDI, SPUSH, JAL),
// `;` comments, and compile-time `$(...)` expressions.
package cpu
