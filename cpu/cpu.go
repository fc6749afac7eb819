package cpu

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"strconv"

	"github.com/ezrec/lmsm/io"
)

// Channel is the I/O channel used by INP and OUT.
type Channel io.Channel

const (
	MEMORY_SIZE         = 1000 // Classic memory size, in words.
	MEMORY_SIZE_MIN     = 200  // Smallest memory that fits code, data and return stack.
	RETURN_STACK_OFFSET = 100  // Return stack base, in words below the top of memory.

	ACCUMULATOR_MAX = 999
	ACCUMULATOR_MIN = -999
)

// Status is the run status of the machine.
type Status int

const (
	STATUS_READY   = Status(0) // ready
	STATUS_RUNNING = Status(1) // running
	STATUS_HALTED  = Status(2) // halted
)

func (s Status) String() string {
	switch s {
	case STATUS_READY:
		return "ready"
	case STATUS_RUNNING:
		return "running"
	case STATUS_HALTED:
		return "halted"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// MemoryDefines returns the assembler predefines for a memory size.
func MemoryDefines(size int) map[string]string {
	top := size - 1
	return map[string]string{
		"MEMORY_SIZE":   strconv.Itoa(size),
		"TOP_OF_MEMORY": strconv.Itoa(top),
		"STACK_BASE":    strconv.Itoa(size),
		"RETURN_BASE":   strconv.Itoa(top - RETURN_STACK_OFFSET),
	}
}

// Cpu is the simulation context of the little machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Accumulator int    // Accumulator register.
	Pc          int    // Program counter.
	Instruction Code   // Current instruction register.
	Sp          int    // Data stack pointer.
	Rap         int    // Return address pointer.
	Status      Status // Run status.
	Err         error  // Fault that halted the machine, if any.
	Memory      []Code // Addressable memory.
	Output      []int  // Values emitted by OUT, in order.

	Ticks int // Steps executed since reset.

	channel Channel
}

// NewCpu creates a new machine with size words of memory.
func NewCpu(size int) (cpu *Cpu, err error) {
	if size < MEMORY_SIZE_MIN {
		err = ErrMemorySize
		return
	}

	cpu = &Cpu{
		Memory: make([]Code, size),
	}
	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(MemoryDefines(len(cpu.Memory)))
}

// SetChannel sets the channel used by INP and OUT. A nil channel makes
// INP fault, and OUT only records to Output.
func (cpu *Cpu) SetChannel(channel Channel) {
	cpu.channel = channel
}

// Reset zeroes the registers and memory, and empties both stacks.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Accumulator = 0
	cpu.Pc = 0
	cpu.Instruction = 0
	cpu.Status = STATUS_READY
	cpu.Err = nil
	cpu.Output = nil
	cpu.Ticks = 0
	clear(cpu.Memory)
	cpu.Sp = cpu.StackBase()
	cpu.Rap = cpu.ReturnBase()

	if cpu.channel != nil {
		cpu.channel.Rewind()
	}
}

// Load copies a program into memory, starting at address 0.
func (cpu *Cpu) Load(program []Code) (err error) {
	if len(program) > len(cpu.Memory) {
		err = ErrProgramSize
		return
	}

	copy(cpu.Memory, program)
	return
}

// String returns the current machine state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{"status", "acc", "pc", "ir", "sp", "rap", "stack", "return"}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "status":
			strval = cpu.Status.String()
			if cpu.Err != nil {
				strval += " (" + cpu.Err.Error() + ")"
			}
		case "acc":
			strval = fmt.Sprintf("%+04d", cpu.Accumulator)
		case "pc":
			strval = fmt.Sprintf("%03d", cpu.Pc)
		case "ir":
			strval = fmt.Sprintf("%03d %v", int(cpu.Instruction), cpu.Instruction)
		case "sp":
			strval = fmt.Sprintf("%03d", cpu.Sp)
		case "rap":
			strval = fmt.Sprintf("%03d", cpu.Rap)
		case "stack":
			strval = fmt.Sprintf("%v", cpu.Stack())
		case "return":
			strval = fmt.Sprintf("%v", cpu.ReturnStack())
		}
		text += fmt.Sprintf("% 6s: %v\n", reg, strval)
	}

	return
}

// clamp limits a value to the accumulator range.
func clamp(value int) int {
	return min(max(value, ACCUMULATOR_MIN), ACCUMULATOR_MAX)
}

// fault halts the machine with an error raised by the instruction at ip.
func (cpu *Cpu) fault(ip int, code Code, err error) error {
	cpu.Err = &ErrFault{Ip: ip, Code: code, Err: err}
	cpu.Status = STATUS_HALTED

	if cpu.Verbose {
		log.Printf("cpu: %v", cpu.Err)
	}

	return cpu.Err
}

// Step fetches, decodes and executes a single instruction.
// Once the machine is halted, Step does nothing.
func (cpu *Cpu) Step() (err error) {
	if cpu.Status == STATUS_HALTED {
		return
	}
	cpu.Status = STATUS_RUNNING

	ip := cpu.Pc
	if ip < 0 || ip >= len(cpu.Memory) {
		return cpu.fault(ip, 0, ErrBadAddress)
	}

	code := cpu.Memory[ip]
	cpu.Instruction = code
	cpu.Pc++
	cpu.Ticks++

	err = cpu.Execute(code)
	cpu.Accumulator = clamp(cpu.Accumulator)
	if err != nil {
		return cpu.fault(ip, code, err)
	}

	return
}

// Run steps the machine until it halts, faults, or ctx is done.
// The context is checked between steps.
func (cpu *Cpu) Run(ctx context.Context) (err error) {
	if cpu.Status == STATUS_HALTED {
		return cpu.Err
	}

	cpu.Status = STATUS_RUNNING
	for cpu.Status != STATUS_HALTED {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		err = cpu.Step()
		if err != nil {
			return
		}
	}

	return
}

// Execute executes a single word, as if it had just been fetched.
// The accumulator is not clamped; Step does that after every execution.
func (cpu *Cpu) Execute(code Code) (err error) {
	op, arg, err := code.Decode()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%03d: %03d %v", cpu.Pc-1, int(code), code)
	}

	return cpu.ExecuteOp(op, arg)
}

// ExecuteOp executes a decoded operation. For addressed operations arg is
// reduced to an address in the first hundred words.
func (cpu *Cpu) ExecuteOp(op Op, arg int) (err error) {
	addr := arg % 100
	if addr < 0 {
		addr += 100
	}

	switch op {
	case OP_HALT:
		cpu.Status = STATUS_HALTED
	case OP_ADD:
		cpu.Accumulator += int(cpu.Memory[addr])
	case OP_SUB:
		cpu.Accumulator -= int(cpu.Memory[addr])
	case OP_STA:
		cpu.Memory[addr] = Code(cpu.Accumulator)
	case OP_LDI:
		cpu.Accumulator = arg
	case OP_LDA:
		cpu.Accumulator = int(cpu.Memory[addr])
	case OP_BRA:
		cpu.Pc = addr
	case OP_BRZ:
		if cpu.Accumulator == 0 {
			cpu.Pc = addr
		}
	case OP_BRP:
		if cpu.Accumulator >= 0 {
			cpu.Pc = addr
		}
	case OP_INP:
		err = cpu.input()
	case OP_OUT:
		err = cpu.output()
	case OP_JAL:
		err = cpu.call()
	case OP_RET:
		err = cpu.popReturn()
	case OP_SPUSH:
		err = cpu.push()
	case OP_SPOP:
		err = cpu.pop()
	case OP_SDUP:
		err = cpu.stackDup()
	case OP_SDROP:
		err = cpu.stackDrop()
	case OP_SSWAP:
		err = cpu.stackSwap()
	case OP_SADD:
		err = cpu.stackBinary(stackAdd)
	case OP_SSUB:
		err = cpu.stackBinary(stackSub)
	case OP_SMUL:
		err = cpu.stackBinary(stackMul)
	case OP_SDIV:
		err = cpu.stackBinary(stackDiv)
	case OP_SMAX:
		err = cpu.stackBinary(stackMax)
	case OP_SMIN:
		err = cpu.stackBinary(stackMin)
	default:
		err = ErrUnknownInstruction
	}

	return
}

// input reads the accumulator from the channel. Blocks until the channel
// supplies a value.
func (cpu *Cpu) input() (err error) {
	if cpu.channel == nil {
		err = ErrInput
		return
	}

	value, err := cpu.channel.Receive()
	if err != nil {
		err = errors.Join(ErrInput, err)
		return
	}

	cpu.Accumulator = value
	return
}

// output records the accumulator, and sends it to the channel.
func (cpu *Cpu) output() (err error) {
	cpu.Output = append(cpu.Output, cpu.Accumulator)

	if cpu.channel != nil {
		err = cpu.channel.Send(cpu.Accumulator)
	}

	return
}
