package cpu

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/lmsm/io"
)

func TestNewCpu(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)
	assert.Equal(MEMORY_SIZE, len(cpu.Memory))
	assert.Equal(STATUS_READY, cpu.Status)
	assert.Nil(cpu.Err)

	_, err = NewCpu(MEMORY_SIZE_MIN - 1)
	assert.ErrorIs(err, ErrMemorySize)
}

func TestCpuDefines(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(500)
	assert.NoError(err)

	defines := map[string]string{}
	for key, value := range cpu.Defines() {
		defines[key] = value
	}

	assert.Equal(map[string]string{
		"MEMORY_SIZE":   "500",
		"TOP_OF_MEMORY": "499",
		"STACK_BASE":    "500",
		"RETURN_BASE":   "399",
	}, defines)
}

func TestCpuReset(t *testing.T) {
	assert := assert.New(t)

	rom := &io.Rom{Data: []int{3, 4}}
	cpu := runCodes(t, 407, 920, 902, 0)
	cpu.SetChannel(rom)
	_, _ = rom.Receive()
	assert.Equal(1, rom.Remaining())

	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.Equal([]int{7}, cpu.Output)

	cpu.Reset()
	assert.Equal(STATUS_READY, cpu.Status)
	assert.Equal(0, cpu.Accumulator)
	assert.Equal(0, cpu.Pc)
	assert.Equal(Code(0), cpu.Instruction)
	assert.Equal(1000, cpu.Sp)
	assert.Equal(899, cpu.Rap)
	assert.Nil(cpu.Output)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(make([]Code, MEMORY_SIZE), cpu.Memory)
	assert.Equal(2, rom.Remaining())
}

func TestCpuLoad(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE_MIN)
	assert.NoError(err)

	assert.NoError(cpu.Load([]Code{1, 2, 3}))
	assert.Equal([]Code{1, 2, 3, 0}, cpu.Memory[:4])

	err = cpu.Load(make([]Code, MEMORY_SIZE_MIN+1))
	assert.ErrorIs(err, ErrProgramSize)
}

func TestCpuStep(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)
	assert.NoError(cpu.Load([]Code{405, 0}))

	assert.NoError(cpu.Step())
	assert.Equal(STATUS_RUNNING, cpu.Status)
	assert.Equal(5, cpu.Accumulator)
	assert.Equal(1, cpu.Pc)
	assert.Equal(Code(405), cpu.Instruction)

	assert.NoError(cpu.Step())
	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.Equal(2, cpu.Pc)
	assert.Equal(2, cpu.Ticks)

	// Halted is terminal.
	assert.NoError(cpu.Step())
	assert.Equal(2, cpu.Pc)
	assert.Equal(2, cpu.Ticks)
}

func TestCpuArithmetic(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		codes  []Code
		acc    int
		output []int
	}){
		{"ldi", []Code{442, 902, 0}, 42, []int{42}},
		{"lda", []Code{505, 902, 0, 0, 0, -17}, -17, []int{-17}},
		{"add", []Code{410, 105, 0, 0, 0, 32}, 42, nil},
		{"sub", []Code{410, 205, 0, 0, 0, 32}, -22, nil},
		{"sta", []Code{409, 310, 510, 902, 0}, 9, []int{9}},
		{"add_clamp", []Code{505, 105, 0, 0, 0, 900}, 999, nil},
		{"sub_clamp", []Code{410, 205, 206, 0, 0, 900, 900}, -999, nil},
	}

	for _, entry := range table {
		cpu := runCodes(t, entry.codes...)
		assert.Nil(cpu.Err, entry.name)
		assert.Equal(STATUS_HALTED, cpu.Status, entry.name)
		assert.Equal(entry.acc, cpu.Accumulator, entry.name)
		assert.Equal(entry.output, cpu.Output, entry.name)
	}
}

func TestCpuAddressing(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)

	cpu.Accumulator = 5
	assert.NoError(cpu.ExecuteOp(OP_STA, 150))
	assert.Equal(Code(5), cpu.Memory[50])
	assert.Equal(Code(0), cpu.Memory[150])

	cpu.Accumulator = 0
	assert.NoError(cpu.ExecuteOp(OP_LDA, 250))
	assert.Equal(5, cpu.Accumulator)

	assert.NoError(cpu.ExecuteOp(OP_BRA, 712))
	assert.Equal(12, cpu.Pc)
}

func TestCpuBranch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		codes  []Code
		output []int
	}){
		{"bra", []Code{603, 401, 902, 0}, nil},
		{"brz_taken", []Code{400, 704, 401, 902, 0}, nil},
		{"brz_not_taken", []Code{401, 704, 902, 0, 0}, []int{1}},
		{"brp_zero", []Code{400, 804, 401, 902, 0}, nil},
		{"brp_positive", []Code{401, 804, 902, 0, 0}, nil},
		{"brp_negative", []Code{505, 804, 902, 0, 0, -1}, []int{-1}},
		{"countdown", []Code{
			403,      // 0: LDI 3
			902,      // 1: OUT
			209,      // 2: SUB ONE
			705,      // 3: BRZ END
			601,      // 4: BRA 1
			902,      // 5: END OUT
			0,        // 6: HLT
			0, 0, 1}, // 9: ONE DAT 1
			[]int{3, 2, 1, 0}},
	}

	for _, entry := range table {
		cpu := runCodes(t, entry.codes...)
		assert.Nil(cpu.Err, entry.name)
		assert.Equal(entry.output, cpu.Output, entry.name)
	}
}

func TestCpuUnknownInstruction(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 401, 950, 902, 0)
	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.ErrorIs(cpu.Err, ErrUnknownInstruction)
	assert.Nil(cpu.Output)

	var fault *ErrFault
	assert.True(errors.As(cpu.Err, &fault))
	assert.Equal(1, fault.Ip)
	assert.Equal(Code(950), fault.Code)
}

func TestCpuBadStack(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 921, 902, 0)
	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.ErrorIs(cpu.Err, ErrBadStack)
	assert.Nil(cpu.Output)
}

func TestCpuDivisionByZero(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 405, 920, 400, 920, 933, 0)
	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.ErrorIs(cpu.Err, ErrDivisionByZero)
}

func TestCpuBadAddress(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE_MIN)
	assert.NoError(err)
	// Jump far outside memory through the data stack.
	cpu.Accumulator = 999
	assert.NoError(cpu.push())
	assert.NoError(cpu.Load([]Code{910}))

	err = cpu.Run(context.Background())
	assert.ErrorIs(err, ErrBadAddress)
	assert.Equal(STATUS_HALTED, cpu.Status)
	assert.Equal(err, cpu.Err)
}

func TestCpuRunOffEnd(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE_MIN)
	assert.NoError(err)
	for n := range cpu.Memory {
		cpu.Memory[n] = 100 // ADD 0
	}

	err = cpu.Run(context.Background())
	assert.ErrorIs(err, ErrBadAddress)
	assert.Equal(MEMORY_SIZE_MIN, cpu.Ticks)
}

func TestCpuInputOutput(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)
	rom := &io.Rom{Data: []int{42, 5000}}
	cpu.SetChannel(rom)
	assert.NoError(cpu.Load([]Code{901, 902, 901, 902, 0}))

	assert.NoError(cpu.Run(context.Background()))
	assert.Nil(cpu.Err)
	assert.Equal([]int{42, 999}, cpu.Output)
	assert.Equal([]int{42, 999}, rom.Sent)
}

func TestCpuInputEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 901, 0)
	assert.ErrorIs(cpu.Err, ErrInput)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)
	cpu.SetChannel(&io.Rom{})
	assert.NoError(cpu.Load([]Code{901, 0}))
	err = cpu.Run(context.Background())
	assert.ErrorIs(err, ErrInput)
	assert.ErrorIs(err, io.ErrChannelEmpty)
}

func TestCpuRunCancel(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_SIZE)
	assert.NoError(err)
	assert.NoError(cpu.Load([]Code{600})) // BRA 0

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = cpu.Run(ctx)
	assert.ErrorIs(err, context.Canceled)
	assert.Equal(STATUS_RUNNING, cpu.Status)
	assert.Nil(cpu.Err)
}

func TestCpuRunHalted(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 921)
	assert.ErrorIs(cpu.Run(context.Background()), ErrBadStack)
}

func TestCpuLoadImmediateRange(t *testing.T) {
	assert := assert.New(t)

	for v := ACCUMULATOR_MIN; v <= ACCUMULATOR_MAX; v++ {
		cpu, err := NewCpu(MEMORY_SIZE)
		assert.NoError(err)

		assert.NoError(cpu.ExecuteOp(OP_LDI, v))
		assert.NoError(cpu.ExecuteOp(OP_OUT, 0))
		assert.NoError(cpu.ExecuteOp(OP_HALT, 0))
		if !assert.Equal([]int{v}, cpu.Output) {
			break
		}
		assert.Equal(STATUS_HALTED, cpu.Status)
	}
}

func TestCpuString(t *testing.T) {
	assert := assert.New(t)

	cpu := runCodes(t, 407, 920, 0)
	text := cpu.String()
	assert.Contains(text, "status: halted")
	assert.Contains(text, "   acc: +007")
	assert.Contains(text, " stack: [7]")

	cpu = runCodes(t, 921)
	assert.Contains(cpu.String(), "halted (")
}

func TestStatusString(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("ready", STATUS_READY.String())
	assert.Equal("running", STATUS_RUNNING.String())
	assert.Equal("halted", STATUS_HALTED.String())
	assert.Equal("Status(9)", Status(9).String())
}
