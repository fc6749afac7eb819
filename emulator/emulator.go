// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/lmsm/cpu"
	"github.com/ezrec/lmsm/internal"
	"github.com/ezrec/lmsm/io"
)

// Emulator state. CPU + program listing + tape IO channel.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	Strict   bool         // If set, duplicate labels fail assembly.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape io.Tape // Tape IO channel.

	predefine map[string]string
}

// NewEmulator creates a new emulator with size words of memory.
func NewEmulator(size int) (emu *Emulator, err error) {
	cp, err := cpu.NewCpu(size)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:       cp,
		Program:   &cpu.Program{Size: size},
		predefine: map[string]string{},
	}

	emu.Cpu.SetChannel(&emu.Tape)

	return
}

// Define adds an assembly time equate.
func (emu *Emulator) Define(name string, value string) {
	emu.predefine[name] = value
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(emu.Cpu.Defines(),
		maps.All(emu.predefine),
	)
}

// Assemble the source text into the emulator's program, and reset.
func (emu *Emulator) Assemble(source string) (err error) {
	asm := &cpu.Assembler{
		Verbose:    emu.Verbose,
		Strict:     emu.Strict,
		MemorySize: len(emu.Cpu.Memory),
	}
	for name, value := range emu.Defines() {
		asm.Predefine(name, value)
	}

	prog, err := asm.Parse(strings.NewReader(source))
	if err != nil {
		return
	}

	emu.Program = prog

	return emu.Reset()
}

// Reset the machine, and load the current program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = false
	emu.Cpu.Reset()
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(emu.Program.Binary())
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d words", emu.Program.Len())
	}

	return
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		if emu.Cpu.Pc >= 0 && emu.Cpu.Pc < len(emu.Cpu.Memory) {
			return emu.Cpu.Memory[emu.Cpu.Pc]
		}
		return 0
	}

	return dbg.Codes[dbg.Index]
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Opcode == nil {
		return 0
	}

	return dbg.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	if emu.Cpu.Status == cpu.STATUS_HALTED {
		done = true
		err = emu.Cpu.Err
		return
	}

	err = emu.Cpu.Step()
	done = emu.Cpu.Status == cpu.STATUS_HALTED

	return
}

// Run ticks the emulator until it halts, faults, or ctx is done.
func (emu *Emulator) Run(ctx context.Context) (err error) {
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		default:
		}

		var done bool
		done, err = emu.Tick()
		if done || err != nil {
			return
		}
	}
}
