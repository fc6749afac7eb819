// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/pkg/errors"

	"github.com/ezrec/lmsm/cpu"
	"github.com/ezrec/lmsm/emulator"
	"github.com/ezrec/lmsm/translate"
)

const (
	EXIT_COMPILE = 1 // Assembly failed.
	EXIT_RUNTIME = 2 // The machine faulted.
)

var f = translate.From

// defines collects repeated -D NAME=VALUE flags.
type defines map[string]string

func (d defines) Set(text string) error {
	name, value, ok := strings.Cut(text, "=")
	if !ok || len(name) == 0 {
		return errors.Errorf("expected NAME=VALUE, not %q", text)
	}
	d[name] = value
	return nil
}

func (d defines) String() string {
	return fmt.Sprintf("%v", map[string]string(d))
}

func main() {
	var input string
	var output string
	var memory int
	var strict bool
	var verbose bool
	predefine := defines{}

	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.IntVar(&memory, "m", cpu.MEMORY_SIZE, "Memory size, in words")
	flag.BoolVar(&strict, "strict", false, "Reject duplicate labels")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.Var(predefine, "D", "Predefine NAME=VALUE for $() expressions")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("%v: expected one .lmsm source file, not %v", os.Args[0], flag.Args())
	}
	source := flag.Arg(0)

	emu, err := emulator.NewEmulator(memory)
	if err != nil {
		log.Fatal(errors.Wrap(err, "-m"))
	}
	emu.Verbose = verbose
	emu.Strict = strict
	for name, value := range predefine {
		emu.Define(name, value)
	}

	text, err := os.ReadFile(source)
	if err != nil {
		log.Fatal(err)
	}

	err = emu.Assemble(string(text))
	if err != nil {
		log.Print(errors.Wrap(err, source))
		os.Exit(EXIT_COMPILE)
	}

	if verbose {
		log.Printf("%v: %v", source, translate.Plural(emu.Program.Len(), "word", "words"))
	}

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatal(err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatal(err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = emu.Run(ctx)

	if verbose {
		log.Printf("%v: %v", source, translate.Plural(emu.Ticks(), "tick", "ticks"))
	}

	if err != nil {
		var runtime *emulator.ErrRuntime
		if errors.As(err, &runtime) {
			log.Printf("%v: %v", source, runtime)
			log.Print(f("machine state:\n%v", emu.Cpu.String()))
		} else {
			log.Print(errors.Wrap(err, source))
		}
		stop()
		os.Exit(EXIT_RUNTIME)
	}
}
