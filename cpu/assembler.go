// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"io"
	"log"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Assembler is a two phase assembler for the little machine.
//
// The first phase splits the source into tokens, and assigns each
// instruction its memory offset. The second phase resolves label references
// and generates the machine words.
//
// Literals are in [-999, 999], but only DAT stores a word as is. The
// operand of every other instruction is folded into the low two digits of
// its opcode, so it must be in [0, 99]; anything else fails with
// ErrOutOfRange. Use DAT and LDA to load other values.
type Assembler struct {
	Verbose    bool     // If set, verbosely logs the assembler actions.
	Strict     bool     // If set, duplicate labels are an error.
	MemorySize int      // Address space to assemble for; MEMORY_SIZE if zero.
	Opcode     []Opcode // List of parsed opcodes.

	Label  map[string]int    // Map of labels to memory offsets.
	Equate map[string]string // Map of equates visible to $() expressions.

	predefine map[string]string // Predefines
	source    []string          // Source lines, for error reporting.
}

// token is a single whitespace separated word of the source.
type token struct {
	word   string
	lineNo int
}

var reExpression = regexp.MustCompile(`\$\([^\$]*\)`)

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// memorySize returns the address space size.
func (asm *Assembler) memorySize() int {
	if asm.MemorySize == 0 {
		return MEMORY_SIZE
	}
	return asm.MemorySize
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + last.Mnemonic.Slots()
}

// syntaxError locates err at a source line.
func (asm *Assembler) syntaxError(lineno int, err error) error {
	var line string
	if lineno > 0 && lineno <= len(asm.source) {
		line = asm.source[lineno-1]
	}
	return &ErrSyntax{LineNo: lineno, Line: line, Err: err}
}

// isNumber returns true for an optionally negative run of decimal digits.
func isNumber(word string) bool {
	word = strings.TrimPrefix(word, "-")
	if len(word) == 0 {
		return false
	}
	for _, c := range word {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// valueOf parses a numeric literal.
func valueOf(word string) (value int, err error) {
	value, err = strconv.Atoi(word)
	if err != nil || value < ACCUMULATOR_MIN || value > ACCUMULATOR_MAX {
		value = 0
		err = ErrNumberRange(word)
	}
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int, err error) {
	defer func() {
		if err != nil {
			err = &ErrParseExpression{Expr: expr, Err: err}
		}
	}()

	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v, _err := strconv.Atoi(str)
		if _err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt(v)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrExpressionValue
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrExpressionValue
		return
	}
	value = int(st_int64)
	return
}

// scan splits the source into tokens, dropping comments and evaluating
// $() expressions.
func (asm *Assembler) scan(input io.Reader) (tokens []token, err error) {
	scanner := bufio.NewScanner(input)

	var lineno int
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1
		asm.source = append(asm.source, text)

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ := strings.Cut(text, ";")
		line = reExpression.ReplaceAllStringFunc(line, func(str string) string {
			value, _err := asm.parenEval(str[2 : len(str)-1])
			if _err != nil && err == nil {
				err = _err
			}
			return strconv.Itoa(value)
		})
		if err != nil {
			err = asm.syntaxError(lineno, err)
			return
		}

		for _, word := range strings.Fields(line) {
			tokens = append(tokens, token{word: word, lineNo: lineno})
		}
	}

	err = scanner.Err()
	if err != nil {
		// The failing line was never returned by the scanner.
		err = asm.syntaxError(lineno+1, err)
	}
	return
}

// parseTokens builds the opcode list, assigning memory offsets.
// Stops at the first error.
func (asm *Assembler) parseTokens(tokens []token) (err error) {
	size := asm.memorySize()

	for n := 0; n < len(tokens); n++ {
		tok := tokens[n]

		var op Opcode
		mn := Mnemonic(tok.word)
		if !mn.Valid() {
			// [LABEL] MNEMONIC
			op.Label = tok.word
			n++
			if n == len(tokens) {
				return asm.syntaxError(tok.lineNo, ErrUnknownInstruction)
			}
			tok = tokens[n]
			mn = Mnemonic(tok.word)
			if !mn.Valid() {
				return asm.syntaxError(tok.lineNo, ErrUnknownInstruction)
			}
		}
		op.Mnemonic = mn
		op.LineNo = tok.lineNo

		if mn.ArgRequired() {
			n++
			if n == len(tokens) {
				return asm.syntaxError(tok.lineNo, ErrArgRequired)
			}
			arg := tokens[n]
			if isNumber(arg.word) {
				op.Value, err = valueOf(arg.word)
				if err != nil {
					return asm.syntaxError(arg.lineNo, err)
				}
			} else {
				op.LinkLabel = arg.word
			}
		}

		op.Ip = asm.currentIp()
		if op.Ip+mn.Slots() > size {
			return asm.syntaxError(tok.lineNo, ErrProgramSize)
		}

		if len(op.Label) != 0 {
			_, ok := asm.Label[op.Label]
			switch {
			case !ok:
				asm.Label[op.Label] = op.Ip
			case asm.Strict:
				return asm.syntaxError(tok.lineNo, ErrLabelDuplicate)
			default:
				// First definition wins.
			}
		}

		asm.Opcode = append(asm.Opcode, op)
	}

	return
}

// generate resolves label references and encodes every opcode.
// Stops at the first error.
func (asm *Assembler) generate() (err error) {
	for n := range asm.Opcode {
		op := &asm.Opcode[n]

		value := op.Value
		if len(op.LinkLabel) != 0 {
			ip, ok := asm.Label[op.LinkLabel]
			if !ok {
				return asm.syntaxError(op.LineNo, ErrLabelMissing(op.LinkLabel))
			}
			value = ip
		}

		op.Codes, err = op.Mnemonic.Expand(value)
		if err != nil {
			return asm.syntaxError(op.LineNo, err)
		}

		if asm.Verbose {
			log.Printf("%03d: %v %v => %03d", op.Ip, op.Mnemonic, value, op.Codes)
		}
	}

	return
}

// Parse assembles an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	asm.Opcode = asm.Opcode[:0]
	asm.source = asm.source[:0]
	if asm.Label == nil {
		asm.Label = make(map[string]int, 16)
	}
	clear(asm.Label)
	asm.Equate = MemoryDefines(asm.memorySize())
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	tokens, err := asm.scan(input)
	if err != nil {
		return
	}

	err = asm.parseTokens(tokens)
	if err != nil {
		return
	}

	err = asm.generate()
	if err != nil {
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
		Size:    asm.memorySize(),
	}

	return
}

// Assemble assembles source text into a Program.
func (asm *Assembler) Assemble(source string) (prog *Program, err error) {
	return asm.Parse(strings.NewReader(source))
}
