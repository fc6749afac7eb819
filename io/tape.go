package io

import (
	"bufio"
	"io"
	"strconv"
)

// Tape provides sequential decimal I/O over byte streams.
// Input values are whitespace separated integers; output values are
// written one per line.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	scanner *bufio.Scanner
	reader  io.Reader
}

var _ Channel = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Receive reads the next integer from the input stream.
func (tc *Tape) Receive() (value int, err error) {
	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	// Input may be swapped between reads.
	if tc.scanner == nil || tc.reader != tc.Input {
		tc.scanner = bufio.NewScanner(tc.Input)
		tc.scanner.Split(bufio.ScanWords)
		tc.reader = tc.Input
	}

	if !tc.scanner.Scan() {
		err = tc.scanner.Err()
		if err == nil {
			err = ErrChannelEmpty
		}
		return
	}

	word := tc.scanner.Text()
	value, err = strconv.Atoi(word)
	if err != nil {
		err = ErrParseNumber(word)
	}

	return
}

// Send writes a value to the output stream, followed by a newline.
func (tc *Tape) Send(value int) (err error) {
	if tc.Output == nil {
		return
	}

	_, err = io.WriteString(tc.Output, strconv.Itoa(value)+"\n")
	return
}
