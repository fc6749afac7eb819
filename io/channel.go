// Package io provides the I/O channels of the little machine.
// A channel supplies the decimal values read by INP, and receives the
// values written by OUT.
package io

// Channel defines the interface for all I/O channels.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive returns the next input value, blocking until one is available.
	Receive() (value int, err error)
	// Send writes a single output value to the channel.
	Send(value int) error
}
