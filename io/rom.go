package io

// Rom supplies a fixed list of input values, and records the output.
type Rom struct {
	Data []int // Input values, in order.
	Sent []int // Output values, in order.

	readIndex int
}

var _ Channel = (*Rom)(nil)

// Rewind restarts the input, and discards the output.
func (rc *Rom) Rewind() {
	rc.readIndex = 0
	rc.Sent = nil
}

// Receive returns the next input value.
func (rc *Rom) Receive() (value int, err error) {
	if rc.readIndex >= len(rc.Data) {
		err = ErrChannelEmpty
		return
	}

	value = rc.Data[rc.readIndex]
	rc.readIndex++
	return
}

// Send records an output value.
func (rc *Rom) Send(value int) error {
	rc.Sent = append(rc.Sent, value)
	return nil
}

// Remaining returns the number of unread input values.
func (rc *Rom) Remaining() int {
	return len(rc.Data) - rc.readIndex
}
