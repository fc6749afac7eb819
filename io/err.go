package io

import (
	"errors"

	"github.com/ezrec/lmsm/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelEmpty = errors.New(f("channel empty"))
)

// ErrParseNumber is input that is not a decimal integer.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}
