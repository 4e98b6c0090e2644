package utils

import (
	"bufio"
	"io"
)

// NewLineReader returns input itself when it is already a *bufio.Reader and wraps it otherwise.
// Consumers reading answers from the same console must share one buffer, or the first reader
// swallows lines meant for the next.
func NewLineReader(input io.Reader) *bufio.Reader {
	if input == nil {
		return nil
	}
	if lineReader, alreadyBuffered := input.(*bufio.Reader); alreadyBuffered {
		return lineReader
	}
	return bufio.NewReader(input)
}
