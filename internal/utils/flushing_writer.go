package utils

import (
	"io"
	"sync"
)

type flusher interface {
	Flush() error
}

// FlushingWriter carries restore progress narration and audit plan listings to the console.
// Each progress line is flushed as soon as it is written so an operator watching a long
// restore sees every "Moving ..." and status line while the move is still running.
type FlushingWriter struct {
	destination io.Writer
	flusher     flusher
	lineGuard   sync.Mutex
}

// NewFlushingWriter wraps a narration destination. A destination that is already a FlushingWriter is returned unchanged.
func NewFlushingWriter(destination io.Writer) io.Writer {
	switch typedDestination := destination.(type) {
	case nil:
		return nil
	case *FlushingWriter:
		return typedDestination
	}
	narrationWriter := &FlushingWriter{destination: destination}
	if bufferedDestination, flushable := destination.(flusher); flushable {
		narrationWriter.flusher = bufferedDestination
	}
	return narrationWriter
}

// Write emits one narration chunk and pushes it past any buffering in the destination.
// Concurrent observers never interleave partial lines.
func (narrationWriter *FlushingWriter) Write(line []byte) (int, error) {
	if narrationWriter == nil || narrationWriter.destination == nil {
		return 0, nil
	}

	narrationWriter.lineGuard.Lock()
	defer narrationWriter.lineGuard.Unlock()

	writtenCount, writeError := narrationWriter.destination.Write(line)
	if writeError != nil || narrationWriter.flusher == nil {
		return writtenCount, writeError
	}
	return writtenCount, narrationWriter.flusher.Flush()
}
