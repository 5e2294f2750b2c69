// Package stream contains the byte-level plumbing between the child
// process pipes and the caller's sinks.
package stream

import (
	"bufio"
	"io"
)

// Sink is a destination for copied stream bytes. Writes arrive in stream
// order; Flush pushes any buffered bytes through to the underlying
// destination. Ownership stays with the caller; the multiplexer only
// writes and flushes.
type Sink interface {
	io.Writer
	Flush() error
}

type flusher interface {
	Flush() error
}

// NewSink adapts an arbitrary writer into a Sink. Flush delegates to the
// writer when it has a Flush method and is a no-op otherwise.
func NewSink(w io.Writer) Sink {
	if s, ok := w.(Sink); ok {
		return s
	}
	return &writerSink{w: w}
}

// Buffered wraps w in a buffered sink whose Flush drains the buffer.
func Buffered(w io.Writer) Sink {
	return bufio.NewWriter(w)
}

type writerSink struct {
	w io.Writer
}

func (s *writerSink) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

func (s *writerSink) Flush() error {
	if f, ok := s.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
