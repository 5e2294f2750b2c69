package stream

import (
	"errors"
	"fmt"
	"io"
)

// Multiplex copies r to every sink, one byte at a time, until end-of-stream.
//
// Single-byte copies keep the skew between two concurrently multiplexed
// streams (the stdout and stderr of one child) as small as a two-goroutine
// design allows, so their interleaving on a shared terminal approximates
// the child's emission order. No ordering guarantee exists across streams:
// a child that writes rapidly to both may still show either stream ahead
// of the other in the merged view. Within one stream every sink receives
// the identical byte sequence, in order.
//
// On end-of-stream every sink is flushed exactly once, in list order.
func Multiplex(r io.Reader, sinks []Sink) error {
	var buf [1]byte
	for {
		n, err := r.Read(buf[:])
		if n > 0 {
			for _, s := range sinks {
				if _, werr := s.Write(buf[:1]); werr != nil {
					return fmt.Errorf("writing to sink: %w", werr)
				}
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return flushAll(sinks)
			}
			return fmt.Errorf("reading stream: %w", err)
		}
	}
}

// flushAll flushes each sink once, in list order, even when an earlier
// flush fails. The first failure is reported.
func flushAll(sinks []Sink) error {
	var first error
	for _, s := range sinks {
		if err := s.Flush(); err != nil && first == nil {
			first = fmt.Errorf("flushing sink: %w", err)
		}
	}
	return first
}
