package stream

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// ForwardOutcome is the terminal state of a stdin forwarding loop. The
// forwarder never fails: every way it can stop is an expected end-of-life
// race between host input availability and child lifetime.
type ForwardOutcome int

const (
	// ForwardEOF means the host input source was exhausted and the
	// child's stdin was closed to propagate end-of-input.
	ForwardEOF ForwardOutcome = iota

	// ForwardChildClosed means a line write failed because the child
	// already closed its end of the pipe.
	ForwardChildClosed

	// ForwardStopped means the orchestrator stopped the forwarder after
	// the child exited, before the host produced more input.
	ForwardStopped
)

// String returns the outcome name.
func (o ForwardOutcome) String() string {
	switch o {
	case ForwardEOF:
		return "eof"
	case ForwardChildClosed:
		return "child_closed"
	case ForwardStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// StdinWriter guards the write end of the child's stdin pipe. Line writes
// are buffered and flushed per line so delivery never stalls behind the
// buffer, and the pipe is closed at most once no matter how the forwarder
// and the orchestrator race to close it.
type StdinWriter struct {
	mu     sync.Mutex
	buf    *bufio.Writer
	pipe   io.Closer
	closed bool
}

// NewStdinWriter wraps the child's stdin pipe.
func NewStdinWriter(pipe io.WriteCloser) *StdinWriter {
	return &StdinWriter{
		buf:  bufio.NewWriter(pipe),
		pipe: pipe,
	}
}

// WriteLine writes line plus a trailing newline and flushes immediately.
// After Close it reports os.ErrClosed.
func (w *StdinWriter) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return os.ErrClosed
	}
	if _, err := w.buf.WriteString(line); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	return w.buf.Flush()
}

// Close flushes and closes the pipe. Only the first call closes; later
// calls are no-ops. Closing signals end-of-input to the child.
func (w *StdinWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	//nolint:errcheck // a flush failure here means the child is gone; close anyway
	_ = w.buf.Flush()
	return w.pipe.Close()
}

// Forwarder relays line-buffered host input to the child's stdin on its
// own goroutine. It is the only cancellable part of an execution: once the
// child has exited the orchestrator calls Stop and the forwarder finishes
// with ForwardStopped instead of blocking on host input forever.
type Forwarder struct {
	src  io.Reader
	dst  *StdinWriter
	stop chan struct{}
	once sync.Once
	done chan struct{}

	outcome ForwardOutcome
}

// NewForwarder creates a forwarder from the host source to the child's
// stdin writer.
func NewForwarder(src io.Reader, dst *StdinWriter) *Forwarder {
	return &Forwarder{
		src:  src,
		dst:  dst,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins forwarding on a new goroutine.
func (f *Forwarder) Start() {
	go f.run()
}

// Stop tells the forwarder the child has exited. Safe to call more than
// once and before Start.
func (f *Forwarder) Stop() {
	f.once.Do(func() { close(f.stop) })
}

// Wait blocks until the forwarding loop has finished and returns its
// terminal outcome.
func (f *Forwarder) Wait() ForwardOutcome {
	<-f.done
	return f.outcome
}

func (f *Forwarder) run() {
	defer close(f.done)

	lines := make(chan string)
	exhausted := make(chan struct{})

	// The inner reader may stay blocked on the host source after the
	// child exits. It is abandoned in that state rather than interrupted;
	// an abandoned blocked read is the expected terminal state here, not
	// a fault, and at most one such read exists per execution.
	go func() {
		sc := bufio.NewScanner(f.src)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-f.stop:
				return
			}
		}
		close(exhausted)
	}()

	for {
		select {
		case <-f.stop:
			f.outcome = ForwardStopped
			return
		case <-exhausted:
			//nolint:errcheck // nothing to do if the child is already gone
			_ = f.dst.Close()
			f.outcome = ForwardEOF
			return
		case line := <-lines:
			if err := f.dst.WriteLine(line); err != nil {
				// The child closed its end first. Expected race,
				// never surfaced to the caller.
				f.outcome = ForwardChildClosed
				return
			}
		}
	}
}
