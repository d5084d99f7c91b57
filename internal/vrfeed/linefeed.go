// Package vrfeed provides vr.Runtime implementations: a programmable
// simulator and a line feed that decodes JSON frames from a serial tracker
// bridge (or any other io.ReadCloser).
package vrfeed

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/banshee-data/vrtrack/internal/vr"
)

// ErrFeedClosed is returned by Poll once the feed has been closed.
var ErrFeedClosed = errors.New("vrfeed: feed closed")

// maxLineSize bounds one JSON frame line.
const maxLineSize = 1 << 20

// LineFeed reads newline-delimited JSON frames from a port and serves the
// most recent one to Poll. Monitor must be running for frames to arrive.
type LineFeed[T io.ReadCloser] struct {
	port T

	mu     sync.Mutex
	latest vr.Frame
	have   bool
	closed bool

	frames    atomic.Uint64
	malformed atomic.Uint64
}

// NewLineFeed creates a LineFeed over port.
func NewLineFeed[T io.ReadCloser](port T) *LineFeed[T] {
	l := &LineFeed[T]{port: port}
	l.latest.Reset()
	return l
}

// Poll implements vr.Runtime. Before the first frame arrives every slot is
// reported invalid.
func (l *LineFeed[T]) Poll(f *vr.Frame) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrFeedClosed
	}
	if !l.have {
		f.Reset()
		return nil
	}
	*f = l.latest
	return nil
}

// Frames returns the number of frames decoded so far.
func (l *LineFeed[T]) Frames() uint64 { return l.frames.Load() }

// Malformed returns the number of lines that failed to decode.
func (l *LineFeed[T]) Malformed() uint64 { return l.malformed.Load() }

func (l *LineFeed[T]) handleLine(line []byte, scratch *vr.Frame) {
	if len(line) == 0 {
		return
	}
	if err := DecodeFrame(line, scratch); err != nil {
		n := l.malformed.Add(1)
		diagf("malformed frame line (%d so far): %v", n, err)
		return
	}

	l.mu.Lock()
	l.latest = *scratch
	l.have = true
	l.mu.Unlock()

	n := l.frames.Add(1)
	tracef("frame %d decoded (%d bytes)", n, len(line))
}

// Monitor reads lines from the port until ctx is done, the port reaches EOF
// or a read fails. Malformed lines are counted and skipped.
func (l *LineFeed[T]) Monitor(ctx context.Context) error {
	scan := bufio.NewScanner(l.port)
	scan.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineChan := make(chan []byte)
	scanErrChan := make(chan error, 1)

	// The blocking scan.Scan runs on its own goroutine so the outer loop can
	// still observe cancellation.
	go func() {
		defer close(lineChan)
		for scan.Scan() {
			line := append([]byte(nil), scan.Bytes()...)
			select {
			case lineChan <- line:
			case <-ctx.Done():
				return
			}
		}
		if err := scan.Err(); err != nil {
			select {
			case scanErrChan <- err:
			case <-ctx.Done():
			}
		}
	}()

	diagf("monitoring feed")
	var scratch vr.Frame
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-scanErrChan:
			if l.isClosed() {
				return nil
			}
			opsf("feed read failed: %v", err)
			return err

		case line, ok := <-lineChan:
			if !ok {
				select {
				case err := <-scanErrChan:
					if !l.isClosed() {
						opsf("feed read failed: %v", err)
						return err
					}
				default:
				}
				diagf("feed reached end of input")
				return nil
			}
			if l.isClosed() {
				return nil
			}
			l.handleLine(line, &scratch)
		}
	}
}

func (l *LineFeed[T]) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Close stops Poll from serving frames and closes the port. Closing twice
// is a no-op.
func (l *LineFeed[T]) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()
	diagf("feed closed")
	return l.port.Close()
}
