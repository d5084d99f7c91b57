package monitoring

import (
	"io"
	"log"
	"sync/atomic"
)

// Streams is the ops/diag/trace logger triple an engine package exposes
// through its SetLogWriters. Streams start disabled.
//
//   - ops: actionable problems (feed failures, exhausted resources)
//   - diag: lifecycle (init, create/destroy, connect/disconnect)
//   - trace: per-frame telemetry
type Streams struct {
	prefix string
	ops    atomic.Pointer[log.Logger]
	diag   atomic.Pointer[log.Logger]
	trace  atomic.Pointer[log.Logger]
}

// NewStreams returns disabled streams whose lines start with prefix.
func NewStreams(prefix string) *Streams {
	return &Streams{prefix: prefix}
}

// SetWriters configures the three streams. A nil writer disables that stream.
func (s *Streams) SetWriters(ops, diag, trace io.Writer) {
	s.ops.Store(s.newLogger(ops))
	s.diag.Store(s.newLogger(diag))
	s.trace.Store(s.newLogger(trace))
}

func (s *Streams) newLogger(w io.Writer) *log.Logger {
	if w == nil {
		return nil
	}
	return log.New(w, s.prefix, log.LstdFlags|log.Lmicroseconds)
}

func (s *Streams) Opsf(format string, args ...interface{})   { printf(&s.ops, format, args) }
func (s *Streams) Diagf(format string, args ...interface{})  { printf(&s.diag, format, args) }
func (s *Streams) Tracef(format string, args ...interface{}) { printf(&s.trace, format, args) }

func printf(p *atomic.Pointer[log.Logger], format string, args []interface{}) {
	if l := p.Load(); l != nil {
		l.Printf(format, args...)
	}
}
