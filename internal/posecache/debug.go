package posecache

import (
	"io"

	"github.com/banshee-data/vrtrack/internal/monitoring"
)

var logs = monitoring.NewStreams("[posecache] ")

// SetLogWriters configures the three logging streams for the posecache
// package. Pass nil for any writer to disable that stream.
func SetLogWriters(ops, diag, trace io.Writer) {
	logs.SetWriters(ops, diag, trace)
}

// opsf: runtime poll failures, handle exhaustion, bad config.
func opsf(format string, args ...interface{}) { logs.Opsf(format, args...) }

// diagf: init, volume lifecycle.
func diagf(format string, args ...interface{}) { logs.Diagf(format, args...) }

// tracef: per-frame event telemetry.
func tracef(format string, args ...interface{}) { logs.Tracef(format, args...) }
