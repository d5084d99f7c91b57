// Package monitoring holds the process-level logger and the frame timing
// statistics the host loop reports.
package monitoring

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Logf is the process-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil sets a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// FrameStats accumulates update timings against a frame budget. It is safe
// for concurrent use: the loop records while debug pages read.
type FrameStats struct {
	mu       sync.Mutex
	frames   uint64
	overruns uint64
	last     time.Duration
	max      time.Duration
	total    time.Duration
}

// FrameSnapshot is a point-in-time copy of FrameStats.
type FrameSnapshot struct {
	Frames   uint64        `json:"frames"`
	Overruns uint64        `json:"overruns"`
	Last     time.Duration `json:"last_ns"`
	Max      time.Duration `json:"max_ns"`
	Mean     time.Duration `json:"mean_ns"`
}

func (s FrameSnapshot) String() string {
	return fmt.Sprintf("frames=%d overruns=%d last=%s max=%s mean=%s",
		s.Frames, s.Overruns, s.Last, s.Max, s.Mean)
}

// Record adds one frame that took d. It reports whether d exceeded budget;
// a non-positive budget never overruns.
func (s *FrameStats) Record(d, budget time.Duration) bool {
	overrun := budget > 0 && d > budget

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = d
	s.total += d
	if d > s.max {
		s.max = d
	}
	if overrun {
		s.overruns++
	}
	return overrun
}

// Snapshot returns the current totals.
func (s *FrameStats) Snapshot() FrameSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := FrameSnapshot{
		Frames:   s.frames,
		Overruns: s.overruns,
		Last:     s.last,
		Max:      s.max,
	}
	if s.frames > 0 {
		snap.Mean = s.total / time.Duration(s.frames)
	}
	return snap
}

// Reset clears every counter.
func (s *FrameStats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames, s.overruns = 0, 0
	s.last, s.max, s.total = 0, 0, 0
}
