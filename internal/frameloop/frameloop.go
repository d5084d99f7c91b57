// Package frameloop drives a per-frame update at a fixed interval, the way a
// render loop would call the pose cache.
package frameloop

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/vrtrack/internal/monitoring"
	"github.com/banshee-data/vrtrack/internal/timeutil"
)

// Updater is called once per frame.
type Updater interface {
	Update()
}

// overrunLogEvery limits overrun logging to one line per this many overruns.
const overrunLogEvery = 1000

// Run calls u.Update on every tick of clock until ctx is done, and returns
// ctx.Err(). A frame that takes longer than interval is counted as an
// overrun in stats; ticks missed while a frame runs are dropped, never
// queued. stats may be nil.
func Run(ctx context.Context, clock timeutil.Clock, interval time.Duration, u Updater, stats *monitoring.FrameStats) error {
	if interval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", interval)
	}
	if stats == nil {
		stats = &monitoring.FrameStats{}
	}

	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	monitoring.Logf("frame loop started: interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("frame loop stopped: %s", stats.Snapshot())
			return ctx.Err()
		case <-ticker.C():
			start := clock.Now()
			u.Update()
			took := clock.Since(start)
			if stats.Record(took, interval) {
				if n := stats.Snapshot().Overruns; n%overrunLogEvery == 1 {
					monitoring.Logf("frame overrun: took %s, budget %s (%d overruns)", took, interval, n)
				}
			}
		}
	}
}
