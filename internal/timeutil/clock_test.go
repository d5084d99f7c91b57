package timeutil

import (
	"testing"
	"time"
)

func TestRealClock_Since(t *testing.T) {
	clock := RealClock{}
	past := time.Now().Add(-time.Second)

	if d := clock.Since(past); d < time.Second {
		t.Errorf("Since() returned %v, expected >= 1s", d)
	}
	if now := clock.Now(); now.Before(past) {
		t.Errorf("Now() = %v, before %v", now, past)
	}
}

func TestRealClock_NewTicker(t *testing.T) {
	clock := RealClock{}
	ticker := clock.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Error("ticker did not fire")
	}
	ticker.Reset(time.Millisecond)
}

func TestMockClock_Advance(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	clock.Advance(11 * time.Millisecond)

	if got := clock.Since(start); got != 11*time.Millisecond {
		t.Errorf("Since() = %v, want 11ms", got)
	}
	if !clock.Now().Equal(start.Add(11 * time.Millisecond)) {
		t.Errorf("Now() = %v", clock.Now())
	}
}

func TestMockClock_Ticker(t *testing.T) {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)
	ticker := clock.NewTicker(10 * time.Millisecond)

	if clock.TickerCount() != 1 {
		t.Fatalf("TickerCount() = %d, want 1", clock.TickerCount())
	}

	clock.Advance(5 * time.Millisecond)
	select {
	case <-ticker.C():
		t.Fatal("ticker fired too early")
	default:
	}

	clock.Advance(5 * time.Millisecond)
	select {
	case got := <-ticker.C():
		if !got.Equal(start.Add(10 * time.Millisecond)) {
			t.Errorf("tick time = %v", got)
		}
	default:
		t.Fatal("ticker did not fire after first interval")
	}

	// A full channel drops ticks instead of blocking Advance.
	clock.Advance(10 * time.Millisecond)
	clock.Advance(10 * time.Millisecond)
	<-ticker.C()
	select {
	case <-ticker.C():
		t.Error("expected the second tick to be dropped")
	default:
	}
}

func TestMockTicker_StopAndReset(t *testing.T) {
	clock := NewMockClock(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))
	ticker := clock.NewTicker(time.Second)
	ticker.Stop()
	clock.Advance(5 * time.Second)

	select {
	case <-ticker.C():
		t.Error("stopped ticker should not tick")
	default:
	}
	if !ticker.(*MockTicker).Stopped() {
		t.Error("Stopped() = false after Stop")
	}

	ticker.Reset(2 * time.Second)
	clock.Advance(2 * time.Second)
	select {
	case <-ticker.C():
	default:
		t.Error("reset ticker should tick")
	}
}
