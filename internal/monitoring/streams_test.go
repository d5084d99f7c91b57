package monitoring

import (
	"bytes"
	"strings"
	"testing"
)

func TestStreams(t *testing.T) {
	s := NewStreams("[test] ")

	// Disabled until writers are set.
	s.Opsf("dropped")

	var ops, trace bytes.Buffer
	s.SetWriters(&ops, nil, &trace)
	s.Opsf("poll failed: %d", 3)
	s.Diagf("nobody hears this")
	s.Tracef("frame %d", 7)

	if got := ops.String(); !strings.HasPrefix(got, "[test] ") || !strings.HasSuffix(got, "poll failed: 3\n") {
		t.Errorf("ops = %q", got)
	}
	if strings.Contains(ops.String(), "dropped") {
		t.Error("message logged before SetWriters")
	}
	if got := trace.String(); !strings.HasSuffix(got, "frame 7\n") {
		t.Errorf("trace = %q", got)
	}

	s.SetWriters(nil, nil, nil)
	s.Opsf("after disable")
	if strings.Contains(ops.String(), "after disable") {
		t.Error("ops stream should be disabled")
	}
}
