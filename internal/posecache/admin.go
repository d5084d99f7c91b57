package posecache

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gonum.org/v1/gonum/spatial/r3"
	"tailscale.com/tsweb"

	"github.com/banshee-data/vrtrack/internal/vr"
)

// tailBuffer is the number of events queued per tail client before new
// events are dropped.
const tailBuffer = 64

// PoseView is the JSON form of a role's pose on the debug page.
type PoseView struct {
	Role      string     `json:"role"`
	Index     int        `json:"index"` // -1 when unassigned
	Kind      string     `json:"kind"`
	Valid     bool       `json:"valid"`
	Connected bool       `json:"connected"`
	Position  r3.Vec     `json:"position"`
	Velocity  r3.Vec     `json:"velocity"`
	Rotation  [4]float64 `json:"rotation"` // w, x, y, z
}

// PoseViews returns the current pose of every role in both views.
func (m *Manager) PoseViews() []PoseView {
	snap := m.Snapshot()
	out := make([]PoseView, 0, vr.RoleCount*vr.PoseKindCount)
	for _, role := range vr.Roles {
		for kind := vr.PoseKind(0); int(kind) < vr.PoseKindCount; kind++ {
			view := PoseView{Role: role.String(), Index: -1, Kind: kind.String()}
			if pose, idx, ok := snap.DevicePose(role, kind); ok {
				q := pose.Rotation()
				view.Index = int(idx)
				view.Valid = pose.Valid
				view.Connected = pose.Connected
				view.Position = pose.Position()
				view.Velocity = pose.Velocity
				view.Rotation = [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
			}
			out = append(out, view)
		}
	}
	return out
}

// tailEvent is what the tail stream emits for each dispatched event.
type tailEvent struct {
	Type   string `json:"type"` // "button" or "overlap"
	Kind   string `json:"kind"`
	Button string `json:"button,omitempty"`
	Handle uint32 `json:"handle,omitempty"`
	Device string `json:"device"`
	Index  uint32 `json:"index"`
}

// tailListener forwards events to an SSE client without ever blocking the
// update pass.
type tailListener struct {
	ch chan tailEvent
}

func (t *tailListener) send(e tailEvent) {
	select {
	case t.ch <- e:
	default:
	}
}

func (t *tailListener) OnButtonEvent(e vr.ButtonEvent) {
	t.send(tailEvent{
		Type:   "button",
		Kind:   e.Kind.String(),
		Button: e.Button.String(),
		Device: e.Device.String(),
		Index:  uint32(e.Index),
	})
}

func (t *tailListener) OnOverlapEvent(e vr.OverlapEvent) {
	t.send(tailEvent{
		Type:   "overlap",
		Kind:   e.Kind.String(),
		Handle: uint32(e.Handle),
		Device: e.Device.String(),
		Index:  uint32(e.Index),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// AttachAdminRoutes attaches pose cache debugging endpoints to the given
// HTTP mux served at /debug/. These routes are accessible only over
// localhost/via Tailscale and are not publicly accessible.
func (m *Manager) AttachAdminRoutes(mux *http.ServeMux) {
	debug := tsweb.Debugger(mux)

	debug.KV("vrtrack session", m.id.String())
	debug.KVFunc("vrtrack frames", func() any { return m.Frames() })
	debug.KVFunc("vrtrack volumes", func() any { return m.VolumeCount() })
	debug.KVFunc("vrtrack listeners", func() any {
		b, o := m.ListenerCounts()
		return fmt.Sprintf("%d button, %d overlap", b, o)
	})

	debug.HandleFunc("vrtrack-poses", "current HMD and controller poses", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.PoseViews())
	})

	debug.HandleFunc("vrtrack-volumes", "live overlap volumes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, m.Volumes())
	})

	// Server-Sent Events stream of button and overlap events.
	debug.HandleSilentFunc("vrtrack-tail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no") // Disable buffering for nginx

		l := &tailListener{ch: make(chan tailEvent, tailBuffer)}
		m.RegisterButtonListener(l)
		m.RegisterOverlapListener(l)
		defer m.UnregisterButtonListener(l)
		defer m.UnregisterOverlapListener(l)

		// Send initial ping to establish connection
		w.Write([]byte(": ping\n\n"))
		flusher.Flush()

		for {
			select {
			case e := <-l.ch:
				payload, err := json.Marshal(e)
				if err != nil {
					return
				}
				if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
					return
				}
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	})
}
