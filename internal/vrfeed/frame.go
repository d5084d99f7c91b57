package vrfeed

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// WirePose is one slot's pose on a JSON line. Either Matrix (3x4 row-major)
// or Position plus an optional Rotation (w, x, y, z) places the device.
type WirePose struct {
	Index           int          `json:"index"`
	Matrix          *[12]float64 `json:"matrix,omitempty"`
	Position        [3]float64   `json:"position"`
	Rotation        *[4]float64  `json:"rotation,omitempty"`
	Velocity        [3]float64   `json:"velocity"`
	AngularVelocity [3]float64   `json:"angular_velocity"`
	Valid           *bool        `json:"valid,omitempty"`     // default true
	Connected       *bool        `json:"connected,omitempty"` // default true
	Class           string       `json:"class,omitempty"`
}

// WireController is one slot's controller state on a JSON line.
type WireController struct {
	Index     int          `json:"index"`
	PacketNum uint32       `json:"packet"`
	Pressed   uint64       `json:"pressed"`
	Touched   uint64       `json:"touched"`
	Axis      [][2]float32 `json:"axis,omitempty"`
}

// WireFrame is the JSON line format emitted by tracker bridges:
//
//	{"render":[...],"game":[...],"controllers":[...],"roles":{"hmd":0,"right_hand":1}}
//
// When game is omitted the render poses are used for both views.
type WireFrame struct {
	Render      []WirePose       `json:"render"`
	Game        []WirePose       `json:"game,omitempty"`
	Controllers []WireController `json:"controllers,omitempty"`
	Roles       map[string]int   `json:"roles,omitempty"`
}

func parseClass(s string) (vr.DeviceClass, error) {
	switch s {
	case "", "invalid":
		return vr.ClassInvalid, nil
	case "hmd":
		return vr.ClassHMD, nil
	case "controller":
		return vr.ClassController, nil
	case "generic_tracker", "tracker":
		return vr.ClassGenericTracker, nil
	case "tracking_reference", "base_station":
		return vr.ClassTrackingReference, nil
	}
	return vr.ClassInvalid, fmt.Errorf("unknown device class %q", s)
}

func slot(i int) (vr.DeviceIndex, error) {
	idx := vr.DeviceIndex(i)
	if i < 0 || !idx.Valid() {
		return vr.InvalidDeviceIndex, fmt.Errorf("device index %d out of range", i)
	}
	return idx, nil
}

func vec(v [3]float64) r3.Vec { return r3.Vec{X: v[0], Y: v[1], Z: v[2]} }

func (p WirePose) pose() (vr.TrackedDevicePose, error) {
	class, err := parseClass(p.Class)
	if err != nil {
		return vr.TrackedDevicePose{}, err
	}

	var transform geom.Matrix34
	switch {
	case p.Matrix != nil:
		transform = geom.Matrix34(*p.Matrix)
	case p.Rotation != nil:
		r := p.Rotation
		transform = geom.FromRotation(quat.Number{Real: r[0], Imag: r[1], Jmag: r[2], Kmag: r[3]}, vec(p.Position))
	default:
		transform = geom.Translation(p.Position[0], p.Position[1], p.Position[2])
	}

	pose := vr.TrackedDevicePose{
		Transform:       transform,
		Velocity:        vec(p.Velocity),
		AngularVelocity: vec(p.AngularVelocity),
		Valid:           p.Valid == nil || *p.Valid,
		Connected:       p.Connected == nil || *p.Connected,
		Class:           class,
	}
	// Overlap tests invert the transform as a rigid one, so anything
	// non-finite, scaled, sheared or mirrored is unusable.
	if !transform.IsFinite() || !transform.IsRigid() {
		pose.Valid = false
	}
	return pose, nil
}

func decodePoses(dst *[vr.MaxTrackedDeviceCount]vr.TrackedDevicePose, poses []WirePose) error {
	for _, wp := range poses {
		idx, err := slot(wp.Index)
		if err != nil {
			return err
		}
		pose, err := wp.pose()
		if err != nil {
			return fmt.Errorf("slot %d: %w", wp.Index, err)
		}
		dst[idx] = pose
	}
	return nil
}

// DecodeFrame parses one JSON line into f. f is Reset first, so slots the
// line does not mention are invalid. On error f is left Reset.
func DecodeFrame(line []byte, f *vr.Frame) error {
	f.Reset()

	var wf WireFrame
	if err := json.Unmarshal(line, &wf); err != nil {
		return fmt.Errorf("decode frame: %w", err)
	}
	if err := wf.apply(f); err != nil {
		f.Reset()
		return fmt.Errorf("decode frame: %w", err)
	}
	return nil
}

func (wf *WireFrame) apply(f *vr.Frame) error {
	if err := decodePoses(&f.Render, wf.Render); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if wf.Game == nil {
		f.Game = f.Render
	} else if err := decodePoses(&f.Game, wf.Game); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	for _, wc := range wf.Controllers {
		idx, err := slot(wc.Index)
		if err != nil {
			return fmt.Errorf("controllers: %w", err)
		}
		c := vr.ControllerState{
			Valid:         true,
			PacketNum:     wc.PacketNum,
			ButtonPressed: wc.Pressed,
			ButtonTouched: wc.Touched,
		}
		for i, a := range wc.Axis {
			if i >= len(c.Axis) {
				break
			}
			c.Axis[i] = vr.Axis{X: a[0], Y: a[1]}
		}
		f.Controllers[idx] = c
	}

	for name, i := range wf.Roles {
		role, ok := vr.ParseDevice(name)
		if !ok {
			return fmt.Errorf("roles: unknown role %q", name)
		}
		idx, err := slot(i)
		if err != nil {
			// Negative or out-of-range means unassigned.
			continue
		}
		f.Roles[role] = idx
	}
	return nil
}

// EncodeFrame renders f in the JSON line format. Only valid poses and
// controller states are included. Used by test bridges and the simulator.
func EncodeFrame(f *vr.Frame) ([]byte, error) {
	var wf WireFrame
	wf.Render = encodePoses(&f.Render)
	if f.Game != f.Render {
		wf.Game = encodePoses(&f.Game)
	}
	for i, c := range f.Controllers {
		if !c.Valid {
			continue
		}
		wc := WireController{Index: i, PacketNum: c.PacketNum, Pressed: c.ButtonPressed, Touched: c.ButtonTouched}
		for _, a := range c.Axis {
			wc.Axis = append(wc.Axis, [2]float32{a.X, a.Y})
		}
		wf.Controllers = append(wf.Controllers, wc)
	}
	wf.Roles = make(map[string]int, vr.RoleCount)
	for _, role := range vr.Roles {
		if idx := f.Roles[role]; idx.Valid() {
			wf.Roles[role.String()] = int(idx)
		}
	}
	return json.Marshal(wf)
}

func encodePoses(poses *[vr.MaxTrackedDeviceCount]vr.TrackedDevicePose) []WirePose {
	out := []WirePose{}
	for i, p := range poses {
		if !p.Valid {
			continue
		}
		m := [12]float64(p.Transform)
		connected := p.Connected
		out = append(out, WirePose{
			Index:           i,
			Matrix:          &m,
			Velocity:        [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
			AngularVelocity: [3]float64{p.AngularVelocity.X, p.AngularVelocity.Y, p.AngularVelocity.Z},
			Connected:       &connected,
			Class:           p.Class.String(),
		})
	}
	return out
}
