package posecache

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/overlap"
	"github.com/banshee-data/vrtrack/internal/registry"
	"github.com/banshee-data/vrtrack/internal/shape"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// Manager caches device poses from a VR runtime and turns frame-to-frame
// changes into button and overlap events.
//
// Locking: the volume registry, the button listener set and the overlap
// listener set each have their own lock, never nested and never held while
// a listener runs. Poses are published under poseMu so accessors are safe
// from any goroutine. Update calls are serialised by updateMu.
type Manager struct {
	id      uuid.UUID
	cfg     Config
	buttons []vr.ButtonID

	runtime     vr.Runtime
	initialized atomic.Bool

	// Written only by Update (under updateMu).
	updateMu    sync.Mutex
	frame       vr.Frame
	controllers [vr.MaxTrackedDeviceCount]vr.ControllerState
	scratch     []*overlap.Volume
	pollFailing bool
	frames      atomic.Uint64

	poseMu sync.RWMutex
	poses  vr.PoseSnapshot

	volumes volumeStore

	buttonListeners  registry.Ordered[vr.ButtonListener]
	overlapListeners registry.Ordered[vr.OverlapListener]
}

// New creates a Manager. It does nothing until Init supplies a runtime.
// An out-of-range OverlapTiming falls back to vr.RenderPose.
func New(cfg Config) *Manager {
	cfg.Buttons = slices.Clone(cfg.Buttons)
	m := &Manager{
		id:    uuid.New(),
		cfg:   cfg,
		poses: vr.NewPoseSnapshot(),
	}
	if !cfg.OverlapTiming.Valid() {
		opsf("session %s: overlap timing %d out of range, using %s", m.id, int(cfg.OverlapTiming), vr.RenderPose)
		m.cfg.OverlapTiming = vr.RenderPose
	}

	buttons := cfg.Buttons
	if len(buttons) == 0 {
		buttons = vr.DefaultButtons
	}
	seen := make(map[vr.ButtonID]bool, len(buttons))
	for _, b := range buttons {
		if b >= vr.ButtonMax || seen[b] {
			continue
		}
		seen[b] = true
		m.buttons = append(m.buttons, b)
	}
	return m
}

// ID returns the session id used to tell managers apart in logs.
func (m *Manager) ID() uuid.UUID { return m.id }

// Config returns a copy of the configuration in effect.
func (m *Manager) Config() Config {
	cfg := m.cfg
	cfg.Buttons = slices.Clone(m.cfg.Buttons)
	return cfg
}

// Init binds the runtime feed. Runtimes implementing vr.Initializer are
// initialised first; on failure the manager stays uninitialised.
func (m *Manager) Init(rt vr.Runtime) error {
	if rt == nil {
		return vr.ErrNoRuntime
	}
	if init, ok := rt.(vr.Initializer); ok {
		if err := init.Initialize(); err != nil {
			opsf("session %s: runtime initialisation failed: %v", m.id, err)
			return fmt.Errorf("initialise runtime: %w", err)
		}
	}

	m.updateMu.Lock()
	m.runtime = rt
	m.updateMu.Unlock()
	m.initialized.Store(true)
	diagf("session %s: runtime attached (%T)", m.id, rt)
	return nil
}

// IsInitialized reports whether a runtime has been attached successfully.
func (m *Manager) IsInitialized() bool {
	return m.initialized.Load()
}

// Frames returns the number of completed update passes.
func (m *Manager) Frames() uint64 {
	return m.frames.Load()
}

// RegisterButtonListener adds l, or moves it to the back if present.
// A nil listener is ignored.
func (m *Manager) RegisterButtonListener(l vr.ButtonListener) {
	m.buttonListeners.Add(l)
}

// UnregisterButtonListener removes l. Unknown or nil listeners are ignored.
func (m *Manager) UnregisterButtonListener(l vr.ButtonListener) {
	m.buttonListeners.Remove(l)
}

// RegisterOverlapListener adds l, or moves it to the back if present.
// A nil listener is ignored.
func (m *Manager) RegisterOverlapListener(l vr.OverlapListener) {
	m.overlapListeners.Add(l)
}

// UnregisterOverlapListener removes l. Unknown or nil listeners are ignored.
func (m *Manager) UnregisterOverlapListener(l vr.OverlapListener) {
	m.overlapListeners.Remove(l)
}

// ListenerCounts returns the number of registered button and overlap listeners.
func (m *Manager) ListenerCounts() (button, overlap int) {
	return m.buttonListeners.Len(), m.overlapListeners.Len()
}

// CreateLocalOverlapSphere creates a sphere volume placed at transform,
// relative to attached when attached is a role, or in tracking space when it
// is vr.DeviceUnknown. It returns vr.InvalidHandle when radius is not
// strictly positive, transform is nil, not finite or not rigid, or handles
// have run out.
func (m *Manager) CreateLocalOverlapSphere(radius float64, transform *geom.Matrix34, attached vr.Device) vr.Handle {
	if math.IsInf(radius, 0) || transform == nil || !transform.IsFinite() || !transform.IsRigid() {
		return vr.InvalidHandle
	}
	s := shape.NewSphere(radius)
	if s == nil {
		return vr.InvalidHandle
	}
	local := *transform
	timing := m.cfg.OverlapTiming

	h := m.volumes.create(func(h vr.Handle) *overlap.Volume {
		return overlap.New(h, s, local, attached, timing)
	})
	if h == vr.InvalidHandle {
		opsf("session %s: overlap handle space exhausted", m.id)
		return h
	}
	diagf("session %s: created sphere %d radius=%.3f attached=%s", m.id, h, radius, attached)
	return h
}

// DestroyLocalOverlapObject removes the volume. Unknown or already destroyed
// handles are ignored.
func (m *Manager) DestroyLocalOverlapObject(h vr.Handle) {
	if m.volumes.destroy(h) {
		diagf("session %s: destroyed volume %d", m.id, h)
	}
}

// AttachLocalOverlapObject rebinds a volume to ride on role, or detaches it
// with vr.DeviceUnknown. It reports whether the handle was live.
func (m *Manager) AttachLocalOverlapObject(h vr.Handle, role vr.Device) bool {
	v := m.volumes.get(h)
	if v == nil {
		return false
	}
	v.AttachTo(role)
	return true
}

// VolumeCount returns the number of live volumes.
func (m *Manager) VolumeCount() int {
	return m.volumes.len()
}

// VolumeInfo describes a live volume for diagnostics.
type VolumeInfo struct {
	Handle    vr.Handle     `json:"handle"`
	Shape     string        `json:"shape"`
	Attached  string        `json:"attached"`
	Timing    string        `json:"timing"`
	Transform geom.Matrix34 `json:"transform"`
}

// Volumes returns a description of every live volume in handle order.
func (m *Manager) Volumes() []VolumeInfo {
	vols := m.volumes.snapshot(nil)
	out := make([]VolumeInfo, 0, len(vols))
	for _, v := range vols {
		out = append(out, VolumeInfo{
			Handle:    v.Handle(),
			Shape:     v.Shape().Kind(),
			Attached:  v.Attached().String(),
			Timing:    v.Timing().String(),
			Transform: v.Transform(),
		})
	}
	return out
}

// GetHMDPose returns the headset pose for the requested view.
func (m *Manager) GetHMDPose(kind vr.PoseKind) (vr.TrackedDevicePose, bool) {
	return m.GetPoseByDeviceEnum(vr.DeviceHMD, kind)
}

// GetRightHandPose returns the right controller pose for the requested view.
func (m *Manager) GetRightHandPose(kind vr.PoseKind) (vr.TrackedDevicePose, bool) {
	return m.GetPoseByDeviceEnum(vr.DeviceRightHand, kind)
}

// GetLeftHandPose returns the left controller pose for the requested view.
func (m *Manager) GetLeftHandPose(kind vr.PoseKind) (vr.TrackedDevicePose, bool) {
	return m.GetPoseByDeviceEnum(vr.DeviceLeftHand, kind)
}

// GetPoseByDeviceEnum returns a copy of the pose of the slot currently
// assigned to role. ok is false when the role is unassigned; the pose's
// Valid flag still needs checking when ok is true.
func (m *Manager) GetPoseByDeviceEnum(role vr.Device, kind vr.PoseKind) (vr.TrackedDevicePose, bool) {
	m.poseMu.RLock()
	defer m.poseMu.RUnlock()
	pose, _, ok := m.poses.DevicePose(role, kind)
	return pose, ok
}

// GetPoseByIndex returns a copy of the pose in slot index. ok is false when
// index or kind is out of range.
func (m *Manager) GetPoseByIndex(index vr.DeviceIndex, kind vr.PoseKind) (vr.TrackedDevicePose, bool) {
	m.poseMu.RLock()
	defer m.poseMu.RUnlock()
	return m.poses.Pose(index, kind)
}

// DeviceIndex returns the slot currently assigned to role, or
// vr.InvalidDeviceIndex.
func (m *Manager) DeviceIndex(role vr.Device) vr.DeviceIndex {
	m.poseMu.RLock()
	defer m.poseMu.RUnlock()
	return m.poses.Table.Index(role)
}

// Snapshot returns a copy of the cached poses and role table.
func (m *Manager) Snapshot() vr.PoseSnapshot {
	m.poseMu.RLock()
	defer m.poseMu.RUnlock()
	return m.poses
}
