package vrfeed

import (
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// SimRuntime is a programmable vr.Runtime. Every setter is safe to call
// while another goroutine polls; each Poll sees a consistent frame.
type SimRuntime struct {
	mu      sync.Mutex
	frame   vr.Frame
	pollErr error
	initErr error
	polls   int
	inits   int
}

// NewSimRuntime returns a runtime with no devices and no roles assigned.
func NewSimRuntime() *SimRuntime {
	s := &SimRuntime{}
	s.frame.Reset()
	return s
}

// Initialize implements vr.Initializer.
func (s *SimRuntime) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inits++
	return s.initErr
}

// Poll implements vr.Runtime.
func (s *SimRuntime) Poll(f *vr.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.polls++
	if s.pollErr != nil {
		return s.pollErr
	}
	*f = s.frame
	return nil
}

// Polls returns the number of Poll calls so far.
func (s *SimRuntime) Polls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.polls
}

// Inits returns the number of Initialize calls so far.
func (s *SimRuntime) Inits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inits
}

// SetPollError makes subsequent polls fail with err. nil clears it.
func (s *SimRuntime) SetPollError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollErr = err
}

// SetInitError makes Initialize fail with err. nil clears it.
func (s *SimRuntime) SetInitError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initErr = err
}

// AssignRole points role at slot index. vr.InvalidDeviceIndex unassigns it.
func (s *SimRuntime) AssignRole(role vr.Device, index vr.DeviceIndex) {
	if !role.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Roles[role] = index
}

// SetPose stores pose for one view of slot index.
func (s *SimRuntime) SetPose(index vr.DeviceIndex, kind vr.PoseKind, pose vr.TrackedDevicePose) {
	if !index.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case vr.RenderPose:
		s.frame.Render[index] = pose
	case vr.GamePose:
		s.frame.Game[index] = pose
	}
}

// SetTransform places slot index at transform in both views and marks it
// valid and connected.
func (s *SimRuntime) SetTransform(index vr.DeviceIndex, class vr.DeviceClass, transform geom.Matrix34) {
	pose := vr.TrackedDevicePose{
		Transform: transform,
		Valid:     true,
		Connected: true,
		Class:     class,
	}
	s.SetPose(index, vr.RenderPose, pose)
	s.SetPose(index, vr.GamePose, pose)
}

// SetPosition places slot index at p with identity rotation in both views.
func (s *SimRuntime) SetPosition(index vr.DeviceIndex, class vr.DeviceClass, p r3.Vec) {
	s.SetTransform(index, class, geom.Translation(p.X, p.Y, p.Z))
}

// InvalidatePose marks both views of slot index invalid, keeping the last
// transform.
func (s *SimRuntime) InvalidatePose(index vr.DeviceIndex) {
	if !index.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Render[index].Valid = false
	s.frame.Game[index].Valid = false
}

// SetButtons sets the pressed and touched masks of slot index and marks its
// controller state valid.
func (s *SimRuntime) SetButtons(index vr.DeviceIndex, pressed, touched uint64) {
	if !index.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.frame.Controllers[index]
	c.Valid = true
	c.PacketNum++
	c.ButtonPressed = pressed
	c.ButtonTouched = touched
}

// SetAxis sets one analog axis of slot index.
func (s *SimRuntime) SetAxis(index vr.DeviceIndex, axis int, value vr.Axis) {
	if !index.Valid() || axis < 0 || axis >= len(s.frame.Controllers[0].Axis) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &s.frame.Controllers[index]
	c.Valid = true
	c.PacketNum++
	c.Axis[axis] = value
}

// ClearController marks the controller state of slot index invalid.
func (s *SimRuntime) ClearController(index vr.DeviceIndex) {
	if !index.Valid() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame.Controllers[index].Valid = false
}

// Frame returns a copy of the frame the next poll would report.
func (s *SimRuntime) Frame() vr.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}
