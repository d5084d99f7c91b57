package vr

import "errors"

// ErrNoRuntime is returned when a manager is initialised without a runtime.
var ErrNoRuntime = errors.New("vr: no runtime")

// Frame is everything a runtime reports for one update pass.
type Frame struct {
	Render      [MaxTrackedDeviceCount]TrackedDevicePose
	Game        [MaxTrackedDeviceCount]TrackedDevicePose
	Controllers [MaxTrackedDeviceCount]ControllerState

	// Roles maps each assignable role (indexed by Device) to the slot the
	// runtime currently reports for it, or InvalidDeviceIndex.
	Roles [RoleCount]DeviceIndex
}

// Reset marks every pose and controller state invalid and clears the roles.
func (f *Frame) Reset() {
	*f = Frame{}
	for i := range f.Roles {
		f.Roles[i] = InvalidDeviceIndex
	}
}

// Runtime is the boundary to the VR runtime. Poll must fill f synchronously
// with the latest poses, controller states and role assignments. Slots the
// runtime has no data for are left invalid. f has been Reset before the call.
type Runtime interface {
	Poll(f *Frame) error
}

// Initializer is implemented by runtimes that need to acquire handles
// before the first poll.
type Initializer interface {
	Initialize() error
}

// PoseLookup resolves a role to its current pose.
type PoseLookup interface {
	// DevicePose returns the pose of the slot assigned to role for the
	// requested view, and that slot's index. ok is false when the role is
	// unassigned. The returned pose may itself be invalid.
	DevicePose(role Device, kind PoseKind) (pose TrackedDevicePose, index DeviceIndex, ok bool)
}

// DeviceTable is the ordered role table rebuilt every frame. It is a weak
// mapping: roles resolve to slot indices, never to stored poses.
type DeviceTable struct {
	byRole  [RoleCount]DeviceIndex
	byIndex [MaxTrackedDeviceCount]Device
}

// NewDeviceTable builds a table from the runtime's role assignment.
// Indices outside the slot range are treated as unassigned. When a slot is
// claimed by more than one role the first role in table order keeps the
// reverse mapping.
func NewDeviceTable(roles [RoleCount]DeviceIndex) DeviceTable {
	var t DeviceTable
	for i := range t.byIndex {
		t.byIndex[i] = DeviceUnknown
	}
	for r, idx := range roles {
		if !idx.Valid() {
			t.byRole[r] = InvalidDeviceIndex
			continue
		}
		t.byRole[r] = idx
		if t.byIndex[idx] == DeviceUnknown {
			t.byIndex[idx] = Device(r)
		}
	}
	return t
}

// Index returns the slot assigned to role, or InvalidDeviceIndex.
func (t *DeviceTable) Index(role Device) DeviceIndex {
	if !role.Valid() {
		return InvalidDeviceIndex
	}
	return t.byRole[role]
}

// Role returns the role of slot index, or DeviceUnknown.
func (t *DeviceTable) Role(index DeviceIndex) Device {
	if !index.Valid() {
		return DeviceUnknown
	}
	return t.byIndex[index]
}

// PoseSnapshot holds both pose views for one frame plus the role table.
type PoseSnapshot struct {
	Poses [PoseKindCount][MaxTrackedDeviceCount]TrackedDevicePose
	Table DeviceTable
}

// NewPoseSnapshot returns a snapshot with every pose invalid and every role
// unassigned.
func NewPoseSnapshot() PoseSnapshot {
	var roles [RoleCount]DeviceIndex
	for i := range roles {
		roles[i] = InvalidDeviceIndex
	}
	return PoseSnapshot{Table: NewDeviceTable(roles)}
}

// Pose returns the pose at index for the requested view. ok is false when
// index or kind is out of range.
func (s *PoseSnapshot) Pose(index DeviceIndex, kind PoseKind) (TrackedDevicePose, bool) {
	if !index.Valid() || !kind.Valid() {
		return TrackedDevicePose{}, false
	}
	return s.Poses[kind][index], true
}

// DevicePose implements PoseLookup.
func (s *PoseSnapshot) DevicePose(role Device, kind PoseKind) (TrackedDevicePose, DeviceIndex, bool) {
	idx := s.Table.Index(role)
	pose, ok := s.Pose(idx, kind)
	if !ok {
		return TrackedDevicePose{}, InvalidDeviceIndex, false
	}
	return pose, idx, true
}
