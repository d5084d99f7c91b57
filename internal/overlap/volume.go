// Package overlap binds a shape to a local transform, optionally rides it
// on a tracked device, and turns per-frame overlap tests into Enter/Exit
// edges per device slot.
package overlap

import (
	"sync/atomic"

	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/shape"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// Volume is a shape placed in tracking space. The shape and transform are
// fixed at construction; the attached role may change at any time.
//
// CheckOverlapWithPose is not safe for concurrent use; the pose cache calls
// it only from its update pass.
type Volume struct {
	handle    vr.Handle
	shape     shape.Shape
	transform geom.Matrix34
	timing    vr.PoseKind

	attached atomic.Int32 // vr.Device

	prev [vr.MaxTrackedDeviceCount]bool
}

// New creates a volume. attached may be vr.DeviceUnknown for a volume fixed
// in tracking space. timing selects which pose view the volume is evaluated
// against, for both the attached device and the tested device.
func New(handle vr.Handle, s shape.Shape, transform geom.Matrix34, attached vr.Device, timing vr.PoseKind) *Volume {
	v := &Volume{
		handle:    handle,
		shape:     s,
		transform: transform,
		timing:    timing,
	}
	v.AttachTo(attached)
	return v
}

// Handle returns the volume's registry handle.
func (v *Volume) Handle() vr.Handle { return v.handle }

// Shape returns the volume's shape.
func (v *Volume) Shape() shape.Shape { return v.shape }

// Transform returns the local transform (relative to the attached device,
// or to tracking space when unattached).
func (v *Volume) Transform() geom.Matrix34 { return v.transform }

// Timing returns the pose view the volume is evaluated against.
func (v *Volume) Timing() vr.PoseKind { return v.timing }

// AttachTo rebinds the device the volume rides on. vr.DeviceUnknown (or any
// non-role value) detaches it. The binding is a role, resolved against the
// current device table on every check, so it can never outlive a slot.
func (v *Volume) AttachTo(role vr.Device) {
	if !role.Valid() {
		role = vr.DeviceUnknown
	}
	v.attached.Store(int32(role))
}

// Attached returns the role the volume rides on, or vr.DeviceUnknown.
func (v *Volume) Attached() vr.Device {
	return vr.Device(v.attached.Load())
}

// Overlapping reports the stored state for a slot from the last check.
func (v *Volume) Overlapping(device vr.DeviceIndex) bool {
	if !device.Valid() {
		return false
	}
	return v.prev[device]
}

// CheckOverlapWithPose tests other (the pose of slot device) against the
// volume and reports the transition since the previous check for that slot.
//
// The stored state for device is updated, so a second call with the same
// inputs reports OverlapNone. When selfCollisions is false and device is the
// slot the volume is attached to, the call is a no-op returning OverlapNone.
// An attached volume whose device is unassigned or has an invalid pose is
// unplaced: nothing overlaps it. An invalid other pose never overlaps.
func (v *Volume) CheckOverlapWithPose(poses vr.PoseLookup, device vr.DeviceIndex, other vr.TrackedDevicePose, selfCollisions bool) vr.OverlapKind {
	if !device.Valid() {
		return vr.OverlapNone
	}

	world := v.transform
	placed := true
	if role := v.Attached(); role != vr.DeviceUnknown {
		anchor, anchorIndex, ok := poses.DevicePose(role, v.timing)
		if ok && anchorIndex == device && !selfCollisions {
			return vr.OverlapNone
		}
		if ok && anchor.Valid {
			world = anchor.Transform.Mul(v.transform)
		} else {
			placed = false
		}
	}

	overlapping := false
	if placed && other.Valid {
		offset := world.InverseApply(other.Position())
		overlapping = v.shape.Overlaps(offset)
	}

	was := v.prev[device]
	v.prev[device] = overlapping
	return computeOverlapEvent(was, overlapping)
}

func computeOverlapEvent(wasOverlapped, isOverlapping bool) vr.OverlapKind {
	switch {
	case !wasOverlapped && isOverlapping:
		return vr.OverlapEnter
	case wasOverlapped && !isOverlapping:
		return vr.OverlapExit
	default:
		return vr.OverlapNone
	}
}
