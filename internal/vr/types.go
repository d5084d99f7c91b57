// Package vr defines the data model shared between the VR runtime feed and
// the pose cache: tracked device poses, logical device roles, controller
// button state and the events dispatched to listeners.
//
// Nothing in this package talks to a runtime. Feeds live in vrfeed and the
// per-frame engine lives in posecache.
package vr

import (
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vrtrack/internal/geom"
)

// MaxTrackedDeviceCount is the number of device slots a runtime reports per
// frame. Slot indices are stable while a device stays connected.
const MaxTrackedDeviceCount = 64

// DeviceIndex identifies a slot in the runtime's tracked device arrays.
type DeviceIndex uint32

// InvalidDeviceIndex marks "no device" in role lookups.
const InvalidDeviceIndex DeviceIndex = 0xFFFFFFFF

// Valid reports whether i addresses a slot in the pose arrays.
func (i DeviceIndex) Valid() bool {
	return i < MaxTrackedDeviceCount
}

// Device is the logical role a tracked device plays for the application.
type Device int

const (
	DeviceUnknown   Device = -1
	DeviceHMD       Device = 0
	DeviceRightHand Device = 1
	DeviceLeftHand  Device = 2
)

// RoleCount is the number of assignable roles (HMD, right hand, left hand).
const RoleCount = 3

// Roles lists the assignable roles in table order.
var Roles = [RoleCount]Device{DeviceHMD, DeviceRightHand, DeviceLeftHand}

// Valid reports whether d is one of the assignable roles.
func (d Device) Valid() bool {
	return d >= 0 && int(d) < RoleCount
}

func (d Device) String() string {
	switch d {
	case DeviceHMD:
		return "hmd"
	case DeviceRightHand:
		return "right_hand"
	case DeviceLeftHand:
		return "left_hand"
	case DeviceUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("device(%d)", int(d))
	}
}

// ParseDevice maps a role name back to a Device. Unknown names return
// DeviceUnknown and false.
func ParseDevice(s string) (Device, bool) {
	switch s {
	case "hmd", "head":
		return DeviceHMD, true
	case "right_hand", "right":
		return DeviceRightHand, true
	case "left_hand", "left":
		return DeviceLeftHand, true
	}
	return DeviceUnknown, false
}

// DeviceClass is the hardware classification of a tracked device slot.
type DeviceClass int

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassGenericTracker
	ClassTrackingReference
)

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "hmd"
	case ClassController:
		return "controller"
	case ClassGenericTracker:
		return "generic_tracker"
	case ClassTrackingReference:
		return "tracking_reference"
	default:
		return "invalid"
	}
}

// PoseKind selects one of the two cached pose views.
type PoseKind int

const (
	// RenderPose is the most recent pose, predicted for display.
	RenderPose PoseKind = iota
	// GamePose is the pose predicted for simulation timing.
	GamePose
)

// PoseKindCount is the number of pose views kept per frame.
const PoseKindCount = 2

// Valid reports whether k is one of the cached views.
func (k PoseKind) Valid() bool {
	return k >= 0 && int(k) < PoseKindCount
}

func (k PoseKind) String() string {
	if k == GamePose {
		return "game"
	}
	return "render"
}

// ParsePoseKind accepts "render" or "game".
func ParsePoseKind(s string) (PoseKind, error) {
	switch s {
	case "render", "":
		return RenderPose, nil
	case "game":
		return GamePose, nil
	}
	return RenderPose, fmt.Errorf("unknown pose timing %q: expected render or game", s)
}

// TrackedDevicePose is one slot's pose for one frame.
type TrackedDevicePose struct {
	Transform       geom.Matrix34 // device-to-absolute, 3x4 row-major
	Velocity        r3.Vec        // metres per second
	AngularVelocity r3.Vec        // radians per second
	Valid           bool
	Connected       bool
	Class           DeviceClass
}

// Position returns the device origin in tracking space.
func (p TrackedDevicePose) Position() r3.Vec {
	return p.Transform.Position()
}

// Rotation returns the device orientation.
func (p TrackedDevicePose) Rotation() quat.Number {
	return p.Transform.Rotation()
}

// Axis is one analog input of a controller, each component in [-1, 1].
type Axis struct {
	X float32
	Y float32
}

// ControllerState is the button and axis state of one slot.
// Valid is false when the runtime had no state for the slot this frame.
type ControllerState struct {
	Valid         bool
	PacketNum     uint32
	ButtonPressed uint64
	ButtonTouched uint64
	Axis          [5]Axis
}
