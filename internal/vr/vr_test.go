package vr

import (
	"testing"

	"github.com/banshee-data/vrtrack/internal/geom"
)

func TestCheckStatesForMask(t *testing.T) {
	mask := ButtonMask(ButtonApplicationMenu)
	tests := []struct {
		name     string
		previous uint64
		current  uint64
		want     MaskTransition
	}{
		{"unchanged off", 0, 0, MaskUnchanged},
		{"unchanged on", mask, mask, MaskUnchanged},
		{"pressed", 0, mask, MaskSet},
		{"released", mask, 0, MaskCleared},
		{"other bit changes", 0, ButtonMask(ButtonGrip), MaskUnchanged},
		{"other bit changes while held", mask, mask | ButtonMask(ButtonGrip), MaskUnchanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckStatesForMask(tt.previous, tt.current, mask); got != tt.want {
				t.Errorf("CheckStatesForMask(%b, %b) = %v, want %v", tt.previous, tt.current, got, tt.want)
			}
		})
	}
}

func TestButtonMask(t *testing.T) {
	if got := ButtonMask(ButtonApplicationMenu); got != 2 {
		t.Errorf("ButtonMask(ApplicationMenu) = %d, want 2", got)
	}
	if got := ButtonMask(ButtonTrigger); got != 1<<33 {
		t.Errorf("ButtonMask(Trigger) = %d, want 1<<33", got)
	}
	if got := ButtonMask(ButtonMax); got != 0 {
		t.Errorf("ButtonMask(ButtonMax) = %d, want 0", got)
	}
}

func TestParseButtonRoundTrip(t *testing.T) {
	for _, id := range DefaultButtons {
		got, err := ParseButton(id.String())
		if err != nil {
			t.Fatalf("ParseButton(%q): %v", id.String(), err)
		}
		if got != id {
			t.Errorf("ParseButton(%q) = %d, want %d", id.String(), got, id)
		}
	}
	if _, err := ParseButton("nope"); err == nil {
		t.Error("expected error for unknown button")
	}
}

func TestDeviceTable(t *testing.T) {
	table := NewDeviceTable([RoleCount]DeviceIndex{0, 3, InvalidDeviceIndex})

	if got := table.Index(DeviceHMD); got != 0 {
		t.Errorf("Index(HMD) = %d, want 0", got)
	}
	if got := table.Index(DeviceRightHand); got != 3 {
		t.Errorf("Index(RightHand) = %d, want 3", got)
	}
	if got := table.Index(DeviceLeftHand); got != InvalidDeviceIndex {
		t.Errorf("Index(LeftHand) = %d, want invalid", got)
	}
	if got := table.Index(DeviceUnknown); got != InvalidDeviceIndex {
		t.Errorf("Index(Unknown) = %d, want invalid", got)
	}
	if got := table.Role(3); got != DeviceRightHand {
		t.Errorf("Role(3) = %v, want right_hand", got)
	}
	if got := table.Role(5); got != DeviceUnknown {
		t.Errorf("Role(5) = %v, want unknown", got)
	}
	if got := table.Role(InvalidDeviceIndex); got != DeviceUnknown {
		t.Errorf("Role(invalid) = %v, want unknown", got)
	}
}

func TestDeviceTableOutOfRangeRole(t *testing.T) {
	table := NewDeviceTable([RoleCount]DeviceIndex{MaxTrackedDeviceCount, 1, 1})
	if got := table.Index(DeviceHMD); got != InvalidDeviceIndex {
		t.Errorf("out of range index should be unassigned, got %d", got)
	}
	// Slot 1 claimed twice: the first role keeps the reverse mapping.
	if got := table.Role(1); got != DeviceRightHand {
		t.Errorf("Role(1) = %v, want right_hand", got)
	}
	if got := table.Index(DeviceLeftHand); got != 1 {
		t.Errorf("Index(LeftHand) = %d, want 1", got)
	}
}

func TestPoseSnapshotLookup(t *testing.T) {
	snap := NewPoseSnapshot()
	if _, _, ok := snap.DevicePose(DeviceHMD, RenderPose); ok {
		t.Fatal("fresh snapshot should have no HMD")
	}

	snap.Table = NewDeviceTable([RoleCount]DeviceIndex{2, InvalidDeviceIndex, InvalidDeviceIndex})
	snap.Poses[RenderPose][2] = TrackedDevicePose{Transform: geom.Translation(0, 1.7, 0), Valid: true, Class: ClassHMD}
	snap.Poses[GamePose][2] = TrackedDevicePose{Transform: geom.Translation(0, 1.6, 0), Valid: true, Class: ClassHMD}

	render, idx, ok := snap.DevicePose(DeviceHMD, RenderPose)
	if !ok || idx != 2 || render.Position().Y != 1.7 {
		t.Errorf("render HMD = %v idx=%d ok=%v", render.Position(), idx, ok)
	}
	game, _, ok := snap.DevicePose(DeviceHMD, GamePose)
	if !ok || game.Position().Y != 1.6 {
		t.Errorf("game HMD = %v ok=%v", game.Position(), ok)
	}
	if _, ok := snap.Pose(MaxTrackedDeviceCount, RenderPose); ok {
		t.Error("out of range index should not resolve")
	}
	if _, ok := snap.Pose(0, PoseKind(7)); ok {
		t.Error("out of range kind should not resolve")
	}
}

func TestFrameReset(t *testing.T) {
	var f Frame
	f.Render[4].Valid = true
	f.Controllers[4].Valid = true
	f.Roles[DeviceHMD] = 4
	f.Reset()
	if f.Render[4].Valid || f.Controllers[4].Valid {
		t.Error("Reset should invalidate slots")
	}
	for r, idx := range f.Roles {
		if idx != InvalidDeviceIndex {
			t.Errorf("role %d = %d after reset", r, idx)
		}
	}
}

func TestFuncListenersAreDistinct(t *testing.T) {
	fn := func(ButtonEvent) {}
	a := NewButtonListener(fn)
	b := NewButtonListener(fn)
	if a == b {
		t.Error("each wrapper should have its own identity")
	}
	if NewButtonListener(nil) != nil {
		t.Error("nil func should give nil listener")
	}
	if NewOverlapListener(nil) != nil {
		t.Error("nil func should give nil listener")
	}
}

func TestParseHelpers(t *testing.T) {
	if k, err := ParsePoseKind("game"); err != nil || k != GamePose {
		t.Errorf("ParsePoseKind(game) = %v, %v", k, err)
	}
	if _, err := ParsePoseKind("later"); err == nil {
		t.Error("expected error for unknown timing")
	}
	if d, ok := ParseDevice("left"); !ok || d != DeviceLeftHand {
		t.Errorf("ParseDevice(left) = %v, %v", d, ok)
	}
	if d, ok := ParseDevice("tail"); ok || d != DeviceUnknown {
		t.Errorf("ParseDevice(tail) = %v, %v", d, ok)
	}
}
