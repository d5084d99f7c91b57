package vr

import "fmt"

// ButtonID is a controller button identifier. The numbering follows the
// OpenVR button ids so masks from the runtime can be used unchanged.
type ButtonID uint32

const (
	ButtonSystem          ButtonID = 0
	ButtonApplicationMenu ButtonID = 1
	ButtonGrip            ButtonID = 2
	ButtonDPadLeft        ButtonID = 3
	ButtonDPadUp          ButtonID = 4
	ButtonDPadRight       ButtonID = 5
	ButtonDPadDown        ButtonID = 6
	ButtonA               ButtonID = 7
	ButtonProximitySensor ButtonID = 31
	ButtonAxis0           ButtonID = 32
	ButtonAxis1           ButtonID = 33
	ButtonAxis2           ButtonID = 34
	ButtonAxis3           ButtonID = 35
	ButtonAxis4           ButtonID = 36

	ButtonTouchpad ButtonID = ButtonAxis0
	ButtonTrigger  ButtonID = ButtonAxis1

	// ButtonMax is one past the highest id that fits in a 64-bit mask.
	ButtonMax ButtonID = 64
)

var buttonNames = map[ButtonID]string{
	ButtonSystem:          "system",
	ButtonApplicationMenu: "application_menu",
	ButtonGrip:            "grip",
	ButtonDPadLeft:        "dpad_left",
	ButtonDPadUp:          "dpad_up",
	ButtonDPadRight:       "dpad_right",
	ButtonDPadDown:        "dpad_down",
	ButtonA:               "a",
	ButtonProximitySensor: "proximity_sensor",
	ButtonTouchpad:        "touchpad",
	ButtonTrigger:         "trigger",
	ButtonAxis2:           "axis2",
	ButtonAxis3:           "axis3",
	ButtonAxis4:           "axis4",
}

// DefaultButtons is every named button, in id order.
var DefaultButtons = []ButtonID{
	ButtonSystem,
	ButtonApplicationMenu,
	ButtonGrip,
	ButtonDPadLeft,
	ButtonDPadUp,
	ButtonDPadRight,
	ButtonDPadDown,
	ButtonA,
	ButtonProximitySensor,
	ButtonTouchpad,
	ButtonTrigger,
	ButtonAxis2,
	ButtonAxis3,
	ButtonAxis4,
}

// ButtonMask returns the bit for id in a pressed/touched mask, or 0 when id
// does not fit.
func ButtonMask(id ButtonID) uint64 {
	if id >= ButtonMax {
		return 0
	}
	return 1 << uint64(id)
}

func (b ButtonID) String() string {
	if name, ok := buttonNames[b]; ok {
		return name
	}
	return fmt.Sprintf("button(%d)", uint32(b))
}

// ParseButton resolves a button name (as printed by String) to its id.
func ParseButton(name string) (ButtonID, error) {
	for id, n := range buttonNames {
		if n == name {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}

// MaskTransition is the change of one selected bit between two masks.
type MaskTransition int

const (
	MaskUnchanged MaskTransition = iota
	MaskSet
	MaskCleared
)

// CheckStatesForMask reports whether the bits selected by mask turned on,
// turned off, or stayed the same between previous and current.
func CheckStatesForMask(previous, current, mask uint64) MaskTransition {
	if (previous^current)&mask == 0 {
		return MaskUnchanged
	}
	if current&mask != 0 {
		return MaskSet
	}
	return MaskCleared
}
