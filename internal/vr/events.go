package vr

// Handle identifies an overlap volume. Handles start at 1, increase
// monotonically and are never reused within a process.
type Handle uint32

// InvalidHandle is returned when a volume could not be created.
const InvalidHandle Handle = 0

// ButtonEventKind is the edge reported for a button.
type ButtonEventKind int

const (
	ButtonPressed ButtonEventKind = iota
	ButtonReleased
	ButtonTouched
	ButtonUntouched
)

func (k ButtonEventKind) String() string {
	switch k {
	case ButtonPressed:
		return "pressed"
	case ButtonReleased:
		return "released"
	case ButtonTouched:
		return "touched"
	case ButtonUntouched:
		return "untouched"
	default:
		return "unknown"
	}
}

// OverlapKind is the edge reported for a (volume, device) pair.
type OverlapKind int

const (
	OverlapNone OverlapKind = iota
	OverlapEnter
	OverlapExit
)

func (k OverlapKind) String() string {
	switch k {
	case OverlapEnter:
		return "enter"
	case OverlapExit:
		return "exit"
	default:
		return "none"
	}
}

// ButtonEvent is dispatched when a button of interest changes state.
type ButtonEvent struct {
	Kind   ButtonEventKind
	Button ButtonID
	Device Device // DeviceUnknown when the slot has no role
	Index  DeviceIndex
}

// OverlapEvent is dispatched when a device enters or leaves a volume.
type OverlapEvent struct {
	Kind   OverlapKind
	Handle Handle
	Device Device // DeviceUnknown when the slot has no role
	Index  DeviceIndex
}

// ButtonListener receives button events synchronously from the update call.
// Implementations must be comparable (pointer receivers or small structs):
// registration relies on == to keep a single entry per listener.
type ButtonListener interface {
	OnButtonEvent(ButtonEvent)
}

// OverlapListener receives overlap events synchronously from the update call.
// The same comparability rule as ButtonListener applies.
type OverlapListener interface {
	OnOverlapEvent(OverlapEvent)
}

type buttonFunc struct {
	fn func(ButtonEvent)
}

func (b *buttonFunc) OnButtonEvent(e ButtonEvent) { b.fn(e) }

// NewButtonListener wraps fn. Each call returns a distinct listener, so keep
// the returned value to unregister it later.
func NewButtonListener(fn func(ButtonEvent)) ButtonListener {
	if fn == nil {
		return nil
	}
	return &buttonFunc{fn: fn}
}

type overlapFunc struct {
	fn func(OverlapEvent)
}

func (o *overlapFunc) OnOverlapEvent(e OverlapEvent) { o.fn(e) }

// NewOverlapListener wraps fn. Each call returns a distinct listener.
func NewOverlapListener(fn func(OverlapEvent)) OverlapListener {
	if fn == nil {
		return nil
	}
	return &overlapFunc{fn: fn}
}
