package posecache

import (
	"fmt"

	"github.com/banshee-data/vrtrack/internal/config"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// Config holds the Manager's behaviour switches.
type Config struct {
	// OverlapTiming is the pose view new volumes are evaluated against.
	// A volume uses the same view for its anchor device and for the devices
	// it tests, so render and game timing are never mixed within a volume.
	OverlapTiming vr.PoseKind

	// SelfCollisions lets an attached volume report overlap with the device
	// it rides on.
	SelfCollisions bool

	// TouchEvents enables Touched/Untouched dispatch alongside
	// Pressed/Released.
	TouchEvents bool

	// Buttons lists the buttons of interest. Empty means vr.DefaultButtons.
	Buttons []vr.ButtonID
}

// DefaultConfig returns render timing, no self collisions, touch events on
// and every named button.
func DefaultConfig() Config {
	return Config{
		OverlapTiming: vr.RenderPose,
		TouchEvents:   true,
		Buttons:       append([]vr.ButtonID(nil), vr.DefaultButtons...),
	}
}

// ConfigFromTracking builds a Config from a loaded TrackingConfig.
func ConfigFromTracking(cfg *config.TrackingConfig) (Config, error) {
	out := DefaultConfig()

	timing, err := vr.ParsePoseKind(cfg.GetOverlapPoseTiming())
	if err != nil {
		return out, err
	}
	out.OverlapTiming = timing
	out.SelfCollisions = cfg.GetSelfCollisions()
	out.TouchEvents = cfg.GetTouchEvents()

	if names := cfg.GetButtonsOfInterest(); len(names) > 0 {
		out.Buttons = out.Buttons[:0]
		for _, name := range names {
			id, err := vr.ParseButton(name)
			if err != nil {
				return out, fmt.Errorf("buttons_of_interest: %w", err)
			}
			out.Buttons = append(out.Buttons, id)
		}
	}
	return out, nil
}
