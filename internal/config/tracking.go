package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TrackingConfig is the JSON configuration for the pose cache and its host.
// Every field is optional; the Get* methods supply defaults for omitted
// fields, so partial files are safe.
type TrackingConfig struct {
	// Overlap engine
	OverlapPoseTiming *string  `json:"overlap_pose_timing,omitempty"` // "render" or "game"
	SelfCollisions    *bool    `json:"self_collisions,omitempty"`
	TouchEvents       *bool    `json:"touch_events,omitempty"`
	ButtonsOfInterest []string `json:"buttons_of_interest,omitempty"` // button names, empty means all

	// Host frame loop
	FrameInterval *string `json:"frame_interval,omitempty"` // duration string like "11ms"

	// Serial feed (optional)
	SerialPort     *string `json:"serial_port,omitempty"`
	SerialBaudRate *int    `json:"serial_baud_rate,omitempty"`
}

// DefaultFrameInterval is roughly one 90 Hz display frame.
const DefaultFrameInterval = 11 * time.Millisecond

const maxConfigFileSize = 1 * 1024 * 1024 // 1MB

// EmptyTrackingConfig returns a TrackingConfig with every field unset.
func EmptyTrackingConfig() *TrackingConfig {
	return &TrackingConfig{}
}

// LoadTrackingConfig loads a TrackingConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTrackingConfig(path string) (*TrackingConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTrackingConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable. Button names
// are checked by the pose cache when it builds its own config.
func (c *TrackingConfig) Validate() error {
	if c.OverlapPoseTiming != nil {
		switch *c.OverlapPoseTiming {
		case "", "render", "game":
		default:
			return fmt.Errorf("overlap_pose_timing must be render or game, got %q", *c.OverlapPoseTiming)
		}
	}

	if c.FrameInterval != nil && *c.FrameInterval != "" {
		d, err := time.ParseDuration(*c.FrameInterval)
		if err != nil {
			return fmt.Errorf("invalid frame_interval '%s': %w", *c.FrameInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("frame_interval must be positive, got %s", d)
		}
	}

	if c.SerialBaudRate != nil && *c.SerialBaudRate < 0 {
		return fmt.Errorf("serial_baud_rate must be non-negative, got %d", *c.SerialBaudRate)
	}

	return nil
}

// GetOverlapPoseTiming returns the overlap_pose_timing value or "render".
func (c *TrackingConfig) GetOverlapPoseTiming() string {
	if c.OverlapPoseTiming == nil || *c.OverlapPoseTiming == "" {
		return "render"
	}
	return *c.OverlapPoseTiming
}

// GetSelfCollisions returns the self_collisions value or the default.
func (c *TrackingConfig) GetSelfCollisions() bool {
	if c.SelfCollisions == nil {
		return false
	}
	return *c.SelfCollisions
}

// GetTouchEvents returns the touch_events value or the default.
func (c *TrackingConfig) GetTouchEvents() bool {
	if c.TouchEvents == nil {
		return true
	}
	return *c.TouchEvents
}

// GetButtonsOfInterest returns the configured button names; nil means all.
func (c *TrackingConfig) GetButtonsOfInterest() []string {
	return c.ButtonsOfInterest
}

// GetFrameInterval parses and returns the FrameInterval as a time.Duration.
func (c *TrackingConfig) GetFrameInterval() time.Duration {
	if c.FrameInterval == nil || *c.FrameInterval == "" {
		return DefaultFrameInterval
	}
	d, err := time.ParseDuration(*c.FrameInterval)
	if err != nil || d <= 0 {
		return DefaultFrameInterval
	}
	return d
}

// GetSerialPort returns the serial_port value, or "" when the feed is
// simulated.
func (c *TrackingConfig) GetSerialPort() string {
	if c.SerialPort == nil {
		return ""
	}
	return *c.SerialPort
}

// GetSerialBaudRate returns the serial_baud_rate value or 0 (port default).
func (c *TrackingConfig) GetSerialBaudRate() int {
	if c.SerialBaudRate == nil {
		return 0
	}
	return *c.SerialBaudRate
}
