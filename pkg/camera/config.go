// Package camera describes the webcam feed that drives gesture control.
// Capture backends live in subpackages so this one stays free of cgo.
package camera

import "fmt"

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	// Device is a capture index ("0") or a device path ("/dev/video2").
	Device string `json:"device" yaml:"device"`

	Width     int `json:"width" yaml:"width"`         // Frame width in pixels
	Height    int `json:"height" yaml:"height"`       // Frame height in pixels
	Framerate int `json:"framerate" yaml:"framerate"` // Target FPS

	// Mirrored is true for front-facing cameras whose preview is flipped.
	// Gesture X coordinates are inverted when set.
	Mirrored bool `json:"mirrored" yaml:"mirrored"`

	// BufferSize is the driver queue depth. Small values keep latency low.
	BufferSize int `json:"buffer_size" yaml:"buffer_size"`
}

// Capture limits.
const (
	MinWidth     = 160
	MinHeight    = 120
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns the hand-tracking configuration.
// 320x240 is the native input size of the pose model.
func DefaultConfig() Config {
	return Config{
		Device:     "0",
		Width:      320,
		Height:     240,
		Framerate:  30,
		Mirrored:   true,
		BufferSize: 1,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device == "" {
		errors = append(errors, "device must not be empty")
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errors = append(errors, fmt.Sprintf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errors = append(errors, fmt.Sprintf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errors = append(errors, fmt.Sprintf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.BufferSize < 0 || c.BufferSize > 8 {
		errors = append(errors, "buffer_size must be between 0 and 8")
	}

	return errors
}

// Capabilities returns the limits the API accepts.
func Capabilities() map[string]interface{} {
	return map[string]interface{}{
		"min_width":     MinWidth,
		"min_height":    MinHeight,
		"max_width":     MaxWidth,
		"max_height":    MaxHeight,
		"max_framerate": MaxFramerate,
		"presets":       PresetNames(),
	}
}
