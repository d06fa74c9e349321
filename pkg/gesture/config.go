package gesture

import "time"

// Config holds all tunable parameters for gesture control.
type Config struct {
	// Openness
	OpenThreshold   float64 `yaml:"open_threshold" json:"open_threshold"`     // palm-to-middle-tip pixels at the reference size
	ReferenceWidth  int     `yaml:"reference_width" json:"reference_width"`   // frame size the threshold was tuned at
	ReferenceHeight int     `yaml:"reference_height" json:"reference_height"`
	Hysteresis      float64 `yaml:"hysteresis" json:"hysteresis"`             // band width in reference pixels, 0 disables

	// Camera offset
	PanScale  float32 `yaml:"pan_scale" json:"pan_scale"`   // world units per normalized X
	TiltScale float32 `yaml:"tilt_scale" json:"tilt_scale"` // world units per normalized Y

	// Swipe
	SwipeThreshold float64       `yaml:"swipe_threshold" json:"swipe_threshold"` // normalized X per frame
	SwipeCooldown  time.Duration `yaml:"swipe_cooldown" json:"swipe_cooldown"`

	// Loop
	FrameErrorDelay time.Duration `yaml:"frame_error_delay" json:"frame_error_delay"` // pause after a failed frame
}

// DefaultConfig returns the baseline interaction tuning.
func DefaultConfig() Config {
	return Config{
		OpenThreshold:   80,
		ReferenceWidth:  320,
		ReferenceHeight: 240,
		Hysteresis:      0,

		PanScale:  10,
		TiltScale: 5,

		SwipeThreshold: 0.15,
		SwipeCooldown:  600 * time.Millisecond,

		FrameErrorDelay: 16 * time.Millisecond,
	}
}

// SteadyConfig adds a 16px hysteresis band so a hand hovering at the
// threshold does not flicker between modes.
func SteadyConfig() Config {
	cfg := DefaultConfig()
	cfg.Hysteresis = 16
	return cfg
}

// Validate returns any problems with the configuration.
func (c Config) Validate() []string {
	var problems []string
	if c.OpenThreshold <= 0 {
		problems = append(problems, "gesture open_threshold must be positive")
	}
	if c.ReferenceWidth <= 0 || c.ReferenceHeight <= 0 {
		problems = append(problems, "gesture reference size must be positive")
	}
	if c.Hysteresis < 0 || c.Hysteresis >= 2*c.OpenThreshold {
		problems = append(problems, "gesture hysteresis must be in [0, 2*open_threshold)")
	}
	if c.SwipeThreshold <= 0 || c.SwipeThreshold >= 2 {
		problems = append(problems, "gesture swipe_threshold must be in (0, 2)")
	}
	if c.SwipeCooldown < 0 {
		problems = append(problems, "gesture swipe_cooldown must not be negative")
	}
	if c.FrameErrorDelay < 0 {
		problems = append(problems, "gesture frame_error_delay must not be negative")
	}
	return problems
}
