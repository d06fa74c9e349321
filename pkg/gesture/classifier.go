package gesture

import (
	"math"
	"time"

	"github.com/teslashibe/grandtree/pkg/handpose"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Sample is the classification of one processed frame.
type Sample struct {
	Detected bool
	Open     bool
	X, Y     float64 // wrist in [-1, 1], X mirrored when the feed is
	Spread   float64 // palm base to middle fingertip, in frame pixels
	At       time.Time
}

// Mode is the target mode the sample asks for.
func (s Sample) Mode() state.Mode {
	if s.Open {
		return state.Chaos
	}
	return state.Formed
}

// Classifier turns hand landmarks into samples.
type Classifier struct {
	cfg      Config
	mirrored bool

	lastOpen bool
	hasLast  bool
}

// NewClassifier returns a classifier. mirrored inverts X for front cameras.
func NewClassifier(cfg Config, mirrored bool) *Classifier {
	return &Classifier{cfg: cfg, mirrored: mirrored}
}

// Threshold returns the openness threshold for a frame of the given size,
// scaled from the reference size by the frame diagonal.
func (c *Classifier) Threshold(width, height int) float64 {
	return c.scale(width, height) * c.cfg.OpenThreshold
}

func (c *Classifier) scale(width, height int) float64 {
	ref := math.Hypot(float64(c.cfg.ReferenceWidth), float64(c.cfg.ReferenceHeight))
	if ref == 0 || width <= 0 || height <= 0 {
		return 1
	}
	return math.Hypot(float64(width), float64(height)) / ref
}

// Classify measures the hand in a width x height frame. A hand missing the
// palm base or middle fingertip yields an undetected sample.
func (c *Classifier) Classify(h handpose.Hand, width, height int, at time.Time) Sample {
	base, ok1 := h.Joint(handpose.PalmBase, 0)
	tip, ok2 := h.Joint(handpose.MiddleFinger, 3)
	wrist, ok3 := h.Wrist()
	if !ok1 || !ok2 || !ok3 || width <= 0 || height <= 0 {
		return Sample{At: at}
	}

	spread := base.Dist(tip)
	threshold := c.Threshold(width, height)
	if c.cfg.Hysteresis > 0 && c.hasLast {
		band := c.cfg.Hysteresis * c.scale(width, height) / 2
		if c.lastOpen {
			threshold -= band
		} else {
			threshold += band
		}
	}
	open := spread > threshold
	c.lastOpen, c.hasLast = open, true

	x := wrist.X/float64(width)*2 - 1
	y := wrist.Y/float64(height)*2 - 1
	if c.mirrored {
		x = -x
	}

	return Sample{Detected: true, Open: open, X: x, Y: y, Spread: spread, At: at}
}

// Offset converts a sample into the requested camera offset. Screen Y grows
// downward, so tilt is inverted.
func (c *Classifier) Offset(s Sample) state.Offset {
	return state.Offset{
		X: float32(s.X) * c.cfg.PanScale,
		Y: float32(-s.Y) * c.cfg.TiltScale,
	}
}

// Reset forgets the hysteresis memory.
func (c *Classifier) Reset() { c.hasLast = false }
