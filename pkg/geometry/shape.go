// Package geometry generates the point distributions the tree is built from:
// a volumetric chaos sphere, a tapered cone surface, a golden-angle spiral,
// a pile of gifts under the tree, and a ring of photo frames.
package geometry

// GoldenAngle is the angular step between successive spiral indices, in radians.
const GoldenAngle = 2.39996

// Shape holds the dimensions every distribution is derived from.
type Shape struct {
	TreeHeight     float32 `yaml:"tree_height" json:"tree_height"`           // apex to base, centred on y=0
	TreeRadiusBase float32 `yaml:"tree_radius_base" json:"tree_radius_base"` // cone radius at the base
	ChaosRadius    float32 `yaml:"chaos_radius" json:"chaos_radius"`         // radius of the dispersed cloud

	// SurfaceJitter is the full width of the radial noise added to cone
	// samples; each point moves by at most SurfaceJitter/2.
	SurfaceJitter float32 `yaml:"surface_jitter" json:"surface_jitter"`

	// SpiralTightness pulls spiral points slightly inside the foliage (k<1).
	SpiralTightness float32 `yaml:"spiral_tightness" json:"spiral_tightness"`
	SpiralAngle     float32 `yaml:"spiral_angle" json:"spiral_angle"`

	// Gifts are scattered in a square of side GiftSpread around the trunk,
	// between GiftFloor and GiftFloor+GiftHeight.
	GiftSpread float32 `yaml:"gift_spread" json:"gift_spread"`
	GiftFloor  float32 `yaml:"gift_floor" json:"gift_floor"`
	GiftHeight float32 `yaml:"gift_height" json:"gift_height"`

	// Photo frames circle the tree once at RingRadius over RingHeight.
	RingRadius float32 `yaml:"ring_radius" json:"ring_radius"`
	RingHeight float32 `yaml:"ring_height" json:"ring_height"`
}

// DefaultShape returns the dimensions of the standard tree.
func DefaultShape() Shape {
	return Shape{
		TreeHeight:      18,
		TreeRadiusBase:  6,
		ChaosRadius:     25,
		SurfaceJitter:   1.5,
		SpiralTightness: 0.9,
		SpiralAngle:     GoldenAngle,
		GiftSpread:      8,
		GiftFloor:       -9,
		GiftHeight:      2,
		RingRadius:      4.5,
		RingHeight:      12,
	}
}

// Validate reports every dimension that cannot produce a sensible tree.
func (s Shape) Validate() []string {
	var problems []string
	if s.TreeHeight <= 0 {
		problems = append(problems, "tree_height must be positive")
	}
	if s.TreeRadiusBase <= 0 {
		problems = append(problems, "tree_radius_base must be positive")
	}
	if s.ChaosRadius <= 0 {
		problems = append(problems, "chaos_radius must be positive")
	}
	if s.SurfaceJitter < 0 {
		problems = append(problems, "surface_jitter must not be negative")
	}
	if s.SpiralTightness <= 0 || s.SpiralTightness > 1 {
		problems = append(problems, "spiral_tightness must be in (0, 1]")
	}
	if s.RingRadius < 0 || s.RingHeight < 0 || s.GiftSpread < 0 || s.GiftHeight < 0 {
		problems = append(problems, "ring and gift dimensions must not be negative")
	}
	return problems
}
