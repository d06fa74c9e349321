package formation

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/teslashibe/grandtree/pkg/geometry"
)

// GroupConfig sizes one group of interchangeable entities.
// Rate and scale are drawn uniformly from their ranges per entity.
type GroupConfig struct {
	Count      int        `yaml:"count" json:"count"`
	RateRange  [2]float32 `yaml:"rate_range" json:"rate_range"`   // per reference frame
	ScaleRange [2]float32 `yaml:"scale_range" json:"scale_range"` // multiplier on the unit mesh
}

// PolaroidConfig controls the photo frames and the hero emphasis.
type PolaroidConfig struct {
	Slots    int     `yaml:"slots" json:"slots"`
	Rate     float32 `yaml:"rate" json:"rate"`           // chaos<->formed, per reference frame
	HeroRate float32 `yaml:"hero_rate" json:"hero_rate"` // faster than Rate

	HeroPosition mgl32.Vec3 `yaml:"hero_position" json:"hero_position"` // front and centre of the default camera
	HeroScale    float32    `yaml:"hero_scale" json:"hero_scale"`

	LockThreshold   float32 `yaml:"lock_threshold" json:"lock_threshold"`     // progress above which frames face outward
	HeroVisible     float32 `yaml:"hero_visible" json:"hero_visible"`         // hero progress above which the pose blends in
	HeroFacing      float32 `yaml:"hero_facing" json:"hero_facing"`           // hero progress above which the frame faces the camera
	TumbleStep      float32 `yaml:"tumble_step" json:"tumble_step"`           // radians per reference frame
	WobbleAmplitude float32 `yaml:"wobble_amplitude" json:"wobble_amplitude"` // radians
	TiltRange       float32 `yaml:"tilt_range" json:"tilt_range"`             // random roll of each frame, ±TiltRange
}

// Config describes the whole scene.
type Config struct {
	Shape geometry.Shape `yaml:"shape" json:"shape"`
	Seed  int64          `yaml:"seed" json:"seed"`
	Blend BlendPolicy    `yaml:"blend" json:"blend"`

	Foliage   GroupConfig    `yaml:"foliage" json:"foliage"`
	Balls     GroupConfig    `yaml:"balls" json:"balls"`
	Boxes     GroupConfig    `yaml:"boxes" json:"boxes"`
	Polaroids PolaroidConfig `yaml:"polaroids" json:"polaroids"`

	// Foliage breathes with 3D noise once formed.
	BreathAmplitude float32 `yaml:"breath_amplitude" json:"breath_amplitude"`
	BreathFrequency float32 `yaml:"breath_frequency" json:"breath_frequency"`

	// Ornament balls bob once almost formed.
	HoverThreshold float32 `yaml:"hover_threshold" json:"hover_threshold"`
	HoverAmplitude float32 `yaml:"hover_amplitude" json:"hover_amplitude"`
}

// DefaultConfig returns the standard scene: 15000 needles, 150 baubles,
// 50 gifts and 12 photo frames.
func DefaultConfig() Config {
	return Config{
		Shape: geometry.DefaultShape(),
		Seed:  1225,
		Blend: BlendTimeScaled,

		Foliage: GroupConfig{Count: 15000, RateRange: [2]float32{0.02, 0.02}, ScaleRange: [2]float32{0, 1}},
		Balls:   GroupConfig{Count: 150, RateRange: [2]float32{0.02, 0.05}, ScaleRange: [2]float32{0.3, 0.6}},
		Boxes:   GroupConfig{Count: 50, RateRange: [2]float32{0.01, 0.02}, ScaleRange: [2]float32{0.8, 1.4}},

		Polaroids: PolaroidConfig{
			Slots:           12,
			Rate:            2.0 / ReferenceFPS,
			HeroRate:        3.0 / ReferenceFPS,
			HeroPosition:    mgl32.Vec3{0, 1, 14},
			HeroScale:       2.5,
			LockThreshold:   0.8,
			HeroVisible:     0.01,
			HeroFacing:      0.5,
			TumbleStep:      0.01,
			WobbleAmplitude: 0.05,
			TiltRange:       0.1,
		},

		BreathAmplitude: 0.02,
		BreathFrequency: 0.5,
		HoverThreshold:  0.9,
		HoverAmplitude:  0.1,
	}
}

// SmallConfig is a scene light enough for tests and slow machines.
func SmallConfig() Config {
	cfg := DefaultConfig()
	cfg.Foliage.Count = 500
	cfg.Balls.Count = 30
	cfg.Boxes.Count = 10
	return cfg
}

// Validate returns a list of problems, or nil if the config is usable.
func (c Config) Validate() []string {
	problems := c.Shape.Validate()
	groups := map[string]GroupConfig{"foliage": c.Foliage, "balls": c.Balls, "boxes": c.Boxes}
	for _, name := range []string{"foliage", "balls", "boxes"} {
		g := groups[name]
		if g.Count < 0 {
			problems = append(problems, fmt.Sprintf("%s.count must not be negative", name))
		}
		if g.RateRange[0] <= 0 || g.RateRange[1] < g.RateRange[0] || g.RateRange[1] > 1 {
			problems = append(problems, fmt.Sprintf("%s.rate_range must satisfy 0 < min <= max <= 1", name))
		}
		if g.ScaleRange[1] < g.ScaleRange[0] {
			problems = append(problems, fmt.Sprintf("%s.scale_range max must not be below min", name))
		}
	}
	p := c.Polaroids
	if p.Slots < 0 {
		problems = append(problems, "polaroids.slots must not be negative")
	}
	if p.Rate <= 0 || p.Rate > 1 || p.HeroRate <= 0 || p.HeroRate > 1 {
		problems = append(problems, "polaroids.rate and hero_rate must be in (0, 1]")
	}
	if p.HeroScale <= 0 {
		problems = append(problems, "polaroids.hero_scale must be positive")
	}
	return problems
}
