package formation

import (
	"github.com/aquilax/go-perlin"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	gold    = Color{0.8, 0.6, 0.1, 1}
	emerald = Color{0.01, 0.2, 0.05, 1}
)

// breather displaces formed foliage with slowly drifting 3D noise.
type breather struct {
	noise     *perlin.Perlin
	amplitude float32
	frequency float32
}

func newBreather(seed int64, amplitude, frequency float32) *breather {
	return &breather{
		noise:     perlin.NewPerlin(2, 2, 3, seed),
		amplitude: amplitude,
		frequency: frequency,
	}
}

// apply scales pos radially by 1 + noise*amplitude*progress.
func (b *breather) apply(pos mgl32.Vec3, progress, elapsed float32) mgl32.Vec3 {
	if progress <= 0 || b.amplitude == 0 {
		return pos
	}
	drift := float64(elapsed * b.frequency)
	n := float32(b.noise.Noise3D(
		float64(pos[0]*b.frequency)+drift,
		float64(pos[1]*b.frequency)+drift,
		float64(pos[2]*b.frequency)+drift,
	))
	return pos.Mul(1 + n*b.amplitude*progress)
}

// foliageColor blends from mostly gold in chaos to emerald when formed,
// with a sparkle that only shows on the formed tree.
func foliageColor(progress, seed, elapsed float32) Color {
	t := progress*0.8 + 0.2
	sparkle := math32.Abs(math32.Sin(elapsed*2+seed*10)) * 0.2 * progress
	return Color{
		lerp(gold[0], emerald[0], t) + sparkle,
		lerp(gold[1], emerald[1], t) + sparkle,
		lerp(gold[2], emerald[2], t) + sparkle,
		1,
	}
}

// pointSize maps a foliage scale seed in [0,1) to a point size.
func pointSize(seed float32) float32 { return 4*seed + 2 }
