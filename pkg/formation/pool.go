package formation

import "github.com/go-gl/mathgl/mgl32"

// MinRate is the smallest per-entity rate a pool accepts. Anything lower is
// raised to it so every entity keeps converging.
const MinRate = 1e-4

// Color is linear RGBA in [0,1].
type Color [4]float32

// Pool stores one group of animated entities as parallel slices indexed by
// entity id. Chaos, Target, Rate, Scale and Tint are fixed at creation;
// only Progress changes tick to tick.
type Pool struct {
	Chaos  []mgl32.Vec3
	Target []mgl32.Vec3
	Rate   []float32
	Scale  []float32
	Tint   []Color

	Progress []float32
}

// NewPool creates an empty pool with room for n entities.
func NewPool(n int) *Pool {
	if n < 0 {
		n = 0
	}
	return &Pool{
		Chaos:    make([]mgl32.Vec3, 0, n),
		Target:   make([]mgl32.Vec3, 0, n),
		Rate:     make([]float32, 0, n),
		Scale:    make([]float32, 0, n),
		Tint:     make([]Color, 0, n),
		Progress: make([]float32, 0, n),
	}
}

// Add appends an entity starting fully in chaos and returns its id.
func (p *Pool) Add(chaos, target mgl32.Vec3, rate, scale float32, tint Color) int {
	if rate < MinRate {
		rate = MinRate
	}
	p.Chaos = append(p.Chaos, chaos)
	p.Target = append(p.Target, target)
	p.Rate = append(p.Rate, rate)
	p.Scale = append(p.Scale, scale)
	p.Tint = append(p.Tint, tint)
	p.Progress = append(p.Progress, 0)
	return len(p.Chaos) - 1
}

// Len returns the number of entities.
func (p *Pool) Len() int { return len(p.Progress) }

// Advance moves every entity's progress toward target using its own rate.
func (p *Pool) Advance(target, dt float32, policy BlendPolicy) {
	if dt <= 0 {
		return
	}
	for i := range p.Progress {
		p.Progress[i] = approach(p.Progress[i], target, policy.Factor(p.Rate[i], dt))
	}
}

// Position returns the entity's current point between chaos and target.
func (p *Pool) Position(i int) mgl32.Vec3 {
	a, b, t := p.Chaos[i], p.Target[i], p.Progress[i]
	return mgl32.Vec3{lerp(a[0], b[0], t), lerp(a[1], b[1], t), lerp(a[2], b[2], t)}
}

// MeanProgress averages progress over the pool; an empty pool reports 0.
func (p *Pool) MeanProgress() float32 {
	if len(p.Progress) == 0 {
		return 0
	}
	var sum float32
	for _, v := range p.Progress {
		sum += v
	}
	return sum / float32(len(p.Progress))
}
