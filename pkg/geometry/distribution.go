package geometry

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler draws random points from the shape's distributions.
// It is not safe for concurrent use; give each goroutine its own.
type Sampler struct {
	shape Shape
	rng   *rand.Rand
}

// NewSampler creates a sampler over shape seeded with seed.
func NewSampler(shape Shape, seed int64) *Sampler {
	return &Sampler{shape: shape, rng: rand.New(rand.NewSource(seed))}
}

// Shape returns the dimensions the sampler draws from.
func (s *Sampler) Shape() Shape { return s.shape }

// Float32 returns a uniform value in [0,1).
func (s *Sampler) Float32() float32 { return s.rng.Float32() }

// Range returns a uniform value in [lo,hi).
func (s *Sampler) Range(lo, hi float32) float32 {
	return lo + s.rng.Float32()*(hi-lo)
}

// ChaosPoint samples a point uniformly by volume inside the chaos sphere.
// The direction is uniform on the sphere (phi = acos(2u-1)) and the radius
// uses a cube root so density does not pile up at the centre.
func (s *Sampler) ChaosPoint() mgl32.Vec3 {
	theta := s.rng.Float32() * 2 * math32.Pi
	phi := math32.Acos(s.rng.Float32()*2 - 1)
	r := math32.Cbrt(s.rng.Float32()) * s.shape.ChaosRadius

	sinPhi := math32.Sin(phi)
	return mgl32.Vec3{
		r * sinPhi * math32.Cos(theta),
		r * sinPhi * math32.Sin(theta),
		r * math32.Cos(phi),
	}
}

// TreeSurfacePoint samples a point on the cone, with the radius shrinking
// linearly from TreeRadiusBase at the bottom to zero at the apex, plus a
// little radial noise so the foliage has depth.
func (s *Sampler) TreeSurfacePoint() mgl32.Vec3 {
	h := s.shape.TreeHeight
	n := s.rng.Float32()
	y := n*h - h/2
	r := (1 - n) * s.shape.TreeRadiusBase

	angle := s.rng.Float32() * 2 * math32.Pi
	r += (s.rng.Float32() - 0.5) * s.shape.SurfaceJitter

	return mgl32.Vec3{math32.Cos(angle) * r, y, math32.Sin(angle) * r}
}

// GiftPoint samples a resting place for a gift box around the foot of the tree.
func (s *Sampler) GiftPoint() mgl32.Vec3 {
	spread := s.shape.GiftSpread
	return mgl32.Vec3{
		(s.rng.Float32() - 0.5) * spread,
		s.shape.GiftFloor + s.rng.Float32()*s.shape.GiftHeight,
		(s.rng.Float32() - 0.5) * spread,
	}
}

// SpiralPoint places entity index of total on a golden-angle spiral wound
// around the cone, slightly inside the foliage. It is deterministic.
// A non-positive total places everything at the base centre.
func (s Shape) SpiralPoint(index, total int) mgl32.Vec3 {
	if total <= 0 {
		return mgl32.Vec3{0, -s.TreeHeight / 2, 0}
	}
	t := float32(index) / float32(total)
	y := t*s.TreeHeight - s.TreeHeight/2
	r := (1 - t) * s.TreeRadiusBase * s.SpiralTightness

	angle := float32(index) * s.SpiralAngle
	return mgl32.Vec3{math32.Cos(angle) * r, y, math32.Sin(angle) * r}
}

// RingPoint places frame index of total on a single helical turn around the
// tree. It returns the point and its angle around the trunk.
func (s Shape) RingPoint(index, total int) (mgl32.Vec3, float32) {
	if total <= 0 {
		return mgl32.Vec3{s.RingRadius, -s.RingHeight / 2, 0}, 0
	}
	t := float32(index) / float32(total)
	angle := t * 2 * math32.Pi
	y := t*s.RingHeight - s.RingHeight/2
	return mgl32.Vec3{math32.Cos(angle) * s.RingRadius, y, math32.Sin(angle) * s.RingRadius}, angle
}
