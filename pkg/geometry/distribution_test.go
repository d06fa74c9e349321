package geometry

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaosPoint_WithinRadius(t *testing.T) {
	shape := DefaultShape()
	s := NewSampler(shape, 1)

	for i := 0; i < 5000; i++ {
		p := s.ChaosPoint()
		require.LessOrEqual(t, p.Len(), shape.ChaosRadius+1e-3, "sample %d escaped the sphere: %v", i, p)
	}
}

// Uniform-by-volume means P(r <= k*R) = k^3. A surface-biased sampler
// gives a fraction near zero, uniform-in-r gives k.
func TestChaosPoint_VolumetricDensity(t *testing.T) {
	shape := DefaultShape()
	s := NewSampler(shape, 7)

	const n = 20000
	cuts := []float32{0.25, 0.5, 0.8, 0.95}
	counts := make([]int, len(cuts))
	var sum [3]float32

	for i := 0; i < n; i++ {
		p := s.ChaosPoint()
		r := p.Len() / shape.ChaosRadius
		for j, k := range cuts {
			if r <= k {
				counts[j]++
			}
		}
		sum[0] += p.X()
		sum[1] += p.Y()
		sum[2] += p.Z()
	}

	for j, k := range cuts {
		got := float32(counts[j]) / n
		want := k * k * k
		assert.InDelta(t, want, got, 0.02, "fraction inside %.2fR", k)
	}

	for axis, v := range sum {
		assert.InDelta(t, 0, v/n, 0.5, "mean along axis %d should be near the centre", axis)
	}
}

func TestTreeSurfacePoint_Cone(t *testing.T) {
	shape := DefaultShape()
	s := NewSampler(shape, 3)
	half := shape.TreeHeight / 2
	tolerance := shape.SurfaceJitter/2 + 1e-3

	minY, maxY := float32(math32.MaxFloat32), float32(-math32.MaxFloat32)
	for i := 0; i < 10000; i++ {
		p := s.TreeSurfacePoint()
		require.GreaterOrEqual(t, p.Y(), -half)
		require.LessOrEqual(t, p.Y(), half)

		n := (p.Y() + half) / shape.TreeHeight
		want := (1 - n) * shape.TreeRadiusBase
		got := math32.Hypot(p.X(), p.Z())
		require.InDelta(t, want, got, float64(tolerance), "radius at y=%.2f", p.Y())

		minY = math32.Min(minY, p.Y())
		maxY = math32.Max(maxY, p.Y())
	}

	// The samples should reach both ends of the trunk.
	assert.InDelta(t, -half, minY, 0.05)
	assert.InDelta(t, half, maxY, 0.05)
}

func TestSpiralPoint_Deterministic(t *testing.T) {
	shape := DefaultShape()
	for i := 0; i < 150; i++ {
		assert.Equal(t, shape.SpiralPoint(i, 150), shape.SpiralPoint(i, 150))
	}
}

func TestSpiralPoint_Layout(t *testing.T) {
	shape := DefaultShape()

	base := shape.SpiralPoint(0, 100)
	assert.InDelta(t, -shape.TreeHeight/2, base.Y(), 1e-5)
	assert.InDelta(t, shape.TreeRadiusBase*shape.SpiralTightness, math32.Hypot(base.X(), base.Z()), 1e-4)

	mid := shape.SpiralPoint(50, 100)
	assert.InDelta(t, 0, mid.Y(), 1e-5)
	assert.InDelta(t, 0.5*shape.TreeRadiusBase*shape.SpiralTightness, math32.Hypot(mid.X(), mid.Z()), 1e-4)

	// Successive indices advance by the golden angle.
	p1 := shape.SpiralPoint(1, 100)
	assert.InDelta(t, GoldenAngle, math32.Atan2(p1.Z(), p1.X()), 1e-4)

	// Heights rise monotonically.
	prev := shape.SpiralPoint(0, 100).Y()
	for i := 1; i < 100; i++ {
		y := shape.SpiralPoint(i, 100).Y()
		assert.Greater(t, y, prev)
		prev = y
	}
}

func TestSpiralPoint_ZeroTotal(t *testing.T) {
	shape := DefaultShape()
	p := shape.SpiralPoint(3, 0)
	assert.False(t, math32.IsNaN(p.X()) || math32.IsNaN(p.Y()) || math32.IsNaN(p.Z()))
}

func TestRingPoint(t *testing.T) {
	shape := DefaultShape()

	p, angle := shape.RingPoint(0, 12)
	assert.InDelta(t, 0, angle, 1e-6)
	assert.InDelta(t, shape.RingRadius, p.X(), 1e-5)
	assert.InDelta(t, -shape.RingHeight/2, p.Y(), 1e-5)

	p, angle = shape.RingPoint(3, 12)
	assert.InDelta(t, math32.Pi/2, angle, 1e-5)
	assert.InDelta(t, shape.RingRadius, p.Z(), 1e-4)
	assert.InDelta(t, -3, p.Y(), 1e-5)
}

func TestGiftPoint_Bounds(t *testing.T) {
	shape := DefaultShape()
	s := NewSampler(shape, 11)
	for i := 0; i < 1000; i++ {
		p := s.GiftPoint()
		assert.LessOrEqual(t, math32.Abs(p.X()), shape.GiftSpread/2)
		assert.LessOrEqual(t, math32.Abs(p.Z()), shape.GiftSpread/2)
		assert.GreaterOrEqual(t, p.Y(), shape.GiftFloor)
		assert.Less(t, p.Y(), shape.GiftFloor+shape.GiftHeight)
	}
}

func TestShape_Validate(t *testing.T) {
	assert.Empty(t, DefaultShape().Validate())

	bad := DefaultShape()
	bad.TreeHeight = 0
	bad.SpiralTightness = 1.5
	assert.Len(t, bad.Validate(), 2)
}
