package formation

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = float32(1.0 / 60.0)

func TestBlendFactor(t *testing.T) {
	tests := []struct {
		name   string
		policy BlendPolicy
		rate   float32
		dt     float32
		want   float32
	}{
		{"time scaled one reference frame", BlendTimeScaled, 0.1, frame, 0.1},
		{"time scaled two reference frames", BlendTimeScaled, 0.1, 2 * frame, 0.19},
		{"fixed ignores dt", BlendFixed, 0.1, 0.5, 0.1},
		{"zero dt is a no-op", BlendTimeScaled, 0.1, 0, 0},
		{"zero dt is a no-op when fixed", BlendFixed, 0.1, 0, 0},
		{"negative dt is a no-op", BlendTimeScaled, 0.1, -1, 0},
		{"rate of one snaps", BlendTimeScaled, 1, frame, 1},
		{"huge dt saturates", BlendTimeScaled, 0.5, 100, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Factor(tt.rate, tt.dt)
			assert.InDelta(t, tt.want, got, 1e-4)
			assert.GreaterOrEqual(t, got, float32(0))
			assert.LessOrEqual(t, got, float32(1))
		})
	}
}

func TestBlendPolicy_Text(t *testing.T) {
	var p BlendPolicy
	require.NoError(t, p.UnmarshalText([]byte("fixed")))
	assert.Equal(t, BlendFixed, p)
	require.NoError(t, p.UnmarshalText([]byte("time_scaled")))
	assert.Equal(t, BlendTimeScaled, p)
	assert.Error(t, p.UnmarshalText([]byte("sometimes")))

	b, err := BlendFixed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "fixed", string(b))
}

// One tick at the reference frame rate with rate 0.1 covers a tenth of
// the way from (5,0,0) to (0,10,0).
func TestPool_SingleTickScenario(t *testing.T) {
	for _, policy := range []BlendPolicy{BlendTimeScaled, BlendFixed} {
		t.Run(policy.String(), func(t *testing.T) {
			p := NewPool(1)
			id := p.Add(mgl32.Vec3{5, 0, 0}, mgl32.Vec3{0, 10, 0}, 0.1, 1, Color{})
			p.Advance(1, frame, policy)

			assert.InDelta(t, 0.1, p.Progress[id], 1e-4)
			pos := p.Position(id)
			assert.InDelta(t, 4.5, pos.X(), 1e-3)
			assert.InDelta(t, 1.0, pos.Y(), 1e-3)
			assert.InDelta(t, 0.0, pos.Z(), 1e-6)
		})
	}
}

func TestPool_MonotoneAndClamped(t *testing.T) {
	p := NewPool(3)
	for _, rate := range []float32{0.01, 0.3, 0.99} {
		p.Add(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, rate, 1, Color{})
	}

	prev := append([]float32(nil), p.Progress...)
	for tick := 0; tick < 2000; tick++ {
		p.Advance(1, frame, BlendTimeScaled)
		for i, v := range p.Progress {
			require.GreaterOrEqual(t, v, prev[i], "entity %d went backwards toward formed", i)
			require.LessOrEqual(t, v, float32(1))
		}
		copy(prev, p.Progress)
	}
	for i, v := range p.Progress {
		assert.InDelta(t, 1, v, 1e-3, "entity %d should have arrived", i)
	}

	for tick := 0; tick < 2000; tick++ {
		p.Advance(0, 0.1, BlendTimeScaled)
		for i, v := range p.Progress {
			require.LessOrEqual(t, v, prev[i], "entity %d went backwards toward chaos", i)
			require.GreaterOrEqual(t, v, float32(0))
		}
		copy(prev, p.Progress)
	}
}

func TestPool_StaggeredArrival(t *testing.T) {
	p := NewPool(2)
	slow := p.Add(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0.01, 1, Color{})
	fast := p.Add(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0.05, 1, Color{})
	for i := 0; i < 30; i++ {
		p.Advance(1, frame, BlendTimeScaled)
	}
	assert.Greater(t, p.Progress[fast], p.Progress[slow])
}

func TestPool_RateFloor(t *testing.T) {
	p := NewPool(1)
	id := p.Add(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0, 1, Color{})
	assert.Equal(t, float32(MinRate), p.Rate[id])
	p.Advance(1, frame, BlendTimeScaled)
	assert.Greater(t, p.Progress[id], float32(0))
}

// Time-scaled blending reaches the same progress whether a second is split
// into 30 or 120 ticks; fixed blending does not.
func TestPool_FrameRateIndependence(t *testing.T) {
	run := func(policy BlendPolicy, fps int) float32 {
		p := NewPool(1)
		p.Add(mgl32.Vec3{}, mgl32.Vec3{1, 0, 0}, 0.05, 1, Color{})
		dt := float32(1) / float32(fps)
		for i := 0; i < fps; i++ {
			p.Advance(1, dt, policy)
		}
		return p.Progress[0]
	}

	assert.InDelta(t, run(BlendTimeScaled, 30), run(BlendTimeScaled, 120), 1e-3)
	assert.Greater(t, run(BlendFixed, 120)-run(BlendFixed, 30), float32(0.1))
}

func TestPool_Empty(t *testing.T) {
	p := NewPool(0)
	p.Advance(1, frame, BlendTimeScaled)
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, float32(0), p.MeanProgress())
}
