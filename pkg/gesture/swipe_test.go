package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func observeAll(d *SwipeDetector, xs []float64, step time.Duration) []Direction {
	var fired []Direction
	for i, x := range xs {
		if dir := d.Observe(x, true, t0.Add(time.Duration(i)*step)); dir != None {
			fired = append(fired, dir)
		}
	}
	return fired
}

func TestSwipe_OnePerCooldown(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	d.Observe(-0.6, true, t0.Add(-100*time.Millisecond))

	// Six samples 100ms apart, each 0.2 to the right of the last.
	fired := observeAll(d, []float64{-0.4, -0.2, 0, 0.2, 0.4, 0.6}, 100*time.Millisecond)
	assert.Equal(t, []Direction{Next}, fired)
}

func TestSwipe_FiresAgainAfterCooldown(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	d.Observe(0, true, t0)
	assert.Equal(t, Next, d.Observe(0.2, true, t0.Add(100*time.Millisecond)))
	assert.Equal(t, t0.Add(700*time.Millisecond), d.CooldownUntil())

	// Exactly at the deadline is still cooling down.
	assert.Equal(t, None, d.Observe(0.4, true, t0.Add(700*time.Millisecond)))
	assert.Equal(t, Prev, d.Observe(0.1, true, t0.Add(800*time.Millisecond)))
}

func TestSwipe_LargeDeltaStillOne(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	fired := observeAll(d, []float64{-1, 1, -1, 1}, 50*time.Millisecond)
	assert.Len(t, fired, 1)
}

func TestSwipe_ClosedHandTracksButNeverFires(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	assert.Equal(t, None, d.Observe(0, false, t0))
	assert.Equal(t, None, d.Observe(0.5, false, t0.Add(100*time.Millisecond)))
	// The closed frame still moved the previous X.
	assert.Equal(t, None, d.Observe(0.6, true, t0.Add(200*time.Millisecond)))
}

func TestSwipe_BelowThreshold(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	fired := observeAll(d, []float64{0, 0.1, 0.2, 0.3, 0.2, 0.1}, 100*time.Millisecond)
	assert.Empty(t, fired)
}

func TestSwipe_Reset(t *testing.T) {
	d := NewSwipeDetector(0.15, 600*time.Millisecond)
	d.Observe(-0.8, true, t0)
	d.Reset()
	assert.Equal(t, None, d.Observe(0.8, true, t0.Add(100*time.Millisecond)), "a reappearing hand is not a swipe")
}

func TestDirection_String(t *testing.T) {
	assert.Equal(t, "next", Next.String())
	assert.Equal(t, "prev", Prev.String())
	assert.Equal(t, "none", None.String())
}
