package gesture

import "time"

// Direction is a browse step.
type Direction int

const (
	None Direction = 0
	Next Direction = 1
	Prev Direction = -1
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Prev:
		return "prev"
	}
	return "none"
}

// SwipeDetector fires browse events from horizontal wrist velocity. After
// an event no other event fires until the cooldown elapses.
type SwipeDetector struct {
	threshold float64
	cooldown  time.Duration

	prevX   float64
	hasPrev bool
	until   time.Time
}

// NewSwipeDetector returns a detector for the given per-frame threshold.
func NewSwipeDetector(threshold float64, cooldown time.Duration) *SwipeDetector {
	return &SwipeDetector{threshold: threshold, cooldown: cooldown}
}

// Observe feeds one mirrored wrist X. Swipes only fire while the hand is
// open. The previous X is updated on every call.
func (d *SwipeDetector) Observe(x float64, open bool, now time.Time) Direction {
	dir := None
	if open && d.hasPrev && now.After(d.until) {
		delta := x - d.prevX
		switch {
		case delta > d.threshold:
			dir = Next
		case delta < -d.threshold:
			dir = Prev
		}
		if dir != None {
			d.until = now.Add(d.cooldown)
		}
	}
	d.prevX, d.hasPrev = x, true
	return dir
}

// CooldownUntil returns the earliest time the next swipe may fire.
func (d *SwipeDetector) CooldownUntil() time.Time { return d.until }

// Reset drops the previous X so a hand reappearing elsewhere does not
// register as a swipe. The cooldown is kept.
func (d *SwipeDetector) Reset() { d.hasPrev = false }
