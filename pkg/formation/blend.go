package formation

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"
)

// ReferenceFPS is the frame rate the per-entity rates are tuned for.
// A rate r means "cover r of the remaining distance each frame at 60 fps".
const ReferenceFPS = 60

// BlendPolicy selects how a per-frame rate becomes this tick's blend factor.
type BlendPolicy int

const (
	// BlendTimeScaled compounds the rate over the elapsed time, so the
	// animation runs at the same speed regardless of frame rate.
	BlendTimeScaled BlendPolicy = iota

	// BlendFixed applies the rate once per tick whatever the elapsed time.
	// Animation speed then follows the frame rate; kept for parity with
	// recordings made against the legacy renderer.
	BlendFixed
)

func (p BlendPolicy) String() string {
	switch p {
	case BlendFixed:
		return "fixed"
	default:
		return "time_scaled"
	}
}

// MarshalText encodes the policy name.
func (p BlendPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "time_scaled" or "fixed".
func (p *BlendPolicy) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "time_scaled", "timescaled":
		*p = BlendTimeScaled
	case "fixed", "legacy":
		*p = BlendFixed
	default:
		return fmt.Errorf("formation: unknown blend policy %q", text)
	}
	return nil
}

// Factor returns the fraction of the remaining distance to cover in a tick
// of dt seconds. It is always in [0,1]; a zero dt yields 0.
func (p BlendPolicy) Factor(rate, dt float32) float32 {
	if dt <= 0 || rate <= 0 {
		return 0
	}
	if rate >= 1 {
		return 1
	}
	var f float32
	switch p {
	case BlendFixed:
		f = rate
	default:
		f = 1 - math32.Pow(1-rate, dt*ReferenceFPS)
	}
	return clamp01(f)
}

// Steps returns how many reference frames a tick of dt seconds is worth.
// Constant per-frame increments (tumbling) are scaled by it.
func (p BlendPolicy) Steps(dt float32) float32 {
	if dt <= 0 {
		return 0
	}
	if p == BlendFixed {
		return 1
	}
	return dt * ReferenceFPS
}

// approach moves current toward target by factor, staying inside [0,1].
func approach(current, target, factor float32) float32 {
	return clamp01(current + (target-current)*factor)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
