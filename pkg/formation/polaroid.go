package formation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/teslashibe/grandtree/pkg/geometry"
	"github.com/teslashibe/grandtree/pkg/state"
)

var yAxis = mgl32.Vec3{0, 1, 0}

// polaroids holds the photo frame slots. Besides the shared pool state each
// frame has a hero progress and a free-running tumble orientation.
type polaroids struct {
	cfg  PolaroidConfig
	pool *Pool

	tilt   []float32    // fixed roll of the frame on the tree
	tumble []mgl32.Vec3 // Euler XYZ, integrated while drifting in chaos
	hero   []float32
}

func newPolaroids(cfg PolaroidConfig, s *geometry.Sampler) *polaroids {
	n := cfg.Slots
	if n < 0 {
		n = 0
	}
	p := &polaroids{
		cfg:    cfg,
		pool:   NewPool(n),
		tilt:   make([]float32, n),
		tumble: make([]mgl32.Vec3, n),
		hero:   make([]float32, n),
	}
	for i := 0; i < n; i++ {
		target, angle := s.Shape().RingPoint(i, n)
		p.pool.Add(s.ChaosPoint(), target, cfg.Rate, 1, Color{1, 1, 1, 1})
		p.tilt[i] = s.Range(-cfg.TiltRange, cfg.TiltRange)
		p.tumble[i] = mgl32.Vec3{0, -angle, p.tilt[i]}
	}
	return p
}

// heroSlot returns the single slot that may be hero for the current photo,
// or -1. Slot i shows photo i mod count, so the first slot showing current
// is slot current itself.
func heroSlot(slots, count, current int) int {
	if count <= 0 || current < 0 || current >= count || current >= slots {
		return -1
	}
	return current
}

// photoFor returns the photo index slot i displays, or -1 with no photos.
func photoFor(slot, count int) int {
	if count <= 0 {
		return -1
	}
	return slot % count
}

func (p *polaroids) tick(out []Polaroid, dt, elapsed float32, mode state.Mode, sel Selection, policy BlendPolicy) []Polaroid {
	out = out[:0]
	chaos := mode != state.Formed
	target := float32(1)
	if chaos {
		target = 0
	}
	hero := heroSlot(len(p.hero), sel.PhotoCount, sel.Current)
	steps := policy.Steps(dt)
	heroFactor := policy.Factor(p.cfg.HeroRate, dt)

	p.pool.Advance(target, dt, policy)

	for i := range p.hero {
		// Only CHAOS has a hero; once formed every frame locks outward.
		isHero := chaos && i == hero
		heroTarget := float32(0)
		if isHero {
			heroTarget = 1
		}
		p.hero[i] = approach(p.hero[i], heroTarget, heroFactor)
		progress, heroP := p.pool.Progress[i], p.hero[i]

		pos := p.pool.Position(i)
		scale := float32(1)
		if heroP > p.cfg.HeroVisible {
			pos = lerpVec(pos, p.cfg.HeroPosition, heroP)
			scale = lerp(1, p.cfg.HeroScale, heroP)
		}

		var rot mgl32.Quat
		switch {
		case progress > p.cfg.LockThreshold && !isHero:
			// Face away from the trunk.
			yaw := math32.Atan2(pos[0], pos[2])
			p.tumble[i] = mgl32.Vec3{0, yaw, 0}
			rot = mgl32.QuatRotate(yaw, yAxis)
		case heroP > p.cfg.HeroFacing:
			wobble := math32.Sin(elapsed) * p.cfg.WobbleAmplitude
			p.tumble[i] = mgl32.Vec3{0, 0, wobble}
			rot = mgl32.QuatRotate(wobble, mgl32.Vec3{0, 0, 1})
		default:
			step := p.cfg.TumbleStep * steps
			p.tumble[i] = p.tumble[i].Add(mgl32.Vec3{step, step, 0})
			rot = eulerQuat(p.tumble[i])
			if heroP > p.cfg.HeroVisible {
				rot = mgl32.QuatSlerp(rot, mgl32.QuatIdent(), heroP)
			}
		}

		out = append(out, Polaroid{
			Transform: Transform{Position: pos, Rotation: rot, Scale: scale, Color: p.pool.Tint[i]},
			Photo:     photoFor(i, sel.PhotoCount),
			Hero:      isHero && heroP > p.cfg.HeroVisible,
		})
	}
	return out
}

func eulerQuat(e mgl32.Vec3) mgl32.Quat {
	return mgl32.AnglesToQuat(e[0], e[1], e[2], mgl32.XYZ)
}

func lerpVec(a, b mgl32.Vec3, t float32) mgl32.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
