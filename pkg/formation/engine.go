// Package formation animates every entity of the tree between its chaos
// position and its formed position.
//
// Each entity carries its own progress scalar and rate, so a mode change
// turns into a staggered flock rather than a synchronized snap. Photo
// frames additionally blend toward a front-and-centre hero pose while the
// tree is dispersed.
package formation

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/teslashibe/grandtree/pkg/geometry"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Selection tells the engine which photo is being browsed.
type Selection struct {
	PhotoCount int
	Current    int
}

// Engine owns the entity pools and produces one Frame per Tick.
// It is not safe for concurrent use; the render loop owns it.
type Engine struct {
	cfg Config

	foliage *Pool
	balls   *Pool
	boxes   *Pool
	boxRot  []mgl32.Quat
	frames  *polaroids

	breath *breather

	tick    uint64
	elapsed float32
	frame   Frame
}

// New populates the scene described by cfg.
func New(cfg Config) *Engine {
	s := geometry.NewSampler(cfg.Shape, cfg.Seed)
	e := &Engine{
		cfg:     cfg,
		foliage: NewPool(cfg.Foliage.Count),
		balls:   NewPool(cfg.Balls.Count),
		boxes:   NewPool(cfg.Boxes.Count),
		boxRot:  make([]mgl32.Quat, 0, max(cfg.Boxes.Count, 0)),
		breath:  newBreather(cfg.Seed, cfg.BreathAmplitude, cfg.BreathFrequency),
	}

	for i := 0; i < cfg.Foliage.Count; i++ {
		e.foliage.Add(s.ChaosPoint(), s.TreeSurfacePoint(),
			drawRange(s, cfg.Foliage.RateRange), drawRange(s, cfg.Foliage.ScaleRange), gold)
	}

	for i := 0; i < cfg.Balls.Count; i++ {
		// Golds.
		c := colorful.Hsl(float64(s.Float32()*0.1+0.1)*360, 0.8, 0.5)
		e.balls.Add(s.ChaosPoint(), cfg.Shape.SpiralPoint(i, cfg.Balls.Count),
			drawRange(s, cfg.Balls.RateRange), drawRange(s, cfg.Balls.ScaleRange), fromColorful(c))
	}

	giftRed, _ := colorful.Hex("#8b0000")
	giftGreen, _ := colorful.Hex("#013220")
	for i := 0; i < cfg.Boxes.Count; i++ {
		c := giftGreen
		if s.Float32() > 0.5 {
			c = giftRed
		}
		e.boxes.Add(s.ChaosPoint(), s.GiftPoint(),
			drawRange(s, cfg.Boxes.RateRange), drawRange(s, cfg.Boxes.ScaleRange), fromColorful(c))
		e.boxRot = append(e.boxRot, eulerQuat(mgl32.Vec3{s.Range(0, math32.Pi), s.Range(0, math32.Pi), 0}))
	}

	e.frames = newPolaroids(cfg.Polaroids, s)
	return e
}

// Config returns the configuration the scene was built from.
func (e *Engine) Config() Config { return e.cfg }

// Count returns the total number of animated entities.
func (e *Engine) Count() int {
	return e.foliage.Len() + e.balls.Len() + e.boxes.Len() + e.frames.pool.Len()
}

// Elapsed returns the animation clock in seconds.
func (e *Engine) Elapsed() float32 { return e.elapsed }

// Progress returns the mean progress of every entity, 0 with none.
func (e *Engine) Progress() float32 {
	n := e.Count()
	if n == 0 {
		return 0
	}
	sum := e.foliage.MeanProgress()*float32(e.foliage.Len()) +
		e.balls.MeanProgress()*float32(e.balls.Len()) +
		e.boxes.MeanProgress()*float32(e.boxes.Len()) +
		e.frames.pool.MeanProgress()*float32(e.frames.pool.Len())
	return sum / float32(n)
}

// Tick advances the animation by dt seconds toward mode and returns the
// resulting transforms. A zero dt leaves every progress unchanged and
// re-emits the current pose. The returned frame is reused by the next Tick.
func (e *Engine) Tick(dt float32, mode state.Mode, sel Selection) *Frame {
	if dt < 0 {
		dt = 0
	}
	e.tick++
	e.elapsed += dt
	target := mode.TargetProgress()
	policy := e.cfg.Blend

	e.foliage.Advance(target, dt, policy)
	e.balls.Advance(target, dt, policy)
	e.boxes.Advance(target, dt, policy)

	f := &e.frame
	f.Tick, f.Elapsed, f.Mode = e.tick, e.elapsed, mode

	f.Foliage = f.Foliage[:0]
	for i := range e.foliage.Progress {
		p := e.foliage.Progress[i]
		f.Foliage = append(f.Foliage, Transform{
			Position: e.breath.apply(e.foliage.Position(i), p, e.elapsed),
			Rotation: mgl32.QuatIdent(),
			Scale:    pointSize(e.foliage.Scale[i]),
			Color:    foliageColor(p, e.foliage.Scale[i], e.elapsed),
		})
	}

	f.Balls = f.Balls[:0]
	for i := range e.balls.Progress {
		pos := e.balls.Position(i)
		if e.balls.Progress[i] > e.cfg.HoverThreshold {
			pos[1] += math32.Sin(e.elapsed*2+float32(i)) * e.cfg.HoverAmplitude
		}
		f.Balls = append(f.Balls, Transform{
			Position: pos,
			Rotation: mgl32.QuatIdent(),
			Scale:    e.balls.Scale[i],
			Color:    e.balls.Tint[i],
		})
	}

	f.Boxes = f.Boxes[:0]
	for i := range e.boxes.Progress {
		f.Boxes = append(f.Boxes, Transform{
			Position: e.boxes.Position(i),
			Rotation: e.boxRot[i],
			Scale:    e.boxes.Scale[i],
			Color:    e.boxes.Tint[i],
		})
	}

	f.Polaroids = e.frames.tick(f.Polaroids, dt, e.elapsed, mode, sel, policy)
	return f
}

func drawRange(s *geometry.Sampler, r [2]float32) float32 {
	if r[1] <= r[0] {
		return r[0]
	}
	return s.Range(r[0], r[1])
}

func fromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{float32(c.R), float32(c.G), float32(c.B), 1}
}
