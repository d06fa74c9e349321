// Package rig moves the scene camera toward the hand-driven offset.
package rig

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/teslashibe/grandtree/pkg/formation"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Config describes the camera rest pose and how fast it follows the offset.
type Config struct {
	Base   mgl32.Vec3            `yaml:"base" json:"base"`
	Target mgl32.Vec3            `yaml:"target" json:"target"`
	Rate   float32               `yaml:"rate" json:"rate"` // fraction per reference frame
	Blend  formation.BlendPolicy `yaml:"blend" json:"blend"`
}

// DefaultConfig places the camera 20 units out, slightly raised, looking at the trunk.
func DefaultConfig() Config {
	return Config{
		Base:  mgl32.Vec3{0, 4, 20},
		Rate:  0.05,
		Blend: formation.BlendTimeScaled,
	}
}

// Validate returns any problems with the configuration.
func (c Config) Validate() []string {
	var problems []string
	if c.Rate <= 0 || c.Rate > 1 {
		problems = append(problems, "rig rate must be in (0, 1]")
	}
	if c.Base.Sub(c.Target).Len() == 0 {
		problems = append(problems, "rig base must differ from the look-at target")
	}
	return problems
}

// Pose is the camera placement for one frame.
type Pose struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Rotation mgl32.Quat
}

// View returns the view matrix for the pose.
func (p Pose) View() mgl32.Mat4 {
	return mgl32.LookAtV(p.Position, p.Target, up)
}

var up = mgl32.Vec3{0, 1, 0}

// Rig is the smoothed camera. It is not safe for concurrent use; the render
// loop owns it.
type Rig struct {
	cfg Config
	pos mgl32.Vec3
}

// New returns a rig resting at its base position.
func New(cfg Config) *Rig {
	return &Rig{cfg: cfg, pos: cfg.Base}
}

// Goal returns where the rig is heading for the given offset.
func (r *Rig) Goal(o state.Offset) mgl32.Vec3 {
	return r.cfg.Base.Add(mgl32.Vec3{o.X, o.Y, 0})
}

// Update eases the camera toward base + offset and returns the new pose.
func (r *Rig) Update(dt float32, o state.Offset) Pose {
	f := r.cfg.Blend.Factor(r.cfg.Rate, dt)
	goal := r.Goal(o)
	r.pos = r.pos.Add(goal.Sub(r.pos).Mul(f))
	return r.Pose()
}

// Pose returns the current pose without advancing.
func (r *Rig) Pose() Pose {
	return Pose{
		Position: r.pos,
		Target:   r.cfg.Target,
		Rotation: mgl32.QuatLookAtV(r.pos, r.cfg.Target, up),
	}
}

// Reset snaps the camera back to its base.
func (r *Rig) Reset() { r.pos = r.cfg.Base }
