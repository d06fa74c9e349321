package formation

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/teslashibe/grandtree/pkg/state"
)

// Transform is what the renderer needs to place one instance.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    float32
	Color    Color
}

// Polaroid is a photo frame's transform plus which photo it shows.
// Photo is -1 when there are no photos.
type Polaroid struct {
	Transform
	Photo int
	Hero  bool
}

// Frame is one tick of output. The engine reuses the slices between ticks,
// so copy anything that must outlive the next Tick.
type Frame struct {
	Tick    uint64
	Elapsed float32
	Mode    state.Mode

	Foliage   []Transform
	Balls     []Transform
	Boxes     []Transform
	Polaroids []Polaroid
}

// Len returns the number of instances in the frame.
func (f *Frame) Len() int {
	return len(f.Foliage) + len(f.Balls) + len(f.Boxes) + len(f.Polaroids)
}
