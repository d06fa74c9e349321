// Package scene encodes per-tick transforms for an external renderer.
//
// Layout, all little endian:
//
//	header   "GTF1" | version u16 | flags u16 | tick u64 | elapsed f32 |
//	         mode u8 | pad [3] | camera pos 3*f32 | camera rot 4*f32 |
//	         counts 4*u32 (foliage, balls, boxes, polaroids)
//	instance pos 3*f32 | rot 4*f32 (x, y, z, w) | scale f32 | rgba 4*f32
//	polaroid instance | photo i32 | hero u8 | pad [3]
//
// Groups follow the header in count order.
package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/teslashibe/grandtree/pkg/formation"
	"github.com/teslashibe/grandtree/pkg/rig"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Version is the current layout version.
const Version = 1

var magic = [4]byte{'G', 'T', 'F', '1'}

// Sizes in bytes.
const (
	HeaderSize   = 4 + 2 + 2 + 8 + 4 + 4 + 3*4 + 4*4 + 4*4
	InstanceSize = 12 * 4
	PolaroidSize = InstanceSize + 4 + 4
)

var (
	// ErrShort is returned when the buffer ends early.
	ErrShort = errors.New("scene: buffer too short")

	// ErrMagic is returned for data that is not a frame.
	ErrMagic = errors.New("scene: bad magic")

	// ErrVersion is returned for an unknown layout version.
	ErrVersion = errors.New("scene: unsupported version")
)

// Frame is a decoded frame. Its slices are owned by the caller.
type Frame struct {
	Tick      uint64
	Elapsed   float32
	Mode      state.Mode
	Camera    rig.Pose
	Foliage   []formation.Transform
	Balls     []formation.Transform
	Boxes     []formation.Transform
	Polaroids []formation.Polaroid
}

// Size returns the encoded length of f.
func Size(f *formation.Frame) int {
	return HeaderSize + InstanceSize*(len(f.Foliage)+len(f.Balls)+len(f.Boxes)) + PolaroidSize*len(f.Polaroids)
}

// Encode returns f encoded into a new slice that the caller owns. Frames
// handed to a broadcast queue must not share memory with the next tick.
func Encode(f *formation.Frame, cam rig.Pose) []byte {
	return Append(make([]byte, 0, Size(f)), f, cam)
}

// Append encodes f onto dst.
func Append(dst []byte, f *formation.Frame, cam rig.Pose) []byte {
	w := writer{b: grow(dst, Size(f))}

	w.bytes(magic[:])
	w.u16(Version)
	w.u16(0)
	w.u64(f.Tick)
	w.f32(f.Elapsed)
	var mode byte
	if f.Mode == state.Formed {
		mode = 1
	}
	w.bytes([]byte{mode, 0, 0, 0})
	w.vec3(cam.Position)
	w.quat(cam.Rotation)
	for _, n := range []int{len(f.Foliage), len(f.Balls), len(f.Boxes), len(f.Polaroids)} {
		w.u32(uint32(n))
	}

	for _, group := range [][]formation.Transform{f.Foliage, f.Balls, f.Boxes} {
		for i := range group {
			w.transform(&group[i])
		}
	}
	for i := range f.Polaroids {
		p := &f.Polaroids[i]
		w.transform(&p.Transform)
		w.u32(uint32(int32(p.Photo)))
		var hero byte
		if p.Hero {
			hero = 1
		}
		w.bytes([]byte{hero, 0, 0, 0})
	}
	return w.b
}

// Decode parses an encoded frame.
func Decode(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShort, len(data))
	}
	r := reader{b: data}

	if [4]byte(r.next(4)) != magic {
		return nil, ErrMagic
	}
	if v := r.u16(); v != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	r.u16() // flags

	f := &Frame{Tick: r.u64(), Elapsed: r.f32(), Mode: state.Chaos}
	if r.next(4)[0] == 1 {
		f.Mode = state.Formed
	}
	f.Camera.Position = r.vec3()
	f.Camera.Rotation = r.quat()

	var counts [4]int
	for i := range counts {
		counts[i] = int(r.u32())
	}
	want := HeaderSize + InstanceSize*(counts[0]+counts[1]+counts[2]) + PolaroidSize*counts[3]
	if len(data) < want {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShort, len(data), want)
	}

	groups := []*[]formation.Transform{&f.Foliage, &f.Balls, &f.Boxes}
	for g, dst := range groups {
		*dst = make([]formation.Transform, counts[g])
		for i := range *dst {
			(*dst)[i] = r.transform()
		}
	}
	f.Polaroids = make([]formation.Polaroid, counts[3])
	for i := range f.Polaroids {
		f.Polaroids[i].Transform = r.transform()
		f.Polaroids[i].Photo = int(int32(r.u32()))
		f.Polaroids[i].Hero = r.next(4)[0] == 1
	}
	return f, nil
}

func grow(b []byte, n int) []byte {
	if cap(b)-len(b) < n {
		nb := make([]byte, len(b), len(b)+n)
		copy(nb, b)
		return nb
	}
	return b
}

type writer struct{ b []byte }

func (w *writer) bytes(p []byte) { w.b = append(w.b, p...) }
func (w *writer) u16(v uint16)   { w.b = binary.LittleEndian.AppendUint16(w.b, v) }
func (w *writer) u32(v uint32)   { w.b = binary.LittleEndian.AppendUint32(w.b, v) }
func (w *writer) u64(v uint64)   { w.b = binary.LittleEndian.AppendUint64(w.b, v) }
func (w *writer) f32(v float32)  { w.u32(math.Float32bits(v)) }

func (w *writer) vec3(v mgl32.Vec3) {
	w.f32(v[0])
	w.f32(v[1])
	w.f32(v[2])
}

func (w *writer) quat(q mgl32.Quat) {
	w.vec3(q.V)
	w.f32(q.W)
}

func (w *writer) transform(t *formation.Transform) {
	w.vec3(t.Position)
	w.quat(t.Rotation)
	w.f32(t.Scale)
	for _, c := range t.Color {
		w.f32(c)
	}
}

// reader assumes the caller checked the length.
type reader struct {
	b   []byte
	off int
}

func (r *reader) next(n int) []byte {
	p := r.b[r.off : r.off+n]
	r.off += n
	return p
}

func (r *reader) u16() uint16  { return binary.LittleEndian.Uint16(r.next(2)) }
func (r *reader) u32() uint32  { return binary.LittleEndian.Uint32(r.next(4)) }
func (r *reader) u64() uint64  { return binary.LittleEndian.Uint64(r.next(8)) }
func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

func (r *reader) vec3() mgl32.Vec3 {
	return mgl32.Vec3{r.f32(), r.f32(), r.f32()}
}

func (r *reader) quat() mgl32.Quat {
	v := r.vec3()
	return mgl32.Quat{W: r.f32(), V: v}
}

func (r *reader) transform() formation.Transform {
	t := formation.Transform{Position: r.vec3(), Rotation: r.quat(), Scale: r.f32()}
	for i := range t.Color {
		t.Color[i] = r.f32()
	}
	return t
}
