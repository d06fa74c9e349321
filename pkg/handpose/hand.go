// Package handpose is the boundary to the hand landmark model.
//
// A Hand carries 21 keypoints in the MediaPipe order, in frame pixel
// coordinates, plus named groups:
//
//	palmBase      [0]
//	thumb         [1..4]
//	indexFinger   [5..8]
//	middleFinger  [9..12]
//	ringFinger    [13..16]
//	pinky         [17..20]
package handpose

import "math"

// NumLandmarks is the keypoint count of one hand.
const NumLandmarks = 21

// Annotation group names.
const (
	PalmBase     = "palmBase"
	Thumb        = "thumb"
	IndexFinger  = "indexFinger"
	MiddleFinger = "middleFinger"
	RingFinger   = "ringFinger"
	Pinky        = "pinky"
)

var groups = []struct {
	name       string
	start, end int
}{
	{PalmBase, 0, 1},
	{Thumb, 1, 5},
	{IndexFinger, 5, 9},
	{MiddleFinger, 9, 13},
	{RingFinger, 13, 17},
	{Pinky, 17, 21},
}

// Point is a pixel coordinate.
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Hand is one detected hand.
type Hand struct {
	Landmarks   []Point            `json:"landmarks"`
	Annotations map[string][]Point `json:"annotations"`
	Score       float64            `json:"score"`
}

// NewHand builds a hand from 21 landmarks and fills in the annotations.
func NewHand(landmarks []Point, score float64) Hand {
	return Hand{Landmarks: landmarks, Annotations: Annotate(landmarks), Score: score}
}

// Annotate groups landmarks by finger. Groups that the slice is too short
// to cover are omitted.
func Annotate(landmarks []Point) map[string][]Point {
	out := make(map[string][]Point, len(groups))
	for _, g := range groups {
		if g.end > len(landmarks) {
			continue
		}
		out[g.name] = landmarks[g.start:g.end]
	}
	return out
}

// Wrist returns landmark 0.
func (h Hand) Wrist() (Point, bool) {
	if len(h.Landmarks) == 0 {
		return Point{}, false
	}
	return h.Landmarks[0], true
}

// Joint returns the i-th point of an annotation group.
func (h Hand) Joint(group string, i int) (Point, bool) {
	pts := h.Annotations[group]
	if i < 0 || i >= len(pts) {
		return Point{}, false
	}
	return pts[i], true
}

// FromTensor decodes a flat landmark tensor of (x, y, z...) rows laid out
// with the given stride, in model input coordinates, into frame pixels.
func FromTensor(data []float32, stride int, inputW, inputH, frameW, frameH float64, score float64) (Hand, error) {
	if stride < 2 {
		return Hand{}, ErrBadTensor
	}
	if len(data) < NumLandmarks*stride {
		return Hand{}, ErrBadTensor
	}
	sx, sy := frameW/inputW, frameH/inputH
	pts := make([]Point, NumLandmarks)
	for i := range pts {
		pts[i] = Point{
			X: float64(data[i*stride]) * sx,
			Y: float64(data[i*stride+1]) * sy,
		}
	}
	return NewHand(pts, score), nil
}
