package handpose

import (
	"context"
	"sync"

	"github.com/teslashibe/grandtree/pkg/camera"
)

// Mock implements Estimator and Loader for testing.
// All methods can be customized via function fields.
type Mock struct {
	// EstimateFunc is called by EstimateHands. If nil, no hands are found.
	EstimateFunc func(ctx context.Context, frame camera.Frame) ([]Hand, error)

	// LoadFunc is called by Load. If nil, the mock returns itself.
	LoadFunc func(ctx context.Context) (Estimator, error)

	mu     sync.Mutex
	calls  int
	closed bool
}

// NewMock creates a mock that sees no hands.
func NewMock() *Mock { return &Mock{} }

// Load calls LoadFunc or returns m.
func (m *Mock) Load(ctx context.Context) (Estimator, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return m, nil
}

// EstimateHands calls EstimateFunc and counts the call.
func (m *Mock) EstimateHands(ctx context.Context, frame camera.Frame) ([]Hand, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.EstimateFunc != nil {
		return m.EstimateFunc(ctx, frame)
	}
	return nil, nil
}

// Close marks the mock closed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Calls returns how many times EstimateHands ran.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close was called.
func (m *Mock) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SyntheticHand builds a hand whose wrist sits at (x, y) with the middle
// fingertip spread pixels above it. Other joints lie on the same line.
func SyntheticHand(x, y, spread float64) Hand {
	pts := make([]Point, NumLandmarks)
	for i := range pts {
		pts[i] = Point{X: x, Y: y}
	}
	for j := 0; j < 4; j++ {
		pts[9+j] = Point{X: x, Y: y - spread*float64(j+1)/4}
	}
	return NewHand(pts, 1)
}
