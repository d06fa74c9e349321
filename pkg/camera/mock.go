package camera

import (
	"context"
	"image"
	"sync"
	"time"
)

// Mock implements Provider for testing.
// All methods can be customized via function fields.
type Mock struct {
	// AvailableFunc is called by Available. If nil, the camera is available.
	AvailableFunc func(cfg Config) error

	// OpenFunc is called by Open. If nil, a MockSource producing blank
	// frames of the configured size is returned.
	OpenFunc func(ctx context.Context, cfg Config) (Source, error)

	mu     sync.Mutex
	opened []*MockSource
}

// NewMock creates a mock provider with sensible defaults.
func NewMock() *Mock {
	return &Mock{}
}

// Available calls AvailableFunc.
func (m *Mock) Available(cfg Config) error {
	if m.AvailableFunc != nil {
		return m.AvailableFunc(cfg)
	}
	return nil
}

// Open calls OpenFunc or returns a blank MockSource.
func (m *Mock) Open(ctx context.Context, cfg Config) (Source, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, cfg)
	}
	src := NewMockSource(cfg.Width, cfg.Height)
	m.mu.Lock()
	m.opened = append(m.opened, src)
	m.mu.Unlock()
	return src, nil
}

// Opened returns the sources handed out by the default Open.
func (m *Mock) Opened() []*MockSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockSource(nil), m.opened...)
}

// MockSource is a Source returning synthetic frames.
type MockSource struct {
	// ReadFunc overrides frame generation when set.
	ReadFunc func(ctx context.Context) (Frame, error)

	// Interval paces reads. Zero returns immediately.
	Interval time.Duration

	img    image.Image
	mu     sync.Mutex
	seq    uint64
	closed bool
}

// NewMockSource returns a source of blank width x height frames.
func NewMockSource(width, height int) *MockSource {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 16
	}
	return &MockSource{img: img, Interval: time.Millisecond}
}

// Read returns the next synthetic frame.
func (s *MockSource) Read(ctx context.Context) (Frame, error) {
	if s.IsClosed() {
		return Frame{}, ErrClosed
	}
	if s.Interval > 0 {
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-time.After(s.Interval):
		}
	}
	if s.ReadFunc != nil {
		return s.ReadFunc(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Frame{Image: s.img, Seq: s.seq, Captured: time.Now()}, nil
}

// Close marks the source closed.
func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (s *MockSource) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
