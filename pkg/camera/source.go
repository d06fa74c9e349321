package camera

import (
	"context"
	"image"
	"time"
)

// Frame is one captured video frame.
type Frame struct {
	Image    image.Image
	Seq      uint64
	Captured time.Time
}

// Size returns the frame dimensions in pixels.
func (f Frame) Size() (width, height int) {
	if f.Image == nil {
		return 0, 0
	}
	b := f.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Source is a live video stream.
type Source interface {
	// Read blocks until the next frame is available.
	Read(ctx context.Context) (Frame, error)

	// Close releases the device. Further reads return ErrClosed.
	Close() error
}

// Provider acquires streams from a capture backend.
type Provider interface {
	// Available reports whether the capture API can be used at all.
	// It returns ErrUnavailable or ErrPermissionDenied when it cannot.
	Available(cfg Config) error

	// Open starts a stream.
	Open(ctx context.Context, cfg Config) (Source, error)
}
