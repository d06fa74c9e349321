// Package webcam captures frames from a local camera through OpenCV.
package webcam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/teslashibe/grandtree/pkg/camera"
)

// Provider opens gocv video captures.
type Provider struct{}

// New returns a webcam provider.
func New() *Provider { return &Provider{} }

// Available checks that the capture device node exists and is readable.
// Only Linux exposes device nodes; elsewhere the check is left to Open.
func (p *Provider) Available(cfg camera.Config) error {
	if runtime.GOOS != "linux" {
		return nil
	}
	path := devicePath(cfg.Device)
	f, err := os.Open(path)
	switch {
	case err == nil:
		return f.Close()
	case os.IsNotExist(err):
		return fmt.Errorf("%w: %s", camera.ErrUnavailable, path)
	case os.IsPermission(err):
		return fmt.Errorf("%w: %s", camera.ErrPermissionDenied, path)
	default:
		return fmt.Errorf("%w: %v", camera.ErrUnavailable, err)
	}
}

// Open starts capturing from cfg.Device.
func (p *Provider) Open(ctx context.Context, cfg camera.Config) (camera.Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var device interface{} = cfg.Device
	if idx, err := strconv.Atoi(cfg.Device); err == nil {
		device = idx
	}

	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", camera.ErrUnavailable, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %s did not open", camera.ErrUnavailable, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	if cfg.BufferSize > 0 {
		vc.Set(gocv.VideoCaptureBufferSize, float64(cfg.BufferSize))
	}

	return &Source{vc: vc, mat: gocv.NewMat()}, nil
}

// Source is a running capture.
type Source struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	seq    uint64
	closed bool
}

// Read grabs the next frame. Cancellation is checked before the grab; a
// grab already in progress completes.
func (s *Source) Read(ctx context.Context) (camera.Frame, error) {
	if err := ctx.Err(); err != nil {
		return camera.Frame{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return camera.Frame{}, camera.ErrClosed
	}

	if ok := s.vc.Read(&s.mat); !ok {
		return camera.Frame{}, errors.New("webcam: read failed")
	}
	if s.mat.Empty() {
		return camera.Frame{}, camera.ErrNoFrame
	}

	img, err := s.mat.ToImage()
	if err != nil {
		return camera.Frame{}, fmt.Errorf("webcam: convert frame: %w", err)
	}
	s.seq++
	return camera.Frame{Image: img, Seq: s.seq, Captured: time.Now()}, nil
}

// Close releases the device.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.mat.Close()
	return s.vc.Close()
}

func devicePath(device string) string {
	if strings.HasPrefix(device, "/") {
		return device
	}
	return "/dev/video" + device
}
