// Package gesture turns a webcam feed into interaction commands.
//
// A Controller owns one detection loop. Start acquires the camera and loads
// the hand model concurrently, then processes one frame at a time: an
// estimation call must return before the next frame is read, so at most one
// inference is ever in flight. Stop cancels the loop, waits for it to exit
// and only then returns; the camera is released by that point and no
// further writes reach the Sink.
package gesture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/handpose"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Sink receives gesture commands. *state.Store satisfies it.
type Sink interface {
	ApplyMode(m state.Mode, src state.Source, at time.Time) bool
	SetCameraOffset(x, y float32)
	CyclePhoto(dir int) (int, error)
	SetGestureStatus(status string)
}

// Stats counts loop activity.
type Stats struct {
	Frames      uint64 `json:"frames"`
	FrameErrors uint64 `json:"frameErrors"`
	Swipes      uint64 `json:"swipes"`
}

// Controller runs the detection loop.
type Controller struct {
	cfg      Config
	camCfg   camera.Config
	provider camera.Provider
	loader   handpose.Loader
	sink     Sink
	log      *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	status  Status
	message string
	gen     uint64 // bumped by Start and Stop; a loop only writes while its gen is current
	cancel  context.CancelFunc
	done    chan struct{}
	stats   Stats
}

// New creates a controller. A nil logger uses the "gesture" component logger.
func New(cfg Config, camCfg camera.Config, provider camera.Provider, loader handpose.Loader, sink Sink, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = log.For("gesture")
	}
	return &Controller{
		cfg:      cfg,
		camCfg:   camCfg,
		provider: provider,
		loader:   loader,
		sink:     sink,
		log:      logger,
		now:      time.Now,
	}
}

// Status returns the current status and the user-facing status line.
func (c *Controller) Status() (Status, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status, c.message
}

// Stats returns loop counters.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Running reports whether a detection loop is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runningLocked()
}

// SetCameraConfig replaces the capture settings used by the next Start.
func (c *Controller) SetCameraConfig(cfg camera.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.camCfg = cfg
}

// CameraConfig returns the capture settings for the next Start.
func (c *Controller) CameraConfig() camera.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.camCfg
}

func (c *Controller) runningLocked() bool {
	if c.done == nil {
		return false
	}
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Start begins acquiring the camera and model. It returns immediately; the
// outcome is reported through Status and the Sink. Starting a running
// controller is a no-op. Starting after a failure is an explicit retry.
func (c *Controller) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runningLocked() {
		return nil
	}

	c.gen++
	gen := c.gen
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	c.status = CameraOff
	c.setLocked(EvEnable, MsgLoading)
	c.log.Info("gesture control starting", "device", c.camCfg.Device)

	go c.run(runCtx, gen, c.camCfg, done)
	return nil
}

// Stop cancels the loop and waits for it to release the camera.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen || c.status == CameraOff {
		return
	}
	c.setLocked(EvDisable, "")
	c.log.Info("gesture control stopped")
}

func (c *Controller) run(ctx context.Context, gen uint64, camCfg camera.Config, done chan struct{}) {
	defer close(done)

	src, est, camErr, modelErr := c.acquire(ctx, camCfg)
	if ctx.Err() != nil {
		return
	}
	switch {
	case camErr != nil:
		msg := MsgUnavailable
		if errors.Is(camErr, camera.ErrPermissionDenied) {
			msg = MsgDenied
		}
		c.log.Error("camera unavailable", "err", camErr)
		c.transition(gen, EvCameraFailed, msg)
		return
	case modelErr != nil:
		msg := MsgModelError
		if errors.Is(modelErr, handpose.ErrBackendMissing) {
			msg = MsgBackendMissing
		}
		c.log.Error("hand model failed to load", "err", modelErr)
		c.transition(gen, EvModelFailed, msg)
		return
	}
	defer func() {
		if err := est.Close(); err != nil {
			c.log.Warn("close hand model", "err", err)
		}
		if err := src.Close(); err != nil {
			c.log.Warn("close camera", "err", err)
		}
	}()

	if !c.transition(gen, EvLoaded, MsgReady) {
		return
	}
	c.log.Info("gesture control ready")
	c.loop(ctx, gen, src, est, camCfg.Mirrored)
}

// acquire checks the capture capability, then opens the camera and loads
// the model concurrently. On any failure everything acquired is released.
func (c *Controller) acquire(ctx context.Context, camCfg camera.Config) (camera.Source, handpose.Estimator, error, error) {
	if err := c.provider.Available(camCfg); err != nil {
		return nil, nil, err, nil
	}

	var (
		wg       sync.WaitGroup
		src      camera.Source
		est      handpose.Estimator
		camErr   error
		modelErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		src, camErr = c.provider.Open(ctx, camCfg)
	}()
	go func() {
		defer wg.Done()
		est, modelErr = c.loader.Load(ctx)
	}()
	wg.Wait()

	if camErr != nil || modelErr != nil || ctx.Err() != nil {
		if src != nil {
			src.Close()
		}
		if est != nil {
			est.Close()
		}
		return nil, nil, camErr, modelErr
	}
	return src, est, nil, nil
}

func (c *Controller) loop(ctx context.Context, gen uint64, src camera.Source, est handpose.Estimator, mirrored bool) {
	interp := NewInterpreter(c.cfg, mirrored)
	for ctx.Err() == nil {
		frame, err := src.Read(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, camera.ErrClosed) {
				return
			}
			c.frameFailed(gen, "camera read failed", err)
			if !c.pause(ctx) {
				return
			}
			continue
		}

		hands, err := est.EstimateHands(ctx, frame)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.frameFailed(gen, "hand estimation failed", err)
			if !c.pause(ctx) {
				return
			}
			continue
		}

		at := frame.Captured
		if at.IsZero() {
			at = c.now()
		}
		w, h := frame.Size()
		if !c.apply(gen, interp.Step(hands, w, h, at)) {
			return
		}
	}
}

// apply commits one frame's update if the loop is still current.
func (c *Controller) apply(gen uint64, u Update) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.stats.Frames++

	if u.Sample.Detected {
		c.sink.ApplyMode(u.Sample.Mode(), state.SourceGesture, u.Sample.At)
		c.sink.SetCameraOffset(u.Offset.X, u.Offset.Y)
	}
	if u.Swipe != None {
		c.stats.Swipes++
		idx, err := c.sink.CyclePhoto(int(u.Swipe))
		if err != nil {
			c.log.Debug("swipe ignored", "direction", u.Swipe, "err", err)
		} else {
			c.log.Debug("swipe", "direction", u.Swipe, "photo", idx)
		}
	}
	c.setLocked(u.Event, u.Message)
	return true
}

func (c *Controller) frameFailed(gen uint64, msg string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.stats.FrameErrors++
	c.log.Warn(msg, "err", err, "errors", c.stats.FrameErrors)
}

func (c *Controller) pause(ctx context.Context) bool {
	if c.cfg.FrameErrorDelay <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(c.cfg.FrameErrorDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// transition applies ev for a loop of generation gen.
func (c *Controller) transition(gen uint64, ev Event, msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.setLocked(ev, msg)
	return true
}

func (c *Controller) setLocked(ev Event, msg string) {
	next, err := Transition(c.status, ev)
	if err != nil {
		c.log.Debug("ignored status event", "err", err)
		return
	}
	if next != c.status {
		c.log.Debug("gesture status", "from", c.status, "to", next)
	}
	c.status, c.message = next, msg
	c.sink.SetGestureStatus(msg)
}
