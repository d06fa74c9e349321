// Package app wires the interaction state, the formation engine, the camera
// rig and the gesture controller into one render loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/formation"
	"github.com/teslashibe/grandtree/pkg/gesture"
	"github.com/teslashibe/grandtree/pkg/rig"
	"github.com/teslashibe/grandtree/pkg/scene"
	"github.com/teslashibe/grandtree/pkg/state"
)

// ErrNotRunning is returned by commands that need the render loop.
var ErrNotRunning = errors.New("app: not running")

// Config controls the render loop.
type Config struct {
	TickRate       int           `yaml:"tick_rate"`       // Hz
	BroadcastEvery int           `yaml:"broadcast_every"` // send every Nth frame
	MaxDelta       time.Duration `yaml:"max_delta"`       // clamp after stalls
	StartCamera    bool          `yaml:"start_camera"`    // enable gesture control when Run starts
}

// DefaultConfig renders at 60Hz and streams at 30Hz.
func DefaultConfig() Config {
	return Config{
		TickRate:       60,
		BroadcastEvery: 2,
		MaxDelta:       100 * time.Millisecond,
	}
}

// Validate returns a list of problems, or nil.
func (c Config) Validate() []string {
	var problems []string
	if c.TickRate < 1 || c.TickRate > 240 {
		problems = append(problems, "tick_rate must be between 1 and 240")
	}
	if c.BroadcastEvery < 1 {
		problems = append(problems, "broadcast_every must be at least 1")
	}
	if c.MaxDelta <= 0 {
		problems = append(problems, "max_delta must be positive")
	}
	return problems
}

// FrameSink receives encoded scene frames. Each slice is new and the sink
// may keep it.
type FrameSink interface {
	SendFrame(data []byte)
}

// Deps are the parts the app drives. Frames may be nil.
type Deps struct {
	Store   *state.Store
	Engine  *formation.Engine
	Rig     *rig.Rig
	Gesture *gesture.Controller
	Capture *camera.Manager
	Frames  FrameSink
	Logger  *slog.Logger
}

// Stats counts render activity.
type Stats struct {
	Ticks      uint64
	FramesSent uint64
	Progress   float32
}

// App is the orchestrator.
type App struct {
	cfg  Config
	deps Deps
	log  *slog.Logger

	mu     sync.Mutex // serialises camera commands
	runCtx context.Context

	statsMu sync.Mutex
	stats   Stats
}

// New creates an app and hooks camera config changes to the controller.
func New(cfg Config, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = log.For("app")
	}
	a := &App{cfg: cfg, deps: deps, log: logger}
	a.stats.Progress = deps.Engine.Progress()
	if deps.Capture != nil {
		deps.Capture.OnConfigChange = a.applyCapture
	}
	return a
}

// Run drives the render loop until ctx is cancelled, then stops gesture
// control.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	a.runCtx = ctx
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.runCtx = nil
		a.mu.Unlock()
		if a.deps.Gesture != nil {
			a.deps.Gesture.Stop()
		}
	}()

	if a.cfg.StartCamera {
		if err := a.SetCameraEnabled(ctx, true); err != nil {
			a.log.Warn("camera start failed", "err", err)
		}
	}

	ticker := time.NewTicker(time.Second / time.Duration(a.cfg.TickRate))
	defer ticker.Stop()

	a.log.Info("render loop started", "hz", a.cfg.TickRate, "entities", a.deps.Engine.Count())
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.log.Info("render loop stopped", "ticks", a.Stats().Ticks)
			return nil
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			a.Step(min(dt, a.cfg.MaxDelta).Seconds())
		}
	}
}

// Step advances one frame by dt seconds. Every BroadcastEvery-th frame is
// encoded and sent to the frame sink.
func (a *App) Step(dt float64) *formation.Frame {
	snap := a.deps.Store.Snapshot()
	sel := formation.Selection{PhotoCount: len(snap.Photos), Current: snap.Current}

	frame := a.deps.Engine.Tick(float32(dt), snap.Mode, sel)
	pose := a.deps.Rig.Update(float32(dt), snap.CameraOffset)

	progress := a.deps.Engine.Progress()

	a.statsMu.Lock()
	a.stats.Ticks++
	a.stats.Progress = progress
	send := a.deps.Frames != nil && a.stats.Ticks%uint64(a.cfg.BroadcastEvery) == 0
	if send {
		a.stats.FramesSent++
	}
	a.statsMu.Unlock()

	if send {
		a.deps.Frames.SendFrame(scene.Encode(frame, pose))
	}
	return frame
}

// SetFrames replaces the frame sink. Call it before Run.
func (a *App) SetFrames(sink FrameSink) { a.deps.Frames = sink }

// Stats returns render counters. Progress is the mean entity progress as of
// the last Step, so it is safe to call while Run is ticking.
func (a *App) Stats() Stats {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.stats
}

// SetCameraEnabled starts or stops gesture control. The controller runs
// under the render loop's context, not the caller's.
func (a *App) SetCameraEnabled(ctx context.Context, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.deps.Gesture == nil {
		return fmt.Errorf("app: gesture control disabled")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !enabled {
		a.deps.Gesture.Stop()
		a.deps.Store.SetCameraEnabled(false)
		a.deps.Store.SetGestureStatus("")
		a.log.Info("camera disabled")
		return nil
	}

	if a.runCtx == nil || a.runCtx.Err() != nil {
		return ErrNotRunning
	}
	a.deps.Store.SetCameraEnabled(true)
	if err := a.deps.Gesture.Start(a.runCtx); err != nil {
		a.deps.Store.SetCameraEnabled(false)
		return err
	}
	a.log.Info("camera enabled")
	return nil
}

// applyCapture pushes a new capture config to the controller, restarting
// it when it is running.
func (a *App) applyCapture(cfg camera.Config) error {
	if a.deps.Gesture == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	running := a.deps.Gesture.Running()
	if running {
		a.deps.Gesture.Stop()
	}
	a.deps.Gesture.SetCameraConfig(cfg)
	a.log.Info("camera config applied", "width", cfg.Width, "height", cfg.Height, "restart", running)
	if running && a.runCtx != nil {
		return a.deps.Gesture.Start(a.runCtx)
	}
	return nil
}
