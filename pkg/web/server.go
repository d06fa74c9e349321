// Package web serves the tree UI: a REST API over the interaction state and
// two websocket feeds, /ws/state (JSON snapshots and commands) and
// /ws/frames (binary scene frames).
package web

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/gesture"
	"github.com/teslashibe/grandtree/pkg/hub"
	"github.com/teslashibe/grandtree/pkg/photos"
	"github.com/teslashibe/grandtree/pkg/protocol"
	"github.com/teslashibe/grandtree/pkg/state"
)

// Config holds HTTP server settings.
type Config struct {
	Addr      string `yaml:"addr"`
	StaticDir string `yaml:"static_dir"`
	BodyLimit int    `yaml:"body_limit"` // bytes, covers a whole upload batch
}

// DefaultConfig listens on :8080 without serving static files.
func DefaultConfig() Config {
	return Config{
		Addr:      ":8080",
		BodyLimit: 64 << 20,
	}
}

// Validate returns a list of problems, or nil.
func (c Config) Validate() []string {
	var problems []string
	if c.Addr == "" {
		problems = append(problems, "addr must not be empty")
	}
	if c.BodyLimit <= 0 {
		problems = append(problems, "body_limit must be positive")
	}
	return problems
}

// CameraSwitch turns gesture control on and off.
type CameraSwitch interface {
	SetCameraEnabled(ctx context.Context, enabled bool) error
}

// GestureReporter exposes gesture controller status. *gesture.Controller
// satisfies it.
type GestureReporter interface {
	Status() (gesture.Status, string)
	Stats() gesture.Stats
	Running() bool
}

// Deps are the components the server drives.
type Deps struct {
	Store   *state.Store
	Camera  CameraSwitch
	Gesture GestureReporter
	Photos  *photos.Ingester
	Capture *camera.Manager
	Logger  *slog.Logger
}

// Server is the UI boundary.
type Server struct {
	cfg  Config
	deps Deps
	log  *slog.Logger
	app  *fiber.App

	stateHub  *hub.Hub
	framesHub *hub.Hub
}

// NewServer builds the fiber app and registers every route.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.For("web")
	}
	s := &Server{
		cfg:       cfg,
		deps:      deps,
		log:       logger,
		stateHub:  hub.New("state", logger),
		framesHub: hub.New("frames", logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Grand Tree",
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimit,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir)
	}

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/state", s.handleState)
	api.Post("/mode", s.handleMode)
	api.Post("/camera", s.handleCamera)
	api.Get("/camera/config", s.handleGetCameraConfig)
	api.Put("/camera/config", s.handlePutCameraConfig)
	api.Get("/camera/presets", s.handleCameraPresets)
	api.Post("/photos", s.handleUpload)
	api.Post("/photos/cycle", s.handleCycle)
	api.Put("/photos/selected", s.handleSelect)
	api.Delete("/photos/selected", s.handleClearSelection)
	api.Get("/gesture", s.handleGesture)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/state", websocket.New(s.handleStateWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Run starts the hubs, forwards state changes to /ws/state subscribers and
// serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.stateHub.Run(ctx)
	go s.framesHub.Run(ctx)
	go s.forwardState(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web server listening", "addr", s.cfg.Addr)
		errCh <- s.app.Listen(s.cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// SendFrame broadcasts an encoded scene frame to /ws/frames. data is
// queued as is and written later, so the caller must not reuse it.
func (s *Server) SendFrame(data []byte) {
	if s.framesHub.ClientCount() == 0 {
		return
	}
	s.framesHub.BroadcastBinary(data)
}

// FrameClients returns the number of /ws/frames subscribers.
func (s *Server) FrameClients() int { return s.framesHub.ClientCount() }

// forwardState pushes every snapshot to /ws/state, and a gesture message
// whenever the status line changes.
func (s *Server) forwardState(ctx context.Context) {
	updates, cancel := s.deps.Store.Subscribe()
	defer cancel()

	lastStatus := s.deps.Store.Snapshot().GestureStatus
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			s.broadcast(s.encode(protocol.NewStateMessage(snap)))
			if snap.GestureStatus != lastStatus {
				lastStatus = snap.GestureStatus
				s.broadcast(s.encode(protocol.NewGestureMessage(s.gestureData())))
			}
		}
	}
}

// encode turns the result of a protocol constructor into a hub message.
// Failures are logged and reported as !ok.
func (s *Server) encode(msg *protocol.Message, err error) (hub.Message, bool) {
	if err == nil {
		var data []byte
		if data, err = msg.Bytes(); err == nil {
			return hub.NewJSONMessage(data), true
		}
	}
	s.log.Error("encode message", "err", err)
	return hub.Message{}, false
}

func (s *Server) broadcast(m hub.Message, ok bool) {
	if ok {
		s.stateHub.Broadcast(m)
	}
}

func (s *Server) gestureData() protocol.GestureData {
	if s.deps.Gesture == nil {
		return protocol.GestureData{Status: gesture.CameraOff.String()}
	}
	status, msg := s.deps.Gesture.Status()
	stats := s.deps.Gesture.Stats()
	return protocol.GestureData{
		Status:  status.String(),
		Message: msg,
		Running: s.deps.Gesture.Running(),
		Frames:  stats.Frames,
		Errors:  stats.FrameErrors,
		Swipes:  stats.Swipes,
	}
}
