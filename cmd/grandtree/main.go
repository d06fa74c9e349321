// grandtree serves the interactive Christmas tree: the formation engine,
// gesture control from a local webcam and the UI over HTTP/websocket.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/teslashibe/grandtree/internal/config"
	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/app"
	"github.com/teslashibe/grandtree/pkg/camera"
	"github.com/teslashibe/grandtree/pkg/camera/webcam"
	"github.com/teslashibe/grandtree/pkg/formation"
	"github.com/teslashibe/grandtree/pkg/gesture"
	"github.com/teslashibe/grandtree/pkg/handpose/onnx"
	"github.com/teslashibe/grandtree/pkg/photos"
	"github.com/teslashibe/grandtree/pkg/rig"
	"github.com/teslashibe/grandtree/pkg/state"
	"github.com/teslashibe/grandtree/pkg/web"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "grandtree: %v\n", err)
		os.Exit(2)
	}
	log.Init(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		log.Error("grandtree stopped", "err", err)
		os.Exit(1)
	}
	log.Info("goodbye")
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig() (config.Config, error) {
	path := flag.String("config", "", "YAML config file (overrides "+config.EnvConfigFile+")")
	debug := flag.Bool("debug", false, "Enable debug logging")
	port := flag.Int("port", 0, "HTTP port (overrides "+config.EnvPort+")")
	static := flag.String("static", "", "Directory served at /")
	gestures := flag.Bool("gesture", false, "Enable webcam gesture control at startup")
	small := flag.Bool("small", false, "Use the reduced scene for low-power hosts")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		return cfg, err
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if *port > 0 {
		cfg.Server.Addr = ":" + strconv.Itoa(*port)
	}
	if *static != "" {
		cfg.Server.StaticDir = *static
	}
	if *gestures {
		cfg.Render.StartCamera = true
	}
	if *small {
		cfg.Scene = formation.SmallConfig()
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, cfg config.Config) error {
	store := state.NewStore()
	capture := camera.NewManager(cfg.Camera)
	ctrl := gesture.New(cfg.Gesture, cfg.Camera, webcam.New(), onnx.Loader(cfg.HandPose), store, log.For("gesture"))

	tree := app.New(cfg.Render, app.Deps{
		Store:   store,
		Engine:  formation.New(cfg.Scene),
		Rig:     rig.New(cfg.Rig),
		Gesture: ctrl,
		Capture: capture,
		Logger:  log.For("app"),
	})
	srv := web.NewServer(cfg.Server, web.Deps{
		Store:   store,
		Camera:  tree,
		Gesture: ctrl,
		Photos:  photos.New(cfg.Photos),
		Capture: capture,
		Logger:  log.For("web"),
	})
	tree.SetFrames(srv)

	log.Info("grandtree starting",
		"addr", cfg.Server.Addr,
		"foliage", cfg.Scene.Foliage.Count,
		"camera", cfg.Camera.Device,
		"model", cfg.HandPose.ModelPath,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tree.Run(ctx) })
	g.Go(func() error { return srv.Run(ctx) })
	return g.Wait()
}
