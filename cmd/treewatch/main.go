// treewatch tails a running grandtree server: it prints every state change
// and, with -frames, a summary of the binary scene stream. With -mode,
// -cycle, -camera or -select it sends one command and exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/grandtree/internal/httpc"
	"github.com/teslashibe/grandtree/internal/log"
	"github.com/teslashibe/grandtree/pkg/protocol"
	"github.com/teslashibe/grandtree/pkg/scene"
	"github.com/teslashibe/grandtree/pkg/state"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "grandtree host:port")
	frames := flag.Bool("frames", false, "Also tail /ws/frames")
	mode := flag.String("mode", "", "Send a mode command (CHAOS or FORMED) and exit")
	cycle := flag.Int("cycle", 0, "Move the browse cursor by n and exit")
	cam := flag.String("camera", "", "Send camera on|off and exit")
	sel := flag.String("select", "", "Select a photo by ID (\"-\" clears) and exit")
	level := flag.String("log", "info", "Log level")
	flag.Parse()
	log.Init(*level)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	base := "http://" + *addr
	done, err := command(ctx, base, *mode, *cycle, *cam, *sel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "treewatch: %v\n", err)
		os.Exit(1)
	}
	if done {
		return
	}

	var snap state.Snapshot
	if err := httpc.GetJSON(ctx, base+"/api/state", &snap); err != nil {
		fmt.Fprintf(os.Stderr, "treewatch: %v\n", err)
		os.Exit(1)
	}
	logSnapshot(snap)

	if *frames {
		go tailFrames(ctx, *addr)
	}
	if err := tailState(ctx, *addr); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "treewatch: %v\n", err)
		os.Exit(1)
	}
}

// command sends at most one REST command. It reports whether one was sent.
func command(ctx context.Context, base, mode string, cycle int, cam, sel string) (bool, error) {
	var out map[string]any
	var err error
	switch {
	case mode != "":
		err = httpc.PostJSON(ctx, base+"/api/mode", protocol.ModeCommand{Mode: mode}, &out)
	case cycle != 0:
		err = httpc.PostJSON(ctx, base+"/api/photos/cycle", protocol.CycleCommand{Direction: cycle}, &out)
	case cam != "":
		err = httpc.PostJSON(ctx, base+"/api/camera", protocol.CameraCommand{Enabled: cam == "on"}, &out)
	case sel == "-":
		err = httpc.DoJSON(ctx, http.MethodDelete, base+"/api/photos/selected", nil, nil)
	case sel != "":
		err = httpc.DoJSON(ctx, http.MethodPut, base+"/api/photos/selected", protocol.SelectCommand{ID: sel}, &out)
	default:
		return false, nil
	}
	if err != nil {
		return true, err
	}
	log.Info("command accepted", "response", out)
	return true, nil
}

func dial(ctx context.Context, addr, path string) (*websocket.Conn, error) {
	u := url.URL{Scheme: "ws", Host: addr, Path: path}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.String(), err)
	}
	go func() {
		<-ctx.Done()
		ws.Close()
	}()
	return ws, nil
}

func tailState(ctx context.Context, addr string) error {
	ws, err := dial(ctx, addr, "/ws/state")
	if err != nil {
		return err
	}
	defer ws.Close()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			log.Warn("bad message", "err", err)
			continue
		}
		switch msg.Type {
		case protocol.TypeState:
			if snap, err := msg.GetState(); err == nil {
				logSnapshot(*snap)
			}
		case protocol.TypeGesture:
			if g, err := msg.GetGesture(); err == nil {
				log.Info("gesture", "status", g.Status, "message", g.Message, "frames", g.Frames, "swipes", g.Swipes)
			}
		case protocol.TypeError:
			if e, err := msg.GetError(); err == nil {
				log.Warn("command rejected", "command", e.Command, "err", e.Error)
			}
		}
	}
}

func tailFrames(ctx context.Context, addr string) {
	ws, err := dial(ctx, addr, "/ws/frames")
	if err != nil {
		log.Error("frames", "err", err)
		return
	}
	defer ws.Close()

	var (
		count uint64
		since = time.Now()
	)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Error("frames", "err", err)
			}
			return
		}
		f, err := scene.Decode(data)
		if err != nil {
			log.Warn("bad frame", "err", err)
			continue
		}
		count++
		if elapsed := time.Since(since); elapsed >= 2*time.Second {
			log.Info("frames",
				"tick", f.Tick,
				"mode", f.Mode,
				"fps", fmt.Sprintf("%.1f", float64(count)/elapsed.Seconds()),
				"instances", len(f.Foliage)+len(f.Balls)+len(f.Boxes)+len(f.Polaroids),
				"camera", f.Camera.Position,
			)
			count, since = 0, time.Now()
		}
	}
}

func logSnapshot(s state.Snapshot) {
	current := ""
	if p, ok := s.CurrentPhoto(); ok {
		current = p.ID
	}
	log.Info("state",
		"rev", s.Revision,
		"mode", s.Mode,
		"source", s.ModeSource,
		"photos", len(s.Photos),
		"current", current,
		"selected", s.Selected,
		"camera", s.CameraEnabled,
		"offset", fmt.Sprintf("%.2f,%.2f", s.CameraOffset.X, s.CameraOffset.Y),
		"gesture", s.GestureStatus,
	)
}
