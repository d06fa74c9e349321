package web

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/teslashibe/grandtree/pkg/hub"
	"github.com/teslashibe/grandtree/pkg/protocol"
)

// handleStateWS sends the current snapshot and gesture status on connect,
// then relays broadcasts and applies client commands.
func (s *Server) handleStateWS(conn *websocket.Conn) {
	client := hub.NewClient(s.stateHub, conn)
	if client == nil {
		return
	}
	reply := s.replier(client)
	reply(s.encode(protocol.NewStateMessage(s.deps.Store.Snapshot())))
	reply(s.encode(protocol.NewGestureMessage(s.gestureData())))
	client.Run(s.handleCommand)
}

// handleFramesWS is receive-only for the client.
func (s *Server) handleFramesWS(conn *websocket.Conn) {
	client := hub.NewClient(s.framesHub, conn)
	if client == nil {
		return
	}
	client.Run(nil)
}

func (s *Server) handleCommand(client *hub.Client, data []byte) {
	reply := s.replier(client)
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		reply(s.encode(protocol.NewErrorMessage("", err)))
		return
	}

	// State changes reach the client through the regular broadcast, so
	// successful commands get no direct reply.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	switch msg.Type {
	case protocol.TypePing:
		var ping *protocol.PingData
		if ping, err = msg.GetPingData(); err == nil {
			reply(s.encode(protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())))
			return
		}
	case protocol.TypeMode:
		var cmd *protocol.ModeCommand
		if cmd, err = msg.GetModeCommand(); err == nil {
			_, err = s.setMode(cmd.Mode)
		}
	case protocol.TypeCamera:
		var cmd *protocol.CameraCommand
		if cmd, err = msg.GetCameraCommand(); err == nil {
			err = s.setCamera(ctx, cmd.Enabled)
		}
	case protocol.TypeCycle:
		var cmd *protocol.CycleCommand
		if cmd, err = msg.GetCycleCommand(); err == nil {
			_, err = s.cycle(cmd.Direction)
		}
	case protocol.TypeSelect:
		var cmd *protocol.SelectCommand
		if cmd, err = msg.GetSelectCommand(); err == nil {
			err = s.selectPhoto(cmd.ID)
		}
	default:
		s.log.Debug("ignored ws message", "type", msg.Type)
		return
	}
	if err != nil {
		reply(s.encode(protocol.NewErrorMessage(msg.Type, err)))
	}
}

// replier returns a function that queues an encoded message for client.
func (s *Server) replier(client *hub.Client) func(hub.Message, bool) {
	return func(m hub.Message, ok bool) {
		if ok {
			client.Send(m)
		}
	}
}
