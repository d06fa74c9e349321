package protocol

import "github.com/teslashibe/grandtree/pkg/state"

// NewStateMessage wraps a snapshot.
func NewStateMessage(snap state.Snapshot) (*Message, error) {
	return NewMessage(TypeState, snap)
}

// NewGestureMessage wraps controller status.
func NewGestureMessage(g GestureData) (*Message, error) {
	return NewMessage(TypeGesture, g)
}

// NewErrorMessage reports a rejected command.
func NewErrorMessage(cmd MessageType, err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Command: cmd, Error: err.Error()})
}

// NewModeMessage creates a mode command.
func NewModeMessage(m state.Mode) (*Message, error) {
	return NewMessage(TypeMode, ModeCommand{Mode: m.String()})
}

// NewCameraMessage creates a camera toggle command.
func NewCameraMessage(enabled bool) (*Message, error) {
	return NewMessage(TypeCamera, CameraCommand{Enabled: enabled})
}

// NewCycleMessage creates a browse command.
func NewCycleMessage(dir int) (*Message, error) {
	return NewMessage(TypeCycle, CycleCommand{Direction: dir})
}

// NewSelectMessage creates a selection command.
func NewSelectMessage(id string) (*Message, error) {
	return NewMessage(TypeSelect, SelectCommand{ID: id})
}

// NewPingMessage creates a ping message
func NewPingMessage(id string, ts int64) (*Message, error) {
	return NewMessage(TypePing, PingData{ID: id, Timestamp: ts})
}

// NewPongMessage answers a ping received at pongTS.
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// decode is the shared body of the typed getters.
func decode[T any](m *Message) (*T, error) {
	var v T
	if err := m.ParseData(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

// GetState extracts a snapshot from a message
func (m *Message) GetState() (*StateData, error) { return decode[StateData](m) }

// GetGesture extracts gesture status from a message
func (m *Message) GetGesture() (*GestureData, error) { return decode[GestureData](m) }

// GetError extracts a command error from a message
func (m *Message) GetError() (*ErrorData, error) { return decode[ErrorData](m) }

// GetModeCommand extracts a mode command from a message
func (m *Message) GetModeCommand() (*ModeCommand, error) { return decode[ModeCommand](m) }

// GetCameraCommand extracts a camera command from a message
func (m *Message) GetCameraCommand() (*CameraCommand, error) { return decode[CameraCommand](m) }

// GetCycleCommand extracts a browse command from a message
func (m *Message) GetCycleCommand() (*CycleCommand, error) { return decode[CycleCommand](m) }

// GetSelectCommand extracts a selection command from a message
func (m *Message) GetSelectCommand() (*SelectCommand, error) { return decode[SelectCommand](m) }

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) { return decode[PingData](m) }

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) { return decode[PongData](m) }
