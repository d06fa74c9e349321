// Package protocol defines the JSON messages exchanged over /ws/state.
// The server pushes state and gesture updates; clients may send commands
// on the same socket instead of calling the REST API.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/teslashibe/grandtree/pkg/state"
)

// MessageType names the payload carried in Data.
type MessageType string

const (
	// Server → client
	TypeState   MessageType = "state"   // Full state snapshot
	TypeGesture MessageType = "gesture" // Gesture controller status
	TypeError   MessageType = "error"   // Rejected command

	// Client → server
	TypeMode   MessageType = "mode"   // Set target mode
	TypeCamera MessageType = "camera" // Enable or disable the webcam
	TypeCycle  MessageType = "cycle"  // Move the browse cursor
	TypeSelect MessageType = "select" // Select or clear the full-screen photo

	// Bidirectional
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"
)

// ErrNoType is returned for an envelope without a type field.
var ErrNoType = errors.New("protocol: message has no type")

// Message is the envelope for all WebSocket messages.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps data in an envelope stamped with the current time.
// A nil data leaves the data field out.
func NewMessage(msgType MessageType, data any) (*Message, error) {
	msg := &Message{Type: msgType, Timestamp: time.Now().UnixMilli()}
	if data == nil {
		return msg, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s data: %w", msgType, err)
	}
	msg.Data = raw
	return msg, nil
}

// ParseData unmarshals the message data into v. A message without data
// leaves v untouched.
func (m *Message) ParseData(v any) error {
	if len(m.Data) == 0 {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded envelope.
func (m *Message) Bytes() ([]byte, error) { return json.Marshal(m) }

// ParseMessage decodes an envelope. The data field is left raw for the
// typed getters.
func ParseMessage(data []byte) (*Message, error) {
	msg := new(Message)
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("protocol: decode message: %w", err)
	}
	if msg.Type == "" {
		return nil, ErrNoType
	}
	return msg, nil
}

// =============================================================================
// Server → client
// =============================================================================

// StateData is a state snapshot.
type StateData = state.Snapshot

// GestureData reports the gesture controller.
type GestureData struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Running bool   `json:"running"`
	Frames  uint64 `json:"frames"`
	Errors  uint64 `json:"frameErrors"`
	Swipes  uint64 `json:"swipes"`
}

// ErrorData explains why a command was rejected.
type ErrorData struct {
	Command MessageType `json:"command,omitempty"`
	Error   string      `json:"error"`
}

// =============================================================================
// Client → server
// =============================================================================

// ModeCommand sets the target mode.
type ModeCommand struct {
	Mode string `json:"mode"`
}

// CameraCommand toggles the webcam.
type CameraCommand struct {
	Enabled bool `json:"enabled"`
}

// CycleCommand moves the browse cursor by Direction (usually ±1).
type CycleCommand struct {
	Direction int `json:"direction"`
}

// SelectCommand selects a photo by ID. An empty ID clears the selection.
type SelectCommand struct {
	ID string `json:"id"`
}

// =============================================================================
// Bidirectional
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
