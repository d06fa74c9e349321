// Package hub fans websocket messages out to every connected client.
// One goroutine owns the client set; connections only talk to it over
// channels.
package hub

import (
	"encoding/json"

	"github.com/gofiber/contrib/websocket"
)

// MessageType selects the websocket frame kind a message is written as.
type MessageType int

const (
	JSONMessage   MessageType = iota // text frame holding JSON
	BinaryMessage                    // binary frame, e.g. an encoded scene
)

func (t MessageType) frameType() int {
	if t == BinaryMessage {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

// Message is one payload queued for delivery.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps already-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps a binary payload.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}

// EncodeJSON marshals v into a JSON message.
func EncodeJSON(v any) (Message, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Message{}, err
	}
	return NewJSONMessage(data), nil
}
