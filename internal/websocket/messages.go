package websocket

import (
	"encoding/json"
	"time"

	"parknest/internal/entities"
	"parknest/internal/mapview"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeMapView          MessageType = "map.view"
	TypeLocationSelected MessageType = "location.selected"
	TypeSpotsFound       MessageType = "spots.found"

	// Client -> Server command types
	TypeMapClick   MessageType = "map.click"
	TypeMapRefresh MessageType = "map.refresh"
	TypePing       MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// inbound is a client command; the payload is decoded once the type is known.
type inbound struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ClickPayload is the payload of map.click commands.
type ClickPayload = mapview.Click

// LocationPayload is the payload for location.selected events.
type LocationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SpotsPayload is the payload for spots.found events.
type SpotsPayload struct {
	Center entities.Coordinates   `json:"center"`
	Radius float64                `json:"radius"`
	Spots  []entities.ParkingSpot `json:"spots"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
