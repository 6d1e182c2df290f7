// Package ws bridges the event bus to WebSocket clients. The feed is
// one-directional: clients receive event frames and send nothing back.
package ws

import "encoding/json"

// Frame is the WebSocket envelope for one event.
type Frame struct {
	Type           string          `json:"type"`
	Event          string          `json:"event"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// NewEventFrame creates a frame for broadcasting an event.
func NewEventFrame(event, conversationID string, payload any) (Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{
		Type:           "event",
		Event:          event,
		ConversationID: conversationID,
		Payload:        data,
	}, nil
}

// MarshalFrame serializes a Frame to JSON bytes.
func MarshalFrame(f Frame) ([]byte, error) {
	return json.Marshal(f)
}
