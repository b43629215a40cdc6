package websocket

import (
	"encoding/json"
	"errors"
	"time"

	"notebook-console/internal/store"
)

type MessageType string

const (
	TypeCollectionChanged MessageType = "collection_changed"
	TypePing              MessageType = "ping"
	TypePong              MessageType = "pong"
)

var ErrMissingType = errors.New("message has no type")

// Message is the envelope of every frame in both directions.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// CollectionChangedPayload tells other sessions that a collection was
// written to and their lists may be out of date.
type CollectionChangedPayload struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
}

func NewMessage(msgType MessageType, payload any) (*Message, error) {
	msg := &Message{Type: msgType, Timestamp: time.Now().UTC()}
	if payload == nil {
		return msg, nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	msg.Payload = raw
	return msg, nil
}

// NewCollectionChanged announces a finished store write.
func NewCollectionChanged(ev store.Event) (*Message, error) {
	return NewMessage(TypeCollectionChanged, &CollectionChangedPayload{
		Entity: ev.Store,
		Action: string(ev.Action),
		ID:     ev.ID,
	})
}

// DecodeMessage parses a frame sent by a browser.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Type == "" {
		return nil, ErrMissingType
	}
	return &msg, nil
}

func (m *Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}

func (m *Message) UnmarshalPayload(v any) error {
	if len(m.Payload) == 0 {
		return nil
	}
	return json.Unmarshal(m.Payload, v)
}
