package server

import (
	"encoding/json"
	"time"

	"github.com/lox/holdem-coach/internal/game"
)

// MessageType identifies a websocket message.
type MessageType string

const (
	// server to client
	MessageTypeUpdate MessageType = "update"
	MessageTypeError  MessageType = "error"

	// client to server
	MessageTypeAction     MessageType = "action"
	MessageTypeStart      MessageType = "start"
	MessageTypeAssessment MessageType = "assessment"
)

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// StartHandRequest is the body of POST /api/hands and of "start" messages.
type StartHandRequest struct {
	Players int `json:"players"`
}

// ActionRequest is the body of POST /api/actions and of "action" messages,
// e.g. {"action": "raise", "amount": 40}.
type ActionRequest = game.Action

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
