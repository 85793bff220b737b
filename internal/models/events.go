package models

import (
	"encoding/json"
	"time"
)

// Realtime event names.
const (
	EventMessage       = "message"
	EventEditMessage   = "editMessage"
	EventDeleteMessage = "deleteMessage"

	EventChatMessage        = "chatMessage"
	EventChatMessageEdited  = "chatMessageEdited"
	EventChatMessageDeleted = "chatMessageDeleted"
	EventError              = "error"
)

// Envelope frames every websocket payload in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// SendMessageRequest is the payload of an inbound "message" event.
type SendMessageRequest struct {
	ChatID  int    `json:"chatId"`
	Message string `json:"message"`
}

// EditMessageRequest is the payload of an inbound "editMessage" event.
type EditMessageRequest struct {
	ChatID    int    `json:"chatId"`
	MessageID int    `json:"messageId"`
	Message   string `json:"message"`
}

// DeleteMessageRequest is the payload of an inbound "deleteMessage" event.
type DeleteMessageRequest struct {
	ChatID    int `json:"chatId"`
	MessageID int `json:"messageId"`
}

// ChatMessageEvent is broadcast after a message is stored.
type ChatMessageEvent struct {
	Username  string    `json:"username"`
	Message   string    `json:"message"`
	MessageID int       `json:"messageId"`
	CreatedAt time.Time `json:"createdAt"`
	ChatID    int       `json:"chatId"`
}

// ChatMessageEditedEvent is broadcast after a message text changes.
type ChatMessageEditedEvent struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	MessageID int    `json:"messageId"`
	ChatID    int    `json:"chatId"`
}

// ChatMessageDeletedEvent is broadcast after a message is removed.
type ChatMessageDeletedEvent struct {
	MessageID int `json:"messageId"`
	ChatID    int `json:"chatId"`
}

// ErrorEvent is sent to the originating connection only.
type ErrorEvent struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
