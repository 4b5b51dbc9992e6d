// Package events defines the messages pushed to WebSocket subscribers.
package events

import "time"

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// MessageTypeConnect is sent once to each new client
	MessageTypeConnect MessageType = "connect"

	// MessageTypeDatasetLoaded carries the DatasetStatus after a successful load
	MessageTypeDatasetLoaded MessageType = "dataset:loaded"

	// MessageTypeDatasetLoadFailed carries a LoadFailed payload
	MessageTypeDatasetLoadFailed MessageType = "dataset:load_failed"
)

// Message is the envelope of every WebSocket message
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// Connected is the payload of MessageTypeConnect
type Connected struct {
	ClientID string `json:"client_id"`
}

// LoadFailed is the payload of MessageTypeDatasetLoadFailed. The previous
// dataset, if any, is still being served.
type LoadFailed struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
