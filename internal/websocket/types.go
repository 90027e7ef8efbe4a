package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/raaihank/deidentify/internal/privacy"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeDocumentProcessed is sent after a document went through the engine
	EventTypeDocumentProcessed EventType = "document_processed"
	// EventTypeSystemStatus carries periodic engine statistics
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
	// EventTypePong answers a client ping message
	EventTypePong EventType = "pong"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	RequestID string    `json:"request_id,omitempty"`
}

// DocumentEvent describes one processed document. It carries counts only,
// never original or replacement values.
type DocumentEvent struct {
	Document      string            `json:"document"`
	Findings      []privacy.Finding `json:"findings"`
	TotalFindings int               `json:"total_findings"`
	ProcessingMS  float64           `json:"processing_ms"`
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string        `json:"status"`
	Uptime           string        `json:"uptime"`
	Engine           privacy.Stats `json:"engine"`
	ConnectedClients int           `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action    string `json:"action"` // "connected", "disconnected"
	ClientID  string `json:"client_id"`
	ClientIP  string `json:"client_ip"`
	UserAgent string `json:"user_agent,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type   string      `json:"type"` // subscribe or ping
	Events []EventType `json:"events,omitempty"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID          string
	Conn        *websocket.Conn
	Send        chan Event
	Events      map[EventType]bool // nil means every event
	ConnectedAt time.Time
	LastPing    time.Time
	IP          string
	UserAgent   string
}

func (c *Client) wants(t EventType) bool {
	return c.Events == nil || c.Events[t]
}
