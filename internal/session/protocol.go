package session

import (
	"encoding/json"

	"github.com/inamate/diagrammer/backend-go/internal/diagram"
	"github.com/inamate/diagrammer/backend-go/internal/document"
	"github.com/inamate/diagrammer/backend-go/internal/engine"
)

type Message struct {
	Type      string          `json:"type"`
	DiagramID string          `json:"diagramId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

const (
	TypeError = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync; clients may send it to request a fresh copy
	TypeDocSync = "doc.sync"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"

	// Redraw notices from the diagram
	TypeRedraw = "redraw"
)

// Operation types
const (
	OpDiagramUpdate   = "diagram.update"
	OpComponentCreate = "component.create"
	OpComponentUpdate = "component.update"
	OpComponentRotate = "component.rotate"
	OpItemRemove      = "item.remove"
	OpSelectionSet    = "selection.set"
)

type WelcomePayload struct {
	ClientID  string `json:"clientId"`
	UserID    string `json:"userId"`
	DiagramID string `json:"diagramId"`
}

type DocSyncPayload struct {
	Document  *document.Diagram `json:"document"`
	ServerSeq int64             `json:"serverSeq"`
}

// Operation is one edit of the diagram.
type Operation struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
	ClientSeq int64  `json:"clientSeq"`

	// Target of component.update, component.rotate, item.remove and
	// selection.set; empty in selection.set clears the selection
	ItemID string `json:"itemId,omitempty"`

	// For diagram.update and component.update
	Changes map[string]any `json:"changes,omitempty"`

	// For component.create
	Component *engine.ComponentSpec `json:"component,omitempty"`

	// For component.rotate
	Delta float64 `json:"delta,omitempty"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string   `json:"operationId"`
	ServerSeq       int64    `json:"serverSeq"`
	ServerTimestamp int64    `json:"serverTimestamp"`
	ItemID          string   `json:"itemId,omitempty"`
	Angle           *float64 `json:"angle,omitempty"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	ServerSeq int64     `json:"serverSeq"`
}

type RedrawPayload struct {
	Notices []diagram.Notice `json:"notices"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func newMessage(msgType string, payload any) *Message {
	data, _ := json.Marshal(payload)
	return &Message{Type: msgType, Payload: data}
}
