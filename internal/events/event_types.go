package events

import (
	"time"

	"github.com/spec-kit/ticket-router/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketNoted   EventType = "ticket_noted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type  string `json:"type"`
	Email string `json:"email,omitempty"`
}

// Event represents a domain event emitted by services. Ticket ids are only unique
// within a department, so both are carried.
type Event struct {
	ID         string      `json:"id"`
	Type       EventType   `json:"type"`
	Department string      `json:"department"`
	TicketID   int64       `json:"ticket_id"`
	Actor      Actor       `json:"actor"`
	Timestamp  time.Time   `json:"timestamp"`
	Payload    interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject       string `json:"subject"`
	CustomerEmail string `json:"customer_email"`
}

// TicketNotedPayload payload.
type TicketNotedPayload struct {
	NewStatus   domain.TicketStatus `json:"new_status"`
	NotePreview string              `json:"note_preview"`
}
