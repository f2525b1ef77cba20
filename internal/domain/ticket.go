package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew    TicketStatus = "new"
	TicketStatusNoted  TicketStatus = "noted"
	TicketStatusClosed TicketStatus = "closed"
)

// Valid reports whether s is one of the known statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusNoted, TicketStatusClosed:
		return true
	}
	return false
}

// Ticket is a support request owned by exactly one department store. IDs are only
// unique within that store.
type Ticket struct {
	ID            int64
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Subject       string
	Message       string
	Status        TicketStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AdminNote is an internal note stored alongside its ticket.
type AdminNote struct {
	ID        int64
	TicketID  int64
	Note      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TicketDetail is a ticket with its notes, newest first.
type TicketDetail struct {
	Department string
	Ticket     Ticket
	Notes      []AdminNote
}

// CrossDepartmentRow is a listing projection tagged with its department name.
type CrossDepartmentRow struct {
	ID            int64
	Subject       string
	CustomerName  string
	CustomerEmail string
	CustomerPhone *string
	Status        TicketStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Department    string
}
