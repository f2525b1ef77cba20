package dto

import (
	"time"

	"github.com/spec-kit/ticket-router/internal/domain"
)

// SubmitTicketRequest is the public ticket form.
type SubmitTicketRequest struct {
	CustomerName  string  `json:"customer_name" form:"customer_name"`
	CustomerEmail string  `json:"customer_email" form:"customer_email"`
	CustomerPhone *string `json:"customer_phone" form:"customer_phone"`
	Department    string  `json:"department" form:"department"`
	Subject       string  `json:"subject" form:"subject"`
	Message       string  `json:"message" form:"message"`
}

// AddNoteRequest carries an admin note.
type AddNoteRequest struct {
	Note string `json:"note" form:"note"`
}

// TicketResponse is a ticket as owned by one department.
type TicketResponse struct {
	ID            int64               `json:"id"`
	Department    string              `json:"department"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone *string             `json:"customer_phone"`
	Subject       string              `json:"subject"`
	Message       string              `json:"message"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// AdminNoteResponse is one note on a ticket.
type AdminNoteResponse struct {
	ID        int64     `json:"id"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TicketDetailResponse is a ticket with its notes, newest first.
type TicketDetailResponse struct {
	TicketResponse
	Notes []AdminNoteResponse `json:"notes"`
}

// TicketListRow is one row of the unified admin listing.
type TicketListRow struct {
	ID            int64               `json:"id"`
	Department    string              `json:"department"`
	Subject       string              `json:"subject"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	CustomerPhone *string             `json:"customer_phone"`
	Status        domain.TicketStatus `json:"status"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// TicketListResponse follows the DataTables server-side response shape.
type TicketListResponse struct {
	Draw                int             `json:"draw"`
	RecordsTotal        int64           `json:"recordsTotal"`
	RecordsFiltered     int64           `json:"recordsFiltered"`
	Data                []TicketListRow `json:"data"`
	ExcludedDepartments []string        `json:"excluded_departments,omitempty"`
}
