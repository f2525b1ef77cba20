package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
)

// ErrTicketNotFound is returned by UpdateWithNote when the id is absent from the store.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepository is the gateway to the tickets and admin notes of one store. The
// store is always given explicitly through the handle.
type TicketRepository interface {
	Create(ctx context.Context, h persistence.StoreHandle, ticket *domain.Ticket) error
	// FindByID returns nil, nil when the ticket does not exist.
	FindByID(ctx context.Context, h persistence.StoreHandle, id int64) (*domain.Ticket, error)
	UpdateWithNote(ctx context.Context, h persistence.StoreHandle, id int64, note string, status domain.TicketStatus) (*domain.Ticket, error)
	ListNotes(ctx context.Context, h persistence.StoreHandle, ticketID int64) ([]domain.AdminNote, error)
}

type ticketRepository struct{}

// NewTicketRepository instantiates repository.
func NewTicketRepository() TicketRepository {
	return &ticketRepository{}
}

const ticketColumns = `id, customer_name, customer_email, customer_phone, subject, message, status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, h persistence.StoreHandle, ticket *domain.Ticket) error {
	query := fmt.Sprintf(`
        INSERT INTO %s (customer_name, customer_email, customer_phone, subject, message, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`, h.Table("tickets"))

	ticket.Status = domain.TicketStatusNew
	err := h.DB().QueryRow(ctx, query,
		ticket.CustomerName,
		ticket.CustomerEmail,
		ticket.CustomerPhone,
		ticket.Subject,
		ticket.Message,
		string(ticket.Status),
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return persistence.WrapStoreError(h, "create ticket", err)
}

func (r *ticketRepository) FindByID(ctx context.Context, h persistence.StoreHandle, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1`, ticketColumns, h.Table("tickets"))
	ticket, err := scanTicket(h.DB().QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, persistence.WrapStoreError(h, "find ticket", err)
	}
	return ticket, nil
}

func (r *ticketRepository) UpdateWithNote(ctx context.Context, h persistence.StoreHandle, id int64, note string, status domain.TicketStatus) (*domain.Ticket, error) {
	if status == "" {
		status = domain.TicketStatusNoted
	}
	if !status.Valid() {
		return nil, fmt.Errorf("invalid ticket status %q", status)
	}

	tx, err := h.DB().Begin(ctx)
	if err != nil {
		return nil, persistence.WrapStoreError(h, "begin note", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	lockQuery := fmt.Sprintf(`SELECT %s FROM %s WHERE id=$1 FOR UPDATE`, ticketColumns, h.Table("tickets"))
	ticket, err := scanTicket(tx.QueryRow(ctx, lockQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, persistence.WrapStoreError(h, "lock ticket", err)
	}

	var noteID int64
	noteQuery := fmt.Sprintf(`
        INSERT INTO %s (ticket_id, note)
        VALUES ($1,$2)
        RETURNING id`, h.Table("admin_notes"))
	if err := tx.QueryRow(ctx, noteQuery, ticket.ID, note).Scan(&noteID); err != nil {
		return nil, persistence.WrapStoreError(h, "insert note", err)
	}

	updateQuery := fmt.Sprintf(`
        UPDATE %s SET status=$1, updated_at=NOW()
        WHERE id=$2
        RETURNING updated_at`, h.Table("tickets"))
	if err := tx.QueryRow(ctx, updateQuery, string(status), ticket.ID).Scan(&ticket.UpdatedAt); err != nil {
		return nil, persistence.WrapStoreError(h, "update status", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, persistence.WrapStoreError(h, "commit note", err)
	}
	ticket.Status = status
	return ticket, nil
}

func (r *ticketRepository) ListNotes(ctx context.Context, h persistence.StoreHandle, ticketID int64) ([]domain.AdminNote, error) {
	query := fmt.Sprintf(`
        SELECT id, ticket_id, note, created_at, updated_at
        FROM %s WHERE ticket_id=$1 ORDER BY created_at DESC, id DESC`, h.Table("admin_notes"))
	rows, err := h.DB().Query(ctx, query, ticketID)
	if err != nil {
		return nil, persistence.WrapStoreError(h, "list notes", err)
	}
	defer rows.Close()

	var result []domain.AdminNote
	for rows.Next() {
		var note domain.AdminNote
		if err := rows.Scan(
			&note.ID,
			&note.TicketID,
			&note.Note,
			&note.CreatedAt,
			&note.UpdatedAt,
		); err != nil {
			return nil, persistence.WrapStoreError(h, "list notes", err)
		}
		result = append(result, note)
	}
	return result, persistence.WrapStoreError(h, "list notes", rows.Err())
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket domain.Ticket
		status string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.CustomerName,
		&ticket.CustomerEmail,
		&ticket.CustomerPhone,
		&ticket.Subject,
		&ticket.Message,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}
