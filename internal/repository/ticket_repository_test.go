package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
	"github.com/spec-kit/ticket-router/internal/repository"
	"github.com/spec-kit/ticket-router/internal/testutil"
)

var (
	created = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	updated = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func ticketRow(id int64, status string, phone any) []any {
	return []any{id, "Alice", "alice@example.com", phone, "Printer on fire", "It is on fire.", status, created, updated}
}

func TestCreate_ForcesStatusNewAndQualifiesTable(t *testing.T) {
	db := (&testutil.FakeDB{}).Script(testutil.Result{Rows: [][]any{{int64(7), created, created}}})
	h := db.Handle("Technical Issues", "technical_issues")

	ticket := &domain.Ticket{
		CustomerName:  "Alice",
		CustomerEmail: "alice@example.com",
		Subject:       "Printer on fire",
		Message:       "It is on fire.",
		Status:        domain.TicketStatusClosed,
	}
	require.NoError(t, repository.NewTicketRepository().Create(context.Background(), h, ticket))

	assert.Equal(t, int64(7), ticket.ID)
	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, created, ticket.CreatedAt)
	require.Len(t, db.Calls, 1)
	assert.Contains(t, db.Calls[0].SQL, `INSERT INTO "technical_issues"."tickets"`)
	assert.Equal(t, "new", db.Calls[0].Args[5])
}

func TestCreate_WrapsStoreErrors(t *testing.T) {
	db := (&testutil.FakeDB{}).Script(testutil.Result{Err: &pgconn.PgError{Code: "08006", Message: "connection failure"}})
	h := db.Handle("Technical Issues", "technical_issues")

	err := repository.NewTicketRepository().Create(context.Background(), h, &domain.Ticket{})
	require.Error(t, err)
	assert.ErrorIs(t, err, persistence.ErrStoreUnavailable)

	var storeErr *persistence.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "technical_issues", storeErr.Store)
	assert.Equal(t, "create ticket", storeErr.Op)
}

func TestFindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := (&testutil.FakeDB{}).Script(testutil.Result{Rows: [][]any{ticketRow(3, "noted", "555-0100")}})
		ticket, err := repository.NewTicketRepository().FindByID(context.Background(), db.Handle("A", "store_a"), 3)
		require.NoError(t, err)
		require.NotNil(t, ticket)
		assert.Equal(t, int64(3), ticket.ID)
		assert.Equal(t, domain.TicketStatusNoted, ticket.Status)
		require.NotNil(t, ticket.CustomerPhone)
		assert.Equal(t, "555-0100", *ticket.CustomerPhone)
		assert.Equal(t, []any{int64(3)}, db.Calls[0].Args)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		db := (&testutil.FakeDB{}).Script(testutil.Result{})
		ticket, err := repository.NewTicketRepository().FindByID(context.Background(), db.Handle("A", "store_a"), 42)
		require.NoError(t, err)
		assert.Nil(t, ticket)
	})

	t.Run("failure is an error", func(t *testing.T) {
		db := (&testutil.FakeDB{}).Script(testutil.Result{Err: errors.New("boom")})
		ticket, err := repository.NewTicketRepository().FindByID(context.Background(), db.Handle("A", "store_a"), 42)
		require.Error(t, err)
		assert.Nil(t, ticket)
		assert.NotErrorIs(t, err, persistence.ErrStoreUnavailable)
	})
}

func TestUpdateWithNote_CommitsNoteAndStatusTogether(t *testing.T) {
	db := (&testutil.FakeDB{}).Script(
		testutil.Result{Rows: [][]any{ticketRow(5, "new", nil)}},
		testutil.Result{Rows: [][]any{{int64(11)}}},
		testutil.Result{Rows: [][]any{{updated}}},
	)
	h := db.Handle("Account & Billing", "account_billing")

	ticket, err := repository.NewTicketRepository().UpdateWithNote(context.Background(), h, 5, "hello", "")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNoted, ticket.Status)
	assert.Equal(t, updated, ticket.UpdatedAt)
	assert.Nil(t, ticket.CustomerPhone)
	assert.Equal(t, 1, db.Begun)
	assert.True(t, db.Committed)
	assert.False(t, db.RolledBack)

	sql := db.SQL()
	require.Len(t, sql, 3)
	assert.Contains(t, sql[0], "FOR UPDATE")
	assert.Contains(t, sql[1], `INSERT INTO "account_billing"."admin_notes"`)
	assert.Equal(t, []any{int64(5), "hello"}, db.Calls[1].Args)
	assert.Contains(t, sql[2], `UPDATE "account_billing"."tickets"`)
	assert.Equal(t, []any{"noted", int64(5)}, db.Calls[2].Args)
}

func TestUpdateWithNote_MissingTicketCreatesNoNote(t *testing.T) {
	db := (&testutil.FakeDB{}).Script(testutil.Result{})
	ticket, err := repository.NewTicketRepository().UpdateWithNote(context.Background(), db.Handle("A", "store_a"), 999999, "x", domain.TicketStatusNoted)

	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, repository.ErrTicketNotFound)
	assert.Len(t, db.Calls, 1)
	assert.False(t, db.Committed)
	assert.True(t, db.RolledBack)
}

func TestUpdateWithNote_RollsBackWhenStatusUpdateFails(t *testing.T) {
	db := (&testutil.FakeDB{}).Script(
		testutil.Result{Rows: [][]any{ticketRow(5, "new", nil)}},
		testutil.Result{Rows: [][]any{{int64(11)}}},
		testutil.Result{Err: errors.New("constraint violated")},
	)
	_, err := repository.NewTicketRepository().UpdateWithNote(context.Background(), db.Handle("A", "store_a"), 5, "hello", domain.TicketStatusNoted)

	require.Error(t, err)
	var storeErr *persistence.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "update status", storeErr.Op)
	assert.False(t, db.Committed)
	assert.True(t, db.RolledBack)
}

func TestUpdateWithNote_RejectsUnknownStatus(t *testing.T) {
	db := &testutil.FakeDB{}
	_, err := repository.NewTicketRepository().UpdateWithNote(context.Background(), db.Handle("A", "store_a"), 5, "hello", "archived")
	require.Error(t, err)
	assert.Zero(t, db.Begun)
}

func TestListNotes_NewestFirst(t *testing.T) {
	later := updated.Add(time.Hour)
	db := (&testutil.FakeDB{}).Script(testutil.Result{Rows: [][]any{
		{int64(2), int64(5), "second", later, later},
		{int64(1), int64(5), "first", updated, updated},
	}})

	notes, err := repository.NewTicketRepository().ListNotes(context.Background(), db.Handle("A", "store_a"), 5)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "second", notes[0].Note)
	assert.Contains(t, db.Calls[0].SQL, "ORDER BY created_at DESC, id DESC")
	assert.Contains(t, db.Calls[0].SQL, `"store_a"."admin_notes"`)
}
