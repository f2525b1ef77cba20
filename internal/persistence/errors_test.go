package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
)

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection exception", &pgconn.PgError{Code: "08006"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"cannot connect now", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "57P03"}), true},
		{"undefined table", &pgconn.PgError{Code: "42P01"}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, persistence.IsConnectivityError(tt.err))
		})
	}
}

func TestWrapStoreError(t *testing.T) {
	h := persistence.NewStoreHandle(domain.Department{Name: "A", Store: "store_a"}, nil)

	assert.NoError(t, persistence.WrapStoreError(h, "op", nil))

	cause := &pgconn.PgError{Code: "08001", Message: "refused"}
	err := persistence.WrapStoreError(h, "find ticket", cause)
	assert.ErrorIs(t, err, persistence.ErrStoreUnavailable)
	assert.ErrorAs(t, err, new(*pgconn.PgError))
	assert.Contains(t, err.Error(), "store_a")
	assert.Contains(t, err.Error(), "find ticket")

	other := persistence.NewStoreHandle(domain.Department{Name: "B", Store: "store_b"}, nil)
	assert.Same(t, err, persistence.WrapStoreError(other, "again", err))

	rejected := persistence.WrapStoreError(h, "create ticket", &pgconn.PgError{Code: "23514"})
	assert.NotErrorIs(t, rejected, persistence.ErrStoreUnavailable)
}
