package persistence

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrStoreUnavailable matches store errors caused by connectivity failures.
var ErrStoreUnavailable = errors.New("store unavailable")

// StoreError carries the store and operation a failure happened in.
type StoreError struct {
	Department  string
	Store       string
	Op          string
	Err         error
	unavailable bool
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s (%s) %s: %v", e.Store, e.Department, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable && e.unavailable
}

// Unavailable reports whether the failure was a connectivity problem.
func (e *StoreError) Unavailable() bool { return e.unavailable }

// WrapStoreError annotates err with the handle's store. nil stays nil and errors that
// are already StoreErrors are returned unchanged.
func WrapStoreError(h StoreHandle, op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{
		Department:  h.department.Name,
		Store:       h.department.Store,
		Op:          op,
		Err:         err,
		unavailable: IsConnectivityError(err),
	}
}

// IsConnectivityError reports whether err means the server could not be reached,
// as opposed to a query that the server rejected.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// class 08: connection exception; 57P01-57P03: server shutting down / unavailable
		return len(pgErr.Code) == 5 && (pgErr.Code[:2] == "08" || pgErr.Code == "57P01" || pgErr.Code == "57P02" || pgErr.Code == "57P03")
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
