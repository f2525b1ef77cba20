package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ticket-router/internal/department"
	"github.com/spec-kit/ticket-router/internal/domain"
)

// ErrUnknownDepartment is returned when a department name is not registered.
var ErrUnknownDepartment = errors.New("unknown department")

// Querier is the part of a pgx pool the store code relies on. *pgxpool.Pool and
// pgx.Tx both satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// StoreHandle is an immutable reference to one resolved department store.
type StoreHandle struct {
	department domain.Department
	db         Querier
}

// NewStoreHandle binds a department to the connection of its store.
func NewStoreHandle(dept domain.Department, db Querier) StoreHandle {
	return StoreHandle{department: dept, db: db}
}

func (h StoreHandle) Department() domain.Department { return h.department }

func (h StoreHandle) DB() Querier { return h.db }

// Table returns the schema-qualified, quoted name of a table in this store.
func (h StoreHandle) Table(name string) string {
	return pgx.Identifier{h.department.Store, name}.Sanitize()
}

// Ping probes the store when the underlying connection supports it.
func (h StoreHandle) Ping(ctx context.Context) error {
	p, ok := h.db.(pinger)
	if !ok {
		return nil
	}
	if err := p.Ping(ctx); err != nil {
		return WrapStoreError(h, "ping", err)
	}
	return nil
}

// ConnectionResolver maps department names to store handles.
type ConnectionResolver struct {
	registry *department.Registry
	conns    map[string]Querier
}

// NewConnectionResolver builds a resolver over the registry and the per-store
// connections keyed by store identifier.
func NewConnectionResolver(registry *department.Registry, conns map[string]Querier) *ConnectionResolver {
	return &ConnectionResolver{registry: registry, conns: conns}
}

// Resolve returns the handle for a registered department.
func (r *ConnectionResolver) Resolve(name string) (StoreHandle, error) {
	dept, ok := r.registry.Lookup(name)
	if !ok {
		return StoreHandle{}, fmt.Errorf("%w: %q", ErrUnknownDepartment, name)
	}
	db, ok := r.conns[dept.Store]
	if !ok || db == nil {
		return StoreHandle{}, &StoreError{
			Department:  dept.Name,
			Store:       dept.Store,
			Op:          "resolve",
			Err:         errors.New("no connection configured for store"),
			unavailable: true,
		}
	}
	return NewStoreHandle(dept, db), nil
}

// ResolveAll returns handles for every department in registry order.
func (r *ConnectionResolver) ResolveAll() ([]StoreHandle, error) {
	departments := r.registry.All()
	handles := make([]StoreHandle, 0, len(departments))
	for _, dept := range departments {
		h, err := r.Resolve(dept.Name)
		if err != nil {
			return nil, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// Registry returns the registry the resolver was built from.
func (r *ConnectionResolver) Registry() *department.Registry {
	return r.registry
}
