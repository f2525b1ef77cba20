// Package testutil holds fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
)

// Result is one scripted answer to Query or QueryRow. A QueryRow against a result
// with no rows yields pgx.ErrNoRows.
type Result struct {
	Rows [][]any
	Err  error
}

// Call records one statement sent to the fake.
type Call struct {
	SQL  string
	Args []any
}

// FakeDB is a scriptable persistence.Querier. Begin returns the same value as the
// transaction, so statements inside and outside a transaction share one script.
type FakeDB struct {
	mu sync.Mutex

	Results   []Result
	ExecErr   error
	BeginErr  error
	CommitErr error
	PingErr   error

	Calls      []Call
	Execs      []Call
	Begun      int
	Committed  bool
	RolledBack bool
}

var _ pgx.Tx = (*FakeDB)(nil)
var _ persistence.Querier = (*FakeDB)(nil)

// Script appends scripted results.
func (f *FakeDB) Script(results ...Result) *FakeDB {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results = append(f.Results, results...)
	return f
}

// Handle binds the fake to a department.
func (f *FakeDB) Handle(name, store string) persistence.StoreHandle {
	return persistence.NewStoreHandle(domain.Department{Name: name, Store: store}, f)
}

func (f *FakeDB) next(sql string, args []any) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{SQL: sql, Args: append([]any(nil), args...)})
	if len(f.Results) == 0 {
		return Result{Err: fmt.Errorf("testutil: unscripted statement %q", sql)}
	}
	r := f.Results[0]
	f.Results = f.Results[1:]
	return r
}

func (f *FakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Execs = append(f.Execs, Call{SQL: sql, Args: append([]any(nil), args...)})
	if f.ExecErr != nil {
		return pgconn.CommandTag{}, f.ExecErr
	}
	return pgconn.NewCommandTag("OK"), nil
}

func (f *FakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	r := f.next(sql, args)
	if r.Err != nil {
		return nil, r.Err
	}
	return &FakeRows{rows: r.Rows}, nil
}

func (f *FakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	r := f.next(sql, args)
	if r.Err != nil {
		return fakeRow{err: r.Err}
	}
	if len(r.Rows) == 0 {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{vals: r.Rows[0]}
}

func (f *FakeDB) Begin(context.Context) (pgx.Tx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BeginErr != nil {
		return nil, f.BeginErr
	}
	f.Begun++
	return f, nil
}

func (f *FakeDB) Commit(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommitErr != nil {
		return f.CommitErr
	}
	f.Committed = true
	return nil
}

func (f *FakeDB) Rollback(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Committed {
		return pgx.ErrTxClosed
	}
	f.RolledBack = true
	return nil
}

// Ping lets StoreHandle.Ping probe the fake.
func (f *FakeDB) Ping(context.Context) error { return f.PingErr }

func (f *FakeDB) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("testutil: CopyFrom not supported")
}
func (f *FakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (f *FakeDB) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (f *FakeDB) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (f *FakeDB) Conn() *pgx.Conn { return nil }

// SQL returns the statements sent through Query and QueryRow in order.
func (f *FakeDB) SQL() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.SQL
	}
	return out
}

// FakeRows iterates scripted rows.
type FakeRows struct {
	rows   [][]any
	idx    int
	closed bool
}

func (r *FakeRows) Close()                                       { r.closed = true }
func (r *FakeRows) Err() error                                   { return nil }
func (r *FakeRows) CommandTag() pgconn.CommandTag                { return pgconn.NewCommandTag("SELECT") }
func (r *FakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *FakeRows) Values() ([]any, error)                       { return r.rows[r.idx-1], nil }
func (r *FakeRows) RawValues() [][]byte                          { return nil }
func (r *FakeRows) Conn() *pgx.Conn                              { return nil }

func (r *FakeRows) Next() bool {
	if r.closed || r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *FakeRows) Scan(dest ...any) error {
	return scanInto(r.rows[r.idx-1], dest)
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.vals, dest)
}

// scanInto assigns vals to dest pointers. A plain value scanned into a pointer
// destination, such as string into **string, is allocated.
func scanInto(vals []any, dest []any) error {
	if len(vals) != len(dest) {
		return fmt.Errorf("testutil: %d values for %d destinations", len(vals), len(dest))
	}
	for i, d := range dest {
		dv := reflect.ValueOf(d)
		if dv.Kind() != reflect.Pointer || dv.IsNil() {
			return fmt.Errorf("testutil: destination %d is not a pointer", i)
		}
		target := dv.Elem()
		if vals[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(vals[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case v.Type().ConvertibleTo(target.Type()):
			target.Set(v.Convert(target.Type()))
		case target.Kind() == reflect.Pointer && v.Type().ConvertibleTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v.Convert(target.Type().Elem()))
			target.Set(p)
		default:
			return fmt.Errorf("testutil: cannot scan %T into %s", vals[i], target.Type())
		}
	}
	return nil
}
