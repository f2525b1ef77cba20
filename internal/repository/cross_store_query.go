package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spec-kit/ticket-router/internal/persistence"
)

// ErrNoDepartmentsConfigured means the registry is empty.
var ErrNoDepartmentsConfigured = errors.New("no departments configured")

const crossStoreAlias = "all_tickets"

// crossStoreColumns is the row shape every store contributes, in select order.
// The literal department column is appended after these.
var crossStoreColumns = []string{
	"id",
	"subject",
	"customer_name",
	"customer_email",
	"customer_phone",
	"status",
	"created_at",
	"updated_at",
}

// Relation is a compiled listing source: one store's select, or the UNION ALL of
// every store's select. It is only ever read through From().
type Relation struct {
	SQL         string
	Args        []any
	Exec        persistence.StoreHandle
	Departments []string
}

// From renders the relation as an aliased subquery.
func (r Relation) From() string {
	return "(" + r.SQL + ") AS " + crossStoreAlias
}

// Unioned reports whether more than one store contributes rows.
func (r Relation) Unioned() bool {
	return len(r.Departments) > 1
}

// CrossStoreQueryCompiler turns a department filter into a Relation.
type CrossStoreQueryCompiler struct {
	resolver *persistence.ConnectionResolver
}

// NewCrossStoreQueryCompiler builds the compiler over the resolver's registry.
func NewCrossStoreQueryCompiler(resolver *persistence.ConnectionResolver) *CrossStoreQueryCompiler {
	return &CrossStoreQueryCompiler{resolver: resolver}
}

// Compile returns the relation for one department, or for all of them when
// department is empty. The caller has already validated department against the
// registry; an unknown name still fails with persistence.ErrUnknownDepartment.
func (c *CrossStoreQueryCompiler) Compile(department string) (Relation, error) {
	if department != "" {
		h, err := c.resolver.Resolve(department)
		if err != nil {
			return Relation{}, err
		}
		return CompileHandles([]persistence.StoreHandle{h})
	}

	if c.resolver.Registry().Len() == 0 {
		return Relation{}, ErrNoDepartmentsConfigured
	}
	handles, err := c.resolver.ResolveAll()
	if err != nil {
		return Relation{}, err
	}
	return CompileHandles(handles)
}

// CompileHandles unions the given stores in order. The relation executes on the
// first handle's connection; every table reference is schema-qualified so that
// connection sees all of them. A single handle yields its select without UNION.
func CompileHandles(handles []persistence.StoreHandle) (Relation, error) {
	if len(handles) == 0 {
		return Relation{}, ErrNoDepartmentsConfigured
	}

	selects := make([]string, 0, len(handles))
	args := make([]any, 0, len(handles))
	departments := make([]string, 0, len(handles))
	for _, h := range handles {
		args = append(args, h.Department().Name)
		selects = append(selects, storeSelect(h, len(args)))
		departments = append(departments, h.Department().Name)
	}

	return Relation{
		SQL:         strings.Join(selects, " UNION ALL "),
		Args:        args,
		Exec:        handles[0],
		Departments: departments,
	}, nil
}

func storeSelect(h persistence.StoreHandle, placeholder int) string {
	cols := make([]string, 0, len(crossStoreColumns)+1)
	for _, col := range crossStoreColumns {
		cols = append(cols, "tickets."+col)
	}
	// bound, never interpolated: department names are free text
	cols = append(cols, fmt.Sprintf("$%d::text AS department", placeholder))
	return fmt.Sprintf("SELECT %s FROM %s AS tickets", strings.Join(cols, ", "), h.Table("tickets"))
}
