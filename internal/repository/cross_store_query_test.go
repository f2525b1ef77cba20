package repository_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/ticket-router/internal/department"
	"github.com/spec-kit/ticket-router/internal/domain"
	"github.com/spec-kit/ticket-router/internal/persistence"
	"github.com/spec-kit/ticket-router/internal/repository"
	"github.com/spec-kit/ticket-router/internal/testutil"
)

type stores struct {
	resolver *persistence.ConnectionResolver
	dbs      map[string]*testutil.FakeDB
}

func newStores(t *testing.T, depts ...domain.Department) stores {
	t.Helper()
	registry, err := department.NewRegistry(depts)
	require.NoError(t, err)

	s := stores{dbs: map[string]*testutil.FakeDB{}}
	conns := map[string]persistence.Querier{}
	for _, d := range depts {
		db := &testutil.FakeDB{}
		s.dbs[d.Store] = db
		conns[d.Store] = db
	}
	s.resolver = persistence.NewConnectionResolver(registry, conns)
	return s
}

func twoStores(t *testing.T) stores {
	return newStores(t,
		domain.Department{Name: "Technical Issues", Store: "technical_issues"},
		domain.Department{Name: "Account & Billing", Store: "account_billing"},
	)
}

func TestCompile_AllDepartmentsUnionsEveryStore(t *testing.T) {
	s := twoStores(t)
	rel, err := repository.NewCrossStoreQueryCompiler(s.resolver).Compile("")
	require.NoError(t, err)

	assert.True(t, rel.Unioned())
	assert.Equal(t, []string{"Technical Issues", "Account & Billing"}, rel.Departments)
	assert.Equal(t, []any{"Technical Issues", "Account & Billing"}, rel.Args)
	assert.Equal(t, "technical_issues", rel.Exec.Department().Store)

	parts := strings.Split(rel.SQL, " UNION ALL ")
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], `$1::text AS department FROM "technical_issues"."tickets" AS tickets`)
	assert.Contains(t, parts[1], `$2::text AS department FROM "account_billing"."tickets" AS tickets`)
	assert.NotContains(t, rel.SQL, "Account & Billing")
	assert.True(t, strings.HasSuffix(rel.From(), ") AS all_tickets"))
}

func TestCompile_SingleDepartmentFilter(t *testing.T) {
	s := twoStores(t)
	rel, err := repository.NewCrossStoreQueryCompiler(s.resolver).Compile("Account & Billing")
	require.NoError(t, err)

	assert.False(t, rel.Unioned())
	assert.NotContains(t, rel.SQL, "UNION")
	assert.Equal(t, []any{"Account & Billing"}, rel.Args)
	assert.Equal(t, "account_billing", rel.Exec.Department().Store)
	assert.NotContains(t, rel.SQL, "technical_issues")
}

func TestCompile_SingleConfiguredDepartmentSkipsUnion(t *testing.T) {
	s := newStores(t, domain.Department{Name: "General Inquiry", Store: "general_inquiry"})
	rel, err := repository.NewCrossStoreQueryCompiler(s.resolver).Compile("")
	require.NoError(t, err)

	assert.NotContains(t, rel.SQL, "UNION")
	assert.Equal(t, []string{"General Inquiry"}, rel.Departments)
}

func TestCompile_EmptyRegistry(t *testing.T) {
	s := newStores(t)
	_, err := repository.NewCrossStoreQueryCompiler(s.resolver).Compile("")
	assert.ErrorIs(t, err, repository.ErrNoDepartmentsConfigured)
}

func TestCompile_UnknownDepartment(t *testing.T) {
	s := twoStores(t)
	_, err := repository.NewCrossStoreQueryCompiler(s.resolver).Compile("Sales")
	assert.ErrorIs(t, err, persistence.ErrUnknownDepartment)
	for _, db := range s.dbs {
		assert.Empty(t, db.Calls)
	}
}

func TestCompileHandles_NoHandles(t *testing.T) {
	_, err := repository.CompileHandles(nil)
	assert.ErrorIs(t, err, repository.ErrNoDepartmentsConfigured)
}
