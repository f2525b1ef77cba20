package persistence_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-router/internal/persistence"
	"github.com/spec-kit/ticket-router/internal/testutil"
)

func migrationDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"0001_create_tickets.up.sql":       "CREATE TABLE tickets ();",
		"0001_create_tickets.down.sql":     "DROP TABLE tickets;",
		"0002_create_admin_notes.up.sql":   "CREATE TABLE admin_notes ();",
		"0002_create_admin_notes.down.sql": "DROP TABLE admin_notes;",
		"README.md":                        "ignored",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestRunMigrations_Up(t *testing.T) {
	db := &testutil.FakeDB{}
	err := persistence.RunMigrations(context.Background(), db.Handle("A", "store_a"), migrationDir(t), persistence.DirectionUp, zap.NewNop())
	require.NoError(t, err)

	var stmts []string
	for _, e := range db.Execs {
		stmts = append(stmts, e.SQL)
	}
	assert.Equal(t, []string{
		`CREATE SCHEMA IF NOT EXISTS "store_a"`,
		`SET LOCAL search_path TO "store_a"`,
		"CREATE TABLE tickets ();",
		"CREATE TABLE admin_notes ();",
	}, stmts)
	assert.True(t, db.Committed)
}

func TestRunMigrations_DownDropsNotesFirst(t *testing.T) {
	db := &testutil.FakeDB{}
	err := persistence.RunMigrations(context.Background(), db.Handle("A", "store_a"), migrationDir(t), persistence.DirectionDown, zap.NewNop())
	require.NoError(t, err)

	require.Len(t, db.Execs, 3)
	assert.Equal(t, `SET LOCAL search_path TO "store_a"`, db.Execs[0].SQL)
	assert.Equal(t, "DROP TABLE admin_notes;", db.Execs[1].SQL)
	assert.Equal(t, "DROP TABLE tickets;", db.Execs[2].SQL)
}

func TestRunMigrations_FailureRollsBack(t *testing.T) {
	db := &testutil.FakeDB{ExecErr: errors.New("permission denied")}
	err := persistence.RunMigrations(context.Background(), db.Handle("A", "store_a"), migrationDir(t), persistence.DirectionUp, zap.NewNop())

	var storeErr *persistence.StoreError
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, "store_a", storeErr.Store)
	assert.False(t, db.Committed)
	assert.True(t, db.RolledBack)
}

func TestRunMigrations_MissingDir(t *testing.T) {
	db := &testutil.FakeDB{}
	err := persistence.RunMigrations(context.Background(), db.Handle("A", "store_a"), filepath.Join(t.TempDir(), "nope"), persistence.DirectionUp, zap.NewNop())
	require.Error(t, err)
	assert.Zero(t, db.Begun)
}
