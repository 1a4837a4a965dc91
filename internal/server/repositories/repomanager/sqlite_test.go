package repomanager

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/shack/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/shack/internal/server/repositories/messages"
)

func newDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:repomanager_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNewSQLiteRepositoryManager_ReturnsInterface(t *testing.T) {
	m, err := NewSQLiteRepositoryManager()
	require.NoError(t, err)
	var _ RepositoryManager = m
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db := newDB(t)
	m, err := NewSQLiteRepositoryManager()
	require.NoError(t, err)

	assert.IsType(t, &messages.SQLiteRepository{}, m.Messages(db))
	assert.IsType(t, &credentials.SQLiteRepository{}, m.Credentials(db))
}

func TestRunMigrations_CreatesSchema(t *testing.T) {
	db := newDB(t)
	m, err := NewSQLiteRepositoryManager()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, m.RunMigrations(ctx, db))

	// Both tables must exist and be queryable after migrating.
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&n))

	// Migrations are idempotent.
	require.NoError(t, m.RunMigrations(ctx, db))
}
