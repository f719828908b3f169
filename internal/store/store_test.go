package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finch/internal/schema"
)

type note struct {
	ID   int64  `db:"id,pk"`
	Body string `db:"body"`
}

// createTestStore creates a fresh store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_AppliesPragmas(t *testing.T) {
	s := createTestStore(t)

	var mode string
	require.NoError(t, s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestOpenURI(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uri.db")
	s, err := OpenURI("sqlite3://" + path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.DB().Ping())

	_, err = OpenURI("")
	require.Error(t, err)
}

func TestCreateTables_Idempotent(t *testing.T) {
	s := createTestStore(t)
	desc, err := schema.Describe[note]()
	require.NoError(t, err)
	descs := []*schema.EntityDescriptor{&desc}
	ctx := context.Background()

	require.NoError(t, s.CreateTables(ctx, descs))
	require.NoError(t, s.CreateTables(ctx, descs))

	_, err = s.DB().Exec(`INSERT INTO note (body) VALUES ('hello')`)
	require.NoError(t, err)

	var body string
	require.NoError(t, s.DB().QueryRow(`SELECT body FROM note WHERE id = 1`).Scan(&body))
	assert.Equal(t, "hello", body)
}

func TestCreateTableDDL(t *testing.T) {
	desc, err := schema.Describe[note]()
	require.NoError(t, err)

	ddl, err := createTableDDL(&desc)
	require.NoError(t, err)

	assert.Equal(t, "CREATE TABLE IF NOT EXISTS note (id INTEGER PRIMARY KEY, body TEXT NOT NULL)", ddl)
}
