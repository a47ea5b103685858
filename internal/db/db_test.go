package db

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMigrated_CreatesSchema(t *testing.T) {
	t.Parallel()

	dsn := filepath.Join(t.TempDir(), "nested", "nerdle.db")
	db, err := OpenMigrated(dsn)
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"users", "games", "daily_results", "_migrations"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s", table)
	}

	// Second run is a no-op.
	require.NoError(t, Migrate(db))
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestMigrateFS_RollsBackFailedFile(t *testing.T) {
	t.Parallel()

	db, err := Open(filepath.Join(t.TempDir(), "bad.db"))
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{
		"m/001_ok.sql":  {Data: []byte(`CREATE TABLE a (id INTEGER);`)},
		"m/002_bad.sql": {Data: []byte(`CREATE TABLE b (id INTEGER); NOT SQL;`)},
	}
	err = MigrateFS(db, fsys, "m")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "m/002_bad.sql")

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}
