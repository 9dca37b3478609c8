package db

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "stopsim.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDB_PragmasApplied(t *testing.T) {
	db := newTestDB(t)

	var journalMode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	for pragma, want := range map[string]int{
		"busy_timeout": 5000,
		"synchronous":  1, // NORMAL
		"temp_store":   2, // MEMORY
		"foreign_keys": 1,
	} {
		var got int
		require.NoError(t, db.QueryRow("PRAGMA "+pragma).Scan(&got), pragma)
		assert.Equal(t, want, got, pragma)
	}
}

func TestOpenDB_DoesNotMigrate(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "raw.db"))
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='episodes'`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestMigrations_UpDown(t *testing.T) {
	db, err := OpenDB(filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	defer db.Close()
	migrationsFS, err := getMigrationsFS()
	require.NoError(t, err)

	latest, err := LatestMigrationVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(2), latest)

	v, dirty, err := db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	require.NoError(t, db.MigrateUp(migrationsFS))
	require.NoError(t, db.MigrateUp(migrationsFS), "up is idempotent")
	v, _, err = db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, latest, v)
	assert.True(t, indexExists(t, db, "idx_episode_frames_car"))

	require.NoError(t, db.MigrateDown(migrationsFS))
	v, _, err = db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, indexExists(t, db, "idx_episode_frames_car"))

	st, err := db.GetMigrationStatus(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, MigrationStatus{CurrentVersion: 1, LatestVersion: 2, TableExists: true}, st)
	assert.Equal(t, uint(1), st.Pending())

	require.NoError(t, db.MigrateTo(migrationsFS, 2))
	require.NoError(t, db.MigrateForce(migrationsFS, 2))
	v, dirty, err = db.MigrateVersion(migrationsFS)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)
}

func indexExists(t *testing.T, db *DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?`, name).Scan(&n))
	return n > 0
}

func TestRunMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.db")
	var out bytes.Buffer

	require.NoError(t, RunMigrateCommand([]string{"status"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 0")
	assert.Contains(t, out.String(), "Pending: 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"up"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"down"}, path, &out))
	assert.Contains(t, out.String(), "Current version: 1")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"version", "2"}, path, &out))
	assert.Contains(t, out.String(), "Migrated to version 2")

	out.Reset()
	require.NoError(t, RunMigrateCommand([]string{"help"}, path, &out))
	assert.Contains(t, out.String(), "Usage: stopsim migrate")

	for _, args := range [][]string{nil, {"sideways"}, {"version"}, {"force", "x"}} {
		assert.ErrorIs(t, RunMigrateCommand(args, path, &bytes.Buffer{}), ErrUsage, "%v", args)
	}
}
