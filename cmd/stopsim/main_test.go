package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sprasad796/Stop-And-Go/internal/db"
	"github.com/sprasad796/Stop-And-Go/internal/monitoring"
	"github.com/sprasad796/Stop-And-Go/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage: stopsim <command>")

	code, stdout, _ := runCLI(t, "help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "migrate")

	code, _, stderr = runCLI(t, "fly")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Unknown command: fly")
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "stopsim "), stdout)
}

func TestRun_EpisodesRecorded(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "episodes.db")
	chartsDir := filepath.Join(dir, "reports")

	code, stdout, stderr := runCLI(t, "run", "-episodes", "2", "-seed", "11", "-db", dbPath, "-charts", chartsDir, "-log-level", "quiet")
	require.Equal(t, 0, code, stderr)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "seed=11")
	assert.Contains(t, lines[1], "seed=12")

	database, err := db.NewDB(dbPath)
	require.NoError(t, err)
	defer database.Close()
	episodes, err := db.NewEpisodeStore(database).List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, episodes, 2)

	entries, err := os.ReadDir(chartsDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		for _, name := range []string{report.SpeedPNG, report.DistancePNG, report.EpisodeHTML, report.SummaryJSON} {
			_, err := os.Stat(filepath.Join(chartsDir, e.Name(), name))
			assert.NoError(t, err, "%s/%s", e.Name(), name)
		}
	}
}

func TestRun_ConfigErrors(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := runCLI(t, "run", "-config", filepath.Join(dir, "missing.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "stopsim run:")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"num_cars": 9}`), 0o644))
	code, _, stderr = runCLI(t, "run", "-config", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "configuration error")

	code, _, _ = runCLI(t, "run", "-episodes", "nope")
	assert.Equal(t, 1, code)
}

func TestRun_LogLevelFromConfig(t *testing.T) {
	var (
		mu    sync.Mutex
		debug int
	)
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	monitoring.SetLogger(func(format string, v ...interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if strings.HasPrefix(fmt.Sprintf(format, v...), "DEBUG ") {
			debug++
		}
	})
	debugLines := func() int {
		mu.Lock()
		defer mu.Unlock()
		n := debug
		debug = 0
		return n
	}

	cfgPath := filepath.Join(t.TempDir(), "debug.json")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"log_level": "debug"}`), 0o644))

	code, _, stderr := runCLI(t, "run", "-config", cfgPath, "-seed", "5")
	require.Equal(t, 0, code, stderr)
	assert.Positive(t, debugLines(), "config log_level applies without the flag")

	code, _, stderr = runCLI(t, "run", "-config", cfgPath, "-seed", "5", "-log-level", "info")
	require.Equal(t, 0, code, stderr)
	assert.Zero(t, debugLines(), "explicit flag overrides the config")
}

func TestRun_Migrate(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "m.db")

	code, stdout, stderr := runCLI(t, "migrate", "-db", dbPath, "up")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "All migrations applied")

	code, stdout, _ = runCLI(t, "migrate", "-db", dbPath, "status")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Pending: 0")

	code, _, _ = runCLI(t, "migrate", "-db", dbPath, "sideways")
	assert.Equal(t, 2, code)
}
