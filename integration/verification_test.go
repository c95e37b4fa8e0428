//go:build basic

// Package integration contains integration tests for signalboard.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Or, with Docker available: go test -tags database ./integration
package integration

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqliteEnv points the binary at a throwaway SQLite file.
func sqliteEnv(t *testing.T) []string {
	return []string{
		"SIGNALBOARD_SNAPSHOT_BACKEND=sqlite",
		"SIGNALBOARD_SNAPSHOT_DB_CONNECT=" + filepath.Join(t.TempDir(), "snapshots.db"),
	}
}

// TestMindshareVerification checks every window of the CLI output sums to 10000 bps.
func TestMindshareVerification(t *testing.T) {
	out, err := runCommand(t, sqliteEnv(t), "mindshare", "--data", sampleDataset, "--date", "2026-03-01", "--output", "json")
	require.NoError(t, err)

	var byWindow map[string][]struct {
		ProjectID string `json:"project_id"`
		Bps       int    `json:"mindshare_bps"`
		Rank      int    `json:"rank"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &byWindow))
	require.Len(t, byWindow, 3)

	for window, snaps := range byWindow {
		t.Run(window, func(t *testing.T) {
			total := 0
			for i, s := range snaps {
				total += s.Bps
				assert.Equal(t, i+1, s.Rank)
				assert.GreaterOrEqual(t, s.Bps, 0)
			}
			assert.Equal(t, 10000, total)
		})
	}
}

// TestSignalVerification checks the CLI ranks signal results by descending score.
func TestSignalVerification(t *testing.T) {
	for _, window := range []string{"24h", "7d", "30d"} {
		t.Run(window, func(t *testing.T) {
			out, err := runCommand(t, sqliteEnv(t), "signal", "--data", sampleDataset, "--date", "2026-03-01", "--window", window, "--output", "json")
			require.NoError(t, err)

			var results []struct {
				Score float64 `json:"score"`
			}
			require.NoError(t, json.Unmarshal([]byte(out), &results))
			require.NotEmpty(t, results)
			assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool { return results[i].Score > results[j].Score }))
		})
	}
}

// TestPersistAndReadBack stores a batch in SQLite and reads smart followers back.
func TestPersistAndReadBack(t *testing.T) {
	env := sqliteEnv(t)
	data := []string{"--data", sampleDataset, "--date", "2026-03-01"}

	_, err := runCommand(t, env, append([]string{"batch"}, data...)...)
	require.NoError(t, err)

	out, err := runCommand(t, env, append([]string{"followers", "--account", "alice", "--output", "json"}, data...)...)
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "alice", report["account_id"])

	out, err = runCommand(t, env, "snapshots", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Total Runs: 2")
}

// TestLeaderboardVerification checks the verified multiplier reaches the CLI output.
func TestLeaderboardVerification(t *testing.T) {
	out, err := runCommand(t, sqliteEnv(t), "leaderboard", "--data", sampleDataset, "--date", "2026-03-01", "--arena", "spring", "--output", "json")
	require.NoError(t, err)

	var boards map[string][]struct {
		AccountID  string  `json:"account_id"`
		Multiplier float64 `json:"multiplier"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &boards))
	require.Len(t, boards["spring"], 1)
	assert.Equal(t, "bob", boards["spring"][0].AccountID)
	assert.Equal(t, 1.5, boards["spring"][0].Multiplier)
}
