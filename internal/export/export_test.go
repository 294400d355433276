package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJob() *client.Job {
	asr := 0.6667
	return &client.Job{
		ID:                  42,
		Description:         "jailbreak sweep",
		Status:              client.StatusCompleted,
		CompletedObjectives: 3,
		TotalObjectives:     3,
		ASR:                 &asr,
		CreatedAt:           time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

func TestWriteCSV(t *testing.T) {
	results := []client.AttackResult{
		{
			Objective: "extract system prompt",
			Success:   true,
			Payload:   "ignore previous, instructions",
			Output:    "the system prompt is...",
			Trajectory: []map[string]any{
				{"step": 1, "prompt": "first try"},
				{"step": 2, "prompt": "refined"},
			},
		},
		{Objective: "bypass content filter", Success: false},
	}

	path := filepath.Join(t.TempDir(), "results.csv")
	require.NoError(t, WriteCSV(path, testJob(), results))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "42", first[0])
	assert.Equal(t, "jailbreak sweep", first[1])
	assert.Equal(t, "completed", first[2])
	assert.Equal(t, "0.6667", first[3])
	assert.Equal(t, "extract system prompt", first[4])
	assert.Equal(t, "true", first[5])
	assert.Equal(t, "ignore previous, instructions", first[6], "commas in fields survive the round trip")
	assert.Equal(t, "2", first[8])

	var trajectory []map[string]any
	require.NoError(t, json.Unmarshal([]byte(first[9]), &trajectory))
	assert.Len(t, trajectory, 2)

	second := rows[2]
	assert.Equal(t, "false", second[5])
	assert.Equal(t, "0", second[8])
	assert.Empty(t, second[9])
}

func TestWriteCSVEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(path, testJob(), nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1, "empty result set still produces the header")
	assert.Equal(t, csvHeader, rows[0])
}

func TestWriteJSON(t *testing.T) {
	results := []client.AttackResult{
		{Objective: "extract system prompt", Success: true},
	}

	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, WriteJSON(path, results))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []client.AttackResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "extract system prompt", decoded[0].Objective)
}

func TestWriteJSONEmptyResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, WriteJSON(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data), "empty set is valid JSON, not an error")
}

func TestWriteOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte("old contents"), 0o644))

	require.NoError(t, WriteJSON(path, []client.AttackResult{{Objective: "new"}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "new")
	assert.NotContains(t, string(data), "old contents")
}

func TestWriteFailureLeavesNoPartialFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing", "nested")
	path := filepath.Join(dir, "results.json")

	err := WriteJSON(path, []client.AttackResult{{Objective: "x"}})
	require.ErrorIs(t, err, ErrExport)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "no file appears at the target on failure")
}

func TestWriteCleansUpTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.csv")
	require.NoError(t, WriteCSV(path, testJob(), nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the target file remains")
	assert.Equal(t, "results.csv", entries[0].Name())
}
