package cli

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingFetcher records GetResults calls and serves canned results.
type countingFetcher struct {
	results []client.AttackResult
	err     error
	calls   int
}

func (f *countingFetcher) GetResults(ctx context.Context, id int64, filter client.ResultFilter) (*client.JobResults, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &client.JobResults{
		Job:     *snapshot(client.StatusCompleted, 100, 100),
		Results: f.results,
	}, nil
}

func TestFinishMonitorCompletedExportsOnce(t *testing.T) {
	fetcher := &countingFetcher{results: []client.AttackResult{
		{Objective: "extract system prompt", Success: true, Payload: "p", Output: "o"},
	}}
	job := snapshot(client.StatusCompleted, 100, 100)

	err := finishMonitor(context.Background(), fetcher, outcomeCompleted, job, nil, exportSinks{})

	require.NoError(t, err)
	assert.Equal(t, 0, ExitCode(err))
	assert.Equal(t, 1, fetcher.calls, "results are fetched exactly once")
}

func TestFinishMonitorCompletedWritesSinks(t *testing.T) {
	fetcher := &countingFetcher{results: []client.AttackResult{
		{Objective: "extract system prompt", Success: true, Payload: "p", Output: "o"},
		{Objective: "bypass filter", Success: false, Payload: "p2", Output: "o2"},
	}}
	job := snapshot(client.StatusCompleted, 100, 100)

	dir := t.TempDir()
	sinks := exportSinks{
		CSVPath:  filepath.Join(dir, "results.csv"),
		JSONPath: filepath.Join(dir, "results.json"),
	}

	err := finishMonitor(context.Background(), fetcher, outcomeCompleted, job, nil, sinks)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls, "both sinks share a single fetch")

	f, err := os.Open(sinks.CSVPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus one row per result")

	data, err := os.ReadFile(sinks.JSONPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "extract system prompt")
}

func TestFinishMonitorFailedJob(t *testing.T) {
	fetcher := &countingFetcher{}
	job := snapshot(client.StatusFailed, 40, 100)

	err := finishMonitor(context.Background(), fetcher, outcomeFailed, job, errors.New("target unavailable"), exportSinks{})

	require.Error(t, err)
	assert.Equal(t, ExitJobFailed, ExitCode(err))
	assert.Equal(t, 1, fetcher.calls, "a failed job still gets its partial results fetched")
}

func TestFinishMonitorNoFetchForLocalOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		outcome  attachOutcome
		wantCode int
	}{
		{"interrupted", outcomeInterrupted, ExitStopped},
		{"timeout", outcomeTimeout, ExitStopped},
		{"cancelled", outcomeCancelled, ExitJobFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &countingFetcher{}
			job := snapshot(client.StatusRunning, 40, 100)

			err := finishMonitor(context.Background(), fetcher, tt.outcome, job, nil, exportSinks{})

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.Zero(t, fetcher.calls, "no results fetch for a job that did not finish")
		})
	}
}

func TestFinishMonitorUnreachable(t *testing.T) {
	fetcher := &countingFetcher{}
	job := snapshot(client.StatusRunning, 40, 100)
	cause := errors.New("lost contact with server after 3 attempts: connection refused")

	err := finishMonitor(context.Background(), fetcher, outcomeUnreachable, job, cause, exportSinks{})

	require.Error(t, err)
	assert.Equal(t, ExitClientError, ExitCode(err))
	assert.Zero(t, fetcher.calls)
}

func TestFinishMonitorFetchErrorSurfaces(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("boom")}
	job := snapshot(client.StatusCompleted, 100, 100)

	err := finishMonitor(context.Background(), fetcher, outcomeCompleted, job, nil, exportSinks{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch results")
	assert.Equal(t, ExitClientError, ExitCode(err))
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitClientError, ExitCode(errors.New("plain error")))
	assert.Equal(t, ExitJobFailed, ExitCode(withExitCode(ExitJobFailed, errors.New("job failed"))))
	assert.Equal(t, ExitStopped, ExitCode(withExitCode(ExitStopped, errors.New("detached"))))

	wrapped := withExitCode(ExitStopped, errors.New("detached"))
	assert.EqualError(t, wrapped, "detached")
	assert.EqualError(t, errors.Unwrap(wrapped), "detached")
}

func TestTerminalOutcome(t *testing.T) {
	tests := []struct {
		status  client.JobStatus
		outcome attachOutcome
	}{
		{client.StatusCompleted, outcomeCompleted},
		{client.StatusFailed, outcomeFailed},
		{client.StatusError, outcomeFailed},
		{client.StatusCancelled, outcomeCancelled},
	}
	for _, tt := range tests {
		job := snapshot(tt.status, 100, 100)
		job.UpdatedAt = &job.CreatedAt
		assert.Equal(t, tt.outcome, terminalOutcome(job), "status %s", tt.status)
	}
}
