package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollUntilDoneCompletes(t *testing.T) {
	getter := &scriptedGetter{responses: []jobUpdateMsg{
		{job: snapshot(client.StatusPending, 0, 100)},
		{job: snapshot(client.StatusRunning, 30, 100)},
		{job: snapshot(client.StatusRunning, 70, 100)},
		{job: snapshot(client.StatusCompleted, 100, 100)},
	}}

	var out bytes.Buffer
	outcome, job, err := pollUntilDone(context.Background(), getter, 42, time.Millisecond, 0, &out)

	require.NoError(t, err)
	assert.Equal(t, outcomeCompleted, outcome)
	require.NotNil(t, job)
	assert.Equal(t, client.StatusCompleted, job.Status)
	assert.Equal(t, 4, getter.calls)

	assert.Contains(t, out.String(), "status: pending (0/100 objectives)")
	assert.Contains(t, out.String(), "status: running (30/100 objectives)")
	assert.Contains(t, out.String(), "status: running (70/100 objectives)")
	assert.Contains(t, out.String(), "status: completed (100/100 objectives)")
}

func TestPollUntilDoneFailedJob(t *testing.T) {
	failed := snapshot(client.StatusFailed, 20, 100)
	failed.ErrorMessage = "target model unavailable"
	getter := &scriptedGetter{responses: []jobUpdateMsg{{job: failed}}}

	var out bytes.Buffer
	outcome, job, err := pollUntilDone(context.Background(), getter, 42, time.Millisecond, 0, &out)

	assert.Equal(t, outcomeFailed, outcome)
	require.NotNil(t, job)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target model unavailable")
}

func TestPollUntilDoneCancelledContext(t *testing.T) {
	getter := &scriptedGetter{responses: []jobUpdateMsg{
		{job: snapshot(client.StatusRunning, 10, 100)},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	outcome, _, err := pollUntilDone(ctx, getter, 42, time.Hour, 0, &out)

	require.NoError(t, err)
	assert.Equal(t, outcomeInterrupted, outcome)
	assert.Zero(t, getter.calls, "a cancelled context stops polling before any fetch")
}

func TestPollUntilDoneMaxWait(t *testing.T) {
	getter := &scriptedGetter{responses: []jobUpdateMsg{
		{job: snapshot(client.StatusRunning, 10, 100)},
		{job: snapshot(client.StatusRunning, 20, 100)},
	}}

	var out bytes.Buffer
	outcome, _, err := pollUntilDone(context.Background(), getter, 42, 30*time.Millisecond, 50*time.Millisecond, &out)

	require.NoError(t, err)
	assert.Equal(t, outcomeTimeout, outcome)
	assert.LessOrEqual(t, getter.calls, 2)
}

func TestPollUntilDoneRetriesThenGivesUp(t *testing.T) {
	getter := &scriptedGetter{responses: []jobUpdateMsg{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
	}}

	var out bytes.Buffer
	outcome, _, err := pollUntilDone(context.Background(), getter, 42, time.Millisecond, 0, &out)

	assert.Equal(t, outcomeUnreachable, outcome)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lost contact with server after 3 attempts")
	assert.Equal(t, 3, getter.calls)
	assert.Contains(t, out.String(), "reconnecting (1/3)")
	assert.Contains(t, out.String(), "reconnecting (2/3)")
}

func TestPollUntilDoneFailureCounterResets(t *testing.T) {
	getter := &scriptedGetter{responses: []jobUpdateMsg{
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{job: snapshot(client.StatusRunning, 10, 100)},
		{err: errors.New("connection refused")},
		{err: errors.New("connection refused")},
		{job: snapshot(client.StatusCompleted, 100, 100)},
	}}

	var out bytes.Buffer
	outcome, _, err := pollUntilDone(context.Background(), getter, 42, time.Millisecond, 0, &out)

	require.NoError(t, err)
	assert.Equal(t, outcomeCompleted, outcome, "interleaved failures below the limit never abort the wait")
	assert.Equal(t, 6, getter.calls)
}
