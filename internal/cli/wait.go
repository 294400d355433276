package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/generalanalysis/redit-cli/internal/client"
)

// pollUntilDone is the plain, non-interactive monitor used by
// `run --wait`: sleep, poll, print a status line, repeat until the job
// is terminal, the context is cancelled, or the max wait elapses.
// It applies the same bounded-retry policy as the interactive monitor
// and performs exactly one request at a time.
func pollUntilDone(ctx context.Context, c jobGetter, jobID int64, interval, maxWait time.Duration, out io.Writer) (attachOutcome, *client.Job, error) {
	if interval <= 0 {
		interval = defaultAttachInterval
	}

	start := time.Now()
	timer := time.NewTimer(interval)
	defer timer.Stop()

	var job *client.Job
	failures := 0

	for {
		select {
		case <-ctx.Done():
			return outcomeInterrupted, job, nil
		case <-timer.C:
		}

		if maxWait > 0 && time.Since(start) >= maxWait {
			return outcomeTimeout, job, nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		snapshot, err := c.GetJob(fetchCtx, jobID)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return outcomeInterrupted, job, nil
			}
			failures++
			if failures >= maxConsecutiveFailures {
				return outcomeUnreachable, job,
					fmt.Errorf("lost contact with server after %d attempts: %w", failures, err)
			}
			fmt.Fprintf(out, "[%s] reconnecting (%d/%d)...\n",
				time.Now().Format("15:04:05"), failures, maxConsecutiveFailures)
			timer.Reset(interval)
			continue
		}

		failures = 0
		job = snapshot

		fmt.Fprintf(out, "[%s] status: %s (%s objectives)\n",
			time.Now().Format("15:04:05"), job.Status,
			formatProgress(job.CompletedObjectives, job.TotalObjectives))

		switch {
		case job.Status == client.StatusCompleted:
			return outcomeCompleted, job, nil
		case job.Status.Failure():
			var jobErr error
			if job.ErrorMessage != "" {
				jobErr = fmt.Errorf("%s", job.ErrorMessage)
			}
			return outcomeFailed, job, jobErr
		case job.Status == client.StatusCancelled:
			return outcomeCancelled, job, nil
		}

		timer.Reset(interval)
	}
}
