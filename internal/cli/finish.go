package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/generalanalysis/redit-cli/internal/export"
)

// resultsFetcher is the single client call the post-monitor export needs.
type resultsFetcher interface {
	GetResults(ctx context.Context, id int64, filter client.ResultFilter) (*client.JobResults, error)
}

// exportSinks selects where results go after a monitored job finishes.
// With no paths set, a summary is rendered to stdout.
type exportSinks struct {
	CSVPath  string
	JSONPath string
}

// finishMonitor turns a monitor outcome into user-facing output, a
// result export where appropriate, and the process exit code. Results
// are fetched only for completed and failed jobs, and exactly once.
func finishMonitor(ctx context.Context, fetcher resultsFetcher, outcome attachOutcome, job *client.Job, monitorErr error, sinks exportSinks) error {
	switch outcome {
	case outcomeCompleted:
		fmt.Println(defaultTheme.successStyle().Render("✓ Job completed successfully"))
		printJobSummary(job)
		if err := exportResults(ctx, fetcher, job, sinks); err != nil {
			return err
		}
		return nil

	case outcomeFailed:
		fmt.Println(defaultTheme.errorStyle().Render(fmt.Sprintf("✗ Job ended with status: %s", job.Status)))
		if monitorErr != nil {
			fmt.Printf("  Error: %s\n", monitorErr)
		}
		printJobSummary(job)
		if err := exportResults(ctx, fetcher, job, sinks); err != nil {
			return err
		}
		return withExitCode(ExitJobFailed, fmt.Errorf("job %d %s", job.ID, job.Status))

	case outcomeCancelled:
		fmt.Println(defaultTheme.warningStyle().Render(fmt.Sprintf("Job %d was cancelled", job.ID)))
		return withExitCode(ExitJobFailed, fmt.Errorf("job %d cancelled", job.ID))

	case outcomeInterrupted:
		fmt.Println(defaultTheme.hintStyle().Render(
			fmt.Sprintf("\nDetached from job %d; it is still running in the background.", job.ID)))
		fmt.Println(defaultTheme.hintStyle().Render(
			fmt.Sprintf("Use 'ga-red jobs attach %d' to re-attach or 'ga-red jobs status %d' to check on it.", job.ID, job.ID)))
		return withExitCode(ExitStopped, fmt.Errorf("detached from job %d", job.ID))

	case outcomeTimeout:
		fmt.Println(defaultTheme.warningStyle().Render(
			fmt.Sprintf("Gave up waiting for job %d; it is still running in the background.", job.ID)))
		return withExitCode(ExitStopped, fmt.Errorf("max wait exceeded for job %d", job.ID))

	case outcomeUnreachable:
		return withExitCode(ExitClientError, monitorErr)

	default:
		if monitorErr != nil {
			return monitorErr
		}
		return errors.New("monitor ended without an outcome")
	}
}

// exportResults fetches the job's results once and writes them to the
// configured sinks, defaulting to a stdout summary.
func exportResults(ctx context.Context, fetcher resultsFetcher, job *client.Job, sinks exportSinks) error {
	res, err := fetcher.GetResults(ctx, job.ID, client.FilterAll)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}

	if sinks.CSVPath != "" {
		if err := export.WriteCSV(sinks.CSVPath, job, res.Results); err != nil {
			return err
		}
		fmt.Printf("Exported %d results to %s\n", len(res.Results), sinks.CSVPath)
	}
	if sinks.JSONPath != "" {
		if err := export.WriteJSON(sinks.JSONPath, res.Results); err != nil {
			return err
		}
		fmt.Printf("Exported %d results to %s\n", len(res.Results), sinks.JSONPath)
	}
	if sinks.CSVPath == "" && sinks.JSONPath == "" {
		displayResultsSummary(job, res.Results)
	}
	return nil
}

// printJobSummary prints the final state of a monitored job.
func printJobSummary(job *client.Job) {
	fmt.Printf("  Objectives: %s\n", formatProgress(job.CompletedObjectives, job.TotalObjectives))
	if job.ASR != nil {
		fmt.Printf("  ASR: %s\n", formatASR(job.ASR))
	}
	fmt.Printf("  Started: %s\n", formatTime(job.CreatedAt))
	if job.UpdatedAt != nil {
		fmt.Printf("  Ended: %s\n", formatTime(*job.UpdatedAt))
	}
}
