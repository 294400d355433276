package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage attack jobs",
	Long: `List, inspect, delete, and monitor attack jobs on the REDit server.

Examples:
  ga-red jobs list
  ga-red jobs list --status running
  ga-red jobs get 42 --results
  ga-red jobs status 42
  ga-red jobs attach 42 --interval 2
  ga-red jobs delete 42`,
}

var (
	jobsListStatus string
	jobsListLimit  int
	jobsListJSON   bool
)

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all jobs",
	RunE:  runJobsList,
}

var (
	jobsGetResults bool
	jobsGetJSON    bool
)

var jobsGetCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Get job details",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsGet,
}

var jobsStatusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Get a quick job status",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobsStatus,
}

var (
	jobsDeleteAll   bool
	jobsDeleteForce bool
)

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete [job-id]",
	Short: "Delete job(s)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runJobsDelete,
}

var (
	attachInterval int
	attachMaxWait  time.Duration
	attachCSVPath  string
	attachJSONPath string
)

var jobsAttachCmd = &cobra.Command{
	Use:   "attach [job-id]",
	Short: "Attach to a running job and monitor its progress",
	Long: `Attach to a job and poll its status until it finishes.

Without a job ID the most recent job is selected (interactively on a
terminal). On completion or failure the job's results are fetched and
exported; Ctrl+C detaches without touching the job.

Examples:
  ga-red jobs attach 42
  ga-red jobs attach 42 --interval 2
  ga-red jobs attach 42 --max-wait 30m --export-csv results.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobsAttach,
}

func init() {
	jobsListCmd.Flags().StringVarP(&jobsListStatus, "status", "s", "", "filter by status (pending, running, completed, failed, cancelled)")
	jobsListCmd.Flags().IntVarP(&jobsListLimit, "limit", "l", 0, "limit number of jobs to display")
	jobsListCmd.Flags().BoolVar(&jobsListJSON, "json", false, "output as JSON")

	jobsGetCmd.Flags().BoolVarP(&jobsGetResults, "results", "r", false, "include results")
	jobsGetCmd.Flags().BoolVar(&jobsGetJSON, "json", false, "output as JSON")

	jobsDeleteCmd.Flags().BoolVar(&jobsDeleteAll, "all", false, "delete all jobs")
	jobsDeleteCmd.Flags().BoolVarP(&jobsDeleteForce, "force", "f", false, "skip confirmation")

	jobsAttachCmd.Flags().IntVarP(&attachInterval, "interval", "i", 5, "status check interval in seconds")
	jobsAttachCmd.Flags().DurationVar(&attachMaxWait, "max-wait", 0, "give up waiting after this duration (0 = wait forever)")
	jobsAttachCmd.Flags().StringVar(&attachCSVPath, "export-csv", "", "export results to a CSV file when the job finishes")
	jobsAttachCmd.Flags().StringVar(&attachJSONPath, "export-json", "", "export results to a JSON file when the job finishes")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsGetCmd)
	jobsCmd.AddCommand(jobsStatusCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	jobsCmd.AddCommand(jobsAttachCmd)
	rootCmd.AddCommand(jobsCmd)
}

func runJobsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	jobs, err := apiClient.ListJobs(ctx, client.ListJobsFilter{
		Status: client.JobStatus(jobsListStatus),
		Limit:  jobsListLimit,
	})
	if err != nil {
		return fmt.Errorf("list jobs: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	if jobsListJSON {
		return printJSON(jobs)
	}

	fmt.Printf("%-8s %-12s %-34s %-10s %-8s %s\n", "ID", "STATUS", "DESCRIPTION", "PROGRESS", "ASR", "CREATED")
	fmt.Println("--------------------------------------------------------------------------------------------")
	for _, job := range jobs {
		fmt.Printf("%-8d %-12s %-34s %-10s %-8s %s\n",
			job.ID,
			job.Status,
			truncate(job.Description, 30),
			formatProgress(job.CompletedObjectives, job.TotalObjectives),
			formatASR(job.ASR),
			formatTime(job.CreatedAt))
	}

	// Status breakdown
	counts := map[client.JobStatus]int{}
	for _, job := range jobs {
		counts[job.Status]++
	}
	fmt.Printf("\n%d job(s):", len(jobs))
	for _, s := range []client.JobStatus{client.StatusPending, client.StatusRunning, client.StatusCompleted, client.StatusFailed, client.StatusError, client.StatusCancelled} {
		if counts[s] > 0 {
			fmt.Printf(" %s %d", statusLabel(s), counts[s])
		}
	}
	fmt.Println()

	return nil
}

func runJobsGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	if jobsGetResults {
		res, err := apiClient.GetResults(ctx, id, client.FilterAll)
		if err != nil {
			return fmt.Errorf("get job results: %w", err)
		}
		if jobsGetJSON {
			return printJSON(res)
		}
		displayJob(&res.Job)
		displayResultsSummary(&res.Job, res.Results)
		return nil
	}

	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if jobsGetJSON {
		return printJSON(job)
	}
	displayJob(job)
	return nil
}

func runJobsStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	fmt.Printf("Job #%d: %s\n", job.ID, statusLabel(job.Status))
	fmt.Printf("  Progress: %s objectives\n", formatProgress(job.CompletedObjectives, job.TotalObjectives))
	if job.ASR != nil {
		fmt.Printf("  ASR: %s\n", formatASR(job.ASR))
	}
	return nil
}

func runJobsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if jobsDeleteAll {
		if !jobsDeleteForce && !confirm("Are you sure you want to delete ALL jobs?") {
			fmt.Println("Cancelled")
			return nil
		}
		if err := apiClient.DeleteAllJobs(ctx); err != nil {
			return fmt.Errorf("delete all jobs: %w", err)
		}
		fmt.Println("All jobs deleted")
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("%w: specify a job ID or use --all", client.ErrValidation)
	}
	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	if !jobsDeleteForce && !confirm(fmt.Sprintf("Are you sure you want to delete job #%d?", id)) {
		fmt.Println("Cancelled")
		return nil
	}
	if err := apiClient.DeleteJob(ctx, id); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	fmt.Printf("Job #%d deleted\n", id)
	return nil
}

func runJobsAttach(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var id int64
	if len(args) == 1 {
		parsed, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		id = parsed
	} else {
		resolved, err := resolveJobID(ctx)
		if err != nil {
			return err
		}
		id = resolved
	}

	// Validate the job exists before entering the loop.
	job, err := apiClient.GetJob(ctx, id)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	sinks := exportSinks{CSVPath: attachCSVPath, JSONPath: attachJSONPath}

	// Already-terminal jobs skip the loop and go straight to the
	// exporter (or a notice, for cancelled jobs).
	if job.Status.Terminal() {
		fmt.Printf("Job %d is already %s\n", job.ID, job.Status)
		return finishMonitor(ctx, apiClient, terminalOutcome(job), job, nil, sinks)
	}

	interval := time.Duration(attachInterval) * time.Second
	fmt.Printf("Attaching to job %d (polling every %s)\n", job.ID, interval)

	outcome, job, monitorErr := runMonitor(apiClient, job, interval, attachMaxWait)
	return finishMonitor(ctx, apiClient, outcome, job, monitorErr, sinks)
}

// terminalOutcome maps a terminal job status to the monitor outcome it
// would have produced.
func terminalOutcome(job *client.Job) attachOutcome {
	switch {
	case job.Status == client.StatusCompleted:
		return outcomeCompleted
	case job.Status.Failure():
		return outcomeFailed
	default:
		return outcomeCancelled
	}
}

// resolveJobID picks a job when none was given: interactively on a
// terminal, otherwise the most recently created job.
func resolveJobID(ctx context.Context) (int64, error) {
	jobs, err := apiClient.ListJobs(ctx, client.ListJobsFilter{})
	if err != nil {
		return 0, fmt.Errorf("list jobs: %w", err)
	}
	if len(jobs) == 0 {
		return 0, fmt.Errorf("%w: no jobs on the server", client.ErrNotFound)
	}

	if isTerminal() {
		return pickJob(jobs)
	}

	// Most recent job by creation time.
	latest := jobs[0]
	for _, j := range jobs[1:] {
		if j.CreatedAt.After(latest.CreatedAt) {
			latest = j
		}
	}
	return latest.ID, nil
}

func parseJobID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid job ID %q", client.ErrValidation, s)
	}
	return id, nil
}

// displayJob prints full job details.
func displayJob(job *client.Job) {
	fmt.Printf("Job #%d\n", job.ID)
	fmt.Printf("  Description: %s\n", job.Description)
	fmt.Printf("  Status: %s\n", statusLabel(job.Status))
	fmt.Printf("  Progress: %s objectives completed\n", formatProgress(job.CompletedObjectives, job.TotalObjectives))
	fmt.Printf("  ASR: %s\n", formatASR(job.ASR))
	if job.ErrorMessage != "" {
		fmt.Printf("  Error: %s\n", job.ErrorMessage)
	}
	fmt.Printf("  Created: %s\n", formatTime(job.CreatedAt))
	if job.UpdatedAt != nil {
		fmt.Printf("  Updated: %s\n", formatTime(*job.UpdatedAt))
	}
}
