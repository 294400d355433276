package cli

import (
	"context"
	"fmt"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/generalanalysis/redit-cli/internal/export"
	"github.com/spf13/cobra"
)

var (
	resultsCSVPath    string
	resultsJSON       bool
	resultsSummary    bool
	resultsSuccessful bool
	resultsFailed     bool
)

var resultsCmd = &cobra.Command{
	Use:   "results [job-id]",
	Short: "Get and export job results",
	Long: `Retrieve and export the results of an attack job.

Without a job ID an interactive picker is shown (requires a terminal).
Results fetched before the job is terminal are partial and may grow.

Examples:
  ga-red results                      # select job interactively
  ga-red results 42                   # view results for job 42
  ga-red results 42 --csv out.csv     # export to CSV
  ga-red results 42 --json            # output as JSON
  ga-red results 42 --successful      # only successful attacks`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResults,
}

func init() {
	resultsCmd.Flags().StringVarP(&resultsCSVPath, "csv", "c", "", "export results to a CSV file")
	resultsCmd.Flags().BoolVarP(&resultsJSON, "json", "j", false, "output results as JSON")
	resultsCmd.Flags().BoolVarP(&resultsSummary, "summary", "s", false, "show summary only")
	resultsCmd.Flags().BoolVar(&resultsSuccessful, "successful", false, "show only successful attacks")
	resultsCmd.Flags().BoolVar(&resultsFailed, "failed", false, "show only failed attacks")
	resultsCmd.MarkFlagsMutuallyExclusive("successful", "failed")
	rootCmd.AddCommand(resultsCmd)
}

func runResults(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var id int64
	if len(args) == 1 {
		parsed, err := parseJobID(args[0])
		if err != nil {
			return err
		}
		id = parsed
	} else {
		if !isTerminal() {
			return fmt.Errorf("%w: job ID required when not running interactively", client.ErrValidation)
		}
		resolved, err := resolveJobID(ctx)
		if err != nil {
			return err
		}
		id = resolved
	}

	filter := client.FilterAll
	switch {
	case resultsSuccessful:
		filter = client.FilterSuccessful
	case resultsFailed:
		filter = client.FilterFailed
	}

	res, err := apiClient.GetResults(ctx, id, filter)
	if err != nil {
		return fmt.Errorf("fetch results: %w", err)
	}
	job := res.Job
	if job.ID == 0 {
		job.ID = id
	}

	if resultsCSVPath != "" {
		if err := export.WriteCSV(resultsCSVPath, &job, res.Results); err != nil {
			return err
		}
		fmt.Printf("Exported %d results to %s\n", len(res.Results), resultsCSVPath)
		return nil
	}

	if resultsJSON {
		return printJSON(res)
	}

	if len(res.Results) == 0 {
		fmt.Println("No results found for this job")
		return nil
	}

	if resultsSummary {
		displayResultsSummary(&job, res.Results)
		return nil
	}
	displayFullResults(&job, res.Results)
	return nil
}

// displayResultsSummary prints aggregate statistics and a sample of
// successful attacks.
func displayResultsSummary(job *client.Job, results []client.AttackResult) {
	total := len(results)
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}

	fmt.Printf("\nResults for job #%d (%s)\n", job.ID, statusLabel(job.Status))
	if job.Description != "" {
		fmt.Printf("  Description: %s\n", job.Description)
	}
	fmt.Printf("  Total attacks: %d\n", total)
	if total > 0 {
		fmt.Printf("  Successful: %d (%.1f%%)\n", successful, float64(successful)/float64(total)*100)
		fmt.Printf("  Failed: %d (%.1f%%)\n", total-successful, float64(total-successful)/float64(total)*100)
	}
	if job.ASR != nil {
		fmt.Printf("  Overall ASR: %s\n", formatASR(job.ASR))
	}

	shown := 0
	for _, r := range results {
		if !r.Success {
			continue
		}
		if shown == 0 {
			fmt.Println("\nSample successful attacks:")
		}
		shown++
		fmt.Printf("  %d. %s\n", shown, truncate(r.Objective, 60))
		if r.Payload != "" {
			fmt.Printf("     Payload: %s\n", truncate(r.Payload, 60))
		}
		if shown == 3 {
			break
		}
	}
}

// displayFullResults prints every result.
func displayFullResults(job *client.Job, results []client.AttackResult) {
	displayResultsSummary(job, results)

	fmt.Printf("\nIndividual results (%d):\n", len(results))
	for i, r := range results {
		mark := defaultTheme.errorStyle().Render("✗")
		if r.Success {
			mark = defaultTheme.successStyle().Render("✓")
		}
		fmt.Printf("\n%d. %s %s\n", i+1, mark, truncate(r.Objective, 100))
		if r.Payload != "" {
			fmt.Printf("   Payload: %s\n", truncate(r.Payload, 100))
		}
		if r.Output != "" {
			fmt.Printf("   Output: %s\n", truncate(r.Output, 100))
		}
		if len(r.Trajectory) > 0 {
			fmt.Printf("   Trajectory: %d step(s)\n", len(r.Trajectory))
		}
	}
}
