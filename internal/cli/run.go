package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/generalanalysis/redit-cli/internal/attackcfg"
	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/spf13/cobra"
)

var (
	runMonitorFlag bool
	runWaitFlag    bool
	runInterval    int
	runMaxWait     time.Duration
	runJSON        bool
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run an attack from a configuration file",
	Long: `Submit an attack configuration to the REDit server for execution.

The configuration is validated locally before submission. With --monitor
the command attaches to the new job and shows live progress; with --wait
it polls quietly, printing one status line per check.

Examples:
  ga-red run configs/tap_basic.yaml
  ga-red run configs/tap_basic.yaml --monitor
  ga-red run configs/tap_basic.yaml --wait --interval 10
  ga-red run configs/tap_basic.yaml --monitor --max-wait 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runMonitorFlag, "monitor", "m", false, "monitor job status until completion")
	runCmd.Flags().BoolVarP(&runWaitFlag, "wait", "w", false, "wait for job completion without the interactive display")
	runCmd.Flags().IntVarP(&runInterval, "interval", "i", 5, "status check interval in seconds")
	runCmd.Flags().DurationVar(&runMaxWait, "max-wait", 0, "give up waiting after this duration (0 = wait forever)")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output job info as JSON")
	runCmd.MarkFlagsMutuallyExclusive("monitor", "wait")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	f, err := attackcfg.Load(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	if errs, _ := f.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "  • %s\n", e)
		}
		return fmt.Errorf("%w: configuration failed validation", client.ErrValidation)
	}

	abs, _ := filepath.Abs(args[0])
	fmt.Printf("Configuration loaded: %s\n", abs)
	fmt.Printf("  Description: %s\n", f.Description)
	if t := f.AttackType(); t != "" {
		fmt.Printf("  Attack type: %s\n", t)
	}
	if m := f.TargetModel(); m != "" {
		fmt.Printf("  Target model: %s\n", m)
	}

	fmt.Println("\nSubmitting job to server...")
	resp, err := apiClient.SubmitJob(ctx, client.SubmitJobRequest{
		Description: f.Description,
		Config:      f.Config,
	})
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}

	if runJSON {
		if err := printJSON(resp); err != nil {
			return err
		}
	} else {
		fmt.Println(defaultTheme.successStyle().Render("Job created successfully"))
		fmt.Printf("  Job ID: %d\n", resp.JobID)
		fmt.Printf("  Status: %s\n", resp.Status)
		if resp.DatasetUsed != "" {
			fmt.Printf("  Dataset: %s\n", resp.DatasetUsed)
		}
		if resp.TotalObjectives > 0 {
			fmt.Printf("  Objectives: %d\n", resp.TotalObjectives)
		}
	}

	interval := time.Duration(runInterval) * time.Second

	switch {
	case runMonitorFlag:
		job, err := apiClient.GetJob(ctx, resp.JobID)
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		fmt.Printf("\nMonitoring job %d (polling every %s)\n", job.ID, interval)
		outcome, job, monitorErr := runMonitor(apiClient, job, interval, runMaxWait)
		return finishMonitor(ctx, apiClient, outcome, job, monitorErr, exportSinks{})

	case runWaitFlag:
		fmt.Printf("\nWaiting for job %d (polling every %s, Ctrl+C to stop)\n", resp.JobID, interval)
		waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		outcome, job, monitorErr := pollUntilDone(waitCtx, apiClient, resp.JobID, interval, runMaxWait, os.Stdout)
		if job == nil {
			job = &client.Job{ID: resp.JobID, Status: resp.Status}
		}
		return finishMonitor(ctx, apiClient, outcome, job, monitorErr, exportSinks{})
	}

	fmt.Printf("\nUse 'ga-red jobs attach %d' to monitor progress\n", resp.JobID)
	return nil
}
