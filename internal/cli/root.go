// Package cli provides the command-line interface for the ga-red tool.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/generalanalysis/redit-cli/internal/config"
	"github.com/spf13/cobra"
)

// Exit codes reported by the ga-red binary. A completed job exits 0;
// a failed job, a locally stopped wait, and a client error each get a
// distinct code so scripts can tell them apart.
const (
	ExitOK          = 0
	ExitClientError = 1
	ExitJobFailed   = 2
	ExitStopped     = 3 // interrupted or max-wait timeout
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and API client
	cfg       config.Config
	apiClient *client.Client

	logCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ga-red",
	Short: "Manage and execute adversarial attacks",
	Long: `ga-red is the command-line interface for the REDit server.

Submit attack jobs from YAML configurations, monitor their progress,
and retrieve or export results.

Common workflows:
  1. Run an attack:        ga-red run config.yaml
  2. Watch a running job:  ga-red jobs attach <id>
  3. Get results:          ga-red results <id>
  4. Export results:       ga-red results <id> --csv output.csv
  5. List datasets:        ga-red datasets list
  6. View algorithms:      ga-red algorithms list`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, cleanup := config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)
		logCleanup = cleanup

		if cfg.APIKey == "" {
			fmt.Fprintln(os.Stderr, "Warning: GA_KEY environment variable not set")
			fmt.Fprintln(os.Stderr, "Set it with: export GA_KEY=your_api_key")
		}

		apiClient = client.New(cfg.ServerURL, cfg.APIKey, cfg.RequestTimeout)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ga-red version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ga-red %s\n", Version)
	},
}

// exitCodeError carries a specific process exit code up to main.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }
func (e *exitCodeError) Unwrap() error { return e.err }

// withExitCode wraps err so that ExitCode reports code for it.
func withExitCode(code int, err error) error {
	return &exitCodeError{code: code, err: err}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec *exitCodeError
	if errors.As(err, &ec) {
		return ec.code
	}
	return ExitClientError
}

// Execute runs the root command and returns its error, if any.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(versionCmd)
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}
