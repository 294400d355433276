package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Manage datasets and their entries",
	Long: `Manage the datasets of attack objectives stored on the server.

Examples:
  ga-red datasets list
  ga-red datasets get harmful-behaviors
  ga-red datasets create my-dataset --entries-file entries.json
  ga-red datasets entries my-dataset --limit 20 --offset 40
  ga-red datasets add-entries my-dataset more-entries.json
  ga-red datasets delete my-dataset`,
}

var datasetsListJSON bool

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all datasets",
	RunE:  runDatasetsList,
}

var (
	datasetsGetJSON        bool
	datasetsGetEntriesOnly bool
)

var datasetsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get dataset details and entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsGet,
}

var (
	datasetsCreateDescription string
	datasetsCreateEntriesFile string
)

var datasetsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsCreate,
}

var datasetsDeleteForce bool

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsDelete,
}

var (
	datasetsEntriesLimit  int
	datasetsEntriesOffset int
	datasetsEntriesJSON   bool
)

var datasetsEntriesCmd = &cobra.Command{
	Use:   "entries <name>",
	Short: "View dataset entries with pagination",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsEntries,
}

var datasetsAddEntriesCmd = &cobra.Command{
	Use:   "add-entries <name> <entries.json>",
	Short: "Add entries to an existing dataset",
	Args:  cobra.ExactArgs(2),
	RunE:  runDatasetsAddEntries,
}

func init() {
	datasetsListCmd.Flags().BoolVar(&datasetsListJSON, "json", false, "output as JSON")

	datasetsGetCmd.Flags().BoolVar(&datasetsGetJSON, "json", false, "output as JSON")
	datasetsGetCmd.Flags().BoolVar(&datasetsGetEntriesOnly, "entries-only", false, "show only entries, not dataset metadata")

	datasetsCreateCmd.Flags().StringVarP(&datasetsCreateDescription, "description", "d", "", "dataset description")
	datasetsCreateCmd.Flags().StringVar(&datasetsCreateEntriesFile, "entries-file", "", "JSON file with initial entries (array of {prompt, goal} objects)")

	datasetsDeleteCmd.Flags().BoolVarP(&datasetsDeleteForce, "force", "f", false, "skip confirmation")

	datasetsEntriesCmd.Flags().IntVarP(&datasetsEntriesLimit, "limit", "l", 0, "number of entries to display")
	datasetsEntriesCmd.Flags().IntVarP(&datasetsEntriesOffset, "offset", "o", 0, "number of entries to skip")
	datasetsEntriesCmd.Flags().BoolVar(&datasetsEntriesJSON, "json", false, "output as JSON")

	datasetsCmd.AddCommand(datasetsListCmd)
	datasetsCmd.AddCommand(datasetsGetCmd)
	datasetsCmd.AddCommand(datasetsCreateCmd)
	datasetsCmd.AddCommand(datasetsDeleteCmd)
	datasetsCmd.AddCommand(datasetsEntriesCmd)
	datasetsCmd.AddCommand(datasetsAddEntriesCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasetsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	datasets, err := apiClient.ListDatasets(ctx)
	if err != nil {
		return fmt.Errorf("list datasets: %w", err)
	}

	if len(datasets) == 0 {
		fmt.Println("No datasets found")
		return nil
	}

	if datasetsListJSON {
		return printJSON(datasets)
	}

	fmt.Printf("%-24s %-44s %-8s %s\n", "NAME", "DESCRIPTION", "SIZE", "CREATED")
	fmt.Println("------------------------------------------------------------------------------------------")
	for _, ds := range datasets {
		created := "N/A"
		if ds.CreatedAt != nil {
			created = formatTime(*ds.CreatedAt)
		}
		fmt.Printf("%-24s %-44s %-8d %s\n",
			truncate(ds.Name, 22), truncate(ds.Description, 40), ds.Size, created)
	}
	fmt.Printf("\n%d dataset(s)\n", len(datasets))
	return nil
}

func runDatasetsGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ds, err := apiClient.GetDataset(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get dataset: %w", err)
	}

	if datasetsGetJSON {
		return printJSON(ds)
	}

	if !datasetsGetEntriesOnly {
		fmt.Printf("Dataset: %s\n", ds.Name)
		fmt.Printf("  Description: %s\n", ds.Description)
		fmt.Printf("  Size: %d entries\n", ds.Size)
		if ds.CreatedAt != nil {
			fmt.Printf("  Created: %s\n", formatTime(*ds.CreatedAt))
		}
		if ds.UpdatedAt != nil {
			fmt.Printf("  Updated: %s\n", formatTime(*ds.UpdatedAt))
		}
	}

	if len(ds.Entries) == 0 {
		fmt.Println("\nNo entries")
		return nil
	}

	limit := 10
	if !datasetsGetEntriesOnly {
		limit = 3
	}
	fmt.Printf("\nEntries (%d total):\n", len(ds.Entries))
	for i, e := range ds.Entries {
		if i == limit {
			fmt.Printf("  ... and %d more entries\n", len(ds.Entries)-limit)
			fmt.Printf("  Use 'ga-red datasets entries %s' to see all entries\n", ds.Name)
			break
		}
		fmt.Printf("  %d. Goal: %s\n", i+1, truncate(e.Goal, 70))
		fmt.Printf("     Prompt: %s\n", truncate(e.Prompt, 100))
	}
	return nil
}

func runDatasetsCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	ds := client.Dataset{
		Name:        args[0],
		Description: datasetsCreateDescription,
	}

	if datasetsCreateEntriesFile != "" {
		entries, err := loadEntriesFile(datasetsCreateEntriesFile)
		if err != nil {
			return err
		}
		ds.Entries = entries
		fmt.Printf("Loaded %d entries from %s\n", len(entries), datasetsCreateEntriesFile)
	}

	created, err := apiClient.CreateDataset(ctx, ds)
	if err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}

	fmt.Printf("Dataset %q created with %d entries\n", created.Name, len(created.Entries))
	return nil
}

func runDatasetsDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	if !datasetsDeleteForce && !confirm(fmt.Sprintf("Delete dataset %q and all its entries?", name)) {
		fmt.Println("Cancelled")
		return nil
	}

	if err := apiClient.DeleteDataset(ctx, name); err != nil {
		return fmt.Errorf("delete dataset: %w", err)
	}
	fmt.Printf("Dataset %q deleted\n", name)
	return nil
}

func runDatasetsEntries(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	entries, err := apiClient.GetDatasetEntries(ctx, name, datasetsEntriesLimit, datasetsEntriesOffset)
	if err != nil {
		return fmt.Errorf("get dataset entries: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No entries found")
		return nil
	}

	if datasetsEntriesJSON {
		return printJSON(entries)
	}

	fmt.Printf("%-8s %-44s %s\n", "ID", "GOAL", "PROMPT")
	fmt.Println("----------------------------------------------------------------------------------------")
	for _, e := range entries {
		fmt.Printf("%-8d %-44s %s\n", e.ID, truncate(e.Goal, 40), truncate(e.Prompt, 50))
	}

	if datasetsEntriesLimit > 0 && len(entries) == datasetsEntriesLimit {
		fmt.Printf("\nUse --offset %d to see more entries\n", datasetsEntriesOffset+datasetsEntriesLimit)
	}
	return nil
}

func runDatasetsAddEntries(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	name := args[0]

	entries, err := loadEntriesFile(args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d entries from %s\n", len(entries), args[1])

	if err := apiClient.AddDatasetEntries(ctx, name, entries); err != nil {
		return fmt.Errorf("add entries: %w", err)
	}
	fmt.Printf("Added %d entries to dataset %q\n", len(entries), name)
	return nil
}

// loadEntriesFile reads a JSON array of {prompt, goal} objects.
func loadEntriesFile(path string) ([]client.DatasetEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read entries file: %v", client.ErrValidation, err)
	}

	var entries []client.DatasetEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: entries file must contain a JSON array: %v", client.ErrValidation, err)
	}
	if err := client.ValidateEntries(entries); err != nil {
		return nil, err
	}
	return entries, nil
}
