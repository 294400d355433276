package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var algorithmsCmd = &cobra.Command{
	Use:     "algorithms",
	Aliases: []string{"algos"},
	Short:   "Browse available attack algorithms",
	Long: `Browse the attack algorithms supported by the server.

Examples:
  ga-red algorithms list
  ga-red algorithms get tap`,
}

var algorithmsListJSON bool

var algorithmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available attack algorithms",
	RunE:  runAlgorithmsList,
}

var algorithmsGetJSON bool

var algorithmsGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Get details for an attack algorithm",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlgorithmsGet,
}

func init() {
	algorithmsListCmd.Flags().BoolVar(&algorithmsListJSON, "json", false, "output as JSON")
	algorithmsGetCmd.Flags().BoolVar(&algorithmsGetJSON, "json", false, "output as JSON")

	algorithmsCmd.AddCommand(algorithmsListCmd)
	algorithmsCmd.AddCommand(algorithmsGetCmd)
	rootCmd.AddCommand(algorithmsCmd)
}

func runAlgorithmsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	algos, err := apiClient.ListAlgorithms(ctx)
	if err != nil {
		return fmt.Errorf("list algorithms: %w", err)
	}

	if len(algos) == 0 {
		fmt.Println("No attack algorithms available")
		return nil
	}

	if algorithmsListJSON {
		return printJSON(algos)
	}

	fmt.Printf("%-16s %s\n", "NAME", "DESCRIPTION")
	fmt.Println("--------------------------------------------------------------------------")
	for _, a := range algos {
		fmt.Printf("%-16s %s\n", a.Name, truncate(a.Description, 70))
	}
	fmt.Printf("\n%d algorithm(s)\n", len(algos))
	fmt.Println(defaultTheme.hintStyle().Render("Use 'ga-red config template <name>' to scaffold a config for an algorithm"))
	return nil
}

func runAlgorithmsGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	algo, err := apiClient.GetAlgorithm(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get algorithm: %w", err)
	}

	if algorithmsGetJSON {
		return printJSON(algo)
	}

	fmt.Printf("Algorithm: %s\n", algo.Name)
	if algo.Description != "" {
		fmt.Printf("  %s\n", algo.Description)
	}

	if len(algo.Parameters) > 0 {
		names := make([]string, 0, len(algo.Parameters))
		for name := range algo.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Println("\nParameters:")
		for _, name := range names {
			fmt.Printf("  %s: %v\n", name, algo.Parameters[name])
		}
	}
	return nil
}
