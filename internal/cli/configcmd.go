package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/generalanalysis/redit-cli/internal/attackcfg"
	"github.com/generalanalysis/redit-cli/internal/client"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with attack configuration files",
	Long: `Validate, inspect, convert, and scaffold attack configuration files.

Examples:
  ga-red config validate attack.yaml
  ga-red config show attack.yaml
  ga-red config convert attack.yaml attack.json
  ga-red config template tap -o tap.yaml`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Validate an attack configuration file",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigValidate,
}

var configShowJSON bool

var configShowCmd = &cobra.Command{
	Use:   "show <config>",
	Short: "Display a parsed attack configuration",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigShow,
}

var configConvertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a config between YAML and JSON",
	Long: `Convert a config between YAML and JSON. The direction is inferred
from the output file extension (.yaml, .yml, or .json).`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigConvert,
}

var configTemplateOutput string

var configTemplateCmd = &cobra.Command{
	Use:   "template <attack-type>",
	Short: "Generate a starter config for an attack type",
	Long: fmt.Sprintf(`Generate a starter config for an attack type.

Available templates: %s`, strings.Join(attackcfg.TemplateNames(), ", ")),
	Args: cobra.ExactArgs(1),
	RunE: runConfigTemplate,
}

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output as JSON")
	configTemplateCmd.Flags().StringVarP(&configTemplateOutput, "output", "o", "", "write the template to a file instead of stdout")

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configConvertCmd)
	configCmd.AddCommand(configTemplateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	f, err := attackcfg.Load(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	errs, warnings := f.Validate()

	for _, w := range warnings {
		fmt.Println(defaultTheme.warningStyle().Render("warning: " + w))
	}
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, defaultTheme.errorStyle().Render("error: "+e))
		}
		return fmt.Errorf("%w: config file %s has %d error(s)", client.ErrValidation, args[0], len(errs))
	}

	fmt.Println(defaultTheme.successStyle().Render("Config is valid"))
	if t := f.AttackType(); t != "" {
		fmt.Printf("  Attack type: %s\n", t)
	}
	if m := f.TargetModel(); m != "" {
		fmt.Printf("  Target model: %s\n", m)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	f, err := attackcfg.Load(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	if configShowJSON {
		return printJSON(f)
	}

	out, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigConvert(cmd *cobra.Command, args []string) error {
	input, output := args[0], args[1]

	f, err := attackcfg.Load(input)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	var data []byte
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(f)
	case ".json":
		data, err = json.MarshalIndent(f, "", "  ")
		data = append(data, '\n')
	default:
		return fmt.Errorf("%w: unsupported output extension %q (use .yaml, .yml, or .json)", client.ErrValidation, ext)
	}
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runConfigTemplate(cmd *cobra.Command, args []string) error {
	tpl, err := attackcfg.Template(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrValidation, err)
	}

	out, err := yaml.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}

	if configTemplateOutput == "" {
		fmt.Print(string(out))
		return nil
	}

	if err := os.WriteFile(configTemplateOutput, out, 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	fmt.Printf("Template written to %s\n", configTemplateOutput)
	fmt.Println(defaultTheme.hintStyle().Render("Edit the target model and dataset, then run 'ga-red run " + configTemplateOutput + "'"))
	return nil
}
