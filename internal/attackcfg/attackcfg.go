// Package attackcfg loads and validates attack configuration files.
package attackcfg

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// File is a parsed attack configuration. The config section stays a
// loose map because its shape is algorithm-specific and owned by the
// server; only the well-known keys are checked here.
type File struct {
	Description string         `yaml:"description" json:"description"`
	Config      map[string]any `yaml:"config" json:"config"`
}

// Typed views of the well-known config keys, used for validation only.
type attackSection struct {
	Type   string         `mapstructure:"type"`
	Config map[string]any `mapstructure:"config"`
}

type modelSection struct {
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
}

type knownSections struct {
	Attack     *attackSection          `mapstructure:"attack"`
	Models     map[string]modelSection `mapstructure:"models"`
	Dataset    string                  `mapstructure:"dataset"`
	Objectives []string                `mapstructure:"objectives"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &f, nil
}

// Validate checks the structural requirements the server enforces on
// submission. Errors block a run; warnings don't.
func (f *File) Validate() (errs, warnings []string) {
	if len(f.Config) == 0 {
		return []string{"missing 'config' section"}, nil
	}

	var sections knownSections
	if err := mapstructure.Decode(f.Config, &sections); err != nil {
		return []string{fmt.Sprintf("malformed config section: %v", err)}, nil
	}

	if sections.Attack == nil {
		errs = append(errs, "missing 'attack' configuration")
	} else if sections.Attack.Type == "" {
		errs = append(errs, "missing attack type")
	}

	if sections.Models == nil {
		warnings = append(warnings, "missing 'models' configuration")
	} else {
		if _, ok := sections.Models["target"]; !ok {
			errs = append(errs, "missing target model configuration")
		}
		if _, ok := sections.Models["attacker"]; !ok {
			warnings = append(warnings, "missing attacker model configuration")
		}
	}

	if sections.Dataset == "" && len(sections.Objectives) == 0 {
		errs = append(errs, "must specify either 'objectives' or 'dataset'")
	}

	return errs, warnings
}

// AttackType returns the configured attack type, or "" if absent.
func (f *File) AttackType() string {
	var sections knownSections
	if err := mapstructure.Decode(f.Config, &sections); err != nil || sections.Attack == nil {
		return ""
	}
	return sections.Attack.Type
}

// TargetModel returns the configured target model name, or "" if absent.
func (f *File) TargetModel() string {
	var sections knownSections
	if err := mapstructure.Decode(f.Config, &sections); err != nil {
		return ""
	}
	target, ok := sections.Models["target"]
	if !ok {
		return ""
	}
	return target.Name
}
