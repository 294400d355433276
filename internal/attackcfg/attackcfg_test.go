package attackcfg

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
description: test attack
config:
  attack:
    type: TAP
  models:
    target:
      name: gpt-4o
  dataset: harmful-behaviors
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if f.Description != "test attack" {
		t.Errorf("Description = %q, want %q", f.Description, "test attack")
	}
	if got := f.AttackType(); got != "TAP" {
		t.Errorf("AttackType() = %q, want TAP", got)
	}
	if got := f.TargetModel(); got != "gpt-4o" {
		t.Errorf("TargetModel() = %q, want gpt-4o", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected an error for a missing file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "config: [unclosed")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() expected an error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		file         File
		wantErrs     []string
		wantWarnings []string
	}{
		{
			name:     "no config section",
			file:     File{Description: "x"},
			wantErrs: []string{"missing 'config' section"},
		},
		{
			name: "no attack section",
			file: File{Config: map[string]any{
				"models":  map[string]any{"target": map[string]any{"name": "gpt-4o"}, "attacker": map[string]any{"name": "gpt-4o"}},
				"dataset": "d",
			}},
			wantErrs: []string{"missing 'attack' configuration"},
		},
		{
			name: "attack without type",
			file: File{Config: map[string]any{
				"attack":  map[string]any{"config": map[string]any{}},
				"models":  map[string]any{"target": map[string]any{"name": "gpt-4o"}, "attacker": map[string]any{"name": "gpt-4o"}},
				"dataset": "d",
			}},
			wantErrs: []string{"missing attack type"},
		},
		{
			name: "missing models warns",
			file: File{Config: map[string]any{
				"attack":  map[string]any{"type": "TAP"},
				"dataset": "d",
			}},
			wantWarnings: []string{"missing 'models' configuration"},
		},
		{
			name: "missing target model errors",
			file: File{Config: map[string]any{
				"attack":  map[string]any{"type": "TAP"},
				"models":  map[string]any{"attacker": map[string]any{"name": "gpt-4o"}},
				"dataset": "d",
			}},
			wantErrs: []string{"missing target model configuration"},
		},
		{
			name: "missing attacker model warns",
			file: File{Config: map[string]any{
				"attack":  map[string]any{"type": "TAP"},
				"models":  map[string]any{"target": map[string]any{"name": "gpt-4o"}},
				"dataset": "d",
			}},
			wantWarnings: []string{"missing attacker model configuration"},
		},
		{
			name: "neither dataset nor objectives",
			file: File{Config: map[string]any{
				"attack": map[string]any{"type": "TAP"},
				"models": map[string]any{"target": map[string]any{"name": "gpt-4o"}, "attacker": map[string]any{"name": "gpt-4o"}},
			}},
			wantErrs: []string{"must specify either 'objectives' or 'dataset'"},
		},
		{
			name: "objectives instead of dataset",
			file: File{Config: map[string]any{
				"attack":     map[string]any{"type": "TAP"},
				"models":     map[string]any{"target": map[string]any{"name": "gpt-4o"}, "attacker": map[string]any{"name": "gpt-4o"}},
				"objectives": []string{"obj"},
			}},
		},
		{
			name: "fully valid",
			file: File{Config: map[string]any{
				"attack":  map[string]any{"type": "TAP"},
				"models":  map[string]any{"target": map[string]any{"name": "gpt-4o"}, "attacker": map[string]any{"name": "gpt-4o"}},
				"dataset": "d",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, warnings := tt.file.Validate()
			if !reflect.DeepEqual(errs, tt.wantErrs) {
				t.Errorf("Validate() errs = %v, want %v", errs, tt.wantErrs)
			}
			if !reflect.DeepEqual(warnings, tt.wantWarnings) {
				t.Errorf("Validate() warnings = %v, want %v", warnings, tt.wantWarnings)
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	names := TemplateNames()
	want := []string{"basic", "gcg", "pair", "tap"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("TemplateNames() = %v, want %v", names, want)
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			tpl, err := Template(name)
			if err != nil {
				t.Fatalf("Template(%q) error = %v", name, err)
			}
			if tpl.AttackType() == "" {
				t.Errorf("template %q has no attack type", name)
			}

			// Every template must survive a YAML round trip and load as
			// a submittable config.
			data, err := yaml.Marshal(tpl)
			if err != nil {
				t.Fatalf("marshal template: %v", err)
			}
			path := writeConfig(t, string(data))
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("reload template: %v", err)
			}
			if errs, _ := loaded.Validate(); len(errs) > 0 {
				t.Errorf("template %q fails validation: %v", name, errs)
			}
		})
	}
}

func TestTemplateCaseInsensitive(t *testing.T) {
	if _, err := Template("TAP"); err != nil {
		t.Errorf("Template(TAP) error = %v", err)
	}
	if _, err := Template("nonexistent"); err == nil {
		t.Error("Template(nonexistent) expected an error")
	}
}
