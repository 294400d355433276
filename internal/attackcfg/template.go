package attackcfg

import (
	"fmt"
	"sort"
	"strings"
)

// templates holds the starter configuration for each attack type.
var templates = map[string]*File{
	"tap": {
		Description: "TAP attack configuration template",
		Config: map[string]any{
			"attack": map[string]any{
				"type": "TAP",
				"config": map[string]any{
					"branching_factor":     2,
					"sub_branching_factor": 2,
					"max_depth":            3,
					"max_width":            5,
					"score_threshold":      8.0,
				},
			},
			"target":    map[string]any{"type": "SimpleLLMTarget"},
			"scorer":    map[string]any{"type": "RubricBasedScorer"},
			"evaluator": map[string]any{"type": "AdversarialEvaluator", "use_agentic": false},
			"models": map[string]any{
				"target":    map[string]any{"name": "gpt-4o", "temperature": 0},
				"attacker":  map[string]any{"name": "together_ai/deepseek-ai/DeepSeek-R1", "temperature": 0},
				"evaluator": map[string]any{"name": "together_ai/meta-llama/Llama-3.3-70B-Instruct-Turbo", "temperature": 0},
			},
			"dataset":      "your-dataset-name",
			"save_results": true,
			"output_path":  "results/tap_results.json",
		},
	},
	"gcg": {
		Description: "GCG attack configuration template",
		Config: map[string]any{
			"attack": map[string]any{
				"type": "GCG",
				"config": map[string]any{
					"num_steps":    500,
					"batch_size":   512,
					"topk":         256,
					"search_width": 512,
				},
			},
			"target": map[string]any{"type": "SimpleLLMTarget"},
			"models": map[string]any{
				"target": map[string]any{"name": "gpt-3.5-turbo", "temperature": 0},
			},
			"objectives":   []string{"Your objective here"},
			"save_results": true,
			"output_path":  "results/gcg_results.json",
		},
	},
	"pair": {
		Description: "PAIR attack configuration template",
		Config: map[string]any{
			"attack": map[string]any{
				"type": "PAIR",
				"config": map[string]any{
					"max_iterations":          20,
					"max_conversation_length": 10,
				},
			},
			"target": map[string]any{"type": "SimpleLLMTarget"},
			"models": map[string]any{
				"target":   map[string]any{"name": "gpt-4o", "temperature": 0},
				"attacker": map[string]any{"name": "gpt-4o", "temperature": 0.7},
			},
			"objectives":   []string{"Your objective here"},
			"save_results": true,
			"output_path":  "results/pair_results.json",
		},
	},
	"basic": {
		Description: "Basic attack configuration template",
		Config: map[string]any{
			"attack": map[string]any{
				"type":   "SimpleAttack",
				"config": map[string]any{},
			},
			"target": map[string]any{"type": "SimpleLLMTarget"},
			"models": map[string]any{
				"target": map[string]any{"name": "gpt-3.5-turbo", "temperature": 0},
			},
			"objectives":   []string{"Your objective here"},
			"save_results": true,
			"output_path":  "results/basic_results.json",
		},
	},
}

// Template returns the starter configuration for an attack type.
func Template(attackType string) (*File, error) {
	tpl, ok := templates[strings.ToLower(attackType)]
	if !ok {
		return nil, fmt.Errorf("unknown attack type %q (available: %s)",
			attackType, strings.Join(TemplateNames(), ", "))
	}
	return tpl, nil
}

// TemplateNames lists the available template names, sorted.
func TemplateNames() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
