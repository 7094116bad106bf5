// Package config loads the static configuration tables the pipeline is
// built with: the category mapping table, canonical display names, and
// tuning knobs.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mapping is the raw→canonical category table.
type Mapping struct {
	Categories map[string]string `yaml:"categories"`
}

// LoadMapping loads the category mapping table from a YAML file. The
// table must be idempotent: a canonical value may not itself be
// remapped to a different category.
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	for raw, canonical := range m.Categories {
		if canonical == "" {
			return nil, fmt.Errorf("config: category %q maps to empty canonical", raw)
		}
		if next, ok := m.Categories[canonical]; ok && next != canonical {
			return nil, fmt.Errorf("config: chained mapping %q -> %q -> %q", raw, canonical, next)
		}
	}
	return &m, nil
}

// DisplayNames carries the canonical display-name table and optional
// per-group descriptions, keyed by canonical category slug.
type DisplayNames struct {
	Names        map[string]string `yaml:"names"`
	Descriptions map[string]string `yaml:"descriptions"`
}

// LoadDisplayNames loads the display-name table from a YAML file.
func LoadDisplayNames(path string) (*DisplayNames, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d DisplayNames
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Tuning holds the run knobs; zero values fall back to the defaults
// applied by the components that consume them.
type Tuning struct {
	BatchSize         int     `yaml:"batch_size"`
	Workers           int     `yaml:"workers"`
	MinGroupSize      int     `yaml:"min_group_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// LoadTuning loads tuning knobs from a YAML file.
func LoadTuning(path string) (*Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Tuning
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.BatchSize < 0 || t.Workers < 0 || t.MinGroupSize < 0 || t.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("config: tuning values must not be negative")
	}
	return &t, nil
}
