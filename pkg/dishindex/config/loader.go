package config

import (
	"fmt"

	"github.com/cookbase/dishindex/pkg/dishindex/taxonomy"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	MappingPath string
	NamesPath   string
	TuningPath  string
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer   *taxonomy.Normalizer
	DisplayNames map[string]string
	Descriptions map[string]string
	Tuning       Tuning
}

// Load reads all configuration files and returns initialized components.
// Every path is optional; missing tables degrade to identity/defaults.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.MappingPath != "" {
		mapping, err := LoadMapping(l.MappingPath)
		if err != nil {
			return nil, fmt.Errorf("load mapping: %w", err)
		}
		comp.Normalizer = taxonomy.NewNormalizer(mapping.Categories)
	} else {
		comp.Normalizer = taxonomy.NewNormalizer(nil)
	}

	if l.NamesPath != "" {
		names, err := LoadDisplayNames(l.NamesPath)
		if err != nil {
			return nil, fmt.Errorf("load display names: %w", err)
		}
		comp.DisplayNames = names.Names
		comp.Descriptions = names.Descriptions
	}

	if l.TuningPath != "" {
		tuning, err := LoadTuning(l.TuningPath)
		if err != nil {
			return nil, fmt.Errorf("load tuning: %w", err)
		}
		comp.Tuning = *tuning
	}

	return comp, nil
}
