// Package output serializes the built taxonomy index to disk.
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/cookbase/dishindex/pkg/dishindex/taxonomy"
)

// Write serializes idx as indented JSON and replaces path atomically,
// fully overwriting any prior run's artifact.
func Write(idx *taxonomy.Index, path string) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("output: encode: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("output: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("output: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("output: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("output: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("output: rename: %w", err)
	}
	return nil
}

// Read loads a previously written index, mainly for tooling and tests.
func Read(path string) (*taxonomy.Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("output: read %s: %w", path, err)
	}
	var idx taxonomy.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("output: decode %s: %w", path, err)
	}
	return &idx, nil
}
