package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

// FileStore keeps the extraction index in a single JSON file, written
// once after a full successful classification pass.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Exists reports whether a checkpoint file is present.
func (s *FileStore) Exists() bool {
	info, err := os.Stat(s.Path)
	return err == nil && !info.IsDir()
}

// Load reads the checkpoint, failing with ErrNotFound if absent.
func (s *FileStore) Load() (*extract.Index, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checkpoint: %s: %w", s.Path, ErrNotFound)
		}
		return nil, fmt.Errorf("checkpoint: read %s: %w", s.Path, err)
	}

	var idx extract.Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", s.Path, err)
	}
	return &idx, nil
}

// TryLoad loads the checkpoint when present.
func (s *FileStore) TryLoad() (*extract.Index, bool, error) {
	idx, err := s.Load()
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return idx, true, nil
}

// Save overwrites the checkpoint atomically: the index is written to a
// temp file in the same directory, then renamed into place so a crash
// never leaves a truncated artifact.
func (s *FileStore) Save(idx *extract.Index) error {
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	return writeAtomic(s.Path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("checkpoint: mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint: temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("checkpoint: rename: %w", err)
	}
	return nil
}
