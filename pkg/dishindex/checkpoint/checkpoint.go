// Package checkpoint persists classification results so aggregation can
// be re-run without paying for classification again.
package checkpoint

import (
	"errors"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

// ErrNotFound is returned when a load is attempted and no checkpoint
// has been written.
var ErrNotFound = errors.New("checkpoint not found")

// Store persists the whole-run extraction index. Save has overwrite
// semantics; Load fails with ErrNotFound when nothing was saved.
type Store interface {
	Exists() bool
	Load() (*extract.Index, error)
	Save(idx *extract.Index) error

	// TryLoad returns (index, true) when a checkpoint exists and
	// (nil, false) when it does not, reserving errors for real
	// failures. Callers deciding whether to resume use this instead
	// of probing the filesystem.
	TryLoad() (*extract.Index, bool, error)
}
