package extract

import (
	"fmt"

	"github.com/cookbase/dishindex/pkg/dishindex/corpus"
)

// Batch is one fixed-size slice of the flattened input, tagged with its
// position so out-of-order completion can be reassembled.
type Batch struct {
	Index   int
	Records []corpus.RecipeTitleRecord
}

// MakeBatches partitions records into batches of size records each (the
// last batch may be shorter). Concatenating the batches reproduces the
// input order exactly; no record is dropped or duplicated.
func MakeBatches(records []corpus.RecipeTitleRecord, size int) ([]Batch, error) {
	if size <= 0 {
		return nil, fmt.Errorf("extract: batch size must be positive, got %d", size)
	}

	batches := make([]Batch, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, Batch{
			Index:   len(batches),
			Records: records[start:end],
		})
	}
	return batches, nil
}
