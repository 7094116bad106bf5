package extract

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"

	"github.com/cookbase/dishindex/pkg/dishindex/corpus"
)

// DefaultWorkers caps simultaneous outstanding classifier calls.
const DefaultWorkers = 5

// Classifier turns a batch of title records into dish extractions.
// Implementations make one network call per batch.
type Classifier interface {
	ExtractBatch(ctx context.Context, records []corpus.RecipeTitleRecord) ([]DishExtraction, error)
}

// Dispatcher runs the classifier over pre-computed batches with a
// bounded worker pool. Results are collected in batch order regardless
// of completion order; the first failed batch aborts the whole pass.
type Dispatcher struct {
	Classifier Classifier

	// Workers is the concurrency cap K; DefaultWorkers when <= 0.
	Workers int

	// Limiter optionally gates outbound call rate on top of the
	// concurrency cap.
	Limiter *rate.Limiter

	// OnBatch, when set, is called after each batch is validated, from
	// the worker that completed it. An error aborts the pass.
	OnBatch func(ctx context.Context, batch Batch, extractions []DishExtraction) error

	// Progress, when set, receives (completed, total) after each batch.
	Progress func(done, total int)
}

// Run classifies every batch and returns results aligned to the input
// slice: result[i] holds batches[i]'s extractions. Each worker slot
// writes only its own pre-reserved index, so no locking is needed on
// the results slice itself.
func (d *Dispatcher) Run(ctx context.Context, batches []Batch) ([][]DishExtraction, error) {
	if d.Classifier == nil {
		return nil, fmt.Errorf("extract: nil classifier")
	}

	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		sem      = make(chan struct{}, workers)
		results  = make([][]DishExtraction, len(batches))
		mu       sync.Mutex
		firstErr error
		done     int
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	total := len(batches)
	for i, b := range batches {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func(slot int, b Batch) {
			defer wg.Done()
			defer func() { <-sem }()

			if d.Limiter != nil {
				if err := d.Limiter.Wait(ctx); err != nil {
					fail(err)
					return
				}
			}

			extractions, err := d.Classifier.ExtractBatch(ctx, b.Records)
			if err == nil {
				err = ValidateAll(extractions)
			}
			if err == nil && d.OnBatch != nil {
				err = d.OnBatch(ctx, b, extractions)
			}
			if err != nil {
				fail(fmt.Errorf("extract: batch %d/%d: %w", b.Index+1, total, err))
				return
			}

			results[slot] = extractions

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if d.Progress != nil {
				d.Progress(n, total)
			}
		}(i, b)
	}

	wg.Wait()

	mu.Lock()
	err := firstErr
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	return results, nil
}

// Flatten concatenates per-batch results into a single extraction list,
// preserving batch order.
func Flatten(results [][]DishExtraction) []DishExtraction {
	var n int
	for _, r := range results {
		n += len(r)
	}
	out := make([]DishExtraction, 0, n)
	for _, r := range results {
		out = append(out, r...)
	}
	return out
}
