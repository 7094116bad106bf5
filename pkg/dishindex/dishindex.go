// Package dishindex orchestrates the recipe taxonomy pipeline: corpus
// loading, batched dish extraction against an external classifier,
// checkpointing, and taxonomy aggregation.
package dishindex

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/cookbase/dishindex/pkg/dishindex/checkpoint"
	"github.com/cookbase/dishindex/pkg/dishindex/corpus"
	"github.com/cookbase/dishindex/pkg/dishindex/extract"
	"github.com/cookbase/dishindex/pkg/dishindex/output"
	"github.com/cookbase/dishindex/pkg/dishindex/taxonomy"
)

// DefaultBatchSize is the number of titles sent per classifier call.
const DefaultBatchSize = 50

// Options configures a Pipeline instance.
type Options struct {
	// CorpusPath is the channels/videos corpus file (gzip or plain
	// JSON). Not needed when resuming from a checkpoint.
	CorpusPath string

	// Classifier performs dish extraction. Not needed when resuming.
	Classifier extract.Classifier

	// Checkpoint persists the whole-run extraction index.
	Checkpoint checkpoint.Store

	// Resume skips classification and aggregates the stored
	// checkpoint. A missing checkpoint is an error, never a silent
	// fresh run.
	Resume bool

	// BatchStore, when set, persists each classified batch as it
	// completes and skips batches already completed under RunKey.
	// This trades the original fail-fast purity for durability of
	// partial progress.
	BatchStore *checkpoint.SQLiteStore

	// RunKey identifies a classification attempt in the BatchStore so
	// a rerun after a failure resumes the same run. Required with
	// BatchStore.
	RunKey string

	// BatchSize and Workers tune dispatch; defaults apply when <= 0.
	BatchSize int
	Workers   int

	// Limiter optionally caps the outbound classifier call rate.
	Limiter *rate.Limiter

	// Normalizer, DisplayNames, Descriptions, and MinGroupSize are
	// handed to the taxonomy builder.
	Normalizer   *taxonomy.Normalizer
	DisplayNames map[string]string
	Descriptions map[string]string
	MinGroupSize int

	// GroupingPlan switches aggregation to the classifier-supplied
	// grouping path instead of the category-driven one.
	GroupingPlan *taxonomy.GroupingPlan

	// OutputPath, when set, receives the built index as JSON.
	OutputPath string

	// Model is recorded in checkpoint and output metadata.
	Model string

	// Progress, when set, receives (completedBatches, totalBatches).
	Progress func(done, total int)
}

// Pipeline runs the extraction and aggregation stages.
type Pipeline struct {
	opts    Options
	entropy *ulid.MonotonicEntropy
}

// New creates a Pipeline with the given dependencies.
func New(opts Options) *Pipeline {
	return &Pipeline{
		opts:    opts,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Result is what one pipeline run produced.
type Result struct {
	Index *taxonomy.Index

	// Extractions is the index the aggregation consumed, whether
	// freshly classified or loaded from the checkpoint.
	Extractions *extract.Index

	// Resumed reports whether classification was skipped.
	Resumed bool
}

// Run executes the pipeline: classify (or load the checkpoint), then
// aggregate, then write the output artifact if configured.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	extIdx, resumed, err := p.extractionIndex(ctx)
	if err != nil {
		return nil, err
	}

	idx := p.aggregate(extIdx)

	if p.opts.OutputPath != "" {
		if err := output.Write(idx, p.opts.OutputPath); err != nil {
			return nil, err
		}
	}

	return &Result{Index: idx, Extractions: extIdx, Resumed: resumed}, nil
}

func (p *Pipeline) extractionIndex(ctx context.Context) (*extract.Index, bool, error) {
	if p.opts.Resume {
		if p.opts.Checkpoint == nil {
			return nil, false, fmt.Errorf("dishindex: resume requested without a checkpoint store")
		}
		idx, ok, err := p.opts.Checkpoint.TryLoad()
		if err != nil {
			return nil, false, err
		}
		if !ok {
			return nil, false, fmt.Errorf("dishindex: resume requested: %w", checkpoint.ErrNotFound)
		}
		return idx, true, nil
	}

	idx, err := p.classify(ctx)
	if err != nil {
		return nil, false, err
	}
	return idx, false, nil
}

func (p *Pipeline) classify(ctx context.Context) (*extract.Index, error) {
	if p.opts.Classifier == nil {
		return nil, fmt.Errorf("dishindex: classifier required for a fresh run")
	}
	if p.opts.BatchStore != nil && p.opts.RunKey == "" {
		return nil, fmt.Errorf("dishindex: batch store requires a run key")
	}

	c, err := corpus.Load(p.opts.CorpusPath)
	if err != nil {
		return nil, err
	}
	records := c.Flatten()

	batchSize := p.opts.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	batches, err := extract.MakeBatches(records, batchSize)
	if err != nil {
		return nil, err
	}

	d := &extract.Dispatcher{
		Classifier: p.opts.Classifier,
		Workers:    p.opts.Workers,
		Limiter:    p.opts.Limiter,
		Progress:   p.opts.Progress,
	}

	var extractions []extract.DishExtraction
	if p.opts.BatchStore != nil {
		extractions, err = p.classifyWithBatchStore(ctx, d, batches)
	} else {
		var results [][]extract.DishExtraction
		results, err = d.Run(ctx, batches)
		if err == nil {
			extractions = extract.Flatten(results)
		}
	}
	if err != nil {
		return nil, err
	}

	idx := &extract.Index{
		Extractions: extractions,
		Metadata: extract.IndexMetadata{
			RunID:          ulid.MustNew(ulid.Now(), p.entropy).String(),
			BuildTime:      time.Now().UTC(),
			TotalProcessed: len(extractions),
			TotalBatches:   len(batches),
			Model:          p.opts.Model,
		},
	}

	// The whole-run checkpoint is written exactly once, after every
	// batch has succeeded.
	if p.opts.Checkpoint != nil {
		if err := p.opts.Checkpoint.Save(idx); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// classifyWithBatchStore dispatches only the batches the store has not
// seen for this run key, persisting each one as it completes, then
// reassembles the full set in batch order.
func (p *Pipeline) classifyWithBatchStore(ctx context.Context, d *extract.Dispatcher, batches []extract.Batch) ([]extract.DishExtraction, error) {
	store, runKey := p.opts.BatchStore, p.opts.RunKey

	done, err := store.CompletedBatches(ctx, runKey)
	if err != nil {
		return nil, err
	}

	pending := make([]extract.Batch, 0, len(batches))
	for _, b := range batches {
		if !done[b.Index] {
			pending = append(pending, b)
		}
	}

	d.OnBatch = func(ctx context.Context, b extract.Batch, extractions []extract.DishExtraction) error {
		return store.SaveBatch(ctx, runKey, b.Index, extractions)
	}
	if _, err := d.Run(ctx, pending); err != nil {
		return nil, err
	}

	saved, err := store.LoadBatches(ctx, runKey)
	if err != nil {
		return nil, err
	}

	var extractions []extract.DishExtraction
	for _, b := range batches {
		batch, ok := saved[b.Index]
		if !ok {
			return nil, fmt.Errorf("dishindex: batch %d missing from batch store after dispatch", b.Index)
		}
		extractions = append(extractions, batch...)
	}
	return extractions, nil
}

func (p *Pipeline) aggregate(extIdx *extract.Index) *taxonomy.Index {
	runID := extIdx.Metadata.RunID
	model := extIdx.Metadata.Model
	if model == "" {
		model = p.opts.Model
	}

	buildOpts := taxonomy.BuildOptions{
		Normalizer:   p.opts.Normalizer,
		DisplayNames: p.opts.DisplayNames,
		Descriptions: p.opts.Descriptions,
		MinGroupSize: p.opts.MinGroupSize,
		RunID:        runID,
		Model:        model,
	}

	if p.opts.GroupingPlan != nil {
		return taxonomy.BuildFromGrouping(p.opts.GroupingPlan, extIdx.Extractions, buildOpts)
	}
	return taxonomy.Build(extIdx.Extractions, buildOpts)
}

// IsNotFound reports whether err is the missing-checkpoint condition.
func IsNotFound(err error) bool {
	return errors.Is(err, checkpoint.ErrNotFound)
}
