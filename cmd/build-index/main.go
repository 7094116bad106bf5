// Command build-index runs the recipe taxonomy pipeline: classify every
// recipe title in the corpus (or resume from a checkpoint), aggregate
// the extractions into dish groups, and write the index artifact.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"

	"github.com/cookbase/dishindex/internal/llm"
	"github.com/cookbase/dishindex/pkg/dishindex"
	"github.com/cookbase/dishindex/pkg/dishindex/checkpoint"
	"github.com/cookbase/dishindex/pkg/dishindex/config"
	"github.com/cookbase/dishindex/pkg/dishindex/taxonomy"

	"github.com/goccy/go-json"
)

func main() {
	var (
		corpusPath     = flag.String("corpus", "", "Corpus file, gzip or plain JSON (required unless -resume)")
		checkpointPath = flag.String("checkpoint", "", "Extraction checkpoint file (required)")
		outPath        = flag.String("out", "", "Output index file (required)")
		mappingPath    = flag.String("mapping", "", "Category mapping YAML (optional)")
		namesPath      = flag.String("names", "", "Canonical display-name YAML (optional)")
		tuningPath     = flag.String("tuning", "", "Tuning YAML (optional)")
		groupingPath   = flag.String("grouping", "", "Classifier grouping plan JSON; switches to the plan-driven aggregation (optional)")
		resume         = flag.Bool("resume", false, "Skip classification and aggregate the existing checkpoint")
		batchDB        = flag.String("batch-checkpoint", "", "SQLite file for per-batch checkpointing (optional)")
		runKey         = flag.String("run", "", "Run key for -batch-checkpoint (default: corpus file name)")
		baseURL        = flag.String("llm-url", os.Getenv("DISHINDEX_LLM_URL"), "Classifier endpoint URL")
		model          = flag.String("model", os.Getenv("DISHINDEX_LLM_MODEL"), "Classifier model name")
	)
	flag.Parse()

	if *checkpointPath == "" {
		log.Fatal("--checkpoint required")
	}
	if *outPath == "" {
		log.Fatal("--out required")
	}
	if !*resume && *corpusPath == "" {
		log.Fatal("--corpus required for a fresh run")
	}

	ctx := context.Background()

	loader := config.Loader{
		MappingPath: *mappingPath,
		NamesPath:   *namesPath,
		TuningPath:  *tuningPath,
	}
	components, err := loader.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	opts := dishindex.Options{
		CorpusPath:   *corpusPath,
		Checkpoint:   checkpoint.NewFileStore(*checkpointPath),
		Resume:       *resume,
		BatchSize:    components.Tuning.BatchSize,
		Workers:      components.Tuning.Workers,
		Normalizer:   components.Normalizer,
		DisplayNames: components.DisplayNames,
		Descriptions: components.Descriptions,
		MinGroupSize: components.Tuning.MinGroupSize,
		OutputPath:   *outPath,
		Model:        *model,
		Progress: func(done, total int) {
			if done%10 == 0 || done == total {
				log.Printf("Classified %d/%d batches...", done, total)
			}
		},
	}

	if !*resume {
		apiKey := os.Getenv("DISHINDEX_LLM_API_KEY")
		if *baseURL == "" || *model == "" {
			log.Fatal("--llm-url and --model (or DISHINDEX_LLM_URL / DISHINDEX_LLM_MODEL) required for a fresh run")
		}
		if apiKey == "" {
			log.Fatal("DISHINDEX_LLM_API_KEY required for a fresh run")
		}
		opts.Classifier = &llm.Client{BaseURL: *baseURL, APIKey: apiKey, Model: *model}
	}

	if rps := components.Tuning.RequestsPerSecond; rps > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}

	if *batchDB != "" {
		store, err := checkpoint.OpenSQLite(ctx, *batchDB)
		if err != nil {
			log.Fatal("Failed to open batch checkpoint:", err)
		}
		defer store.Close()
		opts.BatchStore = store
		opts.RunKey = *runKey
		if opts.RunKey == "" {
			opts.RunKey = strings.TrimSuffix(filepath.Base(*corpusPath), filepath.Ext(*corpusPath))
		}
	}

	if *groupingPath != "" {
		plan, err := loadGroupingPlan(*groupingPath)
		if err != nil {
			log.Fatal("Failed to load grouping plan:", err)
		}
		opts.GroupingPlan = plan
	}

	p := dishindex.New(opts)
	res, err := p.Run(ctx)
	if err != nil {
		log.Fatal("Pipeline failed: ", err)
	}

	meta := res.Index.Metadata
	if res.Resumed {
		log.Printf("Resumed from checkpoint (%d extractions, run %s)",
			res.Extractions.Metadata.TotalProcessed, res.Extractions.Metadata.RunID)
	}
	log.Printf("✓ Built index: %d groups, %d variations, %d/%d recipes grouped (%d ungrouped) -> %s",
		meta.UniqueGroups, meta.UniqueVariations, meta.GroupedRecipes,
		meta.TotalRecipes, meta.UngroupedRecipes, *outPath)
}

func loadGroupingPlan(path string) (*taxonomy.GroupingPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan taxonomy.GroupingPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
