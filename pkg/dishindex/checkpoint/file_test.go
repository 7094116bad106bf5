package checkpoint

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

func sampleIndex() *extract.Index {
	return &extract.Index{
		Extractions: []extract.DishExtraction{
			{
				VideoID:       "v1",
				OriginalTitle: "Korean Fried Chicken",
				DishName:      "Korean Fried Chicken",
				DishCategory:  "fried-chicken",
				RegionalStyle: "Korean",
				Confidence:    extract.ConfidenceHigh,
			},
			{
				VideoID:       "v2",
				OriginalTitle: "Classic Fried Chicken",
				DishName:      "Fried Chicken",
				DishCategory:  "fried-chicken",
				Confidence:    extract.ConfidenceMedium,
			},
		},
		Metadata: extract.IndexMetadata{
			RunID:          "01TESTRUN",
			BuildTime:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			TotalProcessed: 2,
			TotalBatches:   1,
			Model:          "gpt-test",
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "extractions.json"))

	if store.Exists() {
		t.Fatal("store should not exist before save")
	}
	if _, err := store.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load before save: expected ErrNotFound, got %v", err)
	}

	want := sampleIndex()
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists() {
		t.Fatal("store should exist after save")
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Extractions) != 2 {
		t.Fatalf("expected 2 extractions, got %d", len(got.Extractions))
	}
	if got.Extractions[0] != want.Extractions[0] {
		t.Errorf("extraction mismatch: %+v vs %+v", got.Extractions[0], want.Extractions[0])
	}
	if got.Metadata.RunID != "01TESTRUN" || got.Metadata.TotalBatches != 1 {
		t.Errorf("metadata mismatch: %+v", got.Metadata)
	}
}

func TestFileStoreOverwrite(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "extractions.json"))

	first := sampleIndex()
	if err := store.Save(first); err != nil {
		t.Fatal(err)
	}

	second := sampleIndex()
	second.Extractions = second.Extractions[:1]
	second.Metadata.TotalProcessed = 1
	if err := store.Save(second); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Extractions) != 1 {
		t.Errorf("overwrite should replace contents, got %d extractions", len(got.Extractions))
	}
}

func TestFileStoreTryLoad(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "extractions.json"))

	if _, ok, err := store.TryLoad(); err != nil || ok {
		t.Fatalf("TryLoad on missing file: ok=%v err=%v", ok, err)
	}

	if err := store.Save(sampleIndex()); err != nil {
		t.Fatal(err)
	}
	idx, ok, err := store.TryLoad()
	if err != nil || !ok {
		t.Fatalf("TryLoad after save: ok=%v err=%v", ok, err)
	}
	if len(idx.Extractions) != 2 {
		t.Errorf("expected 2 extractions, got %d", len(idx.Extractions))
	}
}
