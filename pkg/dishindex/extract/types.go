// Package extract defines the dish extraction data model and the
// batching/dispatch machinery that feeds recipe titles to the classifier.
package extract

import (
	"fmt"
	"strings"
	"time"
)

// Confidence grades how sure the classifier is about an extraction.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Valid reports whether c is one of the known confidence grades.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// DishExtraction is the normalized dish identity the classifier derives
// from one recipe title. DishCategory is a lowercase hyphenated slug;
// RegionalStyle is empty when the dish has no regional/stylistic marker.
type DishExtraction struct {
	VideoID          string     `json:"video_id"`
	OriginalTitle    string     `json:"original_title"`
	DishName         string     `json:"dish_name"`
	DishCategory     string     `json:"dish_category"`
	RegionalStyle    string     `json:"regional_style,omitempty"`
	TechniqueFocused bool       `json:"is_technique_focused"`
	Confidence       Confidence `json:"confidence"`
}

// IndexMetadata describes one classification run.
type IndexMetadata struct {
	RunID          string    `json:"run_id,omitempty"`
	BuildTime      time.Time `json:"build_time"`
	TotalProcessed int       `json:"total_processed"`
	TotalBatches   int       `json:"total_batches"`
	Model          string    `json:"model_used,omitempty"`
}

// Index is the checkpoint artifact: the full extraction set of one
// successful classification pass.
type Index struct {
	Extractions []DishExtraction `json:"extractions"`
	Metadata    IndexMetadata    `json:"metadata"`
}

// Validate checks the fields the aggregation stages rely on. It is
// applied at the classifier-response boundary so the taxonomy builder
// never sees a malformed record.
func Validate(e DishExtraction) error {
	if e.VideoID == "" {
		return fmt.Errorf("extraction missing video_id (title %q)", e.OriginalTitle)
	}
	if strings.TrimSpace(e.DishName) == "" {
		return fmt.Errorf("extraction for video %s missing dish_name", e.VideoID)
	}
	if strings.TrimSpace(e.DishCategory) == "" {
		return fmt.Errorf("extraction for video %s missing dish_category", e.VideoID)
	}
	if e.Confidence != "" && !e.Confidence.Valid() {
		return fmt.Errorf("extraction for video %s has unknown confidence %q", e.VideoID, e.Confidence)
	}
	return nil
}

// ValidateAll validates every extraction in a batch response.
func ValidateAll(extractions []DishExtraction) error {
	for i, e := range extractions {
		if err := Validate(e); err != nil {
			return fmt.Errorf("extraction %d: %w", i, err)
		}
	}
	return nil
}
