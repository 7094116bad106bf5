// Package taxonomy aggregates dish extractions into a two-level index:
// canonical dish groups containing named regional/stylistic variations.
package taxonomy

import "time"

// Variation is a named sub-bucket within a group, typically a regional
// subtype ("korean-fried-chicken") or the literal "generic". VideoIDs
// is deduplicated and sorted; Count always equals len(VideoIDs).
type Variation struct {
	Name     string   `json:"name"`
	Slug     string   `json:"slug"`
	VideoIDs []string `json:"video_ids"`
	Count    int      `json:"count"`
}

// Group is one canonical dish category that passed the population
// threshold. TotalCount is the sum of its variations' counts.
type Group struct {
	CanonicalName string                `json:"canonical_name"`
	Slug          string                `json:"slug"`
	Description   string                `json:"description,omitempty"`
	Variations    map[string]*Variation `json:"variations"`
	TotalCount    int                   `json:"total_count"`
}

// Ungrouped collects video IDs whose category failed the minimum
// population threshold.
type Ungrouped struct {
	VideoIDs []string `json:"video_ids"`
	Count    int      `json:"count"`
}

// Metadata carries run statistics for the built index.
type Metadata struct {
	RunID            string    `json:"run_id,omitempty"`
	BuildTime        time.Time `json:"build_time"`
	TotalRecipes     int       `json:"total_recipes"`
	GroupedRecipes   int       `json:"grouped_recipes"`
	UngroupedRecipes int       `json:"ungrouped_recipes"`
	UniqueGroups     int       `json:"unique_groups"`
	UniqueVariations int       `json:"unique_variations"`
	Model            string    `json:"model_used,omitempty"`
}

// Index is the final output artifact, regenerated in full on every
// build; there is no merge with prior runs.
type Index struct {
	Groups    map[string]*Group `json:"groups"`
	Ungrouped Ungrouped         `json:"ungrouped"`
	Metadata  Metadata          `json:"metadata"`
}
