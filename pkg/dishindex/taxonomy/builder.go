package taxonomy

import (
	"sort"
	"strings"
	"time"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

// DefaultMinGroupSize is the minimum number of contributing recipes
// (pre-dedup) a category needs to become a group.
const DefaultMinGroupSize = 2

// BuildOptions tune the aggregation pass.
type BuildOptions struct {
	// Normalizer maps raw categories to canonical ones; nil means
	// identity.
	Normalizer *Normalizer

	// DisplayNames overrides the title-cased group name for specific
	// canonical slugs.
	DisplayNames map[string]string

	// Descriptions optionally annotates groups by canonical slug.
	Descriptions map[string]string

	// MinGroupSize is the population threshold; DefaultMinGroupSize
	// when <= 0.
	MinGroupSize int

	// RunID and Model are stamped into the output metadata.
	RunID string
	Model string
}

// dishBucket accumulates, per lowercased dish name within a category,
// every contributing video ID (duplicates kept until the dedup step)
// and one representative regional style.
type dishBucket struct {
	videoIDs []string
	style    string
}

// Build runs the category-driven aggregation over the full extraction
// set. It is deterministic: identical inputs produce identical output
// structures, metadata timestamp aside.
func Build(extractions []extract.DishExtraction, opts BuildOptions) *Index {
	minSize := opts.MinGroupSize
	if minSize <= 0 {
		minSize = DefaultMinGroupSize
	}

	// Step 1: bucket by normalized category, then by dish key.
	categories := make(map[string]map[string]*dishBucket)
	for _, e := range extractions {
		category := opts.Normalizer.Normalize(e.DishCategory)
		dishKey := strings.ToLower(e.DishName)

		dishes := categories[category]
		if dishes == nil {
			dishes = make(map[string]*dishBucket)
			categories[category] = dishes
		}
		bucket := dishes[dishKey]
		if bucket == nil {
			bucket = &dishBucket{}
			dishes[dishKey] = bucket
		}
		bucket.videoIDs = append(bucket.videoIDs, e.VideoID)
		if bucket.style == "" && e.RegionalStyle != "" {
			bucket.style = e.RegionalStyle
		}
	}

	idx := &Index{Groups: make(map[string]*Group)}
	var ungrouped []string

	// Sorted iteration keeps the variation/name assembly deterministic.
	categorySlugs := make([]string, 0, len(categories))
	for slug := range categories {
		categorySlugs = append(categorySlugs, slug)
	}
	sort.Strings(categorySlugs)

	for _, category := range categorySlugs {
		dishes := categories[category]

		// Step 2: population threshold over raw (pre-dedup) counts.
		// The check here is the single authority for the
		// grouped/ungrouped decision.
		var population int
		for _, bucket := range dishes {
			population += len(bucket.videoIDs)
		}
		if population < minSize {
			for _, bucket := range dishes {
				ungrouped = append(ungrouped, bucket.videoIDs...)
			}
			continue
		}

		// Step 3: bucket dish keys into variations.
		pooled := make(map[string]*Variation)
		dishKeys := make([]string, 0, len(dishes))
		for key := range dishes {
			dishKeys = append(dishKeys, key)
		}
		sort.Strings(dishKeys)

		for _, key := range dishKeys {
			bucket := dishes[key]

			varKey := "generic"
			varName := TitleFromSlug(category)
			if bucket.style != "" {
				varKey = Slugify(bucket.style) + "-" + category
				varName = titleCaser.String(bucket.style) + " " + TitleFromSlug(category)
			}

			v := pooled[varKey]
			if v == nil {
				v = &Variation{Name: varName, Slug: varKey}
				pooled[varKey] = v
			}
			v.VideoIDs = append(v.VideoIDs, bucket.videoIDs...)
		}

		// Step 4: dedup and materialize.
		group := &Group{
			Slug:       category,
			Variations: make(map[string]*Variation),
		}
		for varKey, v := range pooled {
			v.VideoIDs = dedupSorted(v.VideoIDs)
			v.Count = len(v.VideoIDs)
			if v.Count == 0 {
				continue
			}
			group.Variations[varKey] = v
			group.TotalCount += v.Count
		}
		if len(group.Variations) == 0 {
			// Threshold already decided these videos were grouped;
			// an empty group is simply not emitted.
			continue
		}

		// Step 5: canonical naming.
		group.CanonicalName = opts.DisplayNames[category]
		if group.CanonicalName == "" {
			group.CanonicalName = TitleFromSlug(category)
		}
		group.Description = opts.Descriptions[category]

		idx.Groups[category] = group
	}

	// Step 6: ungrouped finalization.
	idx.Ungrouped.VideoIDs = dedupSorted(ungrouped)
	idx.Ungrouped.Count = len(idx.Ungrouped.VideoIDs)

	// Step 7: statistics.
	idx.Metadata = buildMetadata(idx, len(extractions), opts)
	return idx
}

func buildMetadata(idx *Index, totalRecipes int, opts BuildOptions) Metadata {
	meta := Metadata{
		RunID:            opts.RunID,
		BuildTime:        time.Now().UTC(),
		TotalRecipes:     totalRecipes,
		UngroupedRecipes: idx.Ungrouped.Count,
		UniqueGroups:     len(idx.Groups),
		Model:            opts.Model,
	}
	for _, g := range idx.Groups {
		meta.GroupedRecipes += g.TotalCount
		meta.UniqueVariations += len(g.Variations)
	}
	return meta
}

// dedupSorted returns the unique members of ids in sorted order.
func dedupSorted(ids []string) []string {
	if len(ids) == 0 {
		// Keep the empty set serializable as [] rather than null.
		return []string{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
