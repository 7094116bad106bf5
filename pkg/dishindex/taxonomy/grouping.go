package taxonomy

import (
	"sort"
	"strings"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

// GroupingPlan is a classifier-supplied grouping: instead of deriving
// variation membership from category and style, a second LLM pass names
// the groups and lists each variation's member dishes by dish name.
type GroupingPlan struct {
	Groups []PlannedGroup `json:"groups"`
}

// PlannedGroup names one output group and its variations.
type PlannedGroup struct {
	CanonicalName string             `json:"canonical_name"`
	Slug          string             `json:"slug"`
	Description   string             `json:"description,omitempty"`
	Variations    []PlannedVariation `json:"variations"`
}

// PlannedVariation lists the dish names that belong to one variation.
type PlannedVariation struct {
	Name      string   `json:"name"`
	Slug      string   `json:"slug"`
	DishNames []string `json:"dish_names"`
}

// BuildFromGrouping resolves a grouping plan back to video IDs through
// the same lowercased dish-name lookup the category-driven builder
// uses, then dedups. The output is structurally identical to Build's;
// only the variation-membership decision differs. Videos whose dish
// names the plan never references land in the ungrouped set.
func BuildFromGrouping(plan *GroupingPlan, extractions []extract.DishExtraction, opts BuildOptions) *Index {
	// Dish-key lookup over the full extraction set.
	byDish := make(map[string][]string)
	for _, e := range extractions {
		key := strings.ToLower(e.DishName)
		byDish[key] = append(byDish[key], e.VideoID)
	}

	idx := &Index{Groups: make(map[string]*Group)}
	claimed := make(map[string]struct{})

	for _, pg := range plan.Groups {
		slug := pg.Slug
		if slug == "" {
			slug = Slugify(pg.CanonicalName)
		}
		group := &Group{
			CanonicalName: pg.CanonicalName,
			Slug:          slug,
			Description:   pg.Description,
			Variations:    make(map[string]*Variation),
		}
		if group.CanonicalName == "" {
			group.CanonicalName = TitleFromSlug(slug)
		}

		for _, pv := range pg.Variations {
			varSlug := pv.Slug
			if varSlug == "" {
				varSlug = Slugify(pv.Name)
			}

			var ids []string
			for _, dish := range pv.DishNames {
				key := strings.ToLower(strings.TrimSpace(dish))
				for _, id := range byDish[key] {
					ids = append(ids, id)
					claimed[key] = struct{}{}
				}
			}

			ids = dedupSorted(ids)
			if len(ids) == 0 {
				continue
			}
			v := group.Variations[varSlug]
			if v == nil {
				v = &Variation{Name: pv.Name, Slug: varSlug}
				group.Variations[varSlug] = v
			} else {
				// Same variation slug listed twice: pool and re-dedup.
				ids = dedupSorted(append(v.VideoIDs, ids...))
				group.TotalCount -= v.Count
			}
			v.VideoIDs = ids
			v.Count = len(ids)
			group.TotalCount += v.Count
		}

		if len(group.Variations) == 0 {
			continue
		}
		idx.Groups[group.Slug] = group
	}

	// Everything the plan never referenced is ungrouped.
	var ungrouped []string
	dishKeys := make([]string, 0, len(byDish))
	for key := range byDish {
		dishKeys = append(dishKeys, key)
	}
	sort.Strings(dishKeys)
	for _, key := range dishKeys {
		if _, ok := claimed[key]; ok {
			continue
		}
		ungrouped = append(ungrouped, byDish[key]...)
	}
	idx.Ungrouped.VideoIDs = dedupSorted(ungrouped)
	idx.Ungrouped.Count = len(idx.Ungrouped.VideoIDs)

	idx.Metadata = buildMetadata(idx, len(extractions), opts)
	return idx
}
