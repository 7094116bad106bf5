package taxonomy

import (
	"testing"

	"github.com/cookbase/dishindex/pkg/dishindex/extract"
)

func TestBuildFromGroupingResolvesDishNames(t *testing.T) {
	extractions := []extract.DishExtraction{
		ex("v1", "Korean Fried Chicken", "fried-chicken", "Korean"),
		ex("v2", "korean fried chicken", "fried-chicken", "Korean"),
		ex("v3", "Fried Chicken", "fried-chicken", ""),
		ex("v4", "Stray Dish", "stray", ""),
	}
	plan := &GroupingPlan{
		Groups: []PlannedGroup{
			{
				CanonicalName: "Fried Chicken",
				Slug:          "fried-chicken",
				Variations: []PlannedVariation{
					{
						Name:      "Korean Fried Chicken",
						Slug:      "korean-fried-chicken",
						DishNames: []string{"Korean Fried Chicken"},
					},
					{
						Name:      "Fried Chicken",
						Slug:      "generic",
						DishNames: []string{"Fried Chicken"},
					},
				},
			},
		},
	}

	idx := BuildFromGrouping(plan, extractions, BuildOptions{})

	g := idx.Groups["fried-chicken"]
	if g == nil {
		t.Fatalf("expected fried-chicken group: %v", idx.Groups)
	}

	// Dish-name matching is case-insensitive: v1 and v2 both resolve.
	korean := g.Variations["korean-fried-chicken"]
	if korean == nil || korean.Count != 2 {
		t.Errorf("unexpected korean variation: %+v", korean)
	}
	if g.TotalCount != 3 {
		t.Errorf("total_count = %d, want 3", g.TotalCount)
	}

	// v4's dish is never referenced by the plan.
	if idx.Ungrouped.Count != 1 || idx.Ungrouped.VideoIDs[0] != "v4" {
		t.Errorf("unexpected ungrouped: %+v", idx.Ungrouped)
	}
}

func TestBuildFromGroupingDropsUnresolvedVariations(t *testing.T) {
	extractions := []extract.DishExtraction{
		ex("v1", "Ramen", "ramen", ""),
	}
	plan := &GroupingPlan{
		Groups: []PlannedGroup{
			{
				CanonicalName: "Phantom Group",
				Slug:          "phantom",
				Variations: []PlannedVariation{
					{Name: "Phantom", Slug: "generic", DishNames: []string{"No Such Dish"}},
				},
			},
		},
	}

	idx := BuildFromGrouping(plan, extractions, BuildOptions{})
	if len(idx.Groups) != 0 {
		t.Errorf("group with no resolvable members should be dropped: %v", idx.Groups)
	}
	if idx.Ungrouped.Count != 1 {
		t.Errorf("v1 should be ungrouped: %+v", idx.Ungrouped)
	}
}

func TestBuildFromGroupingFillsMissingSlugs(t *testing.T) {
	extractions := []extract.DishExtraction{
		ex("v1", "Mapo Tofu", "mapo-tofu", "Sichuan"),
		ex("v2", "Mapo Tofu", "mapo-tofu", "Sichuan"),
	}
	plan := &GroupingPlan{
		Groups: []PlannedGroup{
			{
				CanonicalName: "Mapo Tofu",
				Variations: []PlannedVariation{
					{Name: "Sichuan Mapo Tofu", DishNames: []string{"Mapo Tofu"}},
				},
			},
		},
	}

	idx := BuildFromGrouping(plan, extractions, BuildOptions{})
	g := idx.Groups["mapo-tofu"]
	if g == nil {
		t.Fatalf("slug should be derived from the canonical name: %v", idx.Groups)
	}
	if g.Variations["sichuan-mapo-tofu"] == nil {
		t.Errorf("variation slug should be derived from its name: %+v", g.Variations)
	}
}

func TestBuildFromGroupingMatchesBuildShape(t *testing.T) {
	extractions := []extract.DishExtraction{
		ex("v1", "Korean Fried Chicken", "fried-chicken", "Korean"),
		ex("v2", "Fried Chicken", "fried-chicken", ""),
	}
	plan := &GroupingPlan{
		Groups: []PlannedGroup{
			{
				CanonicalName: "Fried Chicken",
				Slug:          "fried-chicken",
				Variations: []PlannedVariation{
					{Name: "Korean Fried Chicken", Slug: "korean-fried-chicken", DishNames: []string{"Korean Fried Chicken"}},
					{Name: "Fried Chicken", Slug: "generic", DishNames: []string{"Fried Chicken"}},
				},
			},
		},
	}

	algorithmic := Build(extractions, BuildOptions{})
	planned := BuildFromGrouping(plan, extractions, BuildOptions{})

	if len(algorithmic.Groups) != len(planned.Groups) {
		t.Fatalf("paths disagree on group count: %d vs %d", len(algorithmic.Groups), len(planned.Groups))
	}
	ag := algorithmic.Groups["fried-chicken"]
	pg := planned.Groups["fried-chicken"]
	if ag.TotalCount != pg.TotalCount || len(ag.Variations) != len(pg.Variations) {
		t.Errorf("paths disagree on fried-chicken: %+v vs %+v", ag, pg)
	}
}
