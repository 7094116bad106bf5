package taxonomy

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer(MappingTable{
		"buffalo-wings":  "chicken-wings",
		"hot-wings":      "chicken-wings",
		"tonkotsu-ramen": "ramen",
	})

	cases := []struct {
		raw, want string
	}{
		{"buffalo-wings", "chicken-wings"},
		{"hot-wings", "chicken-wings"},
		{"tonkotsu-ramen", "ramen"},
		{"ramen", "ramen"},
		{"unmapped-category", "unmapped-category"},
	}
	for _, tc := range cases {
		if got := n.Normalize(tc.raw); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(MappingTable{
		"buffalo-wings": "chicken-wings",
		"hot-wings":     "chicken-wings",
	})

	for _, raw := range []string{"buffalo-wings", "chicken-wings", "pizza", ""} {
		once := n.Normalize(raw)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", raw, once, twice)
		}
	}
}

func TestNormalizeNilTable(t *testing.T) {
	var n *Normalizer
	if got := n.Normalize("pizza"); got != "pizza" {
		t.Errorf("nil normalizer should be identity, got %q", got)
	}
	if got := NewNormalizer(nil).Normalize("pizza"); got != "pizza" {
		t.Errorf("nil table should be identity, got %q", got)
	}
}
