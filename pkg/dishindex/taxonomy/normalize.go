package taxonomy

// Normalizer maps raw extracted categories onto canonical parent
// categories through a static many-to-one table. Categories absent from
// the table pass through unchanged, which also makes the mapping
// idempotent: normalize(normalize(c)) == normalize(c) holds as long as
// the table's values are themselves canonical (not keys of further
// mappings), which the config loader enforces at load time.
type Normalizer struct {
	table map[string]string
}

// MappingTable is the static raw→canonical category table.
type MappingTable = map[string]string

// NewNormalizer builds a normalizer over the given raw→canonical table.
// A nil table yields the identity normalizer.
func NewNormalizer(table MappingTable) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize returns the canonical category for raw, or raw itself when
// no mapping exists. Total: never fails, never returns empty for
// non-empty input.
func (n *Normalizer) Normalize(raw string) string {
	if n == nil || n.table == nil {
		return raw
	}
	if canonical, ok := n.table[raw]; ok && canonical != "" {
		return canonical
	}
	return raw
}
