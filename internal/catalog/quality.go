package catalog

import (
	"fmt"
	"sort"

	"recast/internal/codec"
)

const DefaultQuality = 80

// QualityConfig holds the default quality and per-format overrides, all on
// the user-facing 1..100 scale.
type QualityConfig struct {
	Default   int            `json:"default"`
	Overrides map[string]int `json:"overrides,omitempty"`
}

// Effective returns the override for id when present, else the default.
func (q QualityConfig) Effective(id string) int {
	if v, ok := q.Overrides[id]; ok {
		return v
	}
	return q.Default
}

func (q QualityConfig) Validate() error {
	if !inRange(q.Default) {
		return fmt.Errorf("default quality %d out of range %d..%d", q.Default, codec.QualityMin, codec.QualityMax)
	}

	ids := make([]string, 0, len(q.Overrides))
	for id := range q.Overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if !Known(id) {
			return fmt.Errorf("quality override for unknown format %q", id)
		}
		if v := q.Overrides[id]; !inRange(v) {
			return fmt.Errorf("quality override %s=%d out of range %d..%d", id, v, codec.QualityMin, codec.QualityMax)
		}
	}
	return nil
}

func inRange(v int) bool {
	return v >= codec.QualityMin && v <= codec.QualityMax
}
