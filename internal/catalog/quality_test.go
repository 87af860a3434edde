package catalog

import "testing"

func TestEffectiveQuality(t *testing.T) {
	q := QualityConfig{Default: 80, Overrides: map[string]int{"avif": 55}}

	if got := q.Effective("avif"); got != 55 {
		t.Fatalf("avif = %d, want 55", got)
	}
	if got := q.Effective("webp"); got != 80 {
		t.Fatalf("webp = %d, want 80", got)
	}
	if got := (QualityConfig{Default: 70}).Effective("jpeg"); got != 70 {
		t.Fatalf("nil overrides: got %d", got)
	}
}

func TestValidateQuality(t *testing.T) {
	cases := []struct {
		name string
		cfg  QualityConfig
		ok   bool
	}{
		{"default only", QualityConfig{Default: 80}, true},
		{"with override", QualityConfig{Default: 1, Overrides: map[string]int{"webp": 100}}, true},
		{"zero default", QualityConfig{Default: 0}, false},
		{"default too high", QualityConfig{Default: 101}, false},
		{"override out of range", QualityConfig{Default: 80, Overrides: map[string]int{"avif": 0}}, false},
		{"unknown override", QualityConfig{Default: 80, Overrides: map[string]int{"jxl": 50}}, false},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}
