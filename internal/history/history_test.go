package history

import (
	"reflect"
	"testing"
	"time"

	"recast/internal/processor"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppendListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, input := range []string{"first", "second", "third"} {
		_, err := store.Append(Entry{Input: input, StartedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatalf("append %s: %v", input, err)
		}
	}

	got, err := store.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var inputs []string
	for _, e := range got {
		inputs = append(inputs, e.Input)
		if e.ID == "" {
			t.Fatalf("entry %s has no id", e.Input)
		}
	}
	if want := []string{"third", "second", "first"}; !reflect.DeepEqual(inputs, want) {
		t.Fatalf("order = %v, want %v", inputs, want)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(limited) != 2 || limited[0].Input != "third" {
		t.Fatalf("limited list = %+v", limited)
	}
}

func TestEntriesSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	saved, err := store.Append(Entry{Input: "photos", Inputs: 3, Succeeded: map[string]int{"webp": 3}})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	store, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()

	got, err := store.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != saved.ID || got[0].Succeeded["webp"] != 3 {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestNewEntryDigestsSummary(t *testing.T) {
	summary := processor.Summary{
		Inputs:        4,
		Succeeded:     map[string]int{"jpeg": 4, "original": 3},
		Failures:      []processor.Failure{{Input: "/a.png", FormatID: "original"}},
		Skipped:       []processor.Skip{{Format: "avif", Count: 4}},
		ProviderError: "boom",
		Duration:      2 * time.Second,
	}
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e := NewEntry("/photos", started, summary)
	if e.ID == "" || e.Inputs != 4 || e.Failed != 1 || e.Duration != 2*time.Second {
		t.Fatalf("unexpected entry %+v", e)
	}
	if !reflect.DeepEqual(e.Skipped, []string{"avif"}) {
		t.Fatalf("skipped = %v", e.Skipped)
	}
	if !reflect.DeepEqual(e.Formats(), []string{"jpeg", "original"}) {
		t.Fatalf("formats = %v", e.Formats())
	}

	summary.Succeeded["jpeg"] = 0
	if e.Succeeded["jpeg"] != 4 {
		t.Fatalf("entry shares the summary's map")
	}
}

func TestClosedStore(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := store.Append(Entry{}); err == nil {
		t.Fatalf("append on closed store succeeded")
	}
}
