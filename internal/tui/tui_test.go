package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"recast/internal/processor"
)

func TestModelAccumulatesUpdates(t *testing.T) {
	updates := make(chan processor.ProgressUpdate)
	var m tea.Model = NewModel(updates, 0)

	m, _ = m.Update(updateMsg{Total: 3, ProcessedDelta: 1, OutputDelta: 2, File: "a.png"})
	m, _ = m.Update(updateMsg{Total: 3, ProcessedDelta: 1, ErrorDelta: 1, OutputDelta: 1, File: "b.png"})

	model := m.(Model)
	if model.Processed() != 2 || model.total != 3 || model.errors != 1 || model.outputs != 3 {
		t.Fatalf("unexpected model state %+v", model)
	}
	view := model.View()
	if !strings.Contains(view, "Files: 2/3") || !strings.Contains(view, "b.png") {
		t.Fatalf("view missing progress:\n%s", view)
	}
}

func TestModelQuitsWhenUpdatesClose(t *testing.T) {
	updates := make(chan processor.ProgressUpdate)
	close(updates)

	m := NewModel(updates, 1)
	msg := listenForUpdates(updates)()
	if _, ok := msg.(doneMsg); !ok {
		t.Fatalf("expected doneMsg, got %T", msg)
	}

	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if next.(Model).View() != "" {
		t.Fatalf("quitting model should render nothing")
	}
}

func TestBarWidth(t *testing.T) {
	cases := map[int]int{0: defaultBarWidth, 15: minBarWidth, 50: 40, 200: maxBarWidth}
	for term, want := range cases {
		if got := barWidth(term); got != want {
			t.Fatalf("barWidth(%d) = %d, want %d", term, got, want)
		}
	}
}

func TestRatio(t *testing.T) {
	if ratio(1, 0) != 0 || ratio(5, 4) != 1 || ratio(1, 4) != 0.25 {
		t.Fatalf("unexpected ratios")
	}
}

func TestSummaryRows(t *testing.T) {
	s := processor.Summary{
		Inputs:    3,
		Succeeded: map[string]int{"webp": 0, "original": 3},
		Skipped:   []processor.Skip{{Format: "avif", Label: "AVIF", Count: 3, Reason: "advanced codec provider unavailable"}},
		Failures:  []processor.Failure{{Input: "/a.png", Format: "WebP", Reason: "boom"}},
		Duration:  1500 * time.Millisecond,
	}
	rows := SummaryRows(s, map[string]string{"original": "Original (copy)"})

	out := RenderSummary(rows)
	for _, want := range []string{"Inputs", "Original (copy)", "3 ok", "webp", "3 skipped", "Failures", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailures(t *testing.T) {
	if RenderFailures(nil) != "" {
		t.Fatalf("no failures should render nothing")
	}
	out := RenderFailures([]processor.Failure{{Input: "/a.png", Format: "AVIF", Reason: "timed out after 1s"}})
	if !strings.Contains(out, "/a.png") || !strings.Contains(out, "timed out") {
		t.Fatalf("unexpected failures output:\n%s", out)
	}
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"ID", "Strategy"}, [][]string{{"jpeg", "advanced (jpegli)"}, {"png", "fallback (PNG)"}})
	for _, want := range []string{"ID", "Strategy", "jpeg", "fallback (PNG)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}
