package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Debug().Str("codec", "webp").Msg("codec usable")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if line["level"] != "debug" || line["message"] != "codec usable" || line["codec"] != "webp" {
		t.Fatalf("unexpected line %v", line)
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "WARN", true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	log.Info().Msg("starting batch")
	if !strings.Contains(buf.String(), "starting batch") {
		t.Fatalf("message missing from %q", buf.String())
	}
}

func TestBadLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud", false); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
