package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger_ProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("prod", &buf)

	l.Debug().Msg("hidden")
	l.Info().Str("id", "h1").Msg("hotel created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if rec["service"] != "hotel_detail" || rec["id"] != "h1" || rec["message"] != "hotel created" {
		t.Fatalf("unexpected record: %v", rec)
	}
}

func TestNewLogger_DevIsConsoleAtDebug(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger("development", &buf)
	l.Debug().Msg("visible")

	out := buf.String()
	if !strings.Contains(out, "visible") {
		t.Fatalf("debug line missing: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("dev output should not be JSON: %q", out)
	}
}
