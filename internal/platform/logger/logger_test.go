package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	out := make([]map[string]any, 0)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestZeroLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Debug, Format: FormatJSON, App: "pets-provider", Out: &buf})

	l.With(map[string]any{"op": "insert", "": "dropped"}).Info("inserted", map[string]any{"id": 7})

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	got := lines[0]
	if got["message"] != "inserted" || got["level"] != "info" || got["app"] != "pets-provider" || got["op"] != "insert" {
		t.Fatalf("unexpected entry %v", got)
	}
	if got["id"] != float64(7) {
		t.Fatalf("expected id field, got %v", got["id"])
	}
	if _, ok := got[""]; ok {
		t.Fatalf("empty keys must be dropped")
	}
}

func TestZeroLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Format: FormatJSON, Out: &buf})

	l.Debug("d", nil)
	l.Info("i", nil)
	l.Warn("w", nil)
	l.Error("e", nil)

	lines := decodeLines(t, &buf)
	if len(lines) != 2 || lines[0]["message"] != "w" || lines[1]["message"] != "e" {
		t.Fatalf("unexpected entries %v", lines)
	}
}

func TestZeroLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Format: FormatText, Out: &buf})

	l.Error("Failed to insert row for content://x/pets", map[string]any{"op": "insert"})

	out := buf.String()
	if !strings.Contains(out, "Failed to insert row for content://x/pets") || !strings.Contains(out, "op=insert") {
		t.Fatalf("unexpected text output %q", out)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	levels := map[string]Level{"": Info, "DEBUG": Debug, "warning": Warn, "error": Error, "nope": Info}
	for in, want := range levels {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if ParseFormat(" JSON ") != FormatJSON || ParseFormat("yaml") != FormatText {
		t.Fatalf("unexpected ParseFormat results")
	}
}

func TestPgxTracer_FollowsLoggerLevel(t *testing.T) {
	tr := PgxTracer(New(Options{Level: Debug, Format: FormatJSON, Out: &bytes.Buffer{}}))
	if tr.LogLevel != tracelog.LogLevelDebug || tr.Logger == nil {
		t.Fatalf("unexpected tracer %+v", tr)
	}
	if PgxTracer(Nop()).LogLevel != tracelog.LogLevelError {
		t.Fatalf("nop logger should only trace errors")
	}
}
