package logx

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestWriterLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug").With(String("component", "backend"))

	log.Info("installed", String("schedule", "updater"), Int("day", 3))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if m["message"] != "installed" {
		t.Fatalf("message = %v", m["message"])
	}
	if m["component"] != "backend" || m["schedule"] != "updater" {
		t.Fatalf("missing fields: %v", m)
	}
	if c, _ := m["caller"].(string); !strings.HasPrefix(c, "logging_test.go:") {
		t.Fatalf("caller = %q, want short file:line", c)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "warn")
	log.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}
	if log.Enabled(LevelInfo) {
		t.Fatal("Enabled(info) = true at warn level")
	}
	log.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Fatalf("warn not logged: %q", buf.String())
	}
}

func TestZeroLoggerIsSafe(t *testing.T) {
	var l Logger
	if !l.IsZero() {
		t.Fatal("zero Logger should report IsZero")
	}
	l.Error("nothing happens")
	if Nop().IsZero() {
		t.Fatal("Nop() should not be zero")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := parseLevel(in, zerolog.InfoLevel); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestJournalFields(t *testing.T) {
	msg, vars := journalFields([]byte(`{"level":"info","time":"x","message":"hello","schedule":"llm_pipeline","_x-y":1}`))
	if msg != "hello" {
		t.Fatalf("msg = %q", msg)
	}
	if vars["SCHEDULE"] != "llm_pipeline" {
		t.Fatalf("vars = %v", vars)
	}
	if vars["X_Y"] != "1" {
		t.Fatalf("key sanitising failed: %v", vars)
	}
	if _, ok := vars["LEVEL"]; ok {
		t.Fatalf("level should not be forwarded: %v", vars)
	}
}

func TestTraceWithDurationAndStrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info")
	log.Trace("dropped")
	if buf.Len() != 0 {
		t.Fatalf("trace logged at info level: %q", buf.String())
	}

	log = NewWriter(&buf, "trace")
	log.Trace("listed", Strs("names", []string{"a", "b"}), Duration("took", 1500*time.Millisecond))

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if m["level"] != "trace" {
		t.Fatalf("level = %v", m["level"])
	}
	names, _ := m["names"].([]any)
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("names = %v", m["names"])
	}
	if _, ok := m["took"].(float64); !ok {
		t.Fatalf("took = %v", m["took"])
	}
}
