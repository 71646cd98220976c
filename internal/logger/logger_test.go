package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"DEBUG", zerolog.DebugLevel},
		{"debug", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"WARNING", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{"CRITICAL", zerolog.FatalLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(\"verbose\") should fail")
	}
}

func TestNewWithWriter_Fields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, "DEBUG")
	if err != nil {
		t.Fatal(err)
	}
	l.With("run", "abc").Info("attempt failed", "attempt", 2, "reason", "no_target_in_range")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("not a JSON line: %v\n%s", err, buf.String())
	}
	if line["run"] != "abc" {
		t.Errorf("run = %v, want abc", line["run"])
	}
	if line["attempt"] != float64(2) {
		t.Errorf("attempt = %v, want 2", line["attempt"])
	}
	if line["message"] != "attempt failed" {
		t.Errorf("message = %v", line["message"])
	}
}

func TestNewWithWriter_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, _ := NewWithWriter(&buf, "WARNING")
	l.Debug("hidden")
	l.Info("hidden")
	l.Err(errors.New("boom"), "shown")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug/info should be filtered at WARNING, got %s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("error should be logged with its cause, got %s", out)
	}
}

func TestNew_RejectsUnknownWriter(t *testing.T) {
	if _, err := New(Options{Level: "INFO", Writers: []string{"syslog"}}); err == nil {
		t.Error("expected error for unknown writer")
	}
	if _, err := New(Options{Level: "INFO", Writers: []string{"file"}}); err == nil {
		t.Error("expected error for file writer without path")
	}
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.With("k", "v").Info("ignored")
	l.Err(errors.New("x"), "ignored")
}
