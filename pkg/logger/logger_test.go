package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit_SingletonAndFields(t *testing.T) {
	reset()
	defer reset()

	var buf bytes.Buffer
	l := Init(Options{Level: "warn", Service: "marketplace", Output: &buf})
	again := Init(Options{Level: "debug"})

	l.Info().Msg("dropped")
	again.Debug().Msg("dropped")
	again.Warn().Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected exactly one JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" {
		t.Fatalf("unexpected message: %v", entry["message"])
	}
	if entry["service"] != "marketplace" {
		t.Fatalf("missing service field: %v", entry)
	}
}

func TestInit_PrettyWriter(t *testing.T) {
	reset()
	defer reset()

	var buf bytes.Buffer
	l := Init(Options{Pretty: true, Output: &buf})
	l.Error().Msg("boom")

	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatalf("expected console output, got JSON %q", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("boom")) {
		t.Fatalf("message missing: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":        zerolog.InfoLevel,
		"DEBUG":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
