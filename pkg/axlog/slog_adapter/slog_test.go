package slogadapter

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestAdapterWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	a := New(logger).With("component", "netbind")
	a.Warn("bind request timed out", "desired", 5)

	out := buf.String()
	if !strings.Contains(out, "bind request timed out") {
		t.Fatalf("missing message in %q", out)
	}
	if !strings.Contains(out, "component=netbind") || !strings.Contains(out, "desired=5") {
		t.Errorf("missing attributes in %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
