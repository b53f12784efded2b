package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func mustInit(t *testing.T, level slog.Level, format string, buf *bytes.Buffer) {
	t.Helper()
	if err := Init(level, format, buf); err != nil {
		t.Fatalf("Init(%v, %q) failed: %v", level, format, err)
	}
}

func TestNew_TagsComponent(t *testing.T) {
	var buf bytes.Buffer
	mustInit(t, slog.LevelDebug, FormatText, &buf)

	New("server").Info("starting HTTP server", "addr", ":8050")

	output := buf.String()
	for _, want := range []string{"component=server", "starting HTTP server", "addr=:8050"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output, got: %s", want, output)
		}
	}
}

func TestInit_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	mustInit(t, slog.LevelInfo, FormatJSON, &buf)

	New("cli").Info("dataset loaded", "records", 56)

	output := buf.String()
	for _, want := range []string{`"level":"INFO"`, `"component":"cli"`, `"records":56`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in output, got: %s", want, output)
		}
	}
}

func TestInit_LevelGating(t *testing.T) {
	var buf bytes.Buffer
	mustInit(t, slog.LevelWarn, FormatText, &buf)

	logger := New("cli")
	logger.Info("dataset loaded")
	logger.Warn("payload range reversed")

	output := buf.String()
	if strings.Contains(output, "dataset loaded") {
		t.Error("Info record should be dropped at warn level")
	}
	if !strings.Contains(output, "payload range reversed") {
		t.Error("Warn record should be written at warn level")
	}
}

func TestInit_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	mustInit(t, slog.LevelInfo, FormatText, &buf)

	if err := Init(slog.LevelInfo, "xml", &buf); err == nil {
		t.Fatal("Expected error for unknown format")
	}

	// the previous default stays installed
	New("cli").Info("still text")
	if !strings.Contains(buf.String(), "component=cli") {
		t.Errorf("Expected the text handler to remain the default, got: %s", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	var buf bytes.Buffer
	mustInit(t, slog.LevelDebug, FormatText, &buf)

	Discard().Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got: %s", buf.String())
	}
}
