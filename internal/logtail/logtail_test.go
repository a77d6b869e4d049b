package logtail

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "zero reads nothing", maxLines: 0, expected: nil},
		{name: "negative reads nothing", maxLines: -1, expected: nil},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read(missing) = %v, %v; want nil, nil", got, err)
	}
}

func TestParse_SlogHandlers(t *testing.T) {
	var text, js bytes.Buffer
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	for _, logger := range []*slog.Logger{
		slog.New(slog.NewTextHandler(&text, opts)),
		slog.New(slog.NewJSONHandler(&js, opts)),
	} {
		logger.With("component", "storefront").Warn("push inventory failed", "store", "shop", "error", `say "hi"`)
	}

	for name, buf := range map[string]*bytes.Buffer{"text": &text, "json": &js} {
		t.Run(name, func(t *testing.T) {
			e := Parse(strings.TrimSpace(buf.String()))
			if e.Level != slog.LevelWarn {
				t.Errorf("Level = %v, want WARN", e.Level)
			}
			if e.Message != "push inventory failed" {
				t.Errorf("Message = %q", e.Message)
			}
			if e.Component != "storefront" {
				t.Errorf("Component = %q, want storefront", e.Component)
			}
			if e.Time.IsZero() {
				t.Error("Time was not parsed")
			}
			if e.Attrs["store"] != "shop" || e.Attrs["error"] != `say "hi"` {
				t.Errorf("Attrs = %#v", e.Attrs)
			}
		})
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("panic: something broke")
	if e.Message != "panic: something broke" || e.Level != slog.LevelInfo {
		t.Fatalf("Parse(plain) = %#v", e)
	}
}

func TestTail_FiltersByLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "catch.log")
	file, err := os.Create(logPath)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Debug("inventory synced")
	logger.Info("store activated")
	logger.Error("subscribe failed")
	if err := file.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	entries, err := Tail(logPath, 10, slog.LevelInfo)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Tail returned %d entries, want 2: %#v", len(entries), entries)
	}
	if entries[0].Message != "store activated" || entries[1].Level != slog.LevelError {
		t.Fatalf("entries = %#v", entries)
	}
}
