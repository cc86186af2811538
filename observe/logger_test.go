package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatal("no log output")
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", lines[len(lines)-1], err)
	}
	return entry
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{level: "debug", wantDebug: true, wantInfo: true, wantWarn: true},
		{level: "info", wantInfo: true, wantWarn: true},
		{level: "warn", wantWarn: true},
		{level: "error"},
		{level: "bogus", wantInfo: true, wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var debug, info, warn bytes.Buffer
			ctx := context.Background()
			NewLoggerWithWriter(tt.level, &debug).Debug(ctx, "msg")
			NewLoggerWithWriter(tt.level, &info).Info(ctx, "msg")
			NewLoggerWithWriter(tt.level, &warn).Warn(ctx, "msg")

			if got := debug.Len() > 0; got != tt.wantDebug {
				t.Errorf("debug wrote=%v, want %v", got, tt.wantDebug)
			}
			if got := info.Len() > 0; got != tt.wantInfo {
				t.Errorf("info wrote=%v, want %v", got, tt.wantInfo)
			}
			if got := warn.Len() > 0; got != tt.wantWarn {
				t.Errorf("warn wrote=%v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf).With(Component("caller"))

	l.Warn(context.Background(), "non-2xx response",
		String("path", "/catalog"),
		Int("status", 503),
		Duration("elapsed", 1500*time.Millisecond),
		Err(errors.New("boom")),
	)

	entry := lastEntry(t, &buf)
	want := map[string]any{
		"level":     "warn",
		"message":   "non-2xx response",
		"component": "caller",
		"path":      "/catalog",
		"status":    float64(503),
		"elapsed":   "1.5s",
		"error":     "boom",
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
}

func TestLogger_Redaction(t *testing.T) {
	for _, key := range RedactedFields {
		t.Run(key, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLoggerWithWriter("info", &buf)
			l.Info(context.Background(), "msg", Field{Key: key, Value: "s3cr3t"})

			if strings.Contains(buf.String(), "s3cr3t") {
				t.Fatalf("value for %q leaked: %s", key, buf.String())
			}
			if entry := lastEntry(t, &buf); entry[key] != "[REDACTED]" {
				t.Errorf("%s = %v, want [REDACTED]", key, entry[key])
			}
		})
	}
}

func TestLogger_RedactionMatching(t *testing.T) {
	tests := []struct {
		key      string
		redacted bool
	}{
		{"Authorization", true},
		{"refresh_token", true},
		{"client_secret", true},
		{"db_password", true},
		{"status", false},
		{"token_ttl", false},
	}
	for _, tt := range tests {
		if got := isRedactedField(tt.key); got != tt.redacted {
			t.Errorf("isRedactedField(%q) = %v, want %v", tt.key, got, tt.redacted)
		}
	}
}

func TestLogger_WithRedacts(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf).With(Field{Key: "token", Value: "abc"})
	l.Info(context.Background(), "msg")

	if strings.Contains(buf.String(), "\"abc\"") {
		t.Fatalf("token leaked: %s", buf.String())
	}
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleLogger("info", &buf)
	l.Info(context.Background(), "warm-up done", String("path", "/catalog"))

	out := buf.String()
	if !strings.Contains(out, "warm-up done") || !strings.Contains(out, "/catalog") {
		t.Fatalf("console output missing content: %q", out)
	}
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("console output looks like JSON: %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	if l.With(Component("x")) == nil {
		t.Fatal("With returned nil")
	}
}
