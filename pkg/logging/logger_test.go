package logging

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestLevelFromVerbosity(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  slog.Level
	}{
		{"", 0, slog.LevelInfo},
		{"", 1, slog.LevelDebug},
		{"", 2, LevelTrace},
		{"", 5, LevelTrace},
		{"warn", 0, slog.LevelWarn},
		{"WARNING", 0, slog.LevelWarn},
		{"error", 2, slog.LevelError},
		{" trace ", 0, LevelTrace},
		{"debug", 0, slog.LevelDebug},
		{"bogus", 1, slog.LevelDebug},
	}

	for _, tt := range tests {
		if got := LevelFromVerbosity(tt.name, tt.count); got != tt.want {
			t.Errorf("LevelFromVerbosity(%q, %d) = %v, want %v", tt.name, tt.count, got, tt.want)
		}
	}
}

func TestCompactHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := NewCompactHandler(&buf, &slog.HandlerOptions{Level: LevelTrace})
	log := slog.New(h).With("document", "rete.dgml").WithGroup("style")

	log.Log(context.Background(), LevelTrace, "resolved", "nodes", 3, "title", "Rete Network")

	line := buf.String()
	if !strings.HasPrefix(line, "[TRACE] ") {
		t.Errorf("line = %q, want TRACE prefix", line)
	}
	for _, want := range []string{"resolved |", "document=rete.dgml", "style.nodes=3", `style.title="Rete Network"`} {
		if !strings.Contains(line, want) {
			t.Errorf("line = %q, missing %q", line, want)
		}
	}
	if strings.Index(line, "document=") > strings.Index(line, "style.nodes=") {
		t.Errorf("handler attributes should precede record attributes: %q", line)
	}
}

func TestCompactHandlerLevel(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	log.Info("hidden")
	log.Warn("shown", "error", "boom", "durationMs", 12)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("INFO logged below WARN threshold: %q", out)
	}
	if !strings.Contains(out, `[WARN]  `) || !strings.Contains(out, `error="boom"`) || !strings.Contains(out, "duration=12ms") {
		t.Errorf("out = %q", out)
	}
}

func TestPackageLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(&bytes.Buffer{})

	Debug("not yet")
	SetLevel(slog.LevelDebug)
	ctx := WithRequestID(context.Background(), "0123456789abcdef")
	DebugContext(ctx, "now", "k", "v")

	out := buf.String()
	if strings.Contains(out, "not yet") {
		t.Error("DEBUG logged at default level")
	}
	if !strings.Contains(out, "req=01234567") || !strings.Contains(out, "k=v") {
		t.Errorf("out = %q", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("generated id %q, header %q", seen, rec.Header().Get("X-Request-ID"))
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(buf.String(), "request rejected") || !strings.Contains(buf.String(), "status=418") {
		t.Errorf("client error not logged: %q", buf.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "given" {
		t.Errorf("request id = %q, want the caller's", seen)
	}
}

func TestCompactHandlerComponent(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewCompactHandler(&buf, nil)).With("component", "style", "rule", 2)

	log.Info("rule ignored", "targetType", "Group")

	line := buf.String()
	if !strings.Contains(line, "[style] rule ignored | rule=2 targetType=Group") {
		t.Errorf("line = %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Errorf("component printed as an attribute: %q", line)
	}
}

func TestCompactHandlerColor(t *testing.T) {
	saved := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = saved }()

	var plain, colored bytes.Buffer
	slog.New(NewCompactHandler(&plain, nil)).Error("boom")
	slog.New(NewCompactHandler(&colored, nil).WithColor(true)).Error("boom")

	if !strings.HasPrefix(plain.String(), "[ERROR] ") {
		t.Errorf("plain = %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored = %q, want ANSI escapes", colored.String())
	}
}
