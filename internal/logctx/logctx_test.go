package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFrom_Default(t *testing.T) {
	if got := From(context.Background()); got != slog.Default() {
		t.Error("From(empty context) should return slog.Default()")
	}
}

func TestWith_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	ctx := With(context.Background(), logger)

	From(ctx).Info("hello", "paper", "a.md")
	From(ctx).Debug("hidden")

	out := buf.String()
	if !strings.Contains(out, "msg=hello") || !strings.Contains(out, "paper=a.md") {
		t.Errorf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug record emitted at info level")
	}
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, true).Debug("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("debug record dropped in verbose mode")
	}
}
