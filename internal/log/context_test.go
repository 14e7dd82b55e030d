package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestWithContext_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{App: "ctx-test", Level: slog.LevelInfo, JsonFormat: true, Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := WithContext(context.Background(), l)
	got := FromContext(ctx)
	if got != l {
		t.Fatal("FromContext did not return the stored logger")
	}
}

func TestFromContext_FallsBackToNop(t *testing.T) {
	got := FromContext(context.Background())
	if got == nil {
		t.Fatal("FromContext returned nil")
	}
	// must be safe to use
	got.Info(context.Background(), "ignored")
	got.Error(context.Background(), nil, "ignored")
	if err := got.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}
}

func TestNop_WithReturnsUsable(t *testing.T) {
	n := Nop().With("k", "v")
	n.Warn(context.Background(), "ignored")
}
