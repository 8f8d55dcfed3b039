package requestctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestLoggerRoundTrip(t *testing.T) {
	if Logger(context.Background()) != NoopLogger() {
		t.Fatal("expected noop logger for empty context")
	}
	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	if Logger(ctx) != logger {
		t.Fatal("expected stored logger")
	}
	if Logger(WithLogger(ctx, nil)) != NoopLogger() {
		t.Fatal("expected nil logger to be replaced by noop logger")
	}
}

func TestTraceRoundTrip(t *testing.T) {
	if TraceID(context.Background()) != "" {
		t.Fatal("expected empty trace id")
	}
	ctx := WithTrace(context.Background(), TraceInfo{TraceID: "abc", Sampled: true})
	info, ok := Trace(ctx)
	if !ok || info.TraceID != "abc" || !info.Sampled {
		t.Fatalf("unexpected trace info %#v", info)
	}
}
