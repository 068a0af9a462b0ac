package telemetry

import (
	"context"
	"testing"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init() // second call must not panic on duplicate registration
	if DownloadsStarted == nil || PipelineDuration == nil || ActivePipelinesGauge == nil {
		t.Fatal("metrics not registered")
	}
}

func TestActivePipelinesAddNilSafe(t *testing.T) {
	// Must not panic even before Init (gauge helpers are nil-guarded).
	ActivePipelinesAdd(1)
	Init()
	ActivePipelinesAdd(1)
	ActivePipelinesAdd(-1)
}

func TestCorrelation(t *testing.T) {
	ctx := context.Background()
	if got := GetCorrelation(ctx); got != "" {
		t.Errorf("empty context corr = %q", got)
	}
	ctx = WithCorrelation(ctx, "abc-123")
	if got := GetCorrelation(ctx); got != "abc-123" {
		t.Errorf("corr = %q, want abc-123", got)
	}
	if l := LoggerWithCorr(ctx); l == nil {
		t.Fatal("nil logger")
	}
}
