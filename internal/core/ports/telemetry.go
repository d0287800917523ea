package ports

import (
	"context"
	"time"
)

// Span is a unit of traced work.
//
//go:generate go run go.uber.org/mock/mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Span interface {
	// SetAttribute attaches a key/value pair to the span.
	SetAttribute(key string, value any)
	// RecordError marks the span as failed.
	RecordError(err error)
	// End finishes the span.
	End()
}

// Tracer starts spans around resolve and analyze calls.
type Tracer interface {
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Metrics records index and worker counters.
type Metrics interface {
	// CacheLookup counts a cache hit or miss.
	CacheLookup(hit bool)
	// AnalysisFinished records the outcome ("ok", "timeout", "terminated", "error")
	// and latency of one worker request.
	AnalysisFinished(outcome string, elapsed time.Duration)
	// WorkerRestarted counts a worker restart.
	WorkerRestarted()
}
