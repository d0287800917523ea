package telemetry

import (
	"context"
	"time"

	"go.trai.ch/overlens/internal/core/ports"
)

// NoOpTracer is a ports.Tracer that records nothing.
type NoOpTracer struct{}

// NewNoOpTracer returns a NoOpTracer.
func NewNoOpTracer() NoOpTracer {
	return NoOpTracer{}
}

// Start returns ctx unchanged and a span that does nothing.
func (NoOpTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noOpSpan{}
}

type noOpSpan struct{}

func (noOpSpan) SetAttribute(string, any) {}
func (noOpSpan) RecordError(error)        {}
func (noOpSpan) End()                     {}

// NoOpMetrics is a ports.Metrics that records nothing.
type NoOpMetrics struct{}

// CacheLookup does nothing.
func (NoOpMetrics) CacheLookup(bool) {}

// AnalysisFinished does nothing.
func (NoOpMetrics) AnalysisFinished(string, time.Duration) {}

// WorkerRestarted does nothing.
func (NoOpMetrics) WorkerRestarted() {}
