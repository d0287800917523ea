package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/overlens/internal/core/ports"
)

// Bridge is an sdktrace.SpanProcessor that reports finished spans to the
// logger at debug level.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a Bridge writing to logger.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, its file attribute and duration.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if !s.SpanContext().IsValid() {
		return
	}

	msg := s.Name()
	for _, kv := range s.Attributes() {
		if kv.Key == attribute.Key("file") {
			msg += " " + kv.Value.AsString()
		}
	}
	msg += fmt.Sprintf(" (%s)", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond))
	if s.Status().Code == codes.Error {
		msg += " failed: " + s.Status().Description
	}
	b.logger.Debug(msg)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(context.Context) error {
	return nil
}

// Setup installs a global tracer provider that feeds the bridge. The
// returned function shuts the provider down.
func Setup(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(logger)))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
