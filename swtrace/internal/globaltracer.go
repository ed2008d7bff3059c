// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package internal // import "github.com/skywatchhq/sw-trace-go/swtrace/internal"

import (
	"sync/atomic"

	"github.com/skywatchhq/sw-trace-go/swtrace"
)

var (
	// globalTracer stores the current tracer as *swtrace.Tracer (pointer to
	// interface). The pointer can not be nil. If no tracer is started, the
	// pointer points to a no-op implementation.
	globalTracer atomic.Value
)

func init() {
	var tracer swtrace.Tracer = &NoopTracer{}
	globalTracer.Store(&tracer)
}

// SetGlobalTracer sets the global tracer to t. The previous tracer is
// stopped.
func SetGlobalTracer(t swtrace.Tracer) {
	old := *globalTracer.Swap(&t).(*swtrace.Tracer)
	old.Stop()
}

// GetGlobalTracer returns the currently active tracer.
func GetGlobalTracer() swtrace.Tracer {
	return *globalTracer.Load().(*swtrace.Tracer)
}

var _ swtrace.Tracer = (*NoopTracer)(nil)

// NoopTracer is an implementation of swtrace.Tracer that is a no-op.
type NoopTracer struct{}

// StartRequest implements swtrace.Tracer.
func (NoopTracer) StartRequest(parent swtrace.SpanContext) swtrace.RequestTracer {
	return NoopRequestTracer{}
}

// Extract implements swtrace.Tracer.
func (NoopTracer) Extract(carrier interface{}) (swtrace.SpanContext, error) {
	return NoopSpanContext{}, nil
}

// Inject implements swtrace.Tracer.
func (NoopTracer) Inject(ctx swtrace.SpanContext, carrier interface{}) error {
	return nil
}

// Stop implements swtrace.Tracer.
func (NoopTracer) Stop() {}

var _ swtrace.RequestTracer = (*NoopRequestTracer)(nil)

// NoopRequestTracer is an implementation of swtrace.RequestTracer that is a
// no-op. It is handed out for requests that are not being recorded.
type NoopRequestTracer struct{}

// StartSpan implements swtrace.RequestTracer.
func (NoopRequestTracer) StartSpan(name string) {}

// Annotate implements swtrace.RequestTracer.
func (NoopRequestTracer) Annotate(labels ...swtrace.Label) {}

// EndSpan implements swtrace.RequestTracer.
func (NoopRequestTracer) EndSpan() {}

// SetBaggageItem implements swtrace.RequestTracer.
func (NoopRequestTracer) SetBaggageItem(key, val string) {}

// BaggageItem implements swtrace.RequestTracer.
func (NoopRequestTracer) BaggageItem(key string) string { return "" }

// TraceID implements swtrace.RequestTracer.
func (NoopRequestTracer) TraceID() swtrace.TraceID { return swtrace.TraceID{} }

// Context implements swtrace.RequestTracer.
func (NoopRequestTracer) Context() swtrace.SpanContext { return NoopSpanContext{} }

var _ swtrace.SpanContext = (*NoopSpanContext)(nil)

// NoopSpanContext is an implementation of swtrace.SpanContext that is a
// no-op.
type NoopSpanContext struct{}

// TraceID implements swtrace.SpanContext.
func (NoopSpanContext) TraceID() swtrace.TraceID { return swtrace.TraceID{} }

// SpanID implements swtrace.SpanContext.
func (NoopSpanContext) SpanID() uint64 { return 0 }

// ForeachBaggageItem implements swtrace.SpanContext.
func (NoopSpanContext) ForeachBaggageItem(handler func(k, v string) bool) {}
