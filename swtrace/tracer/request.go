// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/skywatchhq/sw-trace-go/swtrace"
)

// now returns the current UNIX time in nanoseconds. It is a variable so that
// tests can use a fixed clock.
var now = func() int64 {
	return time.Now().UnixNano()
}

var _ swtrace.RequestTracer = (*requestTracer)(nil)

// requestTracer records the spans of a single in-flight request as a stack.
// It belongs to exactly one request; the methods are safe to call from
// goroutines spawned by that request's handler.
type requestTracer struct {
	// tracer is the tracer the completed trace is handed to.
	tracer *tracer

	// traceID identifies the trace this request records into. It is set
	// at creation time and never changes.
	traceID swtrace.TraceID

	mu sync.Mutex // guards the fields below

	// parentID is the span ID propagated by the upstream service, or 0
	// when this request starts a new trace.
	parentID uint64

	// stack holds the open spans, innermost last.
	stack []*span

	// spans holds every span started on this request, in start order. It
	// is handed off wholesale when the outermost span ends.
	spans spanList

	// baggage propagates to downstream services but is never exported.
	baggage map[string]string

	// done is set once the completed trace has been handed off. All
	// operations become no-ops from then on.
	done bool
}

// newRequestTracer returns a request tracer recording into the given trace.
// parentID may be 0 when the request is not the continuation of an upstream
// trace.
func newRequestTracer(t *tracer, traceID swtrace.TraceID, parentID uint64) *requestTracer {
	return &requestTracer{
		tracer:   t,
		traceID:  traceID,
		parentID: parentID,
	}
}

// StartSpan implements swtrace.RequestTracer.
func (r *requestTracer) StartSpan(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done {
		return
	}
	parent := r.parentID
	if n := len(r.stack); n > 0 {
		parent = r.stack[n-1].spanID
	}
	s := &span{
		name:     name,
		spanID:   random.Uint64(),
		parentID: parent,
		start:    now(),
	}
	for _, l := range r.tracer.config.globalLabels {
		s.labels = append(s.labels, label{key: l.Key, value: l.Value})
	}
	r.stack = append(r.stack, s)
	r.spans = append(r.spans, s)
	atomic.AddInt64(&r.tracer.spansStarted, 1)
}

// Annotate implements swtrace.RequestTracer. The labels go on the span
// started by the most recent StartSpan. Calls with no span open are no-ops.
func (r *requestTracer) Annotate(labels ...swtrace.Label) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done || len(r.stack) == 0 {
		return
	}
	r.stack[len(r.stack)-1].addLabels(labels...)
}

// EndSpan implements swtrace.RequestTracer. It closes the span started by
// the most recent unmatched StartSpan. When the outermost span closes, the
// completed trace is handed to the tracer and the request tracer becomes
// inert. Calls with no span open are no-ops.
func (r *requestTracer) EndSpan() {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.stack)
	if r.done || n == 0 {
		return
	}
	s := r.stack[n-1]
	r.stack[n-1] = nil
	r.stack = r.stack[:n-1]
	s.end = now()
	atomic.AddInt64(&r.tracer.spansFinished, 1)
	if n == 1 {
		r.done = true
		t := &trace{traceID: r.traceID.String(), spans: r.spans}
		// ownership of the spans moves with the trace
		r.stack = nil
		r.spans = nil
		r.tracer.pushTrace(t)
	}
}

// SetBaggageItem implements swtrace.RequestTracer.
func (r *requestTracer) SetBaggageItem(key, val string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.baggage == nil {
		r.baggage = make(map[string]string, 1)
	}
	r.baggage[key] = val
}

// BaggageItem implements swtrace.RequestTracer.
func (r *requestTracer) BaggageItem(key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.baggage[key]
}

// TraceID implements swtrace.RequestTracer.
func (r *requestTracer) TraceID() swtrace.TraceID {
	return r.traceID
}

// Context implements swtrace.RequestTracer. It returns a snapshot of the
// current position in the trace, suitable for injection into an outbound
// request. The span ID is the one of the innermost open span, falling back
// to the propagated parent when no span is open.
func (r *requestTracer) Context() swtrace.SpanContext {
	r.mu.Lock()
	defer r.mu.Unlock()
	ctx := &spanContext{
		traceID: r.traceID,
		spanID:  r.parentID,
	}
	if n := len(r.stack); n > 0 {
		ctx.spanID = r.stack[n-1].spanID
	}
	ctx.setSamplingDecision(true)
	for k, v := range r.baggage {
		ctx.setBaggageItem(k, v)
	}
	return ctx
}
