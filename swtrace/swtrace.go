// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

// Package swtrace contains the interfaces that specify the implementations of
// the Skywatch tracing library, with our native implementation living in the
// "tracer" sub-package. Package "ext" provides the label keys recognized by
// the Skywatch backend.
//
// To get started, visit the documentation of the "tracer" sub-package.
package swtrace // import "github.com/skywatchhq/sw-trace-go/swtrace"

import (
	"encoding/hex"
	"fmt"

	"github.com/skywatchhq/sw-trace-go/internal/log"
)

// TraceID identifies a single trace. It is a 128-bit value rendered as 32
// lowercase hexadecimal characters on the wire. The zero TraceID means
// "no trace" and is what inert tracers report.
type TraceID [16]byte

// String returns the hexadecimal rendering of the trace ID.
func (t TraceID) String() string {
	return hex.EncodeToString(t[:])
}

// IsZero reports whether t is the zero trace ID.
func (t TraceID) IsZero() bool {
	return t == TraceID{}
}

// ParseTraceID parses the hexadecimal rendering of a trace ID, as found in
// propagation headers.
func ParseTraceID(s string) (TraceID, error) {
	var id TraceID
	if len(s) != 32 {
		return id, fmt.Errorf("malformed trace id %q: must be 32 hexadecimal characters", s)
	}
	if _, err := hex.Decode(id[:], []byte(s)); err != nil {
		return TraceID{}, fmt.Errorf("malformed trace id %q: %v", s, err)
	}
	return id, nil
}

// Label is a single key/value annotation attached to a span. Labels form an
// ordered sequence; the order in which they were added is preserved all the
// way to the backend.
type Label struct {
	Key   string
	Value string
}

// Tracer specifies an implementation of the Skywatch tracer which allows
// tracing requests and propagating trace context across services. The
// official implementation is exposed as functions within the "tracer"
// package.
type Tracer interface {
	// StartRequest returns a RequestTracer for a single inbound request.
	// When parent carries an upstream sampling decision it is honored;
	// otherwise the tracer's sampler decides whether the request is
	// recorded. A nil parent means no inbound trace context. Requests
	// that are not recorded receive an inert tracer.
	StartRequest(parent SpanContext) RequestTracer

	// Extract extracts a span context from a given carrier. Note that
	// baggage item keys will always be lower-cased to maintain
	// consistency. It is impossible to maintain the original casing due
	// to MIME header canonicalization standards.
	Extract(carrier interface{}) (SpanContext, error)

	// Inject injects a span context into the given carrier.
	Inject(ctx SpanContext, carrier interface{}) error

	// Stop stops the tracer. Calls to Stop should be idempotent.
	Stop()
}

// RequestTracer manages the spans of exactly one in-flight request. Spans
// nest as a stack: StartSpan pushes, EndSpan pops, and the parent of a new
// span is the span currently on top. When the last open span is closed the
// completed trace is handed to the export pipeline and the tracer becomes
// inert.
//
// A RequestTracer must not be shared across requests. Goroutines spawned
// while serving the same request may use it concurrently.
type RequestTracer interface {
	// StartSpan opens a new span named name as a child of the currently
	// active span and makes it the active span.
	StartSpan(name string)

	// Annotate adds labels to the currently active span. It is a no-op
	// when no span is active.
	Annotate(labels ...Label)

	// EndSpan closes the currently active span. Closing the last open
	// span submits the completed trace for export. Calling EndSpan with
	// no active span is a no-op.
	EndSpan()

	// SetBaggageItem sets a key/value pair that propagates to downstream
	// services through outbound trace headers.
	SetBaggageItem(key, val string)

	// BaggageItem returns the baggage item held by the given key.
	BaggageItem(key string) string

	// TraceID returns the identifier of the trace being recorded. It
	// returns the zero TraceID when the request is not being recorded,
	// which makes skipping annotation work cheap:
	//
	//	if rt.TraceID().IsZero() {
	//		return
	//	}
	TraceID() TraceID

	// Context returns the propagation context of the currently active
	// span, suitable for injecting into outbound requests.
	Context() SpanContext
}

// SpanContext represents the propagated state of a span: everything needed
// to parent a downstream span to it across process boundaries.
type SpanContext interface {
	// TraceID returns the trace ID that this context is carrying.
	TraceID() TraceID

	// SpanID returns the span ID that this context is carrying.
	SpanID() uint64

	// ForeachBaggageItem provides an iterator over the key/value pairs set as
	// baggage within this context. Iteration stops when the handler returns
	// false.
	ForeachBaggageItem(handler func(k, v string) bool)
}

// Logger implementations are able to log given messages that the tracer
// might output.
type Logger interface {
	// Log prints the given message.
	Log(msg string)
}

// UseLogger sets l as the logger for all tracer logs.
func UseLogger(l Logger) {
	log.UseLogger(l)
}
