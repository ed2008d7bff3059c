// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

//go:generate msgp -unexported -marshal=false -o=span_msgp.go -tests=false

package tracer

import (
	"fmt"

	"github.com/skywatchhq/sw-trace-go/swtrace"
)

// label is the wire form of a single span annotation.
type label struct {
	key   string `msg:"key"`
	value string `msg:"value"`
}

// span represents one timed operation within a trace. Spans are built by a
// requestTracer while its request is in flight and become immutable once the
// completed trace has been handed to the exporter.
type span struct {
	name     string  `msg:"name"`           // operation name, e.g. "checkout.charge"
	spanID   uint64  `msg:"span_id"`        // identifier of this span
	parentID uint64  `msg:"parent_span_id"` // identifier of the parent span; 0 means the span is a root
	start    int64   `msg:"start"`          // start time in nanoseconds since the Unix epoch
	end      int64   `msg:"end"`            // end time in nanoseconds since the Unix epoch; 0 while the span is open
	labels   []label `msg:"labels"`         // annotations in the order they were added
}

// addLabels appends the given annotations, preserving their order.
func (s *span) addLabels(labels ...swtrace.Label) {
	for _, l := range labels {
		s.labels = append(s.labels, label{key: l.Key, value: l.Value})
	}
}

// String is used for debug logging only.
func (s *span) String() string {
	return fmt.Sprintf("span(name: %q, span_id: %d, parent_span_id: %d, labels: %d)",
		s.name, s.spanID, s.parentID, len(s.labels))
}

// spanList implements msgp.Encodable on a list of spans.
type spanList []*span

// trace is the wire form of one completed request trace: the hex trace ID
// and every span recorded under it.
type trace struct {
	traceID string   `msg:"trace_id"`
	spans   spanList `msg:"spans"`
}

// traceList implements msgp.Decodable on a list of traces. It is only used
// in tests to decode payloads back.
type traceList []*trace
