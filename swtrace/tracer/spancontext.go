// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"sync"
	"sync/atomic"

	"github.com/skywatchhq/sw-trace-go/swtrace"
)

var _ swtrace.SpanContext = (*spanContext)(nil)

// spanContext represents a span state that can propagate to descendant spans
// and across process boundaries. It contains all the information needed to
// parent a new span to the span it belongs to.
type spanContext struct {
	// the below group propagates cross-process

	traceID swtrace.TraceID
	spanID  uint64

	sampled    bool // the sampling decision, meaningful only when hasSampled is set
	hasSampled bool // whether the context carries a sampling decision at all

	mu         sync.RWMutex // guards below fields
	baggage    map[string]string
	hasBaggage uint32 // atomic flag for quick checking presence of baggage. 0 indicates no baggage, otherwise baggage exists.
}

// TraceID implements swtrace.SpanContext.
func (c *spanContext) TraceID() swtrace.TraceID { return c.traceID }

// SpanID implements swtrace.SpanContext.
func (c *spanContext) SpanID() uint64 { return c.spanID }

// ForeachBaggageItem implements swtrace.SpanContext.
func (c *spanContext) ForeachBaggageItem(handler func(k, v string) bool) {
	if atomic.LoadUint32(&c.hasBaggage) == 0 {
		return
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for k, v := range c.baggage {
		if !handler(k, v) {
			break
		}
	}
}

func (c *spanContext) setBaggageItem(key, val string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.baggage == nil {
		atomic.StoreUint32(&c.hasBaggage, 1)
		c.baggage = make(map[string]string, 1)
	}
	c.baggage[key] = val
}

func (c *spanContext) baggageItem(key string) string {
	if atomic.LoadUint32(&c.hasBaggage) == 0 {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baggage[key]
}

// samplingDecision returns the sampling decision carried by the context and
// reports whether one is present.
func (c *spanContext) samplingDecision() (sampled, ok bool) {
	return c.sampled, c.hasSampled
}

// setSamplingDecision sets the carried sampling decision.
func (c *spanContext) setSamplingDecision(sampled bool) {
	c.sampled = sampled
	c.hasSampled = true
}

// sampledFromContext reports the sampling decision carried by ctx, together
// with whether ctx carries one at all. Contexts from other tracer
// implementations never carry an explicit decision; a non-zero trace ID from
// one counts as sampled, since the trace was recorded upstream.
func sampledFromContext(ctx swtrace.SpanContext) (sampled, ok bool) {
	if ctx == nil {
		return false, false
	}
	if c, isOurs := ctx.(*spanContext); isOurs {
		return c.samplingDecision()
	}
	if ctx.TraceID().IsZero() {
		return false, false
	}
	return true, true
}
