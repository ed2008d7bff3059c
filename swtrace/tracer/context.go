// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"context"

	"github.com/skywatchhq/sw-trace-go/swtrace"
	"github.com/skywatchhq/sw-trace-go/swtrace/internal"
)

// ContextWithRequestTracer returns a copy of the given context which includes
// the request tracer rt.
func ContextWithRequestTracer(ctx context.Context, rt swtrace.RequestTracer) context.Context {
	return context.WithValue(ctx, internal.ActiveRequestTracerKey, rt)
}

// RequestTracerFromContext returns the request tracer contained in the given
// context. A second return value indicates if one was found in the context.
// If no request tracer is found, a no-op implementation is returned so that
// callers may use the result without checking.
func RequestTracerFromContext(ctx context.Context) (swtrace.RequestTracer, bool) {
	if ctx == nil {
		return internal.NoopRequestTracer{}, false
	}
	v := ctx.Value(internal.ActiveRequestTracerKey)
	if rt, ok := v.(swtrace.RequestTracer); ok {
		return rt, true
	}
	return internal.NoopRequestTracer{}, false
}

// StartSpanFromContext starts a span named name on the request tracer found
// in ctx. If the context holds no request tracer the call is a no-op and a
// no-op tracer is returned.
func StartSpanFromContext(ctx context.Context, name string) swtrace.RequestTracer {
	rt, _ := RequestTracerFromContext(ctx)
	rt.StartSpan(name)
	return rt
}
