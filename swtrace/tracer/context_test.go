// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package tracer

import (
	"context"
	"testing"

	"github.com/skywatchhq/sw-trace-go/swtrace/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithRequestTracer(t *testing.T) {
	tr := newRequestTestTracer(t)
	rt := newRequestTracer(tr, random.TraceID(), 0)
	ctx := ContextWithRequestTracer(context.Background(), rt)
	got, ok := RequestTracerFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, rt, got)
}

func TestRequestTracerFromContextMissing(t *testing.T) {
	got, ok := RequestTracerFromContext(context.Background())
	assert.False(t, ok)
	assert.Equal(t, internal.NoopRequestTracer{}, got)

	got, ok = RequestTracerFromContext(nil)
	assert.False(t, ok)
	assert.Equal(t, internal.NoopRequestTracer{}, got)
}

func TestContextIsolation(t *testing.T) {
	// two concurrent requests get distinct tracers out of their own contexts
	tr := newRequestTestTracer(t)
	rt1 := newRequestTracer(tr, random.TraceID(), 0)
	rt2 := newRequestTracer(tr, random.TraceID(), 0)
	ctx1 := ContextWithRequestTracer(context.Background(), rt1)
	ctx2 := ContextWithRequestTracer(context.Background(), rt2)
	got1, _ := RequestTracerFromContext(ctx1)
	got2, _ := RequestTracerFromContext(ctx2)
	assert.NotEqual(t, got1.TraceID(), got2.TraceID())
}

func TestStartSpanFromContext(t *testing.T) {
	tr := newRequestTestTracer(t)
	rt := newRequestTracer(tr, random.TraceID(), 0)
	ctx := ContextWithRequestTracer(context.Background(), rt)

	got := StartSpanFromContext(ctx, "db.query")
	assert.Equal(t, rt, got)
	got.EndSpan()

	trc := completedTrace(t, tr)
	require.Len(t, trc.spans, 1)
	assert.Equal(t, "db.query", trc.spans[0].name)
}

func TestStartSpanFromContextMissing(t *testing.T) {
	got := StartSpanFromContext(context.Background(), "ignored")
	assert.True(t, got.TraceID().IsZero())
	got.EndSpan() // inert, must not panic
}
