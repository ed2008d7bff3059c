// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Skywatch (https://www.skywatchhq.com/).
// Copyright 2023 Skywatch, Inc.

package internal

import (
	"testing"

	"github.com/skywatchhq/sw-trace-go/swtrace"

	"github.com/stretchr/testify/assert"
)

type recordingTracer struct {
	NoopTracer
	stopped int
}

func (r *recordingTracer) Stop() { r.stopped++ }

func TestGlobalTracer(t *testing.T) {
	defer SetGlobalTracer(NoopTracer{})

	first := &recordingTracer{}
	SetGlobalTracer(first)
	assert.Equal(t, swtrace.Tracer(first), GetGlobalTracer())

	// installing a replacement stops the previous tracer
	second := &recordingTracer{}
	SetGlobalTracer(second)
	assert.Equal(t, 1, first.stopped)
	assert.Equal(t, swtrace.Tracer(second), GetGlobalTracer())
}

func TestNoopTracer(t *testing.T) {
	var tr NoopTracer
	rt := tr.StartRequest(nil)
	assert.True(t, rt.TraceID().IsZero())
	assert.NoError(t, tr.Inject(NoopSpanContext{}, nil))
	ctx, err := tr.Extract(nil)
	assert.NoError(t, err)
	assert.True(t, ctx.TraceID().IsZero())
	tr.Stop()
}

func TestNoopRequestTracer(t *testing.T) {
	var rt NoopRequestTracer
	// every operation is inert
	rt.StartSpan("a")
	rt.Annotate(swtrace.Label{Key: "k", Value: "v"})
	rt.EndSpan()
	rt.EndSpan()
	rt.SetBaggageItem("k", "v")
	assert.Empty(t, rt.BaggageItem("k"))
	assert.True(t, rt.TraceID().IsZero())

	ctx := rt.Context()
	assert.True(t, ctx.TraceID().IsZero())
	assert.EqualValues(t, 0, ctx.SpanID())
	called := false
	ctx.ForeachBaggageItem(func(k, v string) bool {
		called = true
		return true
	})
	assert.False(t, called)
}
